package participation

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/auralink/auralink-server/internal/models"
)

// Service executes lifecycle decisions against the database. Every mutation
// runs in one transaction holding a row lock on the event, so concurrent
// operations on the same event serialize and the capacity counter can never
// be double-spent (two approvals for the last slot: one wins, one fails).
type Service struct {
	db *gorm.DB
}

func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// Submit records a join request for the caller. Events without approval
// auto-approve: seated when a slot is free, waitlisted otherwise. The second
// return reports whether the caller landed on the waitlist.
func (s *Service) Submit(ctx context.Context, eventID, userID uuid.UUID, transactionCode string) (*models.JoinRequest, bool, error) {
	var created *models.JoinRequest
	var waitlisted bool
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := loadSnapshot(tx, eventID, userID)
		if err != nil {
			return err
		}

		out, err := snap.DecideSubmit(userID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		req := models.JoinRequest{
			ID:              uuid.New(),
			EventID:         eventID,
			UserID:          userID,
			TransactionCode: transactionCode,
			Status:          out.Status,
			RequestedAt:     now,
		}
		if out.Status != models.RequestStatusPending {
			req.DecidedAt = &now
		}
		if err := tx.Create(&req).Error; err != nil {
			return err
		}

		if out.Seat {
			if err := seat(tx, eventID, userID, now); err != nil {
				return err
			}
		}
		if out.Waitlist {
			entry := models.WaitlistEntry{EventID: eventID, UserID: userID, EnqueuedAt: now}
			if err := tx.Create(&entry).Error; err != nil {
				return err
			}
			waitlisted = true
		}

		created = &req
		return nil
	})
	if err != nil {
		return nil, false, err
	}
	return created, waitlisted, nil
}

// Approve transitions a pending request to approved, seats the user, and
// clears any waitlist entry they hold. Organizer-only.
func (s *Service) Approve(ctx context.Context, callerID, eventID, requestID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := loadSnapshot(tx, eventID, uuid.Nil)
		if err != nil {
			return err
		}

		out, err := snap.DecideApprove(callerID, requestID)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		if err := decideRequest(tx, eventID, requestID, out.Status, now); err != nil {
			return err
		}
		if err := seat(tx, eventID, out.UserID, now); err != nil {
			return err
		}
		if out.RemoveWaitlist {
			if err := tx.Where("event_id = ? AND user_id = ?", eventID, out.UserID).
				Delete(&models.WaitlistEntry{}).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Reject transitions a pending request to rejected. Capacity is untouched.
// Organizer-only.
func (s *Service) Reject(ctx context.Context, callerID, eventID, requestID uuid.UUID) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := loadSnapshot(tx, eventID, uuid.Nil)
		if err != nil {
			return err
		}

		out, err := snap.DecideReject(callerID, requestID)
		if err != nil {
			return err
		}
		return decideRequest(tx, eventID, requestID, out.Status, time.Now().UTC())
	})
}

// Leave removes the caller from the participant list and promotes the
// waitlist head into the freed slot. Returns the promoted user, if any.
func (s *Service) Leave(ctx context.Context, eventID, userID uuid.UUID) (*uuid.UUID, error) {
	var promoted *uuid.UUID
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		snap, err := loadSnapshot(tx, eventID, uuid.Nil)
		if err != nil {
			return err
		}

		out, err := snap.DecideLeave(userID)
		if err != nil {
			return err
		}

		res := tx.Where("event_id = ? AND user_id = ?", eventID, userID).
			Delete(&models.EventParticipant{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		dec := tx.Model(&models.Event{}).
			Where("id = ? AND capacity_current > 0", eventID).
			UpdateColumn("capacity_current", gorm.Expr("capacity_current - 1"))
		if dec.Error != nil {
			return dec.Error
		}
		if dec.RowsAffected == 0 {
			// A participant row with a zero counter means the counter was
			// corrupted elsewhere; abort rather than drive it negative.
			return fmt.Errorf("capacity counter out of sync for event %s", eventID)
		}

		if out.Promoted != nil {
			now := time.Now().UTC()
			if err := tx.Where("event_id = ? AND user_id = ?", eventID, *out.Promoted).
				Delete(&models.WaitlistEntry{}).Error; err != nil {
				return err
			}
			if err := seat(tx, eventID, *out.Promoted, now); err != nil {
				return err
			}
			promoted = out.Promoted
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return promoted, nil
}

// PendingForOrganizer lists pending requests across every event the organizer
// owns, oldest first, with the event and requesting user preloaded.
func (s *Service) PendingForOrganizer(ctx context.Context, organizerID uuid.UUID) ([]models.JoinRequest, error) {
	var requests []models.JoinRequest
	err := s.db.WithContext(ctx).
		Joins("JOIN events ON events.id = join_requests.event_id").
		Where("events.organizer_id = ? AND join_requests.status = ?", organizerID, models.RequestStatusPending).
		Preload("Event").
		Preload("User").
		Order("join_requests.requested_at ASC").
		Find(&requests).Error
	if err != nil {
		return nil, err
	}
	return requests, nil
}

// loadSnapshot locks the event row (SELECT ... FOR UPDATE) and reads the
// participation state it guards. forUser, when set, resolves that user's
// invite for invite-only events.
func loadSnapshot(tx *gorm.DB, eventID, forUser uuid.UUID) (*Snapshot, error) {
	var event models.Event
	if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", eventID).First(&event).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	snap := &Snapshot{
		EventID:          event.ID,
		OrganizerID:      event.OrganizerID,
		Status:           event.Status,
		Visibility:       event.Visibility,
		RequiresApproval: event.RequiresApproval,
		Max:              event.Capacity.Max,
		Current:          event.Capacity.Current,
		Invited:          map[uuid.UUID]bool{},
	}

	var participants []models.EventParticipant
	if err := tx.Where("event_id = ?", eventID).Find(&participants).Error; err != nil {
		return nil, err
	}
	for _, p := range participants {
		snap.Participants = append(snap.Participants, p.UserID)
	}

	var waitlist []models.WaitlistEntry
	if err := tx.Where("event_id = ?", eventID).Order("enqueued_at ASC").Find(&waitlist).Error; err != nil {
		return nil, err
	}
	for _, w := range waitlist {
		snap.Waitlist = append(snap.Waitlist, w.UserID)
	}

	var requests []models.JoinRequest
	if err := tx.Where("event_id = ?", eventID).Find(&requests).Error; err != nil {
		return nil, err
	}
	for _, r := range requests {
		snap.Requests = append(snap.Requests, RequestState{ID: r.ID, UserID: r.UserID, Status: r.Status})
	}

	if forUser != uuid.Nil && event.Visibility == models.VisibilityInviteOnly {
		var count int64
		if err := tx.Model(&models.EventInvite{}).
			Where("event_id = ? AND user_id = ?", eventID, forUser).
			Count(&count).Error; err != nil {
			return nil, err
		}
		snap.Invited[forUser] = count > 0
	}

	return snap, nil
}

// decideRequest flips a pending request to its terminal status. The status
// guard in the WHERE clause keeps terminal rows immutable even if a caller
// retries an already-decided request.
func decideRequest(tx *gorm.DB, eventID, requestID uuid.UUID, status string, now time.Time) error {
	res := tx.Model(&models.JoinRequest{}).
		Where("id = ? AND event_id = ? AND status = ?", requestID, eventID, models.RequestStatusPending).
		Updates(map[string]interface{}{"status": status, "decided_at": now})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrInvalidState
	}
	return nil
}

// seat inserts a participant row and bumps the counter with a conditional
// update so the database itself refuses to go past capacity_max.
func seat(tx *gorm.DB, eventID, userID uuid.UUID, now time.Time) error {
	res := tx.Model(&models.Event{}).
		Where("id = ? AND capacity_current < capacity_max", eventID).
		UpdateColumn("capacity_current", gorm.Expr("capacity_current + 1"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrCapacityExceeded
	}
	participant := models.EventParticipant{EventID: eventID, UserID: userID, JoinedAt: now}
	return tx.Create(&participant).Error
}

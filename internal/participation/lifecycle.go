// Package participation implements the event join-request lifecycle: capacity
// tracking, the pending/approved/rejected state machine, and waitlist promotion.
//
// The decision logic is pure: every operation is a function over a Snapshot of
// one event that either fails with a domain error or yields an outcome
// describing the mutations to persist. The storage layer (Service) loads a
// snapshot under a row lock, asks for a decision, and applies the outcome in
// the same transaction, so two decisions can never interleave on one event.
package participation

import (
	"github.com/google/uuid"

	"github.com/auralink/auralink-server/internal/models"
)

// Snapshot is the decision-relevant state of a single event.
type Snapshot struct {
	EventID          uuid.UUID
	OrganizerID      uuid.UUID
	Status           string
	Visibility       string
	RequiresApproval bool
	Max              int
	Current          int
	Participants     []uuid.UUID
	Waitlist         []uuid.UUID // FIFO, head first
	Requests         []RequestState
	Invited          map[uuid.UUID]bool
}

// RequestState is the slice of a join request the lifecycle decides on.
type RequestState struct {
	ID     uuid.UUID
	UserID uuid.UUID
	Status string
}

// AvailableSlots reports how many participants the event can still seat.
func (s *Snapshot) AvailableSlots() int {
	return s.Max - s.Current
}

// HasCapacity reports whether at least one slot is free.
func (s *Snapshot) HasCapacity() bool {
	return s.AvailableSlots() > 0
}

func (s *Snapshot) isParticipant(userID uuid.UUID) bool {
	for _, id := range s.Participants {
		if id == userID {
			return true
		}
	}
	return false
}

func (s *Snapshot) waitlistIndex(userID uuid.UUID) int {
	for i, id := range s.Waitlist {
		if id == userID {
			return i
		}
	}
	return -1
}

func (s *Snapshot) findRequest(requestID uuid.UUID) *RequestState {
	for i := range s.Requests {
		if s.Requests[i].ID == requestID {
			return &s.Requests[i]
		}
	}
	return nil
}

func (s *Snapshot) hasPendingRequest(userID uuid.UUID) bool {
	for _, r := range s.Requests {
		if r.UserID == userID && r.Status == models.RequestStatusPending {
			return true
		}
	}
	return false
}

// SubmitOutcome describes how a new join request must be recorded.
type SubmitOutcome struct {
	Status   string // resulting request status
	Seat     bool   // add participant row and increment the counter
	Waitlist bool   // append a waitlist entry instead of seating
}

// DecideSubmit validates a join request by userID and decides its initial fate.
// Events that do not require approval auto-approve: the user is seated when a
// slot is free, otherwise enqueued on the waitlist.
func (s *Snapshot) DecideSubmit(userID uuid.UUID) (*SubmitOutcome, error) {
	if s.Status != models.EventStatusPublished {
		return nil, ErrInvalidState
	}
	if s.Visibility == models.VisibilityInviteOnly && userID != s.OrganizerID && !s.Invited[userID] {
		return nil, ErrForbidden
	}
	if s.isParticipant(userID) || s.waitlistIndex(userID) >= 0 || s.hasPendingRequest(userID) {
		return nil, ErrDuplicateRequest
	}

	if s.RequiresApproval {
		return &SubmitOutcome{Status: models.RequestStatusPending}, nil
	}
	if s.HasCapacity() {
		return &SubmitOutcome{Status: models.RequestStatusApproved, Seat: true}, nil
	}
	return &SubmitOutcome{Status: models.RequestStatusApproved, Waitlist: true}, nil
}

// DecideOutcome describes the mutations for an approve or reject decision.
type DecideOutcome struct {
	UserID         uuid.UUID
	Status         string // approved or rejected
	Seat           bool
	RemoveWaitlist bool
}

// DecideApprove validates an organizer's approval of a pending request.
// Approving with no free slot fails with ErrCapacityExceeded and must leave
// state untouched; it never silently waitlists.
func (s *Snapshot) DecideApprove(callerID, requestID uuid.UUID) (*DecideOutcome, error) {
	if callerID != s.OrganizerID {
		return nil, ErrForbidden
	}
	req := s.findRequest(requestID)
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrInvalidState
	}
	if !s.HasCapacity() {
		return nil, ErrCapacityExceeded
	}
	return &DecideOutcome{
		UserID:         req.UserID,
		Status:         models.RequestStatusApproved,
		Seat:           true,
		RemoveWaitlist: s.waitlistIndex(req.UserID) >= 0,
	}, nil
}

// DecideReject validates an organizer's rejection of a pending request.
// Rejection never touches capacity.
func (s *Snapshot) DecideReject(callerID, requestID uuid.UUID) (*DecideOutcome, error) {
	if callerID != s.OrganizerID {
		return nil, ErrForbidden
	}
	req := s.findRequest(requestID)
	if req == nil {
		return nil, ErrNotFound
	}
	if req.Status != models.RequestStatusPending {
		return nil, ErrInvalidState
	}
	return &DecideOutcome{UserID: req.UserID, Status: models.RequestStatusRejected}, nil
}

// LeaveOutcome describes a participation cancellation and the cascading
// waitlist promotion, the one transition that happens automatically.
type LeaveOutcome struct {
	Promoted *uuid.UUID // waitlist head seated in the freed slot, if any
}

// DecideLeave validates a participant leaving the event. The freed slot is
// re-offered to the waitlist head, re-checking capacity for the promotion.
func (s *Snapshot) DecideLeave(userID uuid.UUID) (*LeaveOutcome, error) {
	if !s.isParticipant(userID) {
		return nil, ErrNotFound
	}
	out := &LeaveOutcome{}
	if len(s.Waitlist) > 0 && s.Current-1 < s.Max {
		head := s.Waitlist[0]
		out.Promoted = &head
	}
	return out, nil
}

// Apply mutates the snapshot with a submit outcome. The storage layer persists
// the same mutations; tests drive the pure form.
func (out *SubmitOutcome) Apply(s *Snapshot, requestID, userID uuid.UUID) {
	s.Requests = append(s.Requests, RequestState{ID: requestID, UserID: userID, Status: out.Status})
	if out.Seat {
		s.Participants = append(s.Participants, userID)
		s.Current++
	}
	if out.Waitlist {
		s.Waitlist = append(s.Waitlist, userID)
	}
}

// Apply mutates the snapshot with an approve/reject outcome.
func (out *DecideOutcome) Apply(s *Snapshot, requestID uuid.UUID) {
	if req := s.findRequest(requestID); req != nil {
		req.Status = out.Status
	}
	if out.Seat {
		s.Participants = append(s.Participants, out.UserID)
		s.Current++
	}
	if out.RemoveWaitlist {
		if i := s.waitlistIndex(out.UserID); i >= 0 {
			s.Waitlist = append(s.Waitlist[:i], s.Waitlist[i+1:]...)
		}
	}
}

// Apply mutates the snapshot with a leave outcome.
func (out *LeaveOutcome) Apply(s *Snapshot, userID uuid.UUID) {
	for i, id := range s.Participants {
		if id == userID {
			s.Participants = append(s.Participants[:i], s.Participants[i+1:]...)
			break
		}
	}
	s.Current--
	if out.Promoted != nil {
		if i := s.waitlistIndex(*out.Promoted); i >= 0 {
			s.Waitlist = append(s.Waitlist[:i], s.Waitlist[i+1:]...)
		}
		s.Participants = append(s.Participants, *out.Promoted)
		s.Current++
	}
}

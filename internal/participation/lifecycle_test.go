package participation

import (
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/auralink/auralink-server/internal/models"
)

func publishedEvent(max int) *Snapshot {
	return &Snapshot{
		EventID:          uuid.New(),
		OrganizerID:      uuid.New(),
		Status:           models.EventStatusPublished,
		Visibility:       models.VisibilityPublic,
		RequiresApproval: true,
		Max:              max,
		Invited:          map[uuid.UUID]bool{},
	}
}

func mustSubmit(t *testing.T, s *Snapshot, userID uuid.UUID) uuid.UUID {
	t.Helper()
	out, err := s.DecideSubmit(userID)
	if err != nil {
		t.Fatalf("submit for %s: %v", userID, err)
	}
	reqID := uuid.New()
	out.Apply(s, reqID, userID)
	return reqID
}

func checkBounds(t *testing.T, s *Snapshot) {
	t.Helper()
	if s.Current < 0 || s.Current > s.Max {
		t.Fatalf("capacity out of bounds: current=%d max=%d", s.Current, s.Max)
	}
	if len(s.Participants) != s.Current {
		t.Fatalf("participant count %d != current %d", len(s.Participants), s.Current)
	}
	for _, p := range s.Participants {
		if s.waitlistIndex(p) >= 0 {
			t.Fatalf("user %s in both participants and waitlist", p)
		}
	}
}

func TestApproveSeatsUserAndKeepsBounds(t *testing.T) {
	s := publishedEvent(1)
	userA := uuid.New()

	reqID := mustSubmit(t, s, userA)
	if s.Requests[0].Status != models.RequestStatusPending {
		t.Fatalf("expected pending request, got %s", s.Requests[0].Status)
	}

	out, err := s.DecideApprove(s.OrganizerID, reqID)
	if err != nil {
		t.Fatalf("approve: %v", err)
	}
	out.Apply(s, reqID)

	if s.Current != 1 || !s.isParticipant(userA) {
		t.Fatalf("expected user seated, current=%d", s.Current)
	}
	checkBounds(t, s)
}

func TestApproveAtFullCapacityFailsAndLeavesStateUnchanged(t *testing.T) {
	s := publishedEvent(1)
	userA, userB := uuid.New(), uuid.New()

	reqA := mustSubmit(t, s, userA)
	outA, _ := s.DecideApprove(s.OrganizerID, reqA)
	outA.Apply(s, reqA)

	reqB := mustSubmit(t, s, userB)
	before := s.Current
	if _, err := s.DecideApprove(s.OrganizerID, reqB); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("expected ErrCapacityExceeded, got %v", err)
	}
	if s.Current != before {
		t.Fatalf("capacity mutated on failed approve: %d -> %d", before, s.Current)
	}
	if s.findRequest(reqB).Status != models.RequestStatusPending {
		t.Fatalf("request mutated on failed approve")
	}
	checkBounds(t, s)
}

func TestTerminalRequestsAreImmutable(t *testing.T) {
	s := publishedEvent(5)
	userA, userB := uuid.New(), uuid.New()

	approved := mustSubmit(t, s, userA)
	out, _ := s.DecideApprove(s.OrganizerID, approved)
	out.Apply(s, approved)

	rejected := mustSubmit(t, s, userB)
	rej, _ := s.DecideReject(s.OrganizerID, rejected)
	rej.Apply(s, rejected)

	for _, reqID := range []uuid.UUID{approved, rejected} {
		if _, err := s.DecideApprove(s.OrganizerID, reqID); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("re-approve of decided request: expected ErrInvalidState, got %v", err)
		}
		if _, err := s.DecideReject(s.OrganizerID, reqID); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("re-reject of decided request: expected ErrInvalidState, got %v", err)
		}
	}
}

func TestOnlyOrganizerMayDecide(t *testing.T) {
	s := publishedEvent(2)
	reqID := mustSubmit(t, s, uuid.New())

	stranger := uuid.New()
	if _, err := s.DecideApprove(stranger, reqID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
	if _, err := s.DecideReject(stranger, reqID); !errors.Is(err, ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestDuplicatePendingRequestIsRejected(t *testing.T) {
	s := publishedEvent(2)
	userA := uuid.New()
	mustSubmit(t, s, userA)

	if _, err := s.DecideSubmit(userA); !errors.Is(err, ErrDuplicateRequest) {
		t.Fatalf("expected ErrDuplicateRequest, got %v", err)
	}
}

func TestResubmitAllowedAfterRejection(t *testing.T) {
	s := publishedEvent(2)
	userA := uuid.New()

	reqID := mustSubmit(t, s, userA)
	out, _ := s.DecideReject(s.OrganizerID, reqID)
	out.Apply(s, reqID)

	if _, err := s.DecideSubmit(userA); err != nil {
		t.Fatalf("resubmit after rejection: %v", err)
	}
}

func TestSubmitRules(t *testing.T) {
	userA := uuid.New()

	t.Run("unpublished event", func(t *testing.T) {
		s := publishedEvent(2)
		s.Status = models.EventStatusDraft
		if _, err := s.DecideSubmit(userA); !errors.Is(err, ErrInvalidState) {
			t.Fatalf("expected ErrInvalidState, got %v", err)
		}
	})

	t.Run("invite-only without invite", func(t *testing.T) {
		s := publishedEvent(2)
		s.Visibility = models.VisibilityInviteOnly
		if _, err := s.DecideSubmit(userA); !errors.Is(err, ErrForbidden) {
			t.Fatalf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("invite-only with invite", func(t *testing.T) {
		s := publishedEvent(2)
		s.Visibility = models.VisibilityInviteOnly
		s.Invited[userA] = true
		if _, err := s.DecideSubmit(userA); err != nil {
			t.Fatalf("invited user refused: %v", err)
		}
	})
}

func TestAutoApproveSeatsOrWaitlists(t *testing.T) {
	s := publishedEvent(1)
	s.RequiresApproval = false
	userA, userB := uuid.New(), uuid.New()

	outA, err := s.DecideSubmit(userA)
	if err != nil {
		t.Fatalf("submit A: %v", err)
	}
	if outA.Status != models.RequestStatusApproved || !outA.Seat {
		t.Fatalf("expected auto-approved seat, got %+v", outA)
	}
	outA.Apply(s, uuid.New(), userA)

	outB, err := s.DecideSubmit(userB)
	if err != nil {
		t.Fatalf("submit B: %v", err)
	}
	if !outB.Waitlist || outB.Seat {
		t.Fatalf("expected waitlist when full, got %+v", outB)
	}
	outB.Apply(s, uuid.New(), userB)

	if s.waitlistIndex(userB) != 0 {
		t.Fatalf("user B not at waitlist head")
	}
	checkBounds(t, s)
}

func TestLeavePromotesWaitlistHead(t *testing.T) {
	s := publishedEvent(1)
	s.RequiresApproval = false
	userA, userB := uuid.New(), uuid.New()

	outA, _ := s.DecideSubmit(userA)
	outA.Apply(s, uuid.New(), userA)
	outB, _ := s.DecideSubmit(userB)
	outB.Apply(s, uuid.New(), userB)

	out, err := s.DecideLeave(userA)
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	if out.Promoted == nil || *out.Promoted != userB {
		t.Fatalf("expected promotion of B, got %v", out.Promoted)
	}
	out.Apply(s, userA)

	if s.Current != 1 || !s.isParticipant(userB) || len(s.Waitlist) != 0 {
		t.Fatalf("promotion wrong: current=%d waitlist=%d", s.Current, len(s.Waitlist))
	}
	checkBounds(t, s)
}

func TestLeaveWithoutParticipationFails(t *testing.T) {
	s := publishedEvent(1)
	if _, err := s.DecideLeave(uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

// TestApproveRejectScenario walks the max=1 scenario end to end: A approved,
// B's approval fails with capacity exceeded and nothing moves.
func TestApproveRejectScenario(t *testing.T) {
	s := publishedEvent(1)
	userA, userB := uuid.New(), uuid.New()

	reqA := mustSubmit(t, s, userA)
	outA, err := s.DecideApprove(s.OrganizerID, reqA)
	if err != nil {
		t.Fatalf("approve A: %v", err)
	}
	outA.Apply(s, reqA)
	if s.Current != 1 || !s.isParticipant(userA) {
		t.Fatalf("A not seated")
	}

	reqB := mustSubmit(t, s, userB)
	if _, err := s.DecideApprove(s.OrganizerID, reqB); !errors.Is(err, ErrCapacityExceeded) {
		t.Fatalf("approve B: expected ErrCapacityExceeded, got %v", err)
	}
	if s.Current != 1 {
		t.Fatalf("current changed: %d", s.Current)
	}
}

// serializedStore mimics the storage layer's locking: decide and apply run
// under one lock, never interleaved, which is exactly what the row lock in
// Service guarantees per event.
type serializedStore struct {
	mu   sync.Mutex
	snap *Snapshot
}

func (st *serializedStore) approve(callerID, requestID uuid.UUID) error {
	st.mu.Lock()
	defer st.mu.Unlock()
	out, err := st.snap.DecideApprove(callerID, requestID)
	if err != nil {
		return err
	}
	out.Apply(st.snap, requestID)
	return nil
}

func TestConcurrentApprovalsForLastSlot(t *testing.T) {
	s := publishedEvent(1)
	userA, userB := uuid.New(), uuid.New()
	reqA := mustSubmit(t, s, userA)
	reqB := mustSubmit(t, s, userB)

	st := &serializedStore{snap: s}
	errs := make(chan error, 2)
	var wg sync.WaitGroup
	for _, reqID := range []uuid.UUID{reqA, reqB} {
		wg.Add(1)
		go func(id uuid.UUID) {
			defer wg.Done()
			errs <- st.approve(s.OrganizerID, id)
		}(reqID)
	}
	wg.Wait()
	close(errs)

	var ok, full int
	for err := range errs {
		switch {
		case err == nil:
			ok++
		case errors.Is(err, ErrCapacityExceeded):
			full++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if ok != 1 || full != 1 {
		t.Fatalf("expected exactly one success and one capacity failure, got ok=%d full=%d", ok, full)
	}
	if s.Current != 1 || len(s.Participants) != 1 {
		t.Fatalf("overbooked: current=%d participants=%d", s.Current, len(s.Participants))
	}
	checkBounds(t, s)
}

// TestRandomisedSequenceKeepsInvariants drives a fixed mixed sequence of
// submit/approve/reject/leave operations and checks bounds after each step.
func TestRandomisedSequenceKeepsInvariants(t *testing.T) {
	s := publishedEvent(2)
	users := make([]uuid.UUID, 5)
	reqs := make([]uuid.UUID, 5)
	for i := range users {
		users[i] = uuid.New()
		reqs[i] = mustSubmit(t, s, users[i])
		checkBounds(t, s)
	}

	for i := 0; i < 4; i++ {
		out, err := s.DecideApprove(s.OrganizerID, reqs[i])
		if i < 2 {
			if err != nil {
				t.Fatalf("approve %d: %v", i, err)
			}
			out.Apply(s, reqs[i])
		} else if !errors.Is(err, ErrCapacityExceeded) {
			t.Fatalf("approve %d: expected capacity failure, got %v", i, err)
		}
		checkBounds(t, s)
	}

	rej, err := s.DecideReject(s.OrganizerID, reqs[4])
	if err != nil {
		t.Fatalf("reject: %v", err)
	}
	rej.Apply(s, reqs[4])
	checkBounds(t, s)

	leave, err := s.DecideLeave(users[0])
	if err != nil {
		t.Fatalf("leave: %v", err)
	}
	leave.Apply(s, users[0])
	checkBounds(t, s)

	if s.Current != 1 {
		t.Fatalf("expected one seat taken, got %d", s.Current)
	}
}

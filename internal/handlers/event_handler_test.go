package handlers

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/auralink/auralink-server/internal/models"
)

// An event update must never write the participant counter: a stale value
// carried through the save would overwrite seats taken concurrently by the
// participation service and desync the counter from the participant rows.
func TestApplyEventUpdatePreservesCapacityCounter(t *testing.T) {
	event := models.Event{
		ID:         uuid.New(),
		Title:      "Morning drills",
		Sport:      "tennis",
		Capacity:   models.Capacity{Max: 10, Current: 7},
		Status:     models.EventStatusPublished,
		Visibility: models.VisibilityPublic,
		SkillLevel: "all",
		EventType:  "training",
		StartDate:  time.Now(),
		EndDate:    time.Now().Add(2 * time.Hour),
	}

	req := EventRequest{
		Title:       "Evening drills",
		Sport:       "tennis",
		StartDate:   event.StartDate,
		EndDate:     event.EndDate,
		MaxCapacity: 20,
	}
	applyEventUpdate(&event, req)

	if event.Capacity.Current != 7 {
		t.Fatalf("update touched the participant counter: got %d, want 7", event.Capacity.Current)
	}
	if event.Capacity.Max != 20 {
		t.Fatalf("max not updated: got %d", event.Capacity.Max)
	}
	if event.Title != "Evening drills" {
		t.Fatalf("title not updated: got %q", event.Title)
	}
}

func TestApplyEventUpdateKeepsDefaultsWhenOmitted(t *testing.T) {
	event := models.Event{
		ID:         uuid.New(),
		EventType:  "match",
		SkillLevel: "advanced",
		Visibility: models.VisibilityInviteOnly,
		Status:     models.EventStatusPublished,
		Capacity:   models.Capacity{Max: 5, Current: 2},
	}

	applyEventUpdate(&event, EventRequest{Title: "t", Sport: "s", MaxCapacity: 5})

	if event.EventType != "match" || event.SkillLevel != "advanced" {
		t.Fatalf("omitted enums reset: %q %q", event.EventType, event.SkillLevel)
	}
	if event.Visibility != models.VisibilityInviteOnly {
		t.Fatalf("omitted visibility reset: %q", event.Visibility)
	}
	if event.Status != models.EventStatusPublished {
		t.Fatalf("omitted status reset: %q", event.Status)
	}
}

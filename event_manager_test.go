package fastlap

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func newTestEventManager(t *testing.T) (*EventManager, *LapEntryManager) {
	t.Helper()

	store, err := NewJSONStore(t.TempDir())

	if err != nil {
		t.Fatalf("could not open store: %s", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	entryManager := NewLapEntryManager(store, true)

	return NewEventManager(store, entryManager), entryManager
}

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Season Opener", "season-opener"},
		{"GP Night 2026!", "gp-night-2026"},
		{"  Überholen & Gewinnen  ", "berholen-gewinnen"},
		{"---", ""},
	}

	for _, test := range tests {
		if got := slugify(test.input); got != test.expected {
			t.Errorf("slugify(%q) = %q, expected %q", test.input, got, test.expected)
		}
	}
}

func TestEventManagerCreate(t *testing.T) {
	manager, _ := newTestEventManager(t)

	event, err := manager.Create(CreateEventRequest{Name: "Season Opener"})

	if err != nil {
		t.Fatalf("could not create event: %s", err)
	}

	if event.Slug != "season-opener" {
		t.Errorf("Slug = %q, expected season-opener", event.Slug)
	}

	if event.Status != EventStatusScheduled {
		t.Errorf("Status = %q, expected scheduled", event.Status)
	}

	t.Run("name is required", func(t *testing.T) {
		if _, err := manager.Create(CreateEventRequest{}); errors.Cause(err) != ErrEventNameRequired {
			t.Errorf("error = %v, expected ErrEventNameRequired", err)
		}
	})

	t.Run("duplicate names get suffixed slugs", func(t *testing.T) {
		second, err := manager.Create(CreateEventRequest{Name: "Season Opener"})

		if err != nil {
			t.Fatalf("could not create event: %s", err)
		}

		if second.Slug != "season-opener-2" {
			t.Errorf("Slug = %q, expected season-opener-2", second.Slug)
		}

		third, _ := manager.Create(CreateEventRequest{Name: "Season Opener"})

		if third.Slug != "season-opener-3" {
			t.Errorf("Slug = %q, expected season-opener-3", third.Slug)
		}
	})
}

func TestEventManagerUpdate(t *testing.T) {
	manager, _ := newTestEventManager(t)

	event, err := manager.Create(CreateEventRequest{Name: "Season Opener"})

	if err != nil {
		t.Fatalf("could not create event: %s", err)
	}

	t.Run("rename re-slugs", func(t *testing.T) {
		name := "Grand Finale"

		updated, err := manager.Update(event.ID, UpdateEventRequest{Name: &name})

		if err != nil {
			t.Fatalf("could not update event: %s", err)
		}

		if updated.Slug != "grand-finale" {
			t.Errorf("Slug = %q, expected grand-finale", updated.Slug)
		}
	})

	t.Run("invalid status rejected", func(t *testing.T) {
		status := EventStatus("paused")

		if _, err := manager.Update(event.ID, UpdateEventRequest{Status: &status}); errors.Cause(err) != ErrInvalidEventStatus {
			t.Errorf("error = %v, expected ErrInvalidEventStatus", err)
		}
	})

	t.Run("finishing fires the callbacks once", func(t *testing.T) {
		var mutex sync.Mutex
		var finished []string

		done := make(chan struct{}, 1)

		manager.OnFinished(func(event *Event) {
			mutex.Lock()
			finished = append(finished, event.ID)
			mutex.Unlock()

			done <- struct{}{}
		})

		status := EventStatusFinished

		if _, err := manager.Update(event.ID, UpdateEventRequest{Status: &status}); err != nil {
			t.Fatalf("could not finish event: %s", err)
		}

		select {
		case <-done:
		case <-time.After(time.Second):
			t.Fatal("finish callback not invoked")
		}

		// already finished, must not fire again
		if _, err := manager.Update(event.ID, UpdateEventRequest{Status: &status}); err != nil {
			t.Fatalf("could not re-save event: %s", err)
		}

		select {
		case <-done:
			t.Fatal("finish callback fired for an already finished event")
		case <-time.After(100 * time.Millisecond):
		}

		mutex.Lock()
		defer mutex.Unlock()

		if len(finished) != 1 || finished[0] != event.ID {
			t.Errorf("finished = %v, expected one entry for %s", finished, event.ID)
		}
	})
}

func TestEventManagerOverview(t *testing.T) {
	manager, entryManager := newTestEventManager(t)

	active, err := manager.Create(CreateEventRequest{Name: "Active Event"})

	if err != nil {
		t.Fatalf("could not create event: %s", err)
	}

	status := EventStatusActive

	if _, err := manager.Update(active.ID, UpdateEventRequest{Status: &status}); err != nil {
		t.Fatalf("could not activate event: %s", err)
	}

	if _, err := manager.Create(CreateEventRequest{Name: "Upcoming Event"}); err != nil {
		t.Fatalf("could not create event: %s", err)
	}

	times := []string{"1:23.456", "1:22.000", "1:25.000", "1:24.000"}

	for i, displayTime := range times {
		_, err := entryManager.Create(active.ID, LapEntrySubmission{
			DriverName:  "Driver " + string(rune('A'+i)),
			DisplayTime: displayTime,
		})

		if err != nil {
			t.Fatalf("could not create entry: %s", err)
		}
	}

	overview, err := manager.Overview()

	if err != nil {
		t.Fatalf("could not load overview: %s", err)
	}

	if len(overview.Active) != 1 || len(overview.Scheduled) != 1 {
		t.Fatalf("overview groups = active %d, scheduled %d, expected 1 and 1",
			len(overview.Active), len(overview.Scheduled))
	}

	summary := overview.Active[0]

	if summary.EntryCount != 4 {
		t.Errorf("EntryCount = %d, expected 4", summary.EntryCount)
	}

	if len(summary.TopEntries) != 3 {
		t.Fatalf("TopEntries has %d entries, expected 3", len(summary.TopEntries))
	}

	if summary.TopEntries[0].DisplayTime != "1:22.000" {
		t.Errorf("fastest preview entry = %q, expected 1:22.000", summary.TopEntries[0].DisplayTime)
	}
}

func TestEventManagerCurrent(t *testing.T) {
	t.Run("empty store creates a default event", func(t *testing.T) {
		manager, _ := newTestEventManager(t)

		event, err := manager.Current()

		if err != nil {
			t.Fatalf("could not resolve current event: %s", err)
		}

		if event.Name != "Fast Lap Challenge" {
			t.Errorf("Name = %q, expected Fast Lap Challenge", event.Name)
		}

		again, err := manager.Current()

		if err != nil {
			t.Fatalf("could not resolve current event again: %s", err)
		}

		if again.ID != event.ID {
			t.Error("second call created another default event")
		}
	})

	t.Run("active event wins over newer events", func(t *testing.T) {
		manager, _ := newTestEventManager(t)

		older, err := manager.Create(CreateEventRequest{Name: "Older"})

		if err != nil {
			t.Fatalf("could not create event: %s", err)
		}

		status := EventStatusActive

		if _, err := manager.Update(older.ID, UpdateEventRequest{Status: &status}); err != nil {
			t.Fatalf("could not activate event: %s", err)
		}

		if _, err := manager.Create(CreateEventRequest{Name: "Newer"}); err != nil {
			t.Fatalf("could not create event: %s", err)
		}

		current, err := manager.Current()

		if err != nil {
			t.Fatalf("could not resolve current event: %s", err)
		}

		if current.ID != older.ID {
			t.Errorf("current = %s, expected the active event", current.Name)
		}
	})
}

func TestEventManagerDelete(t *testing.T) {
	manager, entryManager := newTestEventManager(t)

	event, err := manager.Create(CreateEventRequest{Name: "Doomed"})

	if err != nil {
		t.Fatalf("could not create event: %s", err)
	}

	if _, err := entryManager.Create(event.ID, LapEntrySubmission{DriverName: "Max", DisplayTime: "1:23.456"}); err != nil {
		t.Fatalf("could not create entry: %s", err)
	}

	if err := manager.Delete(event.ID); err != nil {
		t.Fatalf("could not delete event: %s", err)
	}

	if _, err := manager.Find(event.ID); errors.Cause(err) != ErrEventNotFound {
		t.Errorf("error = %v, expected ErrEventNotFound", err)
	}

	entries, _ := entryManager.List(event.ID)

	if len(entries) != 0 {
		t.Errorf("deleted event still has %d entries", len(entries))
	}
}

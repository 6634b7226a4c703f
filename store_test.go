package fastlap

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/pkg/errors"
)

func testStores(t *testing.T, fn func(t *testing.T, store Store)) {
	t.Helper()

	t.Run("bolt", func(t *testing.T) {
		store, err := NewBoltStore(filepath.Join(t.TempDir(), "test.db"))

		if err != nil {
			t.Fatalf("could not open bolt store: %s", err)
		}

		defer store.Close()

		fn(t, store)
	})

	t.Run("json", func(t *testing.T) {
		store, err := NewJSONStore(t.TempDir())

		if err != nil {
			t.Fatalf("could not open json store: %s", err)
		}

		defer store.Close()

		fn(t, store)
	})
}

func TestStoreLapEntries(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

		entries := []*LapEntry{
			{ID: "slow", EventID: "ev", TimeMS: 90000, DriverName: "Slow", CreatedAt: base},
			{ID: "fast", EventID: "ev", TimeMS: 80000, DriverName: "Fast", CreatedAt: base.Add(time.Minute)},
			{ID: "tied-late", EventID: "ev", TimeMS: 80000, DriverName: "Tied", CreatedAt: base.Add(2 * time.Minute)},
			{ID: "other-event", EventID: "other", TimeMS: 70000, DriverName: "Other", CreatedAt: base},
		}

		for _, entry := range entries {
			if err := store.UpsertLapEntry(entry); err != nil {
				t.Fatalf("could not upsert entry %s: %s", entry.ID, err)
			}
		}

		t.Run("list is sorted and scoped to the event", func(t *testing.T) {
			listed, err := store.ListLapEntries("ev")

			if err != nil {
				t.Fatalf("could not list entries: %s", err)
			}

			order := []string{"fast", "tied-late", "slow"}

			if len(listed) != len(order) {
				t.Fatalf("listed %d entries, expected %d", len(listed), len(order))
			}

			for i, id := range order {
				if listed[i].ID != id {
					t.Errorf("position %d: got %s, expected %s", i, listed[i].ID, id)
				}
			}
		})

		t.Run("find and update", func(t *testing.T) {
			entry, err := store.FindLapEntryByID("fast")

			if err != nil {
				t.Fatalf("could not find entry: %s", err)
			}

			entry.DriverName = "Faster"

			if err := store.UpsertLapEntry(entry); err != nil {
				t.Fatalf("could not update entry: %s", err)
			}

			updated, err := store.FindLapEntryByID("fast")

			if err != nil {
				t.Fatalf("could not re-find entry: %s", err)
			}

			if updated.DriverName != "Faster" {
				t.Errorf("DriverName = %q, expected Faster", updated.DriverName)
			}
		})

		t.Run("missing entry", func(t *testing.T) {
			_, err := store.FindLapEntryByID("nope")

			if errors.Cause(err) != ErrLapEntryNotFound {
				t.Errorf("error = %v, expected ErrLapEntryNotFound", err)
			}

			if err := store.DeleteLapEntry("nope"); errors.Cause(err) != ErrLapEntryNotFound {
				t.Errorf("delete error = %v, expected ErrLapEntryNotFound", err)
			}
		})

		t.Run("delete one", func(t *testing.T) {
			if err := store.DeleteLapEntry("slow"); err != nil {
				t.Fatalf("could not delete entry: %s", err)
			}

			listed, _ := store.ListLapEntries("ev")

			if len(listed) != 2 {
				t.Errorf("listed %d entries after delete, expected 2", len(listed))
			}
		})

		t.Run("delete all is scoped and idempotent", func(t *testing.T) {
			deleted, err := store.DeleteLapEntries("ev")

			if err != nil {
				t.Fatalf("could not clear entries: %s", err)
			}

			if deleted != 2 {
				t.Errorf("deleted = %d, expected 2", deleted)
			}

			deleted, err = store.DeleteLapEntries("ev")

			if err != nil || deleted != 0 {
				t.Errorf("second clear = (%d, %v), expected (0, nil)", deleted, err)
			}

			other, _ := store.ListLapEntries("other")

			if len(other) != 1 {
				t.Errorf("other event has %d entries, expected 1", len(other))
			}
		})
	})
}

func TestStoreEvents(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		event := &Event{
			ID:        "ev1",
			Name:      "Season Opener",
			Slug:      "season-opener",
			Status:    EventStatusActive,
			CreatedAt: time.Now(),
		}

		if err := store.UpsertEvent(event); err != nil {
			t.Fatalf("could not upsert event: %s", err)
		}

		bySlug, err := store.FindEventBySlug("season-opener")

		if err != nil {
			t.Fatalf("could not find event by slug: %s", err)
		}

		if bySlug.ID != "ev1" {
			t.Errorf("FindEventBySlug ID = %s, expected ev1", bySlug.ID)
		}

		if _, err := store.FindEventBySlug("missing"); errors.Cause(err) != ErrEventNotFound {
			t.Errorf("error = %v, expected ErrEventNotFound", err)
		}

		if err := store.DeleteEvent("ev1"); err != nil {
			t.Fatalf("could not delete event: %s", err)
		}

		if _, err := store.FindEventByID("ev1"); errors.Cause(err) != ErrEventNotFound {
			t.Errorf("error after delete = %v, expected ErrEventNotFound", err)
		}
	})
}

func TestStoreSingletons(t *testing.T) {
	testStores(t, func(t *testing.T, store Store) {
		t.Run("design settings default until saved", func(t *testing.T) {
			settings, err := store.LoadDesignSettings()

			if err != nil {
				t.Fatalf("could not load design settings: %s", err)
			}

			if settings.SiteTitle != DefaultDesignSettings().SiteTitle {
				t.Errorf("SiteTitle = %q, expected default", settings.SiteTitle)
			}

			settings.SiteTitle = "GP Night"

			if err := store.UpsertDesignSettings(settings); err != nil {
				t.Fatalf("could not save design settings: %s", err)
			}

			reloaded, _ := store.LoadDesignSettings()

			if reloaded.SiteTitle != "GP Night" {
				t.Errorf("SiteTitle after save = %q, expected GP Night", reloaded.SiteTitle)
			}
		})

		t.Run("smtp options round trip", func(t *testing.T) {
			options, err := store.LoadSMTPOptions()

			if err != nil {
				t.Fatalf("could not load smtp options: %s", err)
			}

			if options.Enabled {
				t.Error("smtp enabled before any save")
			}

			options.Enabled = true
			options.Host = "mail.example.com"

			if err := store.UpsertSMTPOptions(options); err != nil {
				t.Fatalf("could not save smtp options: %s", err)
			}

			reloaded, _ := store.LoadSMTPOptions()

			if !reloaded.Enabled || reloaded.Host != "mail.example.com" {
				t.Errorf("options after save = %+v", reloaded)
			}
		})
	})
}

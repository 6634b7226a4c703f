package fastlap

import (
	"context"
	"strings"
	"testing"

	"github.com/pkg/errors"
)

func newTestNotificationManager(t *testing.T) (*NotificationManager, *LapEntryManager, Store) {
	t.Helper()

	store, err := NewJSONStore(t.TempDir())

	if err != nil {
		t.Fatalf("could not open store: %s", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	entryManager := NewLapEntryManager(store, true)

	return NewNotificationManager(store, entryManager), entryManager, store
}

func TestNotificationManagerOptionChecks(t *testing.T) {
	manager, _, store := newTestNotificationManager(t)

	t.Run("disabled", func(t *testing.T) {
		err := manager.SendTest(context.Background(), "someone@example.com")

		if errors.Cause(err) != ErrSMTPNotConfigured {
			t.Errorf("error = %v, expected ErrSMTPNotConfigured", err)
		}
	})

	t.Run("missing host", func(t *testing.T) {
		if err := store.UpsertSMTPOptions(&SMTPOptions{Enabled: true, FromEmail: "noreply@example.com"}); err != nil {
			t.Fatalf("could not save options: %s", err)
		}

		err := manager.SendTest(context.Background(), "someone@example.com")

		if errors.Cause(err) != ErrSMTPHostMissing {
			t.Errorf("error = %v, expected ErrSMTPHostMissing", err)
		}
	})

	t.Run("missing from address", func(t *testing.T) {
		if err := store.UpsertSMTPOptions(&SMTPOptions{Enabled: true, Host: "mail.example.com"}); err != nil {
			t.Fatalf("could not save options: %s", err)
		}

		err := manager.SendTest(context.Background(), "someone@example.com")

		if errors.Cause(err) != ErrSMTPFromMissing {
			t.Errorf("error = %v, expected ErrSMTPFromMissing", err)
		}
	})

	t.Run("no recipient at all", func(t *testing.T) {
		if err := store.UpsertSMTPOptions(&SMTPOptions{Enabled: true, Host: "mail.example.com", FromEmail: ""}); err != nil {
			t.Fatalf("could not save options: %s", err)
		}

		err := manager.SendTest(context.Background(), "")

		if errors.Cause(err) != ErrSMTPFromMissing {
			t.Errorf("error = %v, expected ErrSMTPFromMissing", err)
		}
	})
}

func TestSendEventResultsWithoutRecipients(t *testing.T) {
	manager, entryManager, store := newTestNotificationManager(t)

	if err := store.UpsertSMTPOptions(&SMTPOptions{Enabled: true, Host: "mail.example.com", FromEmail: "noreply@example.com"}); err != nil {
		t.Fatalf("could not save options: %s", err)
	}

	// entries without an email address are not recipients
	if _, err := entryManager.Create("ev", LapEntrySubmission{DriverName: "Max", DisplayTime: "1:23.456"}); err != nil {
		t.Fatalf("could not create entry: %s", err)
	}

	err := manager.SendEventResults(context.Background(), &Event{ID: "ev", Name: "Season Opener"})

	if errors.Cause(err) != errNoEntriesWithEmail {
		t.Errorf("error = %v, expected errNoEntriesWithEmail", err)
	}
}

func TestRenderResultsTable(t *testing.T) {
	entries := RankEntries([]*LapEntry{
		entryWithTime("a", 83456),
		entryWithTime("b", 82000),
	})

	html := renderResultsTable(entries)

	for _, expected := range []string{"Platz", "Fahrer", "Rundenzeit", "Abstand", "1:22.000", "+1.456"} {
		if !strings.Contains(html, expected) {
			t.Errorf("rendered table is missing %q", expected)
		}
	}
}

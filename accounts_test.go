package fastlap

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

func newTestAccountManager(t *testing.T) (*AccountManager, Store) {
	t.Helper()

	store, err := NewJSONStore(t.TempDir())

	if err != nil {
		t.Fatalf("could not open store: %s", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return NewAccountManager(store), store
}

func TestAccountManagerRegister(t *testing.T) {
	manager, _ := newTestAccountManager(t)

	hasAdmin, err := manager.HasAdmin()

	if err != nil || hasAdmin {
		t.Fatalf("HasAdmin on empty store = (%t, %v), expected (false, nil)", hasAdmin, err)
	}

	if _, err := manager.Register("admin", ""); errors.Cause(err) != ErrInvalidCredentials {
		t.Errorf("empty password error = %v, expected ErrInvalidCredentials", err)
	}

	account, err := manager.Register("admin", "s3cret")

	if err != nil {
		t.Fatalf("could not register: %s", err)
	}

	if account.Username != "admin" {
		t.Errorf("Username = %q, expected admin", account.Username)
	}

	if _, err := uuid.Parse(account.ID); err != nil {
		t.Errorf("ID = %q, expected a UUID", account.ID)
	}

	if string(account.PasswordHash) == "s3cret" {
		t.Error("password stored in plain text")
	}

	if _, err := manager.Register("another", "pw"); errors.Cause(err) != ErrAdminExists {
		t.Errorf("second register error = %v, expected ErrAdminExists", err)
	}
}

func TestAccountManagerLogin(t *testing.T) {
	manager, _ := newTestAccountManager(t)

	if _, err := manager.Register("admin", "s3cret"); err != nil {
		t.Fatalf("could not register: %s", err)
	}

	t.Run("wrong password", func(t *testing.T) {
		if _, err := manager.Login("admin", "wrong"); errors.Cause(err) != ErrInvalidCredentials {
			t.Errorf("error = %v, expected ErrInvalidCredentials", err)
		}
	})

	t.Run("unknown user", func(t *testing.T) {
		if _, err := manager.Login("ghost", "s3cret"); errors.Cause(err) != ErrInvalidCredentials {
			t.Errorf("error = %v, expected ErrInvalidCredentials", err)
		}
	})

	t.Run("valid credentials issue a session", func(t *testing.T) {
		session, err := manager.Login("admin", "s3cret")

		if err != nil {
			t.Fatalf("could not log in: %s", err)
		}

		if session.Token == "" || session.Username != "admin" {
			t.Errorf("session = %+v", session)
		}

		validated, err := manager.Validate(session.Token)

		if err != nil {
			t.Fatalf("could not validate session: %s", err)
		}

		if validated.Username != "admin" {
			t.Errorf("validated username = %q, expected admin", validated.Username)
		}
	})
}

func TestAccountManagerValidate(t *testing.T) {
	manager, store := newTestAccountManager(t)

	t.Run("unknown token", func(t *testing.T) {
		if _, err := manager.Validate("nope"); errors.Cause(err) != ErrSessionNotFound {
			t.Errorf("error = %v, expected ErrSessionNotFound", err)
		}
	})

	t.Run("expired token is rejected and removed", func(t *testing.T) {
		session := &AdminSession{
			Token:     "expired-token",
			Username:  "admin",
			ExpiresAt: time.Now().Add(-time.Minute),
		}

		if err := store.UpsertSession(session); err != nil {
			t.Fatalf("could not store session: %s", err)
		}

		if _, err := manager.Validate(session.Token); errors.Cause(err) != ErrSessionExpired {
			t.Fatalf("error = %v, expected ErrSessionExpired", err)
		}

		if _, err := manager.Validate(session.Token); errors.Cause(err) != ErrSessionNotFound {
			t.Errorf("error after expiry cleanup = %v, expected ErrSessionNotFound", err)
		}
	})
}

func TestAccountManagerLogout(t *testing.T) {
	manager, _ := newTestAccountManager(t)

	if _, err := manager.Register("admin", "s3cret"); err != nil {
		t.Fatalf("could not register: %s", err)
	}

	session, err := manager.Login("admin", "s3cret")

	if err != nil {
		t.Fatalf("could not log in: %s", err)
	}

	if err := manager.Logout(session.Token); err != nil {
		t.Fatalf("could not log out: %s", err)
	}

	if _, err := manager.Validate(session.Token); errors.Cause(err) != ErrSessionNotFound {
		t.Errorf("error after logout = %v, expected ErrSessionNotFound", err)
	}

	// logging out twice is fine
	if err := manager.Logout(session.Token); err != nil {
		t.Errorf("second logout error = %v, expected nil", err)
	}
}

func TestAccountManagerSeedDefaultAdmin(t *testing.T) {
	manager, _ := newTestAccountManager(t)

	if err := manager.SeedDefaultAdmin("admin", "admin"); err != nil {
		t.Fatalf("could not seed default admin: %s", err)
	}

	if _, err := manager.Login("admin", "admin"); err != nil {
		t.Fatalf("could not log in as seeded admin: %s", err)
	}

	// seeding again is a no-op, not an error
	if err := manager.SeedDefaultAdmin("admin", "admin"); err != nil {
		t.Errorf("second seed error = %v, expected nil", err)
	}
}

package fastlap

import (
	"crypto/rand"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidCredentials = errors.New("fastlap: invalid username or password")
	ErrAdminExists        = errors.New("fastlap: an admin account already exists")
	ErrSessionExpired     = errors.New("fastlap: session expired")
)

const sessionLifetime = 24 * time.Hour

// Account is an administrator login.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	PasswordHash []byte    `json:"password_hash"`
	CreatedAt    time.Time `json:"created_at"`
}

// AdminSession is an issued bearer token.
type AdminSession struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

type AccountManager struct {
	store Store
}

func NewAccountManager(store Store) *AccountManager {
	return &AccountManager{store: store}
}

// HasAdmin reports whether any admin account exists yet; the front-end uses
// it to decide between the registration and login screens.
func (am *AccountManager) HasAdmin() (bool, error) {
	accounts, err := am.store.ListAccounts()

	if err != nil {
		return false, err
	}

	return len(accounts) > 0, nil
}

// Register creates the first admin account. It refuses to run once an
// account exists; additional admins are out of scope.
func (am *AccountManager) Register(username, password string) (*Account, error) {
	if username == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	hasAdmin, err := am.HasAdmin()

	if err != nil {
		return nil, err
	}

	if hasAdmin {
		return nil, ErrAdminExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)

	if err != nil {
		return nil, err
	}

	account := &Account{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: hash,
		CreatedAt:    time.Now(),
	}

	if err := am.store.UpsertAccount(account); err != nil {
		return nil, err
	}

	logrus.Infof("Admin account registered: %s", username)

	return account, nil
}

// SeedDefaultAdmin creates the configured bootstrap account when no admin
// exists yet. Installs are expected to change the password immediately.
func (am *AccountManager) SeedDefaultAdmin(username, password string) error {
	hasAdmin, err := am.HasAdmin()

	if err != nil || hasAdmin {
		return err
	}

	if _, err := am.Register(username, password); err != nil {
		return err
	}

	logrus.Warnf("Seeded default admin account %q. Change its password!", username)

	return nil
}

// Login verifies the credentials and issues a bearer token.
func (am *AccountManager) Login(username, password string) (*AdminSession, error) {
	account, err := am.store.FindAccountByUsername(username)

	if err == ErrAccountNotFound {
		return nil, ErrInvalidCredentials
	} else if err != nil {
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword(account.PasswordHash, []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	session := &AdminSession{
		Token:     newToken(32),
		Username:  account.Username,
		ExpiresAt: time.Now().Add(sessionLifetime),
	}

	if err := am.store.UpsertSession(session); err != nil {
		return nil, err
	}

	return session, nil
}

// Validate resolves a bearer token to its session, rejecting expired ones.
func (am *AccountManager) Validate(token string) (*AdminSession, error) {
	session, err := am.store.FindSessionByToken(token)

	if err != nil {
		return nil, err
	}

	if time.Now().After(session.ExpiresAt) {
		_ = am.store.DeleteSession(token)

		return nil, ErrSessionExpired
	}

	return session, nil
}

func (am *AccountManager) Logout(token string) error {
	err := am.store.DeleteSession(token)

	if err == ErrSessionNotFound {
		return nil
	}

	return err
}

func newToken(bytes int) string {
	buf := make([]byte, bytes)

	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms
		panic(err)
	}

	return hex.EncodeToString(buf)
}

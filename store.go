package fastlap

import (
	"sort"

	"github.com/pkg/errors"
)

var (
	ErrLapEntryNotFound = errors.New("fastlap: lap entry not found")
	ErrEventNotFound    = errors.New("fastlap: event not found")
	ErrTrackNotFound    = errors.New("fastlap: track not found")
	ErrAccountNotFound  = errors.New("fastlap: account not found")
	ErrSessionNotFound  = errors.New("fastlap: session not found")
)

// Store is the persistence layer for all collections. Implementations must
// return lap entries from ListLapEntries sorted by TimeMS ascending, with
// ties broken by insertion order (CreatedAt ascending) — the leaderboard
// tie-break contract depends on it.
type Store interface {
	// lap entries
	UpsertLapEntry(entry *LapEntry) error
	FindLapEntryByID(id string) (*LapEntry, error)
	DeleteLapEntry(id string) error
	// ListLapEntries returns the entries for one event, sorted. An empty
	// eventID selects the unscoped legacy collection.
	ListLapEntries(eventID string) ([]*LapEntry, error)
	// DeleteLapEntries removes every entry for an event and reports how
	// many were removed.
	DeleteLapEntries(eventID string) (int, error)

	// events
	UpsertEvent(event *Event) error
	FindEventByID(id string) (*Event, error)
	FindEventBySlug(slug string) (*Event, error)
	ListEvents() ([]*Event, error)
	DeleteEvent(id string) error

	// tracks
	UpsertTrack(track *Track) error
	FindTrackByID(id string) (*Track, error)
	ListTracks() ([]*Track, error)
	DeleteTrack(id string) error

	// admin accounts and their auth sessions
	UpsertAccount(account *Account) error
	FindAccountByUsername(username string) (*Account, error)
	ListAccounts() ([]*Account, error)
	UpsertSession(session *AdminSession) error
	FindSessionByToken(token string) (*AdminSession, error)
	DeleteSession(token string) error

	// singletons
	LoadDesignSettings() (*DesignSettings, error)
	UpsertDesignSettings(settings *DesignSettings) error
	LoadSMTPOptions() (*SMTPOptions, error)
	UpsertSMTPOptions(options *SMTPOptions) error

	Close() error
}

// sortLapEntries orders entries by TimeMS ascending with CreatedAt breaking
// ties, which both store implementations use to satisfy the ListLapEntries
// ordering contract.
func sortLapEntries(entries []*LapEntry) {
	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].TimeMS != entries[j].TimeMS {
			return entries[i].TimeMS < entries[j].TimeMS
		}

		return entries[i].CreatedAt.Before(entries[j].CreatedAt)
	})
}

package fastlap

import (
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var ErrDriverNameRequired = errors.New("fastlap: driver name is required")

// LapEntrySubmission is the payload for creating a lap entry.
type LapEntrySubmission struct {
	DriverName  string `json:"driver_name"`
	Team        string `json:"team"`
	Email       string `json:"email"`
	DisplayTime string `json:"lap_time_display"`
}

// LapEntryUpdate is a partial update. Nil fields are left untouched. A
// non-nil DisplayTime is re-validated and TimeMS/DisplayTime are rewritten
// together; the update is all-or-nothing.
type LapEntryUpdate struct {
	DriverName  *string `json:"driver_name"`
	Team        *string `json:"team"`
	Email       *string `json:"email"`
	DisplayTime *string `json:"lap_time_display"`
}

// LapEntryManager mediates between raw client input and the Store, using
// ParseLapTime for validation and RankEntries for rank computation. List is
// the single source of truth for ranking: the leaderboard, exports, emails
// and live pushes all go through it.
type LapEntryManager struct {
	store       Store
	gapOnCreate bool

	onChange []func(eventID string)
}

func NewLapEntryManager(store Store, gapOnCreate bool) *LapEntryManager {
	return &LapEntryManager{
		store:       store,
		gapOnCreate: gapOnCreate,
	}
}

// OnChange registers a callback invoked after every successful mutation of
// an event's entries (create, update, delete, clear).
func (lm *LapEntryManager) OnChange(fn func(eventID string)) {
	lm.onChange = append(lm.onChange, fn)
}

func (lm *LapEntryManager) entriesChanged(eventID string) {
	for _, fn := range lm.onChange {
		fn(eventID)
	}
}

// Create validates the submitted time, persists a new entry and reports its
// rank in the freshly sorted set. The gap is only populated when the manager
// was configured to compute gaps on create; listings always carry both.
func (lm *LapEntryManager) Create(eventID string, submission LapEntrySubmission) (*RankedEntry, error) {
	if submission.DriverName == "" {
		return nil, ErrDriverNameRequired
	}

	timeMS, err := ParseLapTime(submission.DisplayTime)

	if err != nil {
		return nil, err
	}

	entry := &LapEntry{
		ID:          uuid.New().String(),
		EventID:     eventID,
		DriverName:  submission.DriverName,
		Team:        submission.Team,
		Email:       submission.Email,
		TimeMS:      timeMS,
		DisplayTime: FormatLapTime(timeMS),
		CreatedAt:   time.Now(),
	}

	if err := lm.store.UpsertLapEntry(entry); err != nil {
		return nil, err
	}

	lapEntriesCreated.Inc()
	lm.entriesChanged(eventID)

	logrus.Infof("Lap entry created: %s (%s) for event %q", entry.DriverName, entry.DisplayTime, eventID)

	// the reported rank is a best-effort snapshot; a concurrent write may
	// already have changed it by the time the client reads the response
	ranked, err := lm.List(eventID)

	if err != nil {
		return nil, err
	}

	for _, rankedEntry := range ranked {
		if rankedEntry.ID == entry.ID {
			if !lm.gapOnCreate {
				rankedEntry.Gap = ""
			}

			return rankedEntry, nil
		}
	}

	// the entry was deleted between the write and the re-read
	return &RankedEntry{LapEntry: *entry}, nil
}

// Update applies a partial update atomically: if the time field fails
// validation, no field is applied.
func (lm *LapEntryManager) Update(id string, update LapEntryUpdate) (*LapEntry, error) {
	entry, err := lm.store.FindLapEntryByID(id)

	if err != nil {
		return nil, err
	}

	if update.DisplayTime != nil {
		timeMS, err := ParseLapTime(*update.DisplayTime)

		if err != nil {
			return nil, err
		}

		entry.TimeMS = timeMS
		entry.DisplayTime = FormatLapTime(timeMS)
	}

	if update.DriverName != nil {
		entry.DriverName = *update.DriverName
	}

	if update.Team != nil {
		entry.Team = *update.Team
	}

	if update.Email != nil {
		entry.Email = *update.Email
	}

	if err := lm.store.UpsertLapEntry(entry); err != nil {
		return nil, err
	}

	lm.entriesChanged(entry.EventID)

	return entry, nil
}

func (lm *LapEntryManager) Find(id string) (*LapEntry, error) {
	return lm.store.FindLapEntryByID(id)
}

func (lm *LapEntryManager) Delete(id string) error {
	entry, err := lm.store.FindLapEntryByID(id)

	if err != nil {
		return err
	}

	if err := lm.store.DeleteLapEntry(id); err != nil {
		return err
	}

	lm.entriesChanged(entry.EventID)

	return nil
}

// DeleteAll clears an event's entries. Idempotent: clearing an empty
// collection succeeds.
func (lm *LapEntryManager) DeleteAll(eventID string) (int, error) {
	deleted, err := lm.store.DeleteLapEntries(eventID)

	if err != nil {
		return 0, err
	}

	if deleted > 0 {
		lm.entriesChanged(eventID)
	}

	return deleted, nil
}

// List returns the ranked leaderboard for an event, fastest first.
func (lm *LapEntryManager) List(eventID string) ([]*RankedEntry, error) {
	entries, err := lm.store.ListLapEntries(eventID)

	if err != nil {
		return nil, err
	}

	return RankEntries(entries), nil
}

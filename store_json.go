package fastlap

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/pkg/errors"
)

const (
	lapEntriesFile     = "lap_entries.json"
	eventsFile         = "events.json"
	tracksFile         = "tracks.json"
	accountsFile       = "accounts.json"
	sessionsFile       = "sessions.json"
	designSettingsFile = "design_settings.json"
	smtpOptionsFile    = "smtp_options.json"
)

// JSONStore keeps each collection in its own JSON file underneath a base
// directory. It is intended for small installs and for tests; BoltStore is
// the production backend.
type JSONStore struct {
	base string

	mutex sync.RWMutex
}

func NewJSONStore(base string) (*JSONStore, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, errors.Wrap(err, "could not create store directory")
	}

	return &JSONStore{base: base}, nil
}

func (s *JSONStore) Close() error {
	return nil
}

func (s *JSONStore) listFile(name string, out interface{}) error {
	f, err := os.Open(filepath.Join(s.base, name))

	if os.IsNotExist(err) {
		return nil
	} else if err != nil {
		return err
	}

	defer f.Close()

	return json.NewDecoder(f).Decode(out)
}

func (s *JSONStore) writeFile(name string, data interface{}) error {
	f, err := os.Create(filepath.Join(s.base, name))

	if err != nil {
		return err
	}

	defer f.Close()

	encoder := json.NewEncoder(f)
	encoder.SetIndent("", "  ")

	return encoder.Encode(data)
}

func (s *JSONStore) loadLapEntries() ([]*LapEntry, error) {
	var entries []*LapEntry

	if err := s.listFile(lapEntriesFile, &entries); err != nil {
		return nil, err
	}

	return entries, nil
}

func (s *JSONStore) UpsertLapEntry(entry *LapEntry) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.loadLapEntries()

	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range entries {
		if existing.ID == entry.ID {
			entries[i] = entry
			replaced = true
			break
		}
	}

	if !replaced {
		entries = append(entries, entry)
	}

	return s.writeFile(lapEntriesFile, entries)
}

func (s *JSONStore) FindLapEntryByID(id string) (*LapEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries, err := s.loadLapEntries()

	if err != nil {
		return nil, err
	}

	for _, entry := range entries {
		if entry.ID == id {
			return entry, nil
		}
	}

	return nil, ErrLapEntryNotFound
}

func (s *JSONStore) DeleteLapEntry(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.loadLapEntries()

	if err != nil {
		return err
	}

	for i, entry := range entries {
		if entry.ID == id {
			entries = append(entries[:i], entries[i+1:]...)

			return s.writeFile(lapEntriesFile, entries)
		}
	}

	return ErrLapEntryNotFound
}

func (s *JSONStore) ListLapEntries(eventID string) ([]*LapEntry, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	entries, err := s.loadLapEntries()

	if err != nil {
		return nil, err
	}

	var filtered []*LapEntry

	for _, entry := range entries {
		if entry.EventID == eventID {
			filtered = append(filtered, entry)
		}
	}

	sortLapEntries(filtered)

	return filtered, nil
}

func (s *JSONStore) DeleteLapEntries(eventID string) (int, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	entries, err := s.loadLapEntries()

	if err != nil {
		return 0, err
	}

	var kept []*LapEntry

	deleted := 0

	for _, entry := range entries {
		if entry.EventID == eventID {
			deleted++
			continue
		}

		kept = append(kept, entry)
	}

	if deleted == 0 {
		return 0, nil
	}

	return deleted, s.writeFile(lapEntriesFile, kept)
}

func (s *JSONStore) loadEvents() ([]*Event, error) {
	var events []*Event

	if err := s.listFile(eventsFile, &events); err != nil {
		return nil, err
	}

	return events, nil
}

func (s *JSONStore) UpsertEvent(event *Event) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	events, err := s.loadEvents()

	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range events {
		if existing.ID == event.ID {
			events[i] = event
			replaced = true
			break
		}
	}

	if !replaced {
		events = append(events, event)
	}

	return s.writeFile(eventsFile, events)
}

func (s *JSONStore) FindEventByID(id string) (*Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, err := s.loadEvents()

	if err != nil {
		return nil, err
	}

	for _, event := range events {
		if event.ID == id {
			return event, nil
		}
	}

	return nil, ErrEventNotFound
}

func (s *JSONStore) FindEventBySlug(slug string) (*Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, err := s.loadEvents()

	if err != nil {
		return nil, err
	}

	for _, event := range events {
		if event.Slug == slug {
			return event, nil
		}
	}

	return nil, ErrEventNotFound
}

func (s *JSONStore) ListEvents() ([]*Event, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	events, err := s.loadEvents()

	if err != nil {
		return nil, err
	}

	sortEvents(events)

	return events, nil
}

func (s *JSONStore) DeleteEvent(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	events, err := s.loadEvents()

	if err != nil {
		return err
	}

	for i, event := range events {
		if event.ID == id {
			events = append(events[:i], events[i+1:]...)

			return s.writeFile(eventsFile, events)
		}
	}

	return ErrEventNotFound
}

func (s *JSONStore) loadTracks() ([]*Track, error) {
	var tracks []*Track

	if err := s.listFile(tracksFile, &tracks); err != nil {
		return nil, err
	}

	return tracks, nil
}

func (s *JSONStore) UpsertTrack(track *Track) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tracks, err := s.loadTracks()

	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range tracks {
		if existing.ID == track.ID {
			tracks[i] = track
			replaced = true
			break
		}
	}

	if !replaced {
		tracks = append(tracks, track)
	}

	return s.writeFile(tracksFile, tracks)
}

func (s *JSONStore) FindTrackByID(id string) (*Track, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tracks, err := s.loadTracks()

	if err != nil {
		return nil, err
	}

	for _, track := range tracks {
		if track.ID == id {
			return track, nil
		}
	}

	return nil, ErrTrackNotFound
}

func (s *JSONStore) ListTracks() ([]*Track, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	tracks, err := s.loadTracks()

	if err != nil {
		return nil, err
	}

	sortTracks(tracks)

	return tracks, nil
}

func (s *JSONStore) DeleteTrack(id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	tracks, err := s.loadTracks()

	if err != nil {
		return err
	}

	for i, track := range tracks {
		if track.ID == id {
			tracks = append(tracks[:i], tracks[i+1:]...)

			return s.writeFile(tracksFile, tracks)
		}
	}

	return ErrTrackNotFound
}

func (s *JSONStore) loadAccounts() ([]*Account, error) {
	var accounts []*Account

	if err := s.listFile(accountsFile, &accounts); err != nil {
		return nil, err
	}

	return accounts, nil
}

func (s *JSONStore) UpsertAccount(account *Account) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	accounts, err := s.loadAccounts()

	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range accounts {
		if existing.Username == account.Username {
			accounts[i] = account
			replaced = true
			break
		}
	}

	if !replaced {
		accounts = append(accounts, account)
	}

	return s.writeFile(accountsFile, accounts)
}

func (s *JSONStore) FindAccountByUsername(username string) (*Account, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	accounts, err := s.loadAccounts()

	if err != nil {
		return nil, err
	}

	for _, account := range accounts {
		if account.Username == username {
			return account, nil
		}
	}

	return nil, ErrAccountNotFound
}

func (s *JSONStore) ListAccounts() ([]*Account, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	return s.loadAccounts()
}

func (s *JSONStore) loadSessions() ([]*AdminSession, error) {
	var sessions []*AdminSession

	if err := s.listFile(sessionsFile, &sessions); err != nil {
		return nil, err
	}

	return sessions, nil
}

func (s *JSONStore) UpsertSession(session *AdminSession) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sessions, err := s.loadSessions()

	if err != nil {
		return err
	}

	replaced := false

	for i, existing := range sessions {
		if existing.Token == session.Token {
			sessions[i] = session
			replaced = true
			break
		}
	}

	if !replaced {
		sessions = append(sessions, session)
	}

	return s.writeFile(sessionsFile, sessions)
}

func (s *JSONStore) FindSessionByToken(token string) (*AdminSession, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	sessions, err := s.loadSessions()

	if err != nil {
		return nil, err
	}

	for _, session := range sessions {
		if session.Token == token {
			return session, nil
		}
	}

	return nil, ErrSessionNotFound
}

func (s *JSONStore) DeleteSession(token string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	sessions, err := s.loadSessions()

	if err != nil {
		return err
	}

	for i, session := range sessions {
		if session.Token == token {
			sessions = append(sessions[:i], sessions[i+1:]...)

			return s.writeFile(sessionsFile, sessions)
		}
	}

	return ErrSessionNotFound
}

func (s *JSONStore) LoadDesignSettings() (*DesignSettings, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var settings *DesignSettings

	if err := s.listFile(designSettingsFile, &settings); err != nil {
		return nil, err
	}

	if settings == nil {
		return DefaultDesignSettings(), nil
	}

	return settings, nil
}

func (s *JSONStore) UpsertDesignSettings(settings *DesignSettings) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.writeFile(designSettingsFile, settings)
}

func (s *JSONStore) LoadSMTPOptions() (*SMTPOptions, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var options *SMTPOptions

	if err := s.listFile(smtpOptionsFile, &options); err != nil {
		return nil, err
	}

	if options == nil {
		options = &SMTPOptions{}
	}

	return options, nil
}

func (s *JSONStore) UpsertSMTPOptions(options *SMTPOptions) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.writeFile(smtpOptionsFile, options)
}

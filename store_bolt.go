package fastlap

import (
	"encoding/json"
	"time"

	"github.com/pkg/errors"
	bolt "go.etcd.io/bbolt"
)

var (
	lapEntriesBucketName     = []byte("lap_entries")
	eventsBucketName         = []byte("events")
	tracksBucketName         = []byte("tracks")
	accountsBucketName       = []byte("accounts")
	sessionsBucketName       = []byte("sessions")
	designSettingsBucketName = []byte("design_settings")
	smtpOptionsBucketName    = []byte("smtp_options")

	singletonKey = []byte("singleton")
)

// BoltStore persists every collection in a single bbolt database, one bucket
// per collection, values JSON encoded.
type BoltStore struct {
	db *bolt.DB
}

func NewBoltStore(path string) (*BoltStore, error) {
	db, err := bolt.Open(path, 0644, &bolt.Options{Timeout: 5 * time.Second})

	if err != nil {
		return nil, errors.Wrap(err, "could not open bolt database")
	}

	return &BoltStore{db: db}, nil
}

func (s *BoltStore) Close() error {
	return s.db.Close()
}

func (s *BoltStore) bucket(tx *bolt.Tx, name []byte) (*bolt.Bucket, error) {
	if !tx.Writable() {
		bkt := tx.Bucket(name)

		if bkt == nil {
			return nil, bolt.ErrBucketNotFound
		}

		return bkt, nil
	}

	return tx.CreateBucketIfNotExists(name)
}

func (s *BoltStore) encode(data interface{}) ([]byte, error) {
	return json.Marshal(data)
}

func (s *BoltStore) decode(data []byte, out interface{}) error {
	return json.Unmarshal(data, out)
}

func (s *BoltStore) put(bucketName []byte, key string, data interface{}) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucketName)

		if err != nil {
			return err
		}

		encoded, err := s.encode(data)

		if err != nil {
			return err
		}

		return bkt.Put([]byte(key), encoded)
	})
}

func (s *BoltStore) get(bucketName []byte, key string, out interface{}, notFound error) error {
	err := s.db.View(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucketName)

		if err != nil {
			return err
		}

		data := bkt.Get([]byte(key))

		if data == nil {
			return notFound
		}

		return s.decode(data, out)
	})

	if err == bolt.ErrBucketNotFound {
		return notFound
	}

	return err
}

func (s *BoltStore) delete(bucketName []byte, key string, notFound error) error {
	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt, err := s.bucket(tx, bucketName)

		if err != nil {
			return err
		}

		if bkt.Get([]byte(key)) == nil {
			return notFound
		}

		return bkt.Delete([]byte(key))
	})

	return err
}

func (s *BoltStore) UpsertLapEntry(entry *LapEntry) error {
	return s.put(lapEntriesBucketName, entry.ID, entry)
}

func (s *BoltStore) FindLapEntryByID(id string) (*LapEntry, error) {
	var entry LapEntry

	if err := s.get(lapEntriesBucketName, id, &entry, ErrLapEntryNotFound); err != nil {
		return nil, err
	}

	return &entry, nil
}

func (s *BoltStore) DeleteLapEntry(id string) error {
	return s.delete(lapEntriesBucketName, id, ErrLapEntryNotFound)
}

func (s *BoltStore) ListLapEntries(eventID string) ([]*LapEntry, error) {
	var entries []*LapEntry

	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(lapEntriesBucketName)

		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(_, data []byte) error {
			var entry LapEntry

			if err := s.decode(data, &entry); err != nil {
				return err
			}

			if entry.EventID == eventID {
				entries = append(entries, &entry)
			}

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	sortLapEntries(entries)

	return entries, nil
}

func (s *BoltStore) DeleteLapEntries(eventID string) (int, error) {
	deleted := 0

	err := s.db.Update(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(lapEntriesBucketName)

		if bkt == nil {
			return nil
		}

		var toDelete [][]byte

		err := bkt.ForEach(func(key, data []byte) error {
			var entry LapEntry

			if err := s.decode(data, &entry); err != nil {
				return err
			}

			if entry.EventID == eventID {
				keyCopy := make([]byte, len(key))
				copy(keyCopy, key)
				toDelete = append(toDelete, keyCopy)
			}

			return nil
		})

		if err != nil {
			return err
		}

		for _, key := range toDelete {
			if err := bkt.Delete(key); err != nil {
				return err
			}

			deleted++
		}

		return nil
	})

	if err != nil {
		return 0, err
	}

	return deleted, nil
}

func (s *BoltStore) UpsertEvent(event *Event) error {
	return s.put(eventsBucketName, event.ID, event)
}

func (s *BoltStore) FindEventByID(id string) (*Event, error) {
	var event Event

	if err := s.get(eventsBucketName, id, &event, ErrEventNotFound); err != nil {
		return nil, err
	}

	return &event, nil
}

func (s *BoltStore) FindEventBySlug(slug string) (*Event, error) {
	events, err := s.ListEvents()

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

func (s *BoltStore) ListEvents() ([]*Event, error) {
	var events []*Event

	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(eventsBucketName)

		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(_, data []byte) error {
			var event Event

			if err := s.decode(data, &event); err != nil {
				return err
			}

			events = append(events, &event)

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	sortEvents(events)

	return events, nil
}

func (s *BoltStore) DeleteEvent(id string) error {
	return s.delete(eventsBucketName, id, ErrEventNotFound)
}

func (s *BoltStore) UpsertTrack(track *Track) error {
	return s.put(tracksBucketName, track.ID, track)
}

func (s *BoltStore) FindTrackByID(id string) (*Track, error) {
	var track Track

	if err := s.get(tracksBucketName, id, &track, ErrTrackNotFound); err != nil {
		return nil, err
	}

	return &track, nil
}

func (s *BoltStore) ListTracks() ([]*Track, error) {
	var tracks []*Track

	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(tracksBucketName)

		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(_, data []byte) error {
			var track Track

			if err := s.decode(data, &track); err != nil {
				return err
			}

			tracks = append(tracks, &track)

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	sortTracks(tracks)

	return tracks, nil
}

func (s *BoltStore) DeleteTrack(id string) error {
	return s.delete(tracksBucketName, id, ErrTrackNotFound)
}

func (s *BoltStore) UpsertAccount(account *Account) error {
	return s.put(accountsBucketName, account.Username, account)
}

func (s *BoltStore) FindAccountByUsername(username string) (*Account, error) {
	var account Account

	if err := s.get(accountsBucketName, username, &account, ErrAccountNotFound); err != nil {
		return nil, err
	}

	return &account, nil
}

func (s *BoltStore) ListAccounts() ([]*Account, error) {
	var accounts []*Account

	err := s.db.View(func(tx *bolt.Tx) error {
		bkt := tx.Bucket(accountsBucketName)

		if bkt == nil {
			return nil
		}

		return bkt.ForEach(func(_, data []byte) error {
			var account Account

			if err := s.decode(data, &account); err != nil {
				return err
			}

			accounts = append(accounts, &account)

			return nil
		})
	})

	if err != nil {
		return nil, err
	}

	return accounts, nil
}

func (s *BoltStore) UpsertSession(session *AdminSession) error {
	return s.put(sessionsBucketName, session.Token, session)
}

func (s *BoltStore) FindSessionByToken(token string) (*AdminSession, error) {
	var session AdminSession

	if err := s.get(sessionsBucketName, token, &session, ErrSessionNotFound); err != nil {
		return nil, err
	}

	return &session, nil
}

func (s *BoltStore) DeleteSession(token string) error {
	return s.delete(sessionsBucketName, token, ErrSessionNotFound)
}

func (s *BoltStore) LoadDesignSettings() (*DesignSettings, error) {
	var settings DesignSettings

	err := s.get(designSettingsBucketName, string(singletonKey), &settings, nil)

	if err != nil {
		return nil, err
	}

	if settings == (DesignSettings{}) {
		return DefaultDesignSettings(), nil
	}

	return &settings, nil
}

func (s *BoltStore) UpsertDesignSettings(settings *DesignSettings) error {
	return s.put(designSettingsBucketName, string(singletonKey), settings)
}

func (s *BoltStore) LoadSMTPOptions() (*SMTPOptions, error) {
	var options SMTPOptions

	err := s.get(smtpOptionsBucketName, string(singletonKey), &options, nil)

	if err != nil {
		return nil, err
	}

	return &options, nil
}

func (s *BoltStore) UpsertSMTPOptions(options *SMTPOptions) error {
	return s.put(smtpOptionsBucketName, string(singletonKey), options)
}

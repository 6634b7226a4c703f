package fastlap

import (
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrTrackNameRequired = errors.New("fastlap: track name is required")

// Track is a circuit an event can be held on.
type Track struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Country   string    `json:"country"`
	ImageURL  string    `json:"image_url"`
	CreatedAt time.Time `json:"created_at"`
}

type TrackRequest struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	ImageURL string `json:"image_url"`
}

type TrackManager struct {
	store Store
}

func NewTrackManager(store Store) *TrackManager {
	return &TrackManager{store: store}
}

func (tm *TrackManager) Create(request TrackRequest) (*Track, error) {
	if request.Name == "" {
		return nil, ErrTrackNameRequired
	}

	track := &Track{
		ID:        uuid.New().String(),
		Name:      request.Name,
		Country:   request.Country,
		ImageURL:  request.ImageURL,
		CreatedAt: time.Now(),
	}

	if err := tm.store.UpsertTrack(track); err != nil {
		return nil, err
	}

	return track, nil
}

func (tm *TrackManager) Update(id string, request TrackRequest) (*Track, error) {
	track, err := tm.store.FindTrackByID(id)

	if err != nil {
		return nil, err
	}

	if request.Name != "" {
		track.Name = request.Name
	}

	track.Country = request.Country
	track.ImageURL = request.ImageURL

	if err := tm.store.UpsertTrack(track); err != nil {
		return nil, err
	}

	return track, nil
}

func (tm *TrackManager) Delete(id string) error {
	return tm.store.DeleteTrack(id)
}

func (tm *TrackManager) List() ([]*Track, error) {
	return tm.store.ListTracks()
}

func sortTracks(tracks []*Track) {
	sort.Slice(tracks, func(i, j int) bool {
		return tracks[i].Name < tracks[j].Name
	})
}

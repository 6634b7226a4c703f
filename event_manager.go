package fastlap

import (
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

type EventStatus string

const (
	EventStatusScheduled EventStatus = "scheduled"
	EventStatusActive    EventStatus = "active"
	EventStatusFinished  EventStatus = "finished"
	EventStatusArchived  EventStatus = "archived"
)

func (s EventStatus) Valid() bool {
	switch s {
	case EventStatusScheduled, EventStatusActive, EventStatusFinished, EventStatusArchived:
		return true
	default:
		return false
	}
}

var ErrInvalidEventStatus = errors.New("fastlap: invalid event status")

// Event is one fast lap challenge with its own leaderboard.
type Event struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Slug          string      `json:"slug"`
	Description   string      `json:"description"`
	TrackID       string      `json:"track_id,omitempty"`
	ScheduledDate string      `json:"scheduled_date,omitempty"`
	ScheduledTime string      `json:"scheduled_time,omitempty"`
	Status        EventStatus `json:"status"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// EventSummary is an Event plus the preview data shown on the overview page.
type EventSummary struct {
	Event

	EntryCount int            `json:"entry_count"`
	TopEntries []*RankedEntry `json:"top_entries"`
}

// EventOverview groups event summaries by status.
type EventOverview struct {
	Active    []*EventSummary `json:"active"`
	Scheduled []*EventSummary `json:"scheduled"`
	Finished  []*EventSummary `json:"finished"`
	Archived  []*EventSummary `json:"archived"`
}

type EventDetails struct {
	Event

	Entries []*RankedEntry `json:"entries"`
}

type CreateEventRequest struct {
	Name          string `json:"name"`
	Description   string `json:"description"`
	TrackID       string `json:"track_id"`
	ScheduledDate string `json:"scheduled_date"`
	ScheduledTime string `json:"scheduled_time"`
}

type UpdateEventRequest struct {
	Name          *string      `json:"name"`
	Description   *string      `json:"description"`
	TrackID       *string      `json:"track_id"`
	ScheduledDate *string      `json:"scheduled_date"`
	ScheduledTime *string      `json:"scheduled_time"`
	Status        *EventStatus `json:"status"`
}

var ErrEventNameRequired = errors.New("fastlap: event name is required")

const topEntryCount = 3

// EventManager owns the event lifecycle. Moving an event to finished fires
// the registered finish callbacks (results email fanout) in the background.
type EventManager struct {
	store        Store
	entryManager *LapEntryManager

	onFinished []func(event *Event)
}

func NewEventManager(store Store, entryManager *LapEntryManager) *EventManager {
	return &EventManager{
		store:        store,
		entryManager: entryManager,
	}
}

func (em *EventManager) OnFinished(fn func(event *Event)) {
	em.onFinished = append(em.onFinished, fn)
}

var slugStripRegex = regexp.MustCompile(`[^a-z0-9]+`)

func slugify(name string) string {
	slug := strings.ToLower(name)
	slug = slugStripRegex.ReplaceAllString(slug, "-")

	return strings.Trim(slug, "-")
}

// uniqueSlug appends a numeric suffix until the slug is free.
func (em *EventManager) uniqueSlug(name, eventID string) (string, error) {
	base := slugify(name)

	if base == "" {
		base = "event"
	}

	events, err := em.store.ListEvents()

	if err != nil {
		return "", err
	}

	taken := make(map[string]bool)

	for _, event := range events {
		if event.ID != eventID {
			taken[event.Slug] = true
		}
	}

	if !taken[base] {
		return base, nil
	}

	for i := 2; ; i++ {
		candidate := base + "-" + strconv.Itoa(i)

		if !taken[candidate] {
			return candidate, nil
		}
	}
}

func (em *EventManager) Create(request CreateEventRequest) (*Event, error) {
	if request.Name == "" {
		return nil, ErrEventNameRequired
	}

	event := &Event{
		ID:            uuid.New().String(),
		Name:          request.Name,
		Description:   request.Description,
		TrackID:       request.TrackID,
		ScheduledDate: request.ScheduledDate,
		ScheduledTime: request.ScheduledTime,
		Status:        EventStatusScheduled,
		CreatedAt:     time.Now(),
		UpdatedAt:     time.Now(),
	}

	slug, err := em.uniqueSlug(request.Name, event.ID)

	if err != nil {
		return nil, err
	}

	event.Slug = slug

	if err := em.store.UpsertEvent(event); err != nil {
		return nil, err
	}

	logrus.Infof("Event created: %s (%s)", event.Name, event.Slug)

	return event, nil
}

func (em *EventManager) Update(id string, request UpdateEventRequest) (*Event, error) {
	event, err := em.store.FindEventByID(id)

	if err != nil {
		return nil, err
	}

	previousStatus := event.Status

	if request.Status != nil {
		if !request.Status.Valid() {
			return nil, ErrInvalidEventStatus
		}

		event.Status = *request.Status
	}

	if request.Name != nil && *request.Name != "" && *request.Name != event.Name {
		event.Name = *request.Name

		slug, err := em.uniqueSlug(event.Name, event.ID)

		if err != nil {
			return nil, err
		}

		event.Slug = slug
	}

	if request.Description != nil {
		event.Description = *request.Description
	}

	if request.TrackID != nil {
		event.TrackID = *request.TrackID
	}

	if request.ScheduledDate != nil {
		event.ScheduledDate = *request.ScheduledDate
	}

	if request.ScheduledTime != nil {
		event.ScheduledTime = *request.ScheduledTime
	}

	event.UpdatedAt = time.Now()

	if err := em.store.UpsertEvent(event); err != nil {
		return nil, err
	}

	if previousStatus != EventStatusFinished && event.Status == EventStatusFinished {
		for _, fn := range em.onFinished {
			go fn(event)
		}
	}

	return event, nil
}

// Delete removes an event and its entries.
func (em *EventManager) Delete(id string) error {
	if err := em.store.DeleteEvent(id); err != nil {
		return err
	}

	if _, err := em.entryManager.DeleteAll(id); err != nil {
		logrus.WithError(err).Errorf("Could not clear entries for deleted event %s", id)
	}

	return nil
}

func (em *EventManager) Find(id string) (*Event, error) {
	return em.store.FindEventByID(id)
}

func (em *EventManager) FindBySlug(slug string) (*Event, error) {
	return em.store.FindEventBySlug(slug)
}

// Details loads an event by slug with its full ranked leaderboard.
func (em *EventManager) Details(slug string) (*EventDetails, error) {
	event, err := em.store.FindEventBySlug(slug)

	if err != nil {
		return nil, err
	}

	entries, err := em.entryManager.List(event.ID)

	if err != nil {
		return nil, err
	}

	return &EventDetails{Event: *event, Entries: entries}, nil
}

// Overview groups all events by status, each with its entry count and the
// top three ranked entries for the preview cards.
func (em *EventManager) Overview() (*EventOverview, error) {
	events, err := em.store.ListEvents()

	if err != nil {
		return nil, err
	}

	overview := &EventOverview{
		Active:    []*EventSummary{},
		Scheduled: []*EventSummary{},
		Finished:  []*EventSummary{},
		Archived:  []*EventSummary{},
	}

	for _, event := range events {
		entries, err := em.entryManager.List(event.ID)

		if err != nil {
			return nil, err
		}

		top := entries

		if len(top) > topEntryCount {
			top = top[:topEntryCount]
		}

		summary := &EventSummary{
			Event:      *event,
			EntryCount: len(entries),
			TopEntries: top,
		}

		switch event.Status {
		case EventStatusActive:
			overview.Active = append(overview.Active, summary)
		case EventStatusFinished:
			overview.Finished = append(overview.Finished, summary)
		case EventStatusArchived:
			overview.Archived = append(overview.Archived, summary)
		default:
			overview.Scheduled = append(overview.Scheduled, summary)
		}
	}

	return overview, nil
}

// Current resolves the event the legacy flat lap routes operate on: the
// active event if there is one, otherwise the most recently created event.
// A default event is created lazily on an empty store.
func (em *EventManager) Current() (*Event, error) {
	events, err := em.store.ListEvents()

	if err != nil {
		return nil, err
	}

	for _, event := range events {
		if event.Status == EventStatusActive {
			return event, nil
		}
	}

	if len(events) > 0 {
		return events[0], nil
	}

	return em.Create(CreateEventRequest{Name: "Fast Lap Challenge"})
}

// sortEvents orders newest first, which the overview and Current rely on.
func sortEvents(events []*Event) {
	sort.Slice(events, func(i, j int) bool {
		return events[i].CreatedAt.After(events[j].CreatedAt)
	})
}

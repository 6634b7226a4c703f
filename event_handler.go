package fastlap

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
	qrcode "github.com/skip2/go-qrcode"
	"github.com/sirupsen/logrus"
)

type EventHandler struct {
	*BaseHandler

	eventManager *EventManager
	liveHub      *LiveHub
}

func NewEventHandler(baseHandler *BaseHandler, eventManager *EventManager, liveHub *LiveHub) *EventHandler {
	return &EventHandler{
		BaseHandler:  baseHandler,
		eventManager: eventManager,
		liveHub:      liveHub,
	}
}

func (eh *EventHandler) overview(w http.ResponseWriter, r *http.Request) {
	overview, err := eh.eventManager.Overview()

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, overview)
}

func (eh *EventHandler) detail(w http.ResponseWriter, r *http.Request) {
	details, err := eh.eventManager.Details(chi.URLParam(r, "slug"))

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, details)
}

const qrCodeSize = 512

// qr renders a PNG QR code pointing at the event's public page, so it can
// be printed out at the venue.
func (eh *EventHandler) qr(w http.ResponseWriter, r *http.Request) {
	event, err := eh.eventManager.FindBySlug(chi.URLParam(r, "slug"))

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	baseURL := r.URL.Query().Get("base_url")

	if baseURL == "" {
		baseURL = "http://" + r.Host
	}

	png, err := qrcode.Encode(fmt.Sprintf("%s/event/%s", baseURL, event.Slug), qrcode.Medium, qrCodeSize)

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")

	_, _ = w.Write(png)
}

func (eh *EventHandler) live(w http.ResponseWriter, r *http.Request) {
	event, err := eh.eventManager.FindBySlug(chi.URLParam(r, "slug"))

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	if err := eh.liveHub.Subscribe(event.ID, w, r); err != nil {
		logrus.WithError(err).Error("Could not upgrade live leaderboard connection")
	}
}

func (eh *EventHandler) create(w http.ResponseWriter, r *http.Request) {
	var request CreateEventRequest

	if !eh.decodeBody(w, r, &request) {
		return
	}

	event, err := eh.eventManager.Create(request)

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, map[string]interface{}{"event": event})
}

func (eh *EventHandler) update(w http.ResponseWriter, r *http.Request) {
	var request UpdateEventRequest

	if !eh.decodeBody(w, r, &request) {
		return
	}

	event, err := eh.eventManager.Update(chi.URLParam(r, "id"), request)

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, map[string]interface{}{"event": event, "message": "Event aktualisiert"})
}

func (eh *EventHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := eh.eventManager.Delete(chi.URLParam(r, "id")); err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, map[string]string{"message": "Event gelöscht"})
}

var eventStatusMessages = map[EventStatus]string{
	EventStatusScheduled: "Das Event ist geplant",
	EventStatusActive:    "Das Event läuft",
	EventStatusFinished:  "Das Event ist beendet",
	EventStatusArchived:  "Das Event ist archiviert",
}

// status is the legacy single-event status endpoint, answering for whatever
// event the flat routes currently resolve to.
func (eh *EventHandler) status(w http.ResponseWriter, r *http.Request) {
	event, err := eh.eventManager.Current()

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, map[string]string{
		"status":  string(event.Status),
		"message": eventStatusMessages[event.Status],
	})
}

type eventStatusRequest struct {
	Status EventStatus `json:"status"`
}

// setStatus moves one event through its lifecycle. Reaching finished fires
// the results email fanout.
func (eh *EventHandler) setStatus(w http.ResponseWriter, r *http.Request) {
	var request eventStatusRequest

	if !eh.decodeBody(w, r, &request) {
		return
	}

	event, err := eh.eventManager.Update(chi.URLParam(r, "id"), UpdateEventRequest{Status: &request.Status})

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, map[string]string{
		"status":  string(event.Status),
		"message": eventStatusMessages[event.Status],
	})
}

// updateCurrent is the legacy single-event update, mostly used to flip the
// running event's status from the admin dashboard.
func (eh *EventHandler) updateCurrent(w http.ResponseWriter, r *http.Request) {
	event, err := eh.eventManager.Current()

	if err != nil {
		eh.respondError(w, r, err)
		return
	}

	var request UpdateEventRequest

	if !eh.decodeBody(w, r, &request) {
		return
	}

	if _, err := eh.eventManager.Update(event.ID, request); err != nil {
		eh.respondError(w, r, err)
		return
	}

	eh.respondJSON(w, http.StatusOK, map[string]string{"message": "Event aktualisiert"})
}

package fastlap

import (
	"encoding/json"
	"net/http"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// BaseHandler carries the request/response plumbing shared by every handler:
// JSON encoding and the mapping from domain errors to HTTP status codes.
type BaseHandler struct{}

func NewBaseHandler() *BaseHandler {
	return &BaseHandler{}
}

func (h *BaseHandler) respondJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	_ = json.NewEncoder(w).Encode(data)
}

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *BaseHandler) respondDetail(w http.ResponseWriter, status int, detail string) {
	h.respondJSON(w, status, errorResponse{Detail: detail})
}

// respondError translates domain errors: invalid client input becomes 400,
// missing records 404, auth problems 401. Anything else is an infrastructure
// fault, logged and reported as 500 without leaking internals.
func (h *BaseHandler) respondError(w http.ResponseWriter, r *http.Request, err error) {
	switch errors.Cause(err) {
	case ErrInvalidTimeFormat:
		h.respondDetail(w, http.StatusBadRequest, "Ungültiges Zeitformat. Bitte M:SS.mmm verwenden (z.B. 1:23.456)")
	case ErrDriverNameRequired:
		h.respondDetail(w, http.StatusBadRequest, "Fahrername darf nicht leer sein")
	case ErrEventNameRequired:
		h.respondDetail(w, http.StatusBadRequest, "Event-Name darf nicht leer sein")
	case ErrTrackNameRequired:
		h.respondDetail(w, http.StatusBadRequest, "Strecken-Name darf nicht leer sein")
	case ErrInvalidEventStatus:
		h.respondDetail(w, http.StatusBadRequest, "Ungültiger Event-Status")
	case ErrSMTPNotConfigured:
		h.respondDetail(w, http.StatusBadRequest, "SMTP ist nicht konfiguriert. Bitte zuerst die SMTP-Einstellungen speichern.")
	case ErrSMTPHostMissing:
		h.respondDetail(w, http.StatusBadRequest, "SMTP Host fehlt in den Einstellungen")
	case ErrSMTPFromMissing:
		h.respondDetail(w, http.StatusBadRequest, "Absender-Adresse (from_email) fehlt in den SMTP-Einstellungen")
	case ErrNoTestRecipient:
		h.respondDetail(w, http.StatusBadRequest, "Keine Empfänger-Adresse für die Test-E-Mail")
	case ErrLapEntryNotFound:
		h.respondDetail(w, http.StatusNotFound, "Lap entry not found")
	case ErrEventNotFound:
		h.respondDetail(w, http.StatusNotFound, "Event not found")
	case ErrTrackNotFound:
		h.respondDetail(w, http.StatusNotFound, "Track not found")
	case ErrInvalidCredentials:
		h.respondDetail(w, http.StatusUnauthorized, "Benutzername oder Passwort falsch")
	case ErrSessionNotFound, ErrSessionExpired:
		h.respondDetail(w, http.StatusUnauthorized, "Nicht angemeldet")
	case ErrAdminExists:
		h.respondDetail(w, http.StatusConflict, "Es existiert bereits ein Admin-Konto")
	default:
		logrus.WithError(err).Errorf("Request failed: %s %s", r.Method, r.URL.Path)
		h.respondDetail(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

// logRequestError is for failures after the response has already started
// streaming, where a JSON error body can no longer be sent.
func logRequestError(r *http.Request, err error) {
	logrus.WithError(err).Errorf("Request failed mid-response: %s %s", r.Method, r.URL.Path)
}

func (h *BaseHandler) decodeBody(w http.ResponseWriter, r *http.Request, into interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(into); err != nil {
		h.respondDetail(w, http.StatusBadRequest, "Ungültiger Request-Body")
		return false
	}

	return true
}

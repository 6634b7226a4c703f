package fastlap

import (
	"net/http"

	"github.com/go-chi/chi"
)

type LapEntryHandler struct {
	*BaseHandler

	entryManager *LapEntryManager
	eventManager *EventManager
}

func NewLapEntryHandler(baseHandler *BaseHandler, entryManager *LapEntryManager, eventManager *EventManager) *LapEntryHandler {
	return &LapEntryHandler{
		BaseHandler:  baseHandler,
		entryManager: entryManager,
		eventManager: eventManager,
	}
}

// currentEventID resolves the event the legacy flat routes operate on.
func (lh *LapEntryHandler) currentEventID(w http.ResponseWriter, r *http.Request) (string, bool) {
	event, err := lh.eventManager.Current()

	if err != nil {
		lh.respondError(w, r, err)
		return "", false
	}

	return event.ID, true
}

// list serves the public leaderboard of the current event.
func (lh *LapEntryHandler) list(w http.ResponseWriter, r *http.Request) {
	eventID, ok := lh.currentEventID(w, r)

	if !ok {
		return
	}

	entries, err := lh.entryManager.List(eventID)

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, entries)
}

func (lh *LapEntryHandler) get(w http.ResponseWriter, r *http.Request) {
	entry, err := lh.entryManager.Find(chi.URLParam(r, "id"))

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, &RankedEntry{LapEntry: *entry})
}

func (lh *LapEntryHandler) create(w http.ResponseWriter, r *http.Request) {
	eventID, ok := lh.currentEventID(w, r)

	if !ok {
		return
	}

	var submission LapEntrySubmission

	if !lh.decodeBody(w, r, &submission) {
		return
	}

	entry, err := lh.entryManager.Create(eventID, submission)

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, entry)
}

func (lh *LapEntryHandler) createForEvent(w http.ResponseWriter, r *http.Request) {
	event, err := lh.eventManager.Find(chi.URLParam(r, "eventID"))

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	var submission LapEntrySubmission

	if !lh.decodeBody(w, r, &submission) {
		return
	}

	entry, err := lh.entryManager.Create(event.ID, submission)

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, map[string]interface{}{"entry": entry})
}

func (lh *LapEntryHandler) update(w http.ResponseWriter, r *http.Request) {
	var update LapEntryUpdate

	if !lh.decodeBody(w, r, &update) {
		return
	}

	entry, err := lh.entryManager.Update(chi.URLParam(r, "id"), update)

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	// rank and gap are only authoritative on the listing
	lh.respondJSON(w, http.StatusOK, &RankedEntry{LapEntry: *entry})
}

func (lh *LapEntryHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := lh.entryManager.Delete(chi.URLParam(r, "id")); err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, map[string]string{"message": "Lap entry deleted successfully"})
}

func (lh *LapEntryHandler) deleteForEvent(w http.ResponseWriter, r *http.Request) {
	entry, err := lh.entryManager.Find(chi.URLParam(r, "id"))

	if err != nil {
		lh.respondError(w, r, err)
		return
	}

	if entry.EventID != chi.URLParam(r, "eventID") {
		lh.respondError(w, r, ErrLapEntryNotFound)
		return
	}

	if err := lh.entryManager.Delete(entry.ID); err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, map[string]string{"message": "Lap entry deleted successfully"})
}

func (lh *LapEntryHandler) deleteAll(w http.ResponseWriter, r *http.Request) {
	eventID, ok := lh.currentEventID(w, r)

	if !ok {
		return
	}

	if _, err := lh.entryManager.DeleteAll(eventID); err != nil {
		lh.respondError(w, r, err)
		return
	}

	lh.respondJSON(w, http.StatusOK, map[string]string{"message": "All lap entries deleted successfully"})
}

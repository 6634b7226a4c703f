package fastlap

import (
	"net/http"

	"github.com/go-chi/chi"
)

type TrackHandler struct {
	*BaseHandler

	trackManager *TrackManager
}

func NewTrackHandler(baseHandler *BaseHandler, trackManager *TrackManager) *TrackHandler {
	return &TrackHandler{
		BaseHandler:  baseHandler,
		trackManager: trackManager,
	}
}

func (th *TrackHandler) list(w http.ResponseWriter, r *http.Request) {
	tracks, err := th.trackManager.List()

	if err != nil {
		th.respondError(w, r, err)
		return
	}

	if tracks == nil {
		tracks = []*Track{}
	}

	th.respondJSON(w, http.StatusOK, tracks)
}

func (th *TrackHandler) create(w http.ResponseWriter, r *http.Request) {
	var request TrackRequest

	if !th.decodeBody(w, r, &request) {
		return
	}

	track, err := th.trackManager.Create(request)

	if err != nil {
		th.respondError(w, r, err)
		return
	}

	th.respondJSON(w, http.StatusOK, track)
}

func (th *TrackHandler) update(w http.ResponseWriter, r *http.Request) {
	var request TrackRequest

	if !th.decodeBody(w, r, &request) {
		return
	}

	track, err := th.trackManager.Update(chi.URLParam(r, "id"), request)

	if err != nil {
		th.respondError(w, r, err)
		return
	}

	th.respondJSON(w, http.StatusOK, track)
}

func (th *TrackHandler) delete(w http.ResponseWriter, r *http.Request) {
	if err := th.trackManager.Delete(chi.URLParam(r, "id")); err != nil {
		th.respondError(w, r, err)
		return
	}

	th.respondJSON(w, http.StatusOK, map[string]string{"message": "Strecke gelöscht"})
}

package fastlap

import (
	"net/http"
)

type DesignHandler struct {
	*BaseHandler

	designManager *DesignManager
}

func NewDesignHandler(baseHandler *BaseHandler, designManager *DesignManager) *DesignHandler {
	return &DesignHandler{
		BaseHandler:   baseHandler,
		designManager: designManager,
	}
}

func (dh *DesignHandler) get(w http.ResponseWriter, r *http.Request) {
	settings, err := dh.designManager.Load()

	if err != nil {
		dh.respondError(w, r, err)
		return
	}

	dh.respondJSON(w, http.StatusOK, settings)
}

func (dh *DesignHandler) update(w http.ResponseWriter, r *http.Request) {
	var update DesignSettingsUpdate

	if !dh.decodeBody(w, r, &update) {
		return
	}

	settings, err := dh.designManager.Update(update)

	if err != nil {
		dh.respondError(w, r, err)
		return
	}

	dh.respondJSON(w, http.StatusOK, settings)
}

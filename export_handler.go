package fastlap

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi"
)

type ExportHandler struct {
	*BaseHandler

	exporter     *Exporter
	eventManager *EventManager
}

func NewExportHandler(baseHandler *BaseHandler, exporter *Exporter, eventManager *EventManager) *ExportHandler {
	return &ExportHandler{
		BaseHandler:  baseHandler,
		exporter:     exporter,
		eventManager: eventManager,
	}
}

func (xh *ExportHandler) resolveEvent(r *http.Request) (*Event, error) {
	if id := chi.URLParam(r, "eventID"); id != "" {
		return xh.eventManager.Find(id)
	}

	return xh.eventManager.Current()
}

func (xh *ExportHandler) csv(w http.ResponseWriter, r *http.Request) {
	event, err := xh.resolveEvent(r)

	if err != nil {
		xh.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ergebnis-%s.csv"`, event.Slug))

	if err := xh.exporter.WriteCSV(w, event.ID); err != nil {
		logRequestError(r, err)
	}
}

func (xh *ExportHandler) xlsx(w http.ResponseWriter, r *http.Request) {
	event, err := xh.resolveEvent(r)

	if err != nil {
		xh.respondError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="ergebnis-%s.xlsx"`, event.Slug))

	if err := xh.exporter.WriteXLSX(w, event.ID); err != nil {
		logRequestError(r, err)
	}
}

func (xh *ExportHandler) pdfData(w http.ResponseWriter, r *http.Request) {
	event, err := xh.resolveEvent(r)

	if err != nil {
		xh.respondError(w, r, err)
		return
	}

	export, err := xh.exporter.PDFData(event.ID)

	if err != nil {
		xh.respondError(w, r, err)
		return
	}

	xh.respondJSON(w, http.StatusOK, map[string]interface{}{
		"event":  event,
		"export": export,
	})
}

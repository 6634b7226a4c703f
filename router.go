package fastlap

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Handlers bundles everything Router needs. Built by NewServer.
type Handlers struct {
	Auth     *AuthHandler
	LapEntry *LapEntryHandler
	Event    *EventHandler
	Track    *TrackHandler
	Design   *DesignHandler
	SMTP     *SMTPHandler
	Export   *ExportHandler
	Upload   *UploadHandler
	Backup   *BackupHandler
}

func Router(handlers *Handlers, corsOrigins []string) http.Handler {
	router := chi.NewRouter()

	router.Use(MetricsMiddleware)
	router.Use(corsMiddleware(corsOrigins))

	router.Get("/api/", func(w http.ResponseWriter, r *http.Request) {
		handlers.Auth.respondJSON(w, http.StatusOK, map[string]string{
			"message": "F1 Fast Lap Challenge API",
		})
	})

	// public
	router.Get("/api/laps", handlers.LapEntry.list)
	router.Post("/api/laps", handlers.LapEntry.create)
	router.Get("/api/laps/{id}", handlers.LapEntry.get)
	router.Get("/api/export/pdf", handlers.Export.pdfData)

	router.Get("/api/events", handlers.Event.overview)
	router.Get("/api/events/{slug}", handlers.Event.detail)
	router.Get("/api/events/{slug}/qr", handlers.Event.qr)
	router.Get("/api/events/{slug}/live", handlers.Event.live)
	router.Post("/api/events/{eventID}/laps", handlers.LapEntry.createForEvent)

	router.Get("/api/tracks", handlers.Track.list)
	router.Get("/api/event/status", handlers.Event.status)
	router.Get("/api/design", handlers.Design.get)

	// auth
	router.Get("/api/auth/has-admin", handlers.Auth.hasAdmin)
	router.Post("/api/auth/register", handlers.Auth.register)
	router.Post("/api/auth/login", handlers.Auth.login)

	// admin
	router.Group(func(r chi.Router) {
		r.Use(handlers.Auth.RequireAdmin)

		r.Get("/api/auth/check", handlers.Auth.check)
		r.Post("/api/auth/logout", handlers.Auth.logout)

		r.Post("/api/admin/laps", handlers.LapEntry.create)
		r.Put("/api/admin/laps/{id}", handlers.LapEntry.update)
		r.Delete("/api/admin/laps/{id}", handlers.LapEntry.delete)
		r.Delete("/api/admin/laps", handlers.LapEntry.deleteAll)

		r.Post("/api/admin/events", handlers.Event.create)
		r.Put("/api/admin/events/{id}", handlers.Event.update)
		r.Delete("/api/admin/events/{id}", handlers.Event.delete)
		r.Put("/api/admin/events/{id}/status", handlers.Event.setStatus)
		r.Put("/api/admin/event", handlers.Event.updateCurrent)
		r.Delete("/api/admin/events/{eventID}/laps/{id}", handlers.LapEntry.deleteForEvent)

		r.Get("/api/admin/events/{eventID}/export/csv", handlers.Export.csv)
		r.Get("/api/admin/events/{eventID}/export/xlsx", handlers.Export.xlsx)
		r.Get("/api/admin/events/{eventID}/export/pdf", handlers.Export.pdfData)
		r.Get("/api/export/csv", handlers.Export.csv)

		r.Post("/api/admin/tracks", handlers.Track.create)
		r.Put("/api/admin/tracks/{id}", handlers.Track.update)
		r.Delete("/api/admin/tracks/{id}", handlers.Track.delete)

		r.Put("/api/admin/design", handlers.Design.update)

		r.Get("/api/admin/smtp", handlers.SMTP.get)
		r.Put("/api/admin/smtp", handlers.SMTP.update)
		r.Post("/api/admin/smtp/test", handlers.SMTP.test)

		r.Post("/api/upload", handlers.Upload.upload)
		r.Get("/api/admin/backup", handlers.Backup.download)
	})

	router.Handle("/metrics", promhttp.Handler())
	router.Mount(handlers.Upload.servePrefix, handlers.Upload.serve())

	router.NotFound(func(w http.ResponseWriter, r *http.Request) {
		handlers.Auth.respondDetail(w, http.StatusNotFound, "Not Found")
	})

	return router
}

// corsMiddleware answers preflights and stamps the allowed origin so the
// browser front-end can live on a different host.
func corsMiddleware(origins []string) func(http.Handler) http.Handler {
	allowAll := len(origins) == 0

	allowed := make(map[string]bool, len(origins))

	for _, origin := range origins {
		if origin == "*" {
			allowAll = true
		}

		allowed[origin] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")

			if origin != "" && (allowAll || allowed[origin]) {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
			}

			if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
				w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", strings.Join([]string{"Authorization", "Content-Type"}, ", "))
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

package fastlap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Server owns the store, the managers and the HTTP listener.
type Server struct {
	config *Configuration

	store  Store
	server *http.Server

	entryManager        *LapEntryManager
	eventManager        *EventManager
	trackManager        *TrackManager
	designManager       *DesignManager
	accountManager      *AccountManager
	notificationManager *NotificationManager
	liveHub             *LiveHub
	exporter            *Exporter
}

func NewServer(config *Configuration) (*Server, error) {
	store, err := config.OpenStore()

	if err != nil {
		return nil, errors.Wrap(err, "could not open store")
	}

	entryManager := NewLapEntryManager(store, config.Leaderboard.GapOnCreate)
	eventManager := NewEventManager(store, entryManager)
	trackManager := NewTrackManager(store)
	designManager := NewDesignManager(store)
	accountManager := NewAccountManager(store)
	notificationManager := NewNotificationManager(store, entryManager)
	liveHub := NewLiveHub(entryManager)
	exporter := NewExporter(entryManager)

	eventManager.OnFinished(notificationManager.NotifyEventFinished)

	if config.Accounts.SeedDefaultAdmin {
		if err := accountManager.SeedDefaultAdmin(config.Accounts.DefaultUsername, config.Accounts.DefaultPassword); err != nil {
			return nil, errors.Wrap(err, "could not seed default admin account")
		}
	}

	return &Server{
		config:              config,
		store:               store,
		entryManager:        entryManager,
		eventManager:        eventManager,
		trackManager:        trackManager,
		designManager:       designManager,
		accountManager:      accountManager,
		notificationManager: notificationManager,
		liveHub:             liveHub,
		exporter:            exporter,
	}, nil
}

func (s *Server) handlers() *Handlers {
	baseHandler := NewBaseHandler()

	return &Handlers{
		Auth:     NewAuthHandler(baseHandler, s.accountManager),
		LapEntry: NewLapEntryHandler(baseHandler, s.entryManager, s.eventManager),
		Event:    NewEventHandler(baseHandler, s.eventManager, s.liveHub),
		Track:    NewTrackHandler(baseHandler, s.trackManager),
		Design:   NewDesignHandler(baseHandler, s.designManager),
		SMTP:     NewSMTPHandler(baseHandler, s.notificationManager),
		Export:   NewExportHandler(baseHandler, s.exporter, s.eventManager),
		Upload:   NewUploadHandler(baseHandler, s.config.Uploads),
		Backup:   NewBackupHandler(baseHandler, s.config.Store.Path),
	}
}

// Run blocks until the listener stops.
func (s *Server) Run() error {
	addr := fmt.Sprintf("%s:%d", s.config.HTTP.Hostname, s.config.HTTP.Port)

	s.server = &http.Server{
		Addr:    addr,
		Handler: Router(s.handlers(), s.config.HTTP.CORSOrigins),
	}

	logrus.Infof("HTTP server listening on %s", addr)

	err := s.server.ListenAndServe()

	if err == http.ErrServerClosed {
		return nil
	}

	return err
}

func (s *Server) Stop() error {
	if s.server != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		if err := s.server.Shutdown(ctx); err != nil {
			logrus.WithError(err).Error("Could not shut down HTTP server cleanly")
		}
	}

	return s.store.Close()
}

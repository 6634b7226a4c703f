package fastlap

import (
	"context"
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/nikoksr/notify"
	"github.com/nikoksr/notify/service/mail"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	ErrSMTPNotConfigured  = errors.New("fastlap: SMTP ist nicht konfiguriert")
	ErrSMTPFromMissing    = errors.New("fastlap: SMTP Absender-Adresse (from_email) fehlt")
	ErrSMTPHostMissing    = errors.New("fastlap: SMTP Host fehlt")
	ErrNoTestRecipient    = errors.New("fastlap: keine Empfänger-Adresse für die Test-E-Mail")
	errNoEntriesWithEmail = errors.New("fastlap: no entries with a contact address")
)

// SMTPOptions is the stored mail configuration.
type SMTPOptions struct {
	Enabled   bool   `json:"enabled"`
	Host      string `json:"host"`
	Port      int    `json:"port"`
	Username  string `json:"username"`
	Password  string `json:"password"`
	FromEmail string `json:"from_email"`
}

const sendTimeout = 30 * time.Second

// NotificationManager delivers leaderboard emails through the stored SMTP
// options. The results table in the body is the exact ranked list the public
// leaderboard shows — it is rendered from LapEntryManager.List, never
// recomputed.
type NotificationManager struct {
	store        Store
	entryManager *LapEntryManager
}

func NewNotificationManager(store Store, entryManager *LapEntryManager) *NotificationManager {
	return &NotificationManager{
		store:        store,
		entryManager: entryManager,
	}
}

func (nm *NotificationManager) LoadOptions() (*SMTPOptions, error) {
	return nm.store.LoadSMTPOptions()
}

func (nm *NotificationManager) SaveOptions(options *SMTPOptions) error {
	return nm.store.UpsertSMTPOptions(options)
}

func (nm *NotificationManager) checkOptions(options *SMTPOptions) error {
	if !options.Enabled {
		return ErrSMTPNotConfigured
	}

	if options.Host == "" {
		return ErrSMTPHostMissing
	}

	if options.FromEmail == "" {
		return ErrSMTPFromMissing
	}

	return nil
}

func (nm *NotificationManager) send(ctx context.Context, options *SMTPOptions, subject, htmlBody string, recipients []string) error {
	port := options.Port

	if port == 0 {
		port = 587
	}

	service := mail.New(options.FromEmail, fmt.Sprintf("%s:%d", options.Host, port))

	if options.Username != "" {
		service.AuthenticateSMTP("", options.Username, options.Password, options.Host)
	}

	service.AddReceivers(recipients...)
	service.BodyFormat(mail.HTML)

	notifier := notify.New()
	notifier.UseServices(service)

	ctx, cancel := context.WithTimeout(ctx, sendTimeout)
	defer cancel()

	return notifier.Send(ctx, subject, htmlBody)
}

// SendTest delivers a short test mail so admins can verify their SMTP
// settings. The recipient defaults to the configured from-address.
func (nm *NotificationManager) SendTest(ctx context.Context, recipient string) error {
	options, err := nm.store.LoadSMTPOptions()

	if err != nil {
		return err
	}

	if err := nm.checkOptions(options); err != nil {
		return err
	}

	if recipient == "" {
		recipient = options.FromEmail
	}

	if recipient == "" {
		return ErrNoTestRecipient
	}

	return nm.send(ctx, options, "Fast Lap Challenge – Test-E-Mail",
		"<p>Die SMTP-Einstellungen funktionieren.</p>", []string{recipient})
}

// SendEventResults mails the final leaderboard of a finished event to every
// entry that left a contact address.
func (nm *NotificationManager) SendEventResults(ctx context.Context, event *Event) error {
	options, err := nm.store.LoadSMTPOptions()

	if err != nil {
		return err
	}

	if err := nm.checkOptions(options); err != nil {
		return err
	}

	entries, err := nm.entryManager.List(event.ID)

	if err != nil {
		return err
	}

	var recipients []string

	for _, entry := range entries {
		if entry.Email != "" {
			recipients = append(recipients, entry.Email)
		}
	}

	if len(recipients) == 0 {
		return errNoEntriesWithEmail
	}

	subject := fmt.Sprintf("Ergebnisse: %s", event.Name)
	body := fmt.Sprintf("<h2>%s – Endstand</h2>%s", event.Name, renderResultsTable(entries))

	return nm.send(ctx, options, subject, body, recipients)
}

// NotifyEventFinished is registered as the EventManager finish callback. It
// runs in the background and only logs failures: losing a results mail must
// never roll back a status change.
func (nm *NotificationManager) NotifyEventFinished(event *Event) {
	err := nm.SendEventResults(context.Background(), event)

	if err == errNoEntriesWithEmail || err == ErrSMTPNotConfigured {
		logrus.Debugf("Skipping results mail for event %s: %s", event.Slug, err)
		return
	}

	if err != nil {
		logrus.WithError(err).Errorf("Could not send results mail for event %s", event.Slug)
		return
	}

	logrus.Infof("Results mail sent for event %s", event.Slug)
}

func renderResultsTable(entries []*RankedEntry) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"Platz", "Fahrer", "Team", "Rundenzeit", "Abstand"})

	for _, entry := range entries {
		t.AppendRow(table.Row{entry.Rank, entry.DriverName, entry.Team, entry.DisplayTime, entry.Gap})
	}

	return t.RenderHTML()
}

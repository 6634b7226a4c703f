package fastlap

import (
	"net/http"
)

type SMTPHandler struct {
	*BaseHandler

	notificationManager *NotificationManager
}

func NewSMTPHandler(baseHandler *BaseHandler, notificationManager *NotificationManager) *SMTPHandler {
	return &SMTPHandler{
		BaseHandler:         baseHandler,
		notificationManager: notificationManager,
	}
}

func (sh *SMTPHandler) get(w http.ResponseWriter, r *http.Request) {
	options, err := sh.notificationManager.LoadOptions()

	if err != nil {
		sh.respondError(w, r, err)
		return
	}

	// the password never leaves the server
	options.Password = ""

	sh.respondJSON(w, http.StatusOK, options)
}

func (sh *SMTPHandler) update(w http.ResponseWriter, r *http.Request) {
	current, err := sh.notificationManager.LoadOptions()

	if err != nil {
		sh.respondError(w, r, err)
		return
	}

	var options SMTPOptions

	if !sh.decodeBody(w, r, &options) {
		return
	}

	// an empty password in the payload keeps the stored one
	if options.Password == "" {
		options.Password = current.Password
	}

	if err := sh.notificationManager.SaveOptions(&options); err != nil {
		sh.respondError(w, r, err)
		return
	}

	sh.respondDetail(w, http.StatusOK, "SMTP-Einstellungen gespeichert")
}

type smtpTestRequest struct {
	Recipient string `json:"recipient"`
}

func (sh *SMTPHandler) test(w http.ResponseWriter, r *http.Request) {
	var request smtpTestRequest

	if r.ContentLength > 0 && !sh.decodeBody(w, r, &request) {
		return
	}

	if err := sh.notificationManager.SendTest(r.Context(), request.Recipient); err != nil {
		sh.respondError(w, r, err)
		return
	}

	sh.respondJSON(w, http.StatusOK, map[string]string{"message": "Test-E-Mail gesendet"})
}

// internal/services/notification_service.go
package services

import (
	"bytes"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/brydge/brydge-backend/internal/config"
	"github.com/brydge/brydge-backend/internal/models"
)

// NotificationService emails the other party when a negotiation moves.
// All sends are best-effort: a failed email never fails the transition
// that triggered it.
type NotificationService struct {
	db     *gorm.DB
	config *config.Config
}

type EmailTemplate struct {
	Subject string
	Body    string
}

func NewNotificationService(db *gorm.DB, config *config.Config) *NotificationService {
	return &NotificationService{
		db:     db,
		config: config,
	}
}

func (s *NotificationService) SendClearanceRequestedNotification(clearance *models.ClearanceRequest) {
	rightsHolder, err := s.lookupUser(clearance.RightsHolderID.String())
	if err != nil {
		logrus.WithError(err).Warn("Skipping clearance-requested notification")
		return
	}

	data := map[string]interface{}{
		"Username":         rightsHolder.Username,
		"UsageDescription": clearance.UsageDescription,
		"RequestURL":       fmt.Sprintf("%s/clearances/%s", s.config.Frontend.BaseURL, clearance.ID),
	}

	s.deliver(rightsHolder.Email, "New clearance request for your work", "clearance_requested", data)
}

func (s *NotificationService) SendClearanceRespondedNotification(clearance *models.ClearanceRequest) {
	requester, err := s.lookupUser(clearance.RequesterID.String())
	if err != nil {
		logrus.WithError(err).Warn("Skipping clearance-responded notification")
		return
	}

	data := map[string]interface{}{
		"Username":   requester.Username,
		"Status":     string(clearance.Status),
		"TermsOfUse": clearance.TermsOfUse,
		"Notes":      clearance.Notes,
		"RequestURL": fmt.Sprintf("%s/clearances/%s", s.config.Frontend.BaseURL, clearance.ID),
	}

	s.deliver(requester.Email, fmt.Sprintf("Clearance request %s", clearance.Status), "clearance_responded", data)
}

func (s *NotificationService) SendCounterProposalNotification(clearance *models.ClearanceRequest) {
	rightsHolder, err := s.lookupUser(clearance.RightsHolderID.String())
	if err != nil {
		logrus.WithError(err).Warn("Skipping counter-proposal notification")
		return
	}

	data := map[string]interface{}{
		"Username":        rightsHolder.Username,
		"CounterProposal": clearance.CounterProposal,
		"RequestURL":      fmt.Sprintf("%s/clearances/%s", s.config.Frontend.BaseURL, clearance.ID),
	}

	s.deliver(rightsHolder.Email, "Counter proposal received", "counter_proposal", data)
}

func (s *NotificationService) SendClearanceFinalizedNotification(clearance *models.ClearanceRequest) {
	rightsHolder, err := s.lookupUser(clearance.RightsHolderID.String())
	if err != nil {
		logrus.WithError(err).Warn("Skipping clearance-finalized notification")
		return
	}

	data := map[string]interface{}{
		"Username":   rightsHolder.Username,
		"TermsOfUse": clearance.TermsOfUse,
		"RequestURL": fmt.Sprintf("%s/clearances/%s", s.config.Frontend.BaseURL, clearance.ID),
	}

	s.deliver(rightsHolder.Email, "Clearance finalized", "clearance_finalized", data)
}

func (s *NotificationService) lookupUser(id string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", id).Error; err != nil {
		return nil, fmt.Errorf("notification recipient not found: %w", err)
	}
	return &user, nil
}

func (s *NotificationService) deliver(to, subject, templateName string, data map[string]interface{}) {
	tmpl := s.getEmailTemplate(templateName)

	body, err := s.renderTemplate(tmpl.Body, data)
	if err != nil {
		logrus.WithError(err).WithField("template", templateName).Error("Failed to render email template")
		return
	}

	if err := s.sendEmail(to, subject, body); err != nil {
		logrus.WithError(err).WithField("to", to).Error("Failed to send notification email")
	}
}

func (s *NotificationService) getEmailTemplate(name string) EmailTemplate {
	templates := map[string]EmailTemplate{
		"clearance_requested": {
			Subject: "New clearance request for your work",
			Body: `<p>Hi {{.Username}},</p>
<p>A musician has requested clearance to use one of your works:</p>
<blockquote>{{.UsageDescription}}</blockquote>
<p><a href="{{.RequestURL}}">Review the request</a></p>`,
		},
		"clearance_responded": {
			Subject: "Your clearance request was updated",
			Body: `<p>Hi {{.Username}},</p>
<p>The rights holder has responded to your clearance request. Status: <strong>{{.Status}}</strong>.</p>
{{if .TermsOfUse}}<p>Proposed terms: {{.TermsOfUse}}</p>{{end}}
{{if .Notes}}<p>Notes: {{.Notes}}</p>{{end}}
<p><a href="{{.RequestURL}}">View the request</a></p>`,
		},
		"counter_proposal": {
			Subject: "Counter proposal received",
			Body: `<p>Hi {{.Username}},</p>
<p>The requester has countered your proposed terms:</p>
<blockquote>{{.CounterProposal}}</blockquote>
<p><a href="{{.RequestURL}}">Review the counter proposal</a></p>`,
		},
		"clearance_finalized": {
			Subject: "Clearance finalized",
			Body: `<p>Hi {{.Username}},</p>
<p>The requester accepted your terms and the clearance is now finalized.</p>
{{if .TermsOfUse}}<p>Agreed terms: {{.TermsOfUse}}</p>{{end}}
<p><a href="{{.RequestURL}}">View the agreement</a></p>`,
		},
	}

	if tmpl, ok := templates[name]; ok {
		return tmpl
	}
	return EmailTemplate{Subject: "Notification", Body: "<p>{{.Username}}, you have a new notification.</p>"}
}

func (s *NotificationService) renderTemplate(body string, data map[string]interface{}) (string, error) {
	tmpl, err := template.New("email").Parse(body)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}

func (s *NotificationService) sendEmail(to, subject, htmlBody string) error {
	if s.config.Email.SMTPUsername == "" {
		// Local development: log instead of sending
		logrus.WithFields(logrus.Fields{
			"to":      to,
			"subject": subject,
		}).Info("Email sending skipped (SMTP not configured)")
		return nil
	}

	auth := smtp.PlainAuth("", s.config.Email.SMTPUsername, s.config.Email.SMTPPassword, s.config.Email.SMTPHost)

	msg := fmt.Sprintf("From: %s <%s>\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/html; charset=UTF-8\r\n\r\n%s",
		s.config.Email.FromName, s.config.Email.FromEmail, to, subject, htmlBody)

	addr := fmt.Sprintf("%s:%s", s.config.Email.SMTPHost, s.config.Email.SMTPPort)
	return smtp.SendMail(addr, auth, s.config.Email.FromEmail, []string{to}, []byte(msg))
}

package services

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/favilaxlr/ProyectoCasasBackend/internal/config"
	"github.com/favilaxlr/ProyectoCasasBackend/internal/utils"
)

// ---------------------------------------------------------------------
// Gateway interfaces
// ---------------------------------------------------------------------
//
// SMS and email dispatch sit behind small interfaces so the workflow
// services can be exercised without live carrier accounts. The live
// implementations wrap Twilio and SendGrid; the mock ones only log.

type SMSSender interface {
	SendSMS(to, body string) error
}

type EmailSender interface {
	SendEmail(toName, toEmail, subject, plainBody, htmlBody string) error
}

// NewSMSSender picks the live Twilio client when credentials are
// configured, the logging mock otherwise.
func NewSMSSender(cfg *config.Config) SMSSender {
	if !cfg.TwilioEnabled() {
		return &mockSMSSender{}
	}
	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.TwilioAccountSID,
		Password: cfg.TwilioAuthToken,
	})
	return &twilioSMSSender{client: client, fromPhone: cfg.TwilioFromPhone}
}

// NewEmailSender picks the live SendGrid client when credentials are
// configured, the logging mock otherwise.
func NewEmailSender(cfg *config.Config) EmailSender {
	if !cfg.SendGridEnabled() {
		return &mockEmailSender{}
	}
	return &sendgridEmailSender{
		client:   sendgrid.NewSendClient(cfg.SendGridAPIKey),
		fromName: cfg.OrganizationName,
		from:     cfg.SendGridFrom,
		sandbox:  cfg.SendGridSandbox,
	}
}

// ---------------------------------------------------------------------
// Twilio
// ---------------------------------------------------------------------

type twilioSMSSender struct {
	client    *twilio.RestClient
	fromPhone string
}

func (t *twilioSMSSender) SendSMS(to, body string) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetTo(to)
	params.SetFrom(t.fromPhone)
	params.SetBody(body)

	if _, err := t.client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("twilio send to %s: %w", to, err)
	}
	return nil
}

// ---------------------------------------------------------------------
// SendGrid
// ---------------------------------------------------------------------

type sendgridEmailSender struct {
	client   *sendgrid.Client
	fromName string
	from     string
	sandbox  bool
}

func (s *sendgridEmailSender) SendEmail(toName, toEmail, subject, plainBody, htmlBody string) error {
	from := mail.NewEmail(s.fromName, s.from)
	to := mail.NewEmail(toName, toEmail)
	msg := mail.NewSingleEmail(from, subject, to, plainBody, htmlBody)
	msg.TrackingSettings = &mail.TrackingSettings{
		ClickTracking: &mail.ClickTrackingSetting{
			Enable: utils.Ptr(false),
		},
	}
	if s.sandbox {
		ms := mail.NewMailSettings()
		ms.SetSandboxMode(mail.NewSetting(true))
		msg.MailSettings = ms
	}

	resp, err := s.client.Send(msg)
	if err != nil {
		return fmt.Errorf("sendgrid send to %s: %w", toEmail, err)
	}
	if resp.StatusCode >= 400 {
		return fmt.Errorf("sendgrid send to %s: status %d", toEmail, resp.StatusCode)
	}
	return nil
}

// ---------------------------------------------------------------------
// Mocks
// ---------------------------------------------------------------------

type mockSMSSender struct{}

func (m *mockSMSSender) SendSMS(to, body string) error {
	utils.Logger.Infof("[mock sms] to=%s body=%q", to, body)
	return nil
}

type mockEmailSender struct{}

func (m *mockEmailSender) SendEmail(toName, toEmail, subject, plainBody, _ string) error {
	utils.Logger.Infof("[mock email] to=%s <%s> subject=%q body=%q", toName, toEmail, subject, plainBody)
	return nil
}

package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"strings"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/validator"
)

const TemplateAlertDigest = "alert-digest.html"

// emailTemplates holds the HTML templates rendered by SendEmailWithTemplate.
var emailTemplates = map[string]string{
	TemplateAlertDigest: `<!DOCTYPE html>
<html>
<head>
    <meta http-equiv="Content-Type" content="text/html; charset=UTF-8" />
    <title>{{.title}}</title>
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, Helvetica, Arial, sans-serif; font-size: 14px; line-height: 1.6; color: #333;">
    <h2 style="margin-bottom: 4px;">{{.title}}</h2>
    <p style="color: #666; margin-top: 0;">{{.generated_on}} &middot; {{.high}} high, {{.medium}} medium</p>
    <table cellpadding="6" cellspacing="0" style="border-collapse: collapse; width: 100%;">
        <tr style="background: #f4f4f5; text-align: left;">
            <th>Severity</th><th>Alert</th><th>Details</th><th>Date</th>
        </tr>
        {{range .alerts}}
        <tr style="border-bottom: 1px solid #e4e4e7;">
            <td style="text-transform: uppercase; font-weight: bold;">{{.Severity}}</td>
            <td>{{.Title}}</td>
            <td>{{.Subtitle}}</td>
            <td>{{.Date}}</td>
        </tr>
        {{end}}
    </table>
    {{if .truncated}}<p style="color: #666;">{{.truncated}} more alerts are not shown.</p>{{end}}
</body>
</html>`,
}

// SendEmailRequest is the {to, subject, html} message accepted by the
// mailer. To may hold several comma separated addresses.
type SendEmailRequest struct {
	FromAddress string `json:"from,omitempty" validate:"omitempty,email"`
	ToAddress   string `json:"to" validate:"required"`
	Subject     string `json:"subject" validate:"required"`
	HTML        string `json:"html,omitempty"`
	Text        string `json:"text,omitempty"`
}

func (r *SendEmailRequest) Validate() error {
	if err := validator.ValidateRequest(r); err != nil {
		return err
	}
	if r.HTML == "" && r.Text == "" {
		return ierr.NewError("html or text body is required").
			WithHint("Email body is empty").
			Mark(ierr.ErrValidation)
	}
	for _, addr := range splitAddresses(r.ToAddress) {
		if err := validator.ValidateVar(addr, "email"); err != nil {
			return ierr.WithError(err).
				WithHintf("Invalid recipient %s", addr).
				Mark(ierr.ErrValidation)
		}
	}
	return nil
}

type SendEmailWithTemplateRequest struct {
	FromAddress  string                 `json:"from,omitempty"`
	ToAddress    string                 `json:"to" validate:"required"`
	Subject      string                 `json:"subject" validate:"required"`
	TemplatePath string                 `json:"template" validate:"required"`
	Data         map[string]interface{} `json:"data,omitempty"`
}

// SendEmailResponse mirrors the {ok, error} result callers expect.
type SendEmailResponse struct {
	OK        bool   `json:"ok"`
	MessageID string `json:"message_id,omitempty"`
	Error     string `json:"error,omitempty"`
}

// Sender is what services use to send mail.
type Sender interface {
	SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error)
	SendEmailWithTemplate(ctx context.Context, req SendEmailWithTemplateRequest) (*SendEmailResponse, error)
}

// Email renders templates and sends through EmailClient.
type Email struct {
	client *EmailClient
	logger *logger.Logger
}

func NewEmail(client *EmailClient, log *logger.Logger) *Email {
	return &Email{client: client, logger: log}
}

func (s *Email) SendEmail(ctx context.Context, req SendEmailRequest) (*SendEmailResponse, error) {
	if err := req.Validate(); err != nil {
		return &SendEmailResponse{OK: false, Error: ierr.HintOf(err)}, err
	}

	if !s.client.IsEnabled() {
		s.logger.Warnw("email client is disabled, skipping email send",
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{OK: false, Error: "email client is disabled"}, nil
	}

	// configured sender wins over the request
	from := s.client.GetFromAddress()
	if from == "" {
		from = req.FromAddress
	}

	messageID, err := s.client.SendEmail(ctx, from, splitAddresses(req.ToAddress), req.Subject, req.HTML, req.Text)
	if err != nil {
		s.logger.Errorw("failed to send email",
			"error", err,
			"to", req.ToAddress,
			"subject", req.Subject,
		)
		return &SendEmailResponse{OK: false, Error: err.Error()}, err
	}

	s.logger.Infow("email sent",
		"message_id", messageID,
		"to", req.ToAddress,
		"subject", req.Subject,
	)
	return &SendEmailResponse{OK: true, MessageID: messageID}, nil
}

func (s *Email) SendEmailWithTemplate(ctx context.Context, req SendEmailWithTemplateRequest) (*SendEmailResponse, error) {
	if err := validator.ValidateRequest(&req); err != nil {
		return &SendEmailResponse{OK: false, Error: ierr.HintOf(err)}, err
	}

	html, err := RenderTemplate(req.TemplatePath, req.Data)
	if err != nil {
		s.logger.Errorw("failed to render email template",
			"error", err,
			"template", req.TemplatePath,
		)
		return &SendEmailResponse{OK: false, Error: err.Error()}, err
	}

	return s.SendEmail(ctx, SendEmailRequest{
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Subject:     req.Subject,
		HTML:        html,
	})
}

// RenderTemplate executes a named template with html/template escaping.
func RenderTemplate(name string, data map[string]interface{}) (string, error) {
	content, ok := emailTemplates[name]
	if !ok {
		return "", ierr.NewErrorf("template not found: %s", name).
			WithHint("Unknown email template").
			Mark(ierr.ErrNotFound)
	}

	tmpl, err := template.New(name).Parse(content)
	if err != nil {
		return "", fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.String(), nil
}

func splitAddresses(to string) []string {
	var out []string
	for _, part := range strings.Split(to, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

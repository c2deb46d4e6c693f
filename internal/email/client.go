package email

import (
	"context"
	"net/http"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/hashicorp/go-retryablehttp"
	"github.com/resend/resend-go/v2"
)

// EmailClient talks to Resend over a retrying HTTP client.
type EmailClient struct {
	client      *resend.Client
	fromAddress string
	replyTo     string
	enabled     bool
}

// NewEmailClient builds a client from config. A disabled client is returned
// when email is switched off or the API key is missing.
func NewEmailClient(cfg config.EmailConfig, log *logger.Logger) *EmailClient {
	if !cfg.Enabled || cfg.ResendAPIKey == "" {
		return &EmailClient{enabled: false, fromAddress: cfg.FromAddress}
	}

	rc := retryablehttp.NewClient()
	rc.RetryMax = cfg.RetryMax
	rc.Logger = log.GetRetryableHTTPLogger()
	if cfg.Timeout > 0 {
		rc.HTTPClient.Timeout = cfg.Timeout
	}

	return newEmailClient(rc.StandardClient(), cfg)
}

func newEmailClient(httpClient *http.Client, cfg config.EmailConfig) *EmailClient {
	return &EmailClient{
		client:      resend.NewCustomClient(httpClient, cfg.ResendAPIKey),
		fromAddress: cfg.FromAddress,
		replyTo:     cfg.ReplyTo,
		enabled:     true,
	}
}

func (c *EmailClient) IsEnabled() bool {
	return c.enabled
}

func (c *EmailClient) GetFromAddress() string {
	return c.fromAddress
}

// SendEmail sends one message and returns the provider message id.
func (c *EmailClient) SendEmail(ctx context.Context, from string, to []string, subject, html, text string) (string, error) {
	if !c.enabled {
		return "", ierr.NewError("email client is disabled").
			WithHint("Email sending is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	resp, err := c.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    from,
		To:      to,
		Subject: subject,
		Html:    html,
		Text:    text,
		ReplyTo: c.replyTo,
	})
	if err != nil {
		return "", ierr.WithError(err).
			WithHint("Failed to send email").
			WithReportableDetails(map[string]any{"to": to}).
			Mark(ierr.ErrHTTPClient)
	}
	return resp.Id, nil
}

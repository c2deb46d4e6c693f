package email

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rewriteTransport sends every request to the test server.
type rewriteTransport struct {
	target string
}

func (t rewriteTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	u := *req.URL
	u.Scheme = "http"
	u.Host = strings.TrimPrefix(t.target, "http://")
	req.URL = &u
	return http.DefaultTransport.RoundTrip(req)
}

func newTestEmail(t *testing.T, handler http.HandlerFunc) *Email {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	cfg := config.EmailConfig{Enabled: true, ResendAPIKey: "re_test", FromAddress: "alerts@devicedesk.io"}
	client := newEmailClient(&http.Client{Transport: rewriteTransport{target: srv.URL}}, cfg)
	return NewEmail(client, logger.NewNopLogger())
}

func TestEmail_SendEmail(t *testing.T) {
	var got map[string]any
	e := newTestEmail(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &got)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":"msg_123"}`))
	})

	resp, err := e.SendEmail(context.Background(), SendEmailRequest{
		ToAddress: "ops@acme.io, owner@acme.io",
		Subject:   "Hello",
		HTML:      "<p>hi</p>",
	})
	require.NoError(t, err)
	assert.True(t, resp.OK)
	assert.Equal(t, "msg_123", resp.MessageID)
	assert.Equal(t, "alerts@devicedesk.io", got["from"])
	assert.Equal(t, []any{"ops@acme.io", "owner@acme.io"}, got["to"])
}

func TestEmail_SendEmail_ProviderFailure(t *testing.T) {
	e := newTestEmail(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"statusCode":422,"name":"validation_error","message":"bad from"}`))
	})

	resp, err := e.SendEmail(context.Background(), SendEmailRequest{
		ToAddress: "ops@acme.io", Subject: "Hello", Text: "hi",
	})
	require.Error(t, err)
	assert.False(t, resp.OK)
	assert.NotEmpty(t, resp.Error)
}

func TestEmail_SendEmail_Validation(t *testing.T) {
	e := NewEmail(NewEmailClient(config.EmailConfig{}, logger.NewNopLogger()), logger.NewNopLogger())

	tests := []struct {
		name string
		req  SendEmailRequest
	}{
		{name: "missing recipient", req: SendEmailRequest{Subject: "s", HTML: "h"}},
		{name: "bad recipient", req: SendEmailRequest{ToAddress: "nope", Subject: "s", HTML: "h"}},
		{name: "missing body", req: SendEmailRequest{ToAddress: "a@b.co", Subject: "s"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp, err := e.SendEmail(context.Background(), tt.req)
			require.Error(t, err)
			assert.True(t, ierr.IsValidation(err))
			assert.False(t, resp.OK)
		})
	}
}

func TestEmail_DisabledClientSkips(t *testing.T) {
	e := NewEmail(NewEmailClient(config.EmailConfig{Enabled: false}, logger.NewNopLogger()), logger.NewNopLogger())
	resp, err := e.SendEmail(context.Background(), SendEmailRequest{ToAddress: "a@b.co", Subject: "s", HTML: "h"})
	require.NoError(t, err)
	assert.False(t, resp.OK)
	assert.Equal(t, "email client is disabled", resp.Error)
}

func TestRenderTemplate(t *testing.T) {
	html, err := RenderTemplate(TemplateAlertDigest, map[string]interface{}{
		"title":        "Daily alerts",
		"generated_on": "2024-03-01",
		"high":         1,
		"medium":       0,
		"alerts": []map[string]string{
			{"Severity": "high", "Title": "<b>Invoice</b>", "Subtitle": "Acme", "Date": "2024-02-01"},
		},
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Daily alerts")
	assert.Contains(t, html, "&lt;b&gt;Invoice&lt;/b&gt;")

	_, err = RenderTemplate("missing.html", nil)
	assert.True(t, ierr.IsNotFound(err))
}

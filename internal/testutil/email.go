package testutil

import (
	"context"
	"sync"

	"github.com/devicedesk/devicedesk/internal/email"
)

// MockEmailSender implements email.Sender and keeps every request it gets.
// Templated requests are rendered so assertions can inspect the HTML.
type MockEmailSender struct {
	mu   sync.Mutex
	Sent []email.SendEmailRequest
	Err  error
}

func NewMockEmailSender() *MockEmailSender {
	return &MockEmailSender{}
}

func (m *MockEmailSender) SendEmail(_ context.Context, req email.SendEmailRequest) (*email.SendEmailResponse, error) {
	if err := req.Validate(); err != nil {
		return &email.SendEmailResponse{OK: false, Error: err.Error()}, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return &email.SendEmailResponse{OK: false, Error: m.Err.Error()}, m.Err
	}
	m.Sent = append(m.Sent, req)
	return &email.SendEmailResponse{OK: true, MessageID: "msg_test"}, nil
}

func (m *MockEmailSender) SendEmailWithTemplate(ctx context.Context, req email.SendEmailWithTemplateRequest) (*email.SendEmailResponse, error) {
	html, err := email.RenderTemplate(req.TemplatePath, req.Data)
	if err != nil {
		return &email.SendEmailResponse{OK: false, Error: err.Error()}, err
	}
	return m.SendEmail(ctx, email.SendEmailRequest{
		FromAddress: req.FromAddress,
		ToAddress:   req.ToAddress,
		Subject:     req.Subject,
		HTML:        html,
	})
}

func (m *MockEmailSender) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = nil
	m.Err = nil
}

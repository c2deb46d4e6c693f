package main

import (
	"context"
	"encoding/json"
	"log"
	"os"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/email"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
)

type mailer struct {
	sender email.Sender
	log    *logger.Logger
}

// handle sends {to, subject, html} and always answers {ok, error}; failures
// are reported in the body so callers never see a lambda error.
func (m *mailer) handle(ctx context.Context, req email.SendEmailRequest) (*email.SendEmailResponse, error) {
	resp, err := m.sender.SendEmail(ctx, req)
	if err != nil {
		m.log.WithContext(ctx).Errorw("mailer send failed", "to", req.ToAddress, "error", err)
		if resp == nil || resp.Error == "" {
			msg := ierr.HintOf(err)
			if msg == "" {
				msg = err.Error()
			}
			resp = &email.SendEmailResponse{OK: false, Error: msg}
		}
		return resp, nil
	}
	return resp, nil
}

func newMailer() (*mailer, error) {
	cfg, err := config.NewConfig()
	if err != nil {
		return nil, err
	}
	log, err := logger.NewLogger(cfg)
	if err != nil {
		return nil, err
	}
	return &mailer{sender: email.NewEmail(email.NewEmailClient(cfg.Email, log), log), log: log}, nil
}

func main() {
	m, err := newMailer()
	if err != nil {
		log.Fatalf("failed to initialize mailer: %v", err)
	}

	// Running locally: MAILER_EVENT holds the JSON payload.
	if os.Getenv("AWS_LAMBDA_FUNCTION_NAME") == "" {
		var req email.SendEmailRequest
		if err := json.Unmarshal([]byte(os.Getenv("MAILER_EVENT")), &req); err != nil {
			log.Fatalf("invalid MAILER_EVENT: %v", err)
		}
		resp, _ := m.handle(context.Background(), req)
		log.Printf("Result: %+v", resp)
		return
	}

	lambda.Start(m.handle)
}

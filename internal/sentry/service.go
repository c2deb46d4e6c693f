package sentry

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/config"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/getsentry/sentry-go"
)

const flushTimeout = 2 * time.Second

// Service reports errors to Sentry. Every method is a no-op when Sentry is
// disabled.
type Service struct {
	cfg    *config.Configuration
	logger *logger.Logger
}

// NewSentryService initialises the global Sentry client.
func NewSentryService(cfg *config.Configuration, log *logger.Logger) *Service {
	s := &Service{cfg: cfg, logger: log}
	if !cfg.Sentry.Enabled {
		return s
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.Sentry.DSN,
		Environment:      cfg.Sentry.Environment,
		EnableTracing:    cfg.Sentry.SampleRate > 0,
		TracesSampleRate: cfg.Sentry.SampleRate,
		AttachStacktrace: true,
	})
	if err != nil {
		log.Errorw("failed to initialize sentry, error reporting disabled", "error", err)
		s.cfg.Sentry.Enabled = false
		return s
	}

	log.Infow("sentry initialized", "environment", cfg.Sentry.Environment)
	return s
}

func (s *Service) IsEnabled() bool {
	return s != nil && s.cfg.Sentry.Enabled
}

// CaptureException reports err with tenant and request tags from ctx.
func (s *Service) CaptureException(ctx context.Context, err error) {
	if !s.IsEnabled() || err == nil {
		return
	}

	hub := sentry.GetHubFromContext(ctx)
	if hub == nil {
		hub = sentry.CurrentHub().Clone()
	}

	hub.WithScope(func(scope *sentry.Scope) {
		if tenantID := types.GetTenantID(ctx); tenantID != "" {
			scope.SetTag("tenant_id", tenantID)
		}
		if requestID := types.GetRequestID(ctx); requestID != "" {
			scope.SetTag("request_id", requestID)
		}
		if userID := types.GetUserID(ctx); userID != "" {
			scope.SetUser(sentry.User{ID: userID, Email: types.GetUserEmail(ctx)})
		}
		hub.CaptureException(err)
	})
}

func (s *Service) Flush() {
	if s.IsEnabled() {
		sentry.Flush(flushTimeout)
	}
}

package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/email"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
)

// AlertService exposes the unified, ranked alert list.
type AlertService interface {
	ListAlerts(ctx context.Context, filter *types.AlertFilter) (*dto.ListAlertsResponse, error)
	// SendAlertDigest emails the tenant's high and medium alerts.
	SendAlertDigest(ctx context.Context, req dto.SendAlertDigestRequest) (*dto.SendAlertDigestResponse, error)
}

type alertService struct {
	ServiceParams
}

func NewAlertService(params ServiceParams) AlertService {
	return &alertService{ServiceParams: params}
}

// rankedAlerts runs the aggregating query and ranks its rows. The ranked
// list is cached per tenant; filtering happens on a copy.
func (s *alertService) rankedAlerts(ctx context.Context) ([]alert.UnifiedAlert, error) {
	key := cache.GenerateKey(cache.PrefixAlerts, types.GetTenantID(ctx), "ranked")
	if s.Cache != nil {
		if v, ok := s.Cache.Get(ctx, key); ok {
			if cached, ok := cache.UnmarshalCacheValue[[]alert.UnifiedAlert](v); ok {
				s.Metrics.IncCacheLookup(cache.PrefixAlerts, true)
				return append([]alert.UnifiedAlert(nil), (*cached)...), nil
			}
		}
		s.Metrics.IncCacheLookup(cache.PrefixAlerts, false)
	}

	rows, err := s.AlertRepo.ListRawAlerts(ctx, s.Config.Alerts.Thresholds())
	if err != nil {
		return nil, err
	}
	ranked := alert.Rank(rows)

	if s.Cache != nil {
		snapshot := append([]alert.UnifiedAlert(nil), ranked...)
		s.Cache.Set(ctx, key, &snapshot, s.cacheTTL())
	}
	return ranked, nil
}

func (s *alertService) ListAlerts(ctx context.Context, filter *types.AlertFilter) (*dto.ListAlertsResponse, error) {
	if filter == nil {
		filter = &types.AlertFilter{}
	}
	if err := filter.Validate(); err != nil {
		return nil, err
	}

	ranked, err := s.rankedAlerts(ctx)
	if err != nil {
		return nil, err
	}

	counts := alert.CountBySeverity(ranked)
	s.Metrics.SetOpenAlerts(string(types.AlertSeverityHigh), counts.High)
	s.Metrics.SetOpenAlerts(string(types.AlertSeverityMedium), counts.Medium)
	s.Metrics.SetOpenAlerts(string(types.AlertSeverityLow), counts.Low)

	return &dto.ListAlertsResponse{
		Items:  alert.Filter(ranked, filter),
		Counts: counts,
	}, nil
}

func (s *alertService) SendAlertDigest(ctx context.Context, req dto.SendAlertDigestRequest) (*dto.SendAlertDigestResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if s.EmailSender == nil {
		return nil, ierr.NewError("email sender is not configured").
			WithHint("Email is not configured").
			Mark(ierr.ErrInvalidOperation)
	}

	recipients := req.To
	if len(recipients) == 0 {
		recipients = s.Config.Alerts.DigestRecipients
	}
	if len(recipients) == 0 {
		return &dto.SendAlertDigestResponse{Reason: "no recipients configured"}, nil
	}

	ranked, err := s.rankedAlerts(ctx)
	if err != nil {
		return nil, err
	}
	urgent := alert.Filter(ranked, &types.AlertFilter{
		Severities: []types.AlertSeverity{types.AlertSeverityHigh, types.AlertSeverityMedium},
	})
	if len(urgent) == 0 {
		return &dto.SendAlertDigestResponse{Reason: "no high or medium alerts"}, nil
	}

	counts := alert.CountBySeverity(urgent)
	shown := urgent
	if limit := s.Config.Alerts.DigestMaxItems; limit > 0 && len(shown) > limit {
		shown = shown[:limit]
	}

	today := s.today()
	resp, err := s.EmailSender.SendEmailWithTemplate(ctx, email.SendEmailWithTemplateRequest{
		FromAddress:  s.Config.Email.FromAddress,
		ToAddress:    strings.Join(recipients, ","),
		Subject:      fmt.Sprintf("%d alerts need attention (%s)", len(urgent), today.Format("Jan 2")),
		TemplatePath: email.TemplateAlertDigest,
		Data: map[string]interface{}{
			"title":        "Alert digest",
			"generated_on": types.FormatDate(&today),
			"high":         counts.High,
			"medium":       counts.Medium,
			"alerts":       shown,
			"truncated":    len(urgent) - len(shown),
		},
	})
	s.Metrics.IncEmail(email.TemplateAlertDigest, err == nil && resp != nil && resp.OK)
	if err != nil {
		s.Logger.WithContext(ctx).Errorw("failed to send alert digest",
			"error", err,
			"recipients", len(recipients),
		)
		return nil, err
	}

	out := &dto.SendAlertDigestResponse{
		Sent:       resp.OK,
		AlertCount: len(urgent),
		MessageID:  resp.MessageID,
	}
	if !resp.OK {
		out.Reason = resp.Error
		if out.Reason == "" {
			out.Reason = "email not sent"
		}
	}

	s.Logger.WithContext(ctx).Infow("alert digest processed",
		"sent", out.Sent,
		"alerts", len(urgent),
		"recipients", len(recipients),
	)
	return out, nil
}

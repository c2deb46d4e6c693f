package service

import (
	"errors"
	"testing"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/alert"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/testutil"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
	"github.com/stretchr/testify/suite"
)

type AlertServiceSuite struct {
	testutil.BaseServiceTestSuite
	service AlertService
}

func TestAlertService(t *testing.T) {
	suite.Run(t, new(AlertServiceSuite))
}

func (s *AlertServiceSuite) SetupTest() {
	s.BaseServiceTestSuite.SetupTest()
	s.service = NewAlertService(newTestParams(&s.BaseServiceTestSuite))
	s.GetStores().AlertRepo.SetRows(testutil.DefaultTenantID, []alert.RawAlertRow{
		{ID: "sub_1", AlertType: "renewal_due", Severity: "low", DateVal: "2024-03-01", Title: "Renewal due", EntityType: "subscription", EntityID: "sub_1"},
		{ID: "inv_1", AlertType: "overdue_invoice", Severity: "high", DateVal: "2024-02-20", Title: "Invoice INV-1 overdue", Subtitle: "Alice", EntityType: "invoice", EntityID: "inv_1"},
		{ID: "dev_1", AlertType: "device_maintenance_long", Severity: "medium", DateVal: "2024-01-05", Title: "Laptop in maintenance", EntityType: "device", EntityID: "dev_1"},
		{ID: "inv_2", AlertType: "overdue_invoice", Severity: "high", DateVal: "2024-02-01", Title: "Invoice INV-2 overdue", EntityType: "invoice", EntityID: "inv_2"},
		{ID: "sub_2", AlertType: "subscription_ending_soon", Severity: "urgent", DateVal: "", Title: "Ending soon", EntityType: "subscription", EntityID: "sub_2"},
	})
}

func alertIDs(alerts []alert.UnifiedAlert) []string {
	return lo.Map(alerts, func(a alert.UnifiedAlert, _ int) string { return a.ID })
}

func (s *AlertServiceSuite) TestListAlertsRanksBySeverityThenDate() {
	resp, err := s.service.ListAlerts(s.GetContext(), nil)
	s.Require().NoError(err)

	s.Equal([]string{"inv_2", "inv_1", "dev_1", "sub_2", "sub_1"}, alertIDs(resp.Items))
	// unknown severities are treated as low
	s.Equal(types.AlertSeverityLow, resp.Items[3].Severity)
	s.Equal(types.AlertSeverityCounts{High: 2, Medium: 1, Low: 2, Total: 5}, resp.Counts)
	s.Equal(s.GetConfig().Alerts.Thresholds(), s.GetStores().AlertRepo.LastThresholds)
}

func (s *AlertServiceSuite) TestListAlertsFilters() {
	tests := []struct {
		name   string
		filter *types.AlertFilter
		want   []string
	}{
		{
			name:   "severity",
			filter: &types.AlertFilter{Severities: []types.AlertSeverity{types.AlertSeverityHigh}},
			want:   []string{"inv_2", "inv_1"},
		},
		{
			name:   "type",
			filter: &types.AlertFilter{AlertTypes: []types.AlertType{types.AlertTypeDeviceMaintenanceLong}},
			want:   []string{"dev_1"},
		},
		{
			name:   "limit",
			filter: &types.AlertFilter{Limit: 3},
			want:   []string{"inv_2", "inv_1", "dev_1"},
		},
	}
	for _, tt := range tests {
		s.Run(tt.name, func() {
			resp, err := s.service.ListAlerts(s.GetContext(), tt.filter)
			s.Require().NoError(err)
			s.Equal(tt.want, alertIDs(resp.Items))
			// counts describe the whole list, not the filtered page
			s.Equal(5, resp.Counts.Total)
		})
	}

	_, err := s.service.ListAlerts(s.GetContext(), &types.AlertFilter{Severities: []types.AlertSeverity{"critical"}})
	s.True(ierr.IsValidation(err))
}

func (s *AlertServiceSuite) TestListAlertsCachesRankedList() {
	_, err := s.service.ListAlerts(s.GetContext(), nil)
	s.Require().NoError(err)
	_, err = s.service.ListAlerts(s.GetContext(), &types.AlertFilter{Limit: 1})
	s.Require().NoError(err)
	s.Equal(1, s.GetStores().AlertRepo.Calls)

	resp, err := s.service.ListAlerts(s.GetContextForTenant("tenant_other"), nil)
	s.Require().NoError(err)
	s.Empty(resp.Items)
	s.Equal(2, s.GetStores().AlertRepo.Calls)
}

func (s *AlertServiceSuite) TestListAlertsRepositoryError() {
	s.GetStores().AlertRepo.SetError(ierr.NewError("boom").Mark(ierr.ErrDatabase))
	_, err := s.service.ListAlerts(s.GetContext(), nil)
	s.True(ierr.IsDatabase(err))
}

func (s *AlertServiceSuite) TestSendAlertDigest() {
	resp, err := s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{})
	s.Require().NoError(err)
	s.True(resp.Sent)
	s.Equal(3, resp.AlertCount)
	s.Equal("msg_test", resp.MessageID)

	sent := s.GetEmailSender().Sent
	s.Require().Len(sent, 1)
	s.Equal("ops@devicedesk.test", sent[0].ToAddress)
	s.Equal("alerts@devicedesk.test", sent[0].FromAddress)
	s.Contains(sent[0].Subject, "3 alerts need attention")
	s.Contains(sent[0].HTML, "Invoice INV-2 overdue")
	s.Contains(sent[0].HTML, "Laptop in maintenance")
	s.NotContains(sent[0].HTML, "Renewal due")
	s.NotContains(sent[0].HTML, "more alerts are not shown")
}

func (s *AlertServiceSuite) TestSendAlertDigestExplicitRecipients() {
	resp, err := s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{
		To: []string{"a@x.test", "b@x.test"},
	})
	s.Require().NoError(err)
	s.True(resp.Sent)
	s.Equal("a@x.test,b@x.test", s.GetEmailSender().Sent[0].ToAddress)

	_, err = s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{To: []string{"not-an-email"}})
	s.True(ierr.IsValidation(err))
}

func (s *AlertServiceSuite) TestSendAlertDigestTruncates() {
	cfg := s.GetConfig()
	previous := cfg.Alerts.DigestMaxItems
	cfg.Alerts.DigestMaxItems = 1
	defer func() { cfg.Alerts.DigestMaxItems = previous }()

	resp, err := s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{})
	s.Require().NoError(err)
	s.Equal(3, resp.AlertCount)

	html := s.GetEmailSender().Sent[0].HTML
	s.Contains(html, "Invoice INV-2 overdue")
	s.NotContains(html, "Invoice INV-1 overdue")
	s.Contains(html, "2 more alerts are not shown")
}

func (s *AlertServiceSuite) TestSendAlertDigestSkips() {
	s.Run("no recipients", func() {
		cfg := s.GetConfig()
		previous := cfg.Alerts.DigestRecipients
		cfg.Alerts.DigestRecipients = nil
		defer func() { cfg.Alerts.DigestRecipients = previous }()

		resp, err := s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{})
		s.Require().NoError(err)
		s.False(resp.Sent)
		s.Equal("no recipients configured", resp.Reason)
	})

	s.Run("no urgent alerts", func() {
		s.GetCache().Flush(s.GetContext())
		s.GetStores().AlertRepo.SetRows(testutil.DefaultTenantID, []alert.RawAlertRow{
			{ID: "sub_1", AlertType: "renewal_due", Severity: "low", DateVal: "2024-03-01", Title: "Renewal due"},
		})

		resp, err := s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{})
		s.Require().NoError(err)
		s.False(resp.Sent)
		s.Equal("no high or medium alerts", resp.Reason)
	})

	s.Empty(s.GetEmailSender().Sent)
}

func (s *AlertServiceSuite) TestSendAlertDigestSenderFailure() {
	s.GetEmailSender().Err = errors.New("provider down")

	_, err := s.service.SendAlertDigest(s.GetContext(), dto.SendAlertDigestRequest{})
	s.Error(err)
	s.Empty(s.GetEmailSender().Sent)
}

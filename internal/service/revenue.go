package service

import (
	"bytes"
	"context"
	"strconv"
	"time"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/cache"
	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/xuri/excelize/v2"
)

type RevenueService interface {
	// GetMRR returns the tenant's monthly recurring revenue, total and
	// grouped, computed from active subscriptions.
	GetMRR(ctx context.Context, req dto.GetMRRRequest) (*dto.MRRResponse, error)
	// ExportRevenueXLSX renders a workbook with a summary sheet and one
	// sheet per grouping, every bucket included.
	ExportRevenueXLSX(ctx context.Context) ([]byte, error)
}

type revenueService struct {
	ServiceParams
}

func NewRevenueService(params ServiceParams) RevenueService {
	return &revenueService{ServiceParams: params}
}

func (s *revenueService) GetMRR(ctx context.Context, req dto.GetMRRRequest) (*dto.MRRResponse, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	key := cache.GenerateKey(cache.PrefixRevenue, types.GetTenantID(ctx), string(req.GroupBy), strconv.Itoa(req.Limit()))
	if s.Cache != nil {
		if v, ok := s.Cache.Get(ctx, key); ok {
			if resp, ok := cache.UnmarshalCacheValue[dto.MRRResponse](v); ok {
				s.Metrics.IncCacheLookup(cache.PrefixRevenue, true)
				return resp, nil
			}
		}
		s.Metrics.IncCacheLookup(cache.PrefixRevenue, false)
	}

	records, err := s.SubRepo.ListActiveRevenueRecords(ctx, req.GroupBy)
	if err != nil {
		return nil, err
	}

	resp := &dto.MRRResponse{
		GroupBy:     req.GroupBy,
		Total:       revenue.TotalMRR(records),
		Buckets:     revenue.GroupMRR(records, req.Limit()),
		GeneratedAt: time.Now().UTC(),
	}
	if s.Cache != nil {
		s.Cache.Set(ctx, key, resp, s.cacheTTL())
	}
	return resp, nil
}

var revenueSheets = []struct {
	name    string
	groupBy types.RevenueGroupBy
}{
	{"By plan", types.RevenueGroupByPlan},
	{"By category", types.RevenueGroupByCategory},
	{"By client", types.RevenueGroupByClient},
}

func (s *revenueService) ExportRevenueXLSX(ctx context.Context) ([]byte, error) {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	summary := f.GetSheetName(f.GetActiveSheetIndex())
	if err := f.SetSheetName(summary, "Summary"); err != nil {
		return nil, xlsxError(err)
	}
	summary = "Summary"

	var (
		total       float64
		activeCount int
	)
	for i, sheet := range revenueSheets {
		records, err := s.SubRepo.ListActiveRevenueRecords(ctx, sheet.groupBy)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			total = revenue.TotalMRR(records).Round(2).InexactFloat64()
			activeCount = len(records)
		}

		if _, err := f.NewSheet(sheet.name); err != nil {
			return nil, xlsxError(err)
		}
		header := []interface{}{"Key", "Label", "Monthly total"}
		if err := f.SetSheetRow(sheet.name, "A1", &header); err != nil {
			return nil, xlsxError(err)
		}
		for j, b := range revenue.GroupMRR(records, 0) {
			cell, err := excelize.CoordinatesToCellName(1, j+2)
			if err != nil {
				return nil, xlsxError(err)
			}
			row := []interface{}{b.Key, b.Label, b.MonthlyTotal.Round(2).InexactFloat64()}
			if err := f.SetSheetRow(sheet.name, cell, &row); err != nil {
				return nil, xlsxError(err)
			}
		}
		_ = f.SetColWidth(sheet.name, "A", "B", 32)
	}

	today := s.today()
	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total MRR", total},
		{"Active subscriptions", activeCount},
		{"Generated on", today.Format(time.DateOnly)},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, xlsxError(err)
		}
		if err := f.SetSheetRow(summary, cell, &row); err != nil {
			return nil, xlsxError(err)
		}
	}
	_ = f.SetColWidth(summary, "A", "A", 24)

	buf := &bytes.Buffer{}
	if err := f.Write(buf); err != nil {
		return nil, xlsxError(err)
	}

	s.Logger.WithContext(ctx).Infow("exported revenue workbook",
		"active_subscriptions", activeCount,
		"bytes", buf.Len(),
	)
	return buf.Bytes(), nil
}

func xlsxError(err error) error {
	return ierr.WithError(err).
		WithHint("Failed to build the revenue workbook").
		Mark(ierr.ErrInternal)
}

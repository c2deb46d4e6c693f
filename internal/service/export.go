package service

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/api/dto"
	"github.com/devicedesk/devicedesk/internal/domain/client"
	"github.com/devicedesk/devicedesk/internal/domain/device"
	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	"github.com/devicedesk/devicedesk/internal/domain/provider"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/gocarina/gocsv"
	"github.com/samber/lo"
)

// ExportService renders tenant tables as CSV.
type ExportService interface {
	ExportCSV(ctx context.Context, entity types.TableName) ([]byte, error)
}

type exportService struct {
	ServiceParams
}

func NewExportService(params ServiceParams) ExportService {
	return &exportService{ServiceParams: params}
}

func (s *exportService) ExportCSV(ctx context.Context, entity types.TableName) ([]byte, error) {
	var (
		rows interface{}
		n    int
	)

	switch entity {
	case types.TableNameClients:
		items, err := s.ClientRepo.List(ctx, types.NewNoLimitClientFilter())
		if err != nil {
			return nil, err
		}
		rows, n = lo.Map(items, func(c *client.Client, _ int) *dto.ClientCSVRow { return dto.NewClientCSVRow(c) }), len(items)
	case types.TableNameProviders:
		items, err := s.ProviderRepo.List(ctx, types.NewNoLimitProviderFilter())
		if err != nil {
			return nil, err
		}
		rows, n = lo.Map(items, func(p *provider.Provider, _ int) *dto.ProviderCSVRow { return dto.NewProviderCSVRow(p) }), len(items)
	case types.TableNameDevices:
		items, err := s.DeviceRepo.List(ctx, types.NewNoLimitDeviceFilter())
		if err != nil {
			return nil, err
		}
		rows, n = lo.Map(items, func(d *device.Device, _ int) *dto.DeviceCSVRow { return dto.NewDeviceCSVRow(d) }), len(items)
	case types.TableNameSubscriptions:
		items, err := s.SubRepo.List(ctx, types.NewNoLimitSubscriptionFilter())
		if err != nil {
			return nil, err
		}
		rows, n = lo.Map(items, func(sub *subscription.Subscription, _ int) *dto.SubscriptionCSVRow { return dto.NewSubscriptionCSVRow(sub) }), len(items)
	case types.TableNameInvoices:
		items, err := s.InvoiceRepo.List(ctx, types.NewNoLimitInvoiceFilter())
		if err != nil {
			return nil, err
		}
		rows, n = lo.Map(items, func(inv *invoice.Invoice, _ int) *dto.InvoiceCSVRow { return dto.NewInvoiceCSVRow(inv) }), len(items)
	default:
		return nil, ierr.NewErrorf("export not supported for %s", entity).
			WithHint("Unknown export table").
			WithReportableDetails(map[string]any{"entity": entity, "allowed": types.ReadableTables}).
			Mark(ierr.ErrValidation)
	}

	out, err := gocsv.MarshalBytes(rows)
	if err != nil {
		return nil, ierr.WithError(err).
			WithHint("Failed to build the CSV export").
			Mark(ierr.ErrInternal)
	}

	s.Logger.WithContext(ctx).Infow("exported csv", "entity", entity, "rows", n)
	return out, nil
}

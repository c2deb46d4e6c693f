package postgres

import (
	"context"
	"strings"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/device"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/jackc/pgx/v5"
)

const (
	deviceColumns = "id, name, serial_number, category, device_status, client_id, provider_id, purchase_date, maintenance_since, notes"
	deviceSelect  = "id, name, serial_number, COALESCE(category, ''), device_status, client_id, provider_id, purchase_date, maintenance_since, COALESCE(notes, '')"
)

type deviceRepository struct {
	db  *postgres.Client
	log *logger.Logger
}

func NewDeviceRepository(db *postgres.Client, log *logger.Logger) device.Repository {
	return &deviceRepository{db: db, log: log}
}

func (r *deviceRepository) Create(ctx context.Context, d *device.Device) error {
	args := append([]any{
		d.ID, d.Name, d.SerialNumber, d.Category, string(d.DeviceStatus),
		d.ClientID, d.ProviderID, dateOnlyPtr(d.PurchaseDate), dateOnlyPtr(d.MaintenanceSince), d.Notes,
	}, baseArgs(&d.BaseModel)...)

	_, err := r.db.Querier(ctx).Exec(ctx,
		`INSERT INTO devices (`+deviceColumns+`, `+baseInsertColumns+`) VALUES (`+placeholders(1, len(args))+`)`,
		args...)
	return mapError(err, "device", d.ID)
}

func (r *deviceRepository) Get(ctx context.Context, id string) (*device.Device, error) {
	w := newTenantWhere(ctx, "")
	w.add("id = %s", id)
	return r.getOne(ctx, w, id)
}

func (r *deviceRepository) GetBySerial(ctx context.Context, serial string) (*device.Device, error) {
	w := newTenantWhere(ctx, "")
	w.add("LOWER(serial_number) = %s", strings.ToLower(strings.TrimSpace(serial)))
	return r.getOne(ctx, w, serial)
}

func (r *deviceRepository) getOne(ctx context.Context, w *whereBuilder, ref string) (*device.Device, error) {
	d, err := scanDevice(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+deviceSelect+`, `+baseColumns("")+` FROM devices`+w.sql()+` LIMIT 1`, w.args...))
	if err != nil {
		return nil, mapError(err, "device", ref)
	}
	return d, nil
}

func (r *deviceRepository) List(ctx context.Context, filter *types.DeviceFilter) ([]*device.Device, error) {
	if filter == nil {
		filter = types.NewNoLimitDeviceFilter()
	}
	w := r.where(ctx, filter)
	tail := orderAndPage(w, filter.QueryFilter, "",
		"name", "serial_number", "category", "device_status", "purchase_date", "created_at", "updated_at")

	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+deviceSelect+`, `+baseColumns("")+` FROM devices`+w.sql()+tail, w.args...)
	if err != nil {
		return nil, mapError(err, "device", "")
	}
	defer rows.Close()

	var out []*device.Device
	for rows.Next() {
		d, err := scanDevice(rows)
		if err != nil {
			return nil, mapError(err, "device", "")
		}
		out = append(out, d)
	}
	return out, mapError(rows.Err(), "device", "")
}

func (r *deviceRepository) Count(ctx context.Context, filter *types.DeviceFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitDeviceFilter()
	}
	w := r.where(ctx, filter)
	var n int
	err := r.db.Querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM devices`+w.sql(), w.args...).Scan(&n)
	return n, mapError(err, "device", "")
}

func (r *deviceRepository) Update(ctx context.Context, d *device.Device) error {
	d.UpdatedAt = time.Now().UTC()
	d.UpdatedBy = types.GetUserID(ctx)

	w := newTenantWhere(ctx, "")
	set := "name = " + w.nextArg(d.Name) +
		", serial_number = " + w.nextArg(d.SerialNumber) +
		", category = " + w.nextArg(d.Category) +
		", device_status = " + w.nextArg(string(d.DeviceStatus)) +
		", client_id = " + w.nextArg(d.ClientID) +
		", provider_id = " + w.nextArg(d.ProviderID) +
		", purchase_date = " + w.nextArg(dateOnlyPtr(d.PurchaseDate)) +
		", maintenance_since = " + w.nextArg(dateOnlyPtr(d.MaintenanceSince)) +
		", notes = " + w.nextArg(d.Notes) +
		", updated_at = " + w.nextArg(d.UpdatedAt) +
		", updated_by = " + w.nextArg(d.UpdatedBy)
	w.add("id = %s", d.ID)

	tag, err := r.db.Querier(ctx).Exec(ctx, `UPDATE devices SET `+set+w.sql(), w.args...)
	if err != nil {
		return mapError(err, "device", d.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("device", d.ID)
	}
	return nil
}

func (r *deviceRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "devices", "device", id)
}

func (r *deviceRepository) where(ctx context.Context, f *types.DeviceFilter) *whereBuilder {
	w := newTenantWhere(ctx, "")
	w.addIn("id", f.DeviceIDs)
	if f.ClientID != "" {
		w.add("client_id = %s", f.ClientID)
	}
	if f.ProviderID != "" {
		w.add("provider_id = %s", f.ProviderID)
	}
	if f.Category != "" {
		w.add("LOWER(category) = LOWER(%s)", f.Category)
	}
	if len(f.DeviceStatus) > 0 {
		statuses := make([]string, len(f.DeviceStatus))
		for i, s := range f.DeviceStatus {
			statuses[i] = string(s)
		}
		w.addIn("device_status", statuses)
	}
	w.addSearch(f.GetSearch(), "name", "serial_number", "category")
	return w
}

func scanDevice(row pgx.Row) (*device.Device, error) {
	var (
		d      device.Device
		status string
	)
	dest := append([]any{
		&d.ID, &d.Name, &d.SerialNumber, &d.Category, &status,
		&d.ClientID, &d.ProviderID, &d.PurchaseDate, &d.MaintenanceSince, &d.Notes,
	}, baseDest(&d.BaseModel)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	d.DeviceStatus = types.DeviceStatus(status)
	return &d, nil
}

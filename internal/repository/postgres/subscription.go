package postgres

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/revenue"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/jackc/pgx/v5"
)

const subscriptionColumns = "id, client_id, device_id, plan_name, amount, currency, billing_cycle, subscription_status, start_date, next_invoice_date, end_date"

func subscriptionSelect(alias string) string {
	return col(alias, "id") + ", " + col(alias, "client_id") + ", " + col(alias, "device_id") + ", " +
		"COALESCE(" + col(alias, "plan_name") + ", ''), " + col(alias, "amount") + "::text, " +
		"COALESCE(" + col(alias, "currency") + ", ''), COALESCE(" + col(alias, "billing_cycle") + ", ''), " +
		col(alias, "subscription_status") + ", " + col(alias, "start_date") + ", " +
		col(alias, "next_invoice_date") + ", " + col(alias, "end_date")
}

type subscriptionRepository struct {
	db  *postgres.Client
	log *logger.Logger
}

func NewSubscriptionRepository(db *postgres.Client, log *logger.Logger) subscription.Repository {
	return &subscriptionRepository{db: db, log: log}
}

func (r *subscriptionRepository) Create(ctx context.Context, s *subscription.Subscription) error {
	args := append([]any{
		s.ID, s.ClientID, s.DeviceID, s.PlanName, s.Amount.String(), s.Currency,
		string(s.BillingCycle), string(s.SubscriptionStatus),
		dateOnly(s.StartDate), dateOnlyPtr(s.NextInvoiceDate), dateOnlyPtr(s.EndDate),
	}, baseArgs(&s.BaseModel)...)

	_, err := r.db.Querier(ctx).Exec(ctx,
		`INSERT INTO subscriptions (`+subscriptionColumns+`, `+baseInsertColumns+`)
		 VALUES ($1, $2, $3, $4, $5::numeric, `+placeholders(6, len(args)-5)+`)`,
		args...)
	return mapError(err, "subscription", s.ID)
}

func (r *subscriptionRepository) Get(ctx context.Context, id string) (*subscription.Subscription, error) {
	w := newTenantWhere(ctx, "")
	w.add("id = %s", id)

	s, err := scanSubscription(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+subscriptionSelect("")+`, `+baseColumns("")+` FROM subscriptions`+w.sql(), w.args...))
	if err != nil {
		return nil, mapError(err, "subscription", id)
	}
	return s, nil
}

func (r *subscriptionRepository) List(ctx context.Context, filter *types.SubscriptionFilter) ([]*subscription.Subscription, error) {
	if filter == nil {
		filter = types.NewNoLimitSubscriptionFilter()
	}
	w := r.where(ctx, filter)
	tail := orderAndPage(w, filter.QueryFilter, "",
		"plan_name", "amount", "billing_cycle", "subscription_status", "start_date", "next_invoice_date", "end_date", "created_at", "updated_at")

	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+subscriptionSelect("")+`, `+baseColumns("")+` FROM subscriptions`+w.sql()+tail, w.args...)
	if err != nil {
		return nil, mapError(err, "subscription", "")
	}
	defer rows.Close()

	var out []*subscription.Subscription
	for rows.Next() {
		s, err := scanSubscription(rows)
		if err != nil {
			return nil, mapError(err, "subscription", "")
		}
		out = append(out, s)
	}
	return out, mapError(rows.Err(), "subscription", "")
}

func (r *subscriptionRepository) Count(ctx context.Context, filter *types.SubscriptionFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitSubscriptionFilter()
	}
	w := r.where(ctx, filter)
	var n int
	err := r.db.Querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM subscriptions`+w.sql(), w.args...).Scan(&n)
	return n, mapError(err, "subscription", "")
}

func (r *subscriptionRepository) Update(ctx context.Context, s *subscription.Subscription) error {
	s.UpdatedAt = time.Now().UTC()
	s.UpdatedBy = types.GetUserID(ctx)

	w := newTenantWhere(ctx, "")
	set := "client_id = " + w.nextArg(s.ClientID) +
		", device_id = " + w.nextArg(s.DeviceID) +
		", plan_name = " + w.nextArg(s.PlanName) +
		", amount = " + w.nextArg(s.Amount.String()) + "::numeric" +
		", currency = " + w.nextArg(s.Currency) +
		", billing_cycle = " + w.nextArg(string(s.BillingCycle)) +
		", subscription_status = " + w.nextArg(string(s.SubscriptionStatus)) +
		", start_date = " + w.nextArg(dateOnly(s.StartDate)) +
		", next_invoice_date = " + w.nextArg(dateOnlyPtr(s.NextInvoiceDate)) +
		", end_date = " + w.nextArg(dateOnlyPtr(s.EndDate)) +
		", updated_at = " + w.nextArg(s.UpdatedAt) +
		", updated_by = " + w.nextArg(s.UpdatedBy)
	w.add("id = %s", s.ID)

	tag, err := r.db.Querier(ctx).Exec(ctx, `UPDATE subscriptions SET `+set+w.sql(), w.args...)
	if err != nil {
		return mapError(err, "subscription", s.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("subscription", s.ID)
	}
	return nil
}

func (r *subscriptionRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "subscriptions", "subscription", id)
}

// revenueGroupColumns selects the key and label for each grouping. Devices
// and clients are LEFT JOINed so subscriptions without them still count
// and land in the unassigned bucket.
var revenueGroupColumns = map[types.RevenueGroupBy]string{
	types.RevenueGroupByPlan:     "COALESCE(s.plan_name, ''), COALESCE(s.plan_name, '')",
	types.RevenueGroupByCategory: "COALESCE(d.category, ''), COALESCE(d.category, '')",
	types.RevenueGroupByClient:   "COALESCE(c.id, ''), COALESCE(c.name, '')",
}

func (r *subscriptionRepository) ListActiveRevenueRecords(ctx context.Context, groupBy types.RevenueGroupBy) ([]revenue.Record, error) {
	groupCols, ok := revenueGroupColumns[groupBy]
	if !ok {
		return nil, ierr.NewErrorf("unsupported revenue grouping %q", groupBy).
			WithHint("group_by must be plan, category or client").
			Mark(ierr.ErrValidation)
	}

	w := newTenantWhere(ctx, "s")
	w.add("s.subscription_status = %s", string(types.SubscriptionStatusActive))

	query := `SELECT s.amount::text, COALESCE(s.billing_cycle, ''), ` + groupCols + `
		FROM subscriptions s
		LEFT JOIN devices d ON d.id = s.device_id AND d.tenant_id = s.tenant_id
		LEFT JOIN clients c ON c.id = s.client_id AND c.tenant_id = s.tenant_id` + w.sql()

	rows, err := r.db.Querier(ctx).Query(ctx, query, w.args...)
	if err != nil {
		return nil, mapError(err, "subscription", "")
	}
	defer rows.Close()

	records := make([]revenue.Record, 0)
	for rows.Next() {
		var (
			amount *string
			cycle  string
			rec    revenue.Record
		)
		if err := rows.Scan(&amount, &cycle, &rec.GroupKey, &rec.GroupLabel); err != nil {
			return nil, mapError(err, "subscription", "")
		}
		rec.Amount = parseAmount(amount)
		rec.BillingCycle = types.BillingCycle(cycle)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "subscription", "")
	}

	r.log.Debugw("loaded revenue records", "group_by", groupBy, "count", len(records))
	return records, nil
}

func (r *subscriptionRepository) where(ctx context.Context, f *types.SubscriptionFilter) *whereBuilder {
	w := newTenantWhere(ctx, "")
	w.addIn("id", f.SubscriptionIDs)
	if f.ClientID != "" {
		w.add("client_id = %s", f.ClientID)
	}
	if f.DeviceID != "" {
		w.add("device_id = %s", f.DeviceID)
	}
	if f.PlanName != "" {
		w.add("LOWER(plan_name) = LOWER(%s)", f.PlanName)
	}
	if f.BillingCycle != "" {
		w.add("billing_cycle = %s", string(f.BillingCycle))
	}
	if len(f.SubscriptionStatus) > 0 {
		statuses := make([]string, len(f.SubscriptionStatus))
		for i, s := range f.SubscriptionStatus {
			statuses[i] = string(s)
		}
		w.addIn("subscription_status", statuses)
	}
	w.addSearch(f.GetSearch(), "plan_name")
	return w
}

func scanSubscription(row pgx.Row) (*subscription.Subscription, error) {
	var (
		s             subscription.Subscription
		amount        *string
		cycle, status string
	)
	dest := append([]any{
		&s.ID, &s.ClientID, &s.DeviceID, &s.PlanName, &amount, &s.Currency, &cycle, &status,
		&s.StartDate, &s.NextInvoiceDate, &s.EndDate,
	}, baseDest(&s.BaseModel)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	s.Amount = parseAmount(amount)
	s.BillingCycle = types.BillingCycle(cycle)
	s.SubscriptionStatus = types.SubscriptionStatus(status)
	return &s, nil
}

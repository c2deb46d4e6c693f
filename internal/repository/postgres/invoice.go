package postgres

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/jackc/pgx/v5"
)

const (
	invoiceColumns = "id, number, client_id, subscription_id, amount, currency, invoice_status, issue_date, due_date, paid_at, notes"
	invoiceSelect  = "id, number, client_id, subscription_id, amount::text, COALESCE(currency, ''), invoice_status, issue_date, due_date, paid_at, COALESCE(notes, '')"
)

type invoiceRepository struct {
	db  *postgres.Client
	log *logger.Logger
}

func NewInvoiceRepository(db *postgres.Client, log *logger.Logger) invoice.Repository {
	return &invoiceRepository{db: db, log: log}
}

func (r *invoiceRepository) Create(ctx context.Context, inv *invoice.Invoice) error {
	args := append([]any{
		inv.ID, inv.Number, inv.ClientID, inv.SubscriptionID, inv.Amount.String(), inv.Currency,
		string(inv.InvoiceStatus), dateOnly(inv.IssueDate), dateOnly(inv.DueDate), inv.PaidAt, inv.Notes,
	}, baseArgs(&inv.BaseModel)...)

	_, err := r.db.Querier(ctx).Exec(ctx,
		`INSERT INTO invoices (`+invoiceColumns+`, `+baseInsertColumns+`)
		 VALUES ($1, $2, $3, $4, $5::numeric, `+placeholders(6, len(args)-5)+`)`,
		args...)
	return mapError(err, "invoice", inv.ID)
}

func (r *invoiceRepository) Get(ctx context.Context, id string) (*invoice.Invoice, error) {
	w := newTenantWhere(ctx, "")
	w.add("id = %s", id)

	inv, err := scanInvoice(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+invoiceSelect+`, `+baseColumns("")+` FROM invoices`+w.sql(), w.args...))
	if err != nil {
		return nil, mapError(err, "invoice", id)
	}
	return inv, nil
}

func (r *invoiceRepository) List(ctx context.Context, filter *types.InvoiceFilter) ([]*invoice.Invoice, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	w := r.where(ctx, filter)
	tail := orderAndPage(w, filter.QueryFilter, "",
		"number", "amount", "invoice_status", "issue_date", "due_date", "paid_at", "created_at", "updated_at")

	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+invoiceSelect+`, `+baseColumns("")+` FROM invoices`+w.sql()+tail, w.args...)
	if err != nil {
		return nil, mapError(err, "invoice", "")
	}
	defer rows.Close()

	var out []*invoice.Invoice
	for rows.Next() {
		inv, err := scanInvoice(rows)
		if err != nil {
			return nil, mapError(err, "invoice", "")
		}
		out = append(out, inv)
	}
	return out, mapError(rows.Err(), "invoice", "")
}

func (r *invoiceRepository) Count(ctx context.Context, filter *types.InvoiceFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitInvoiceFilter()
	}
	w := r.where(ctx, filter)
	var n int
	err := r.db.Querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM invoices`+w.sql(), w.args...).Scan(&n)
	return n, mapError(err, "invoice", "")
}

func (r *invoiceRepository) Update(ctx context.Context, inv *invoice.Invoice) error {
	inv.UpdatedAt = time.Now().UTC()
	inv.UpdatedBy = types.GetUserID(ctx)

	w := newTenantWhere(ctx, "")
	set := "number = " + w.nextArg(inv.Number) +
		", client_id = " + w.nextArg(inv.ClientID) +
		", subscription_id = " + w.nextArg(inv.SubscriptionID) +
		", amount = " + w.nextArg(inv.Amount.String()) + "::numeric" +
		", currency = " + w.nextArg(inv.Currency) +
		", invoice_status = " + w.nextArg(string(inv.InvoiceStatus)) +
		", issue_date = " + w.nextArg(dateOnly(inv.IssueDate)) +
		", due_date = " + w.nextArg(dateOnly(inv.DueDate)) +
		", paid_at = " + w.nextArg(inv.PaidAt) +
		", notes = " + w.nextArg(inv.Notes) +
		", updated_at = " + w.nextArg(inv.UpdatedAt) +
		", updated_by = " + w.nextArg(inv.UpdatedBy)
	w.add("id = %s", inv.ID)

	tag, err := r.db.Querier(ctx).Exec(ctx, `UPDATE invoices SET `+set+w.sql(), w.args...)
	if err != nil {
		return mapError(err, "invoice", inv.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("invoice", inv.ID)
	}
	return nil
}

func (r *invoiceRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "invoices", "invoice", id)
}

func (r *invoiceRepository) where(ctx context.Context, f *types.InvoiceFilter) *whereBuilder {
	w := newTenantWhere(ctx, "")
	w.addIn("id", f.InvoiceIDs)
	if f.ClientID != "" {
		w.add("client_id = %s", f.ClientID)
	}
	if f.SubscriptionID != "" {
		w.add("subscription_id = %s", f.SubscriptionID)
	}
	if len(f.InvoiceStatus) > 0 {
		statuses := make([]string, len(f.InvoiceStatus))
		for i, s := range f.InvoiceStatus {
			statuses[i] = string(s)
		}
		w.addIn("invoice_status", statuses)
	}
	w.addSearch(f.GetSearch(), "number")
	return w
}

func scanInvoice(row pgx.Row) (*invoice.Invoice, error) {
	var (
		inv    invoice.Invoice
		amount *string
		status string
	)
	dest := append([]any{
		&inv.ID, &inv.Number, &inv.ClientID, &inv.SubscriptionID, &amount, &inv.Currency, &status,
		&inv.IssueDate, &inv.DueDate, &inv.PaidAt, &inv.Notes,
	}, baseDest(&inv.BaseModel)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	inv.Amount = parseAmount(amount)
	inv.InvoiceStatus = types.InvoiceStatus(status)
	return &inv, nil
}

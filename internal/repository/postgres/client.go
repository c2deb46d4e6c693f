package postgres

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/client"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/jackc/pgx/v5"
)

const (
	clientColumns = "id, name, email, phone, company, notes"
	clientSelect  = "id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(company, ''), COALESCE(notes, '')"
)

type clientRepository struct {
	db  *postgres.Client
	log *logger.Logger
}

func NewClientRepository(db *postgres.Client, log *logger.Logger) client.Repository {
	return &clientRepository{db: db, log: log}
}

func (r *clientRepository) Create(ctx context.Context, c *client.Client) error {
	r.log.Debugw("creating client", "client_id", c.ID, "tenant_id", c.TenantID)

	args := append([]any{c.ID, c.Name, c.Email, c.Phone, c.Company, c.Notes}, baseArgs(&c.BaseModel)...)
	_, err := r.db.Querier(ctx).Exec(ctx,
		`INSERT INTO clients (`+clientColumns+`, `+baseInsertColumns+`) VALUES (`+placeholders(1, len(args))+`)`,
		args...)
	return mapError(err, "client", c.ID)
}

func (r *clientRepository) Get(ctx context.Context, id string) (*client.Client, error) {
	w := newTenantWhere(ctx, "")
	w.add("id = %s", id)

	row := r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+clientSelect+`, `+baseColumns("")+` FROM clients`+w.sql(), w.args...)
	c, err := scanClient(row)
	if err != nil {
		return nil, mapError(err, "client", id)
	}
	return c, nil
}

func (r *clientRepository) List(ctx context.Context, filter *types.ClientFilter) ([]*client.Client, error) {
	if filter == nil {
		filter = types.NewNoLimitClientFilter()
	}
	w := r.where(ctx, filter)
	tail := orderAndPage(w, filter.QueryFilter, "", "name", "email", "company", "created_at", "updated_at")

	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+clientSelect+`, `+baseColumns("")+` FROM clients`+w.sql()+tail, w.args...)
	if err != nil {
		return nil, mapError(err, "client", "")
	}
	defer rows.Close()

	var out []*client.Client
	for rows.Next() {
		c, err := scanClient(rows)
		if err != nil {
			return nil, mapError(err, "client", "")
		}
		out = append(out, c)
	}
	return out, mapError(rows.Err(), "client", "")
}

func (r *clientRepository) Count(ctx context.Context, filter *types.ClientFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitClientFilter()
	}
	w := r.where(ctx, filter)
	var n int
	err := r.db.Querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM clients`+w.sql(), w.args...).Scan(&n)
	return n, mapError(err, "client", "")
}

func (r *clientRepository) Update(ctx context.Context, c *client.Client) error {
	c.UpdatedAt = time.Now().UTC()
	c.UpdatedBy = types.GetUserID(ctx)

	w := newTenantWhere(ctx, "")
	set := "name = " + w.nextArg(c.Name) +
		", email = " + w.nextArg(c.Email) +
		", phone = " + w.nextArg(c.Phone) +
		", company = " + w.nextArg(c.Company) +
		", notes = " + w.nextArg(c.Notes) +
		", updated_at = " + w.nextArg(c.UpdatedAt) +
		", updated_by = " + w.nextArg(c.UpdatedBy)
	w.add("id = %s", c.ID)

	tag, err := r.db.Querier(ctx).Exec(ctx, `UPDATE clients SET `+set+w.sql(), w.args...)
	if err != nil {
		return mapError(err, "client", c.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("client", c.ID)
	}
	return nil
}

func (r *clientRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "clients", "client", id)
}

func (r *clientRepository) where(ctx context.Context, f *types.ClientFilter) *whereBuilder {
	w := newTenantWhere(ctx, "")
	w.addIn("id", f.ClientIDs)
	if f.Email != "" {
		w.add("LOWER(email) = LOWER(%s)", f.Email)
	}
	w.addSearch(f.GetSearch(), "name", "email", "company")
	return w
}

func scanClient(row pgx.Row) (*client.Client, error) {
	var c client.Client
	dest := append([]any{&c.ID, &c.Name, &c.Email, &c.Phone, &c.Company, &c.Notes}, baseDest(&c.BaseModel)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &c, nil
}

// softDelete flips status to deleted for one row of table.
func softDelete(ctx context.Context, db *postgres.Client, table, entity, id string) error {
	w := &whereBuilder{}
	set := "status = " + w.nextArg(string(types.StatusDeleted)) +
		", updated_at = " + w.nextArg(time.Now().UTC()) +
		", updated_by = " + w.nextArg(types.GetUserID(ctx))
	w.add("tenant_id = %s", types.GetTenantID(ctx))
	w.add("id = %s", id)
	w.add("status <> %s", string(types.StatusDeleted))

	tag, err := db.Querier(ctx).Exec(ctx, `UPDATE `+table+` SET `+set+w.sql(), w.args...)
	if err != nil {
		return mapError(err, entity, id)
	}
	if tag.RowsAffected() == 0 {
		return notFound(entity, id)
	}
	return nil
}

package postgres

import (
	"context"
	"time"

	"github.com/devicedesk/devicedesk/internal/domain/provider"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/jackc/pgx/v5"
)

const (
	providerColumns = "id, name, email, phone, website"
	providerSelect  = "id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(website, '')"
)

type providerRepository struct {
	db  *postgres.Client
	log *logger.Logger
}

func NewProviderRepository(db *postgres.Client, log *logger.Logger) provider.Repository {
	return &providerRepository{db: db, log: log}
}

func (r *providerRepository) Create(ctx context.Context, p *provider.Provider) error {
	args := append([]any{p.ID, p.Name, p.Email, p.Phone, p.Website}, baseArgs(&p.BaseModel)...)
	_, err := r.db.Querier(ctx).Exec(ctx,
		`INSERT INTO providers (`+providerColumns+`, `+baseInsertColumns+`) VALUES (`+placeholders(1, len(args))+`)`,
		args...)
	return mapError(err, "provider", p.ID)
}

func (r *providerRepository) Get(ctx context.Context, id string) (*provider.Provider, error) {
	w := newTenantWhere(ctx, "")
	w.add("id = %s", id)

	p, err := scanProvider(r.db.Querier(ctx).QueryRow(ctx,
		`SELECT `+providerSelect+`, `+baseColumns("")+` FROM providers`+w.sql(), w.args...))
	if err != nil {
		return nil, mapError(err, "provider", id)
	}
	return p, nil
}

func (r *providerRepository) List(ctx context.Context, filter *types.ProviderFilter) ([]*provider.Provider, error) {
	if filter == nil {
		filter = types.NewNoLimitProviderFilter()
	}
	w := r.where(ctx, filter)
	tail := orderAndPage(w, filter.QueryFilter, "", "name", "email", "created_at", "updated_at")

	rows, err := r.db.Querier(ctx).Query(ctx,
		`SELECT `+providerSelect+`, `+baseColumns("")+` FROM providers`+w.sql()+tail, w.args...)
	if err != nil {
		return nil, mapError(err, "provider", "")
	}
	defer rows.Close()

	var out []*provider.Provider
	for rows.Next() {
		p, err := scanProvider(rows)
		if err != nil {
			return nil, mapError(err, "provider", "")
		}
		out = append(out, p)
	}
	return out, mapError(rows.Err(), "provider", "")
}

func (r *providerRepository) Count(ctx context.Context, filter *types.ProviderFilter) (int, error) {
	if filter == nil {
		filter = types.NewNoLimitProviderFilter()
	}
	w := r.where(ctx, filter)
	var n int
	err := r.db.Querier(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM providers`+w.sql(), w.args...).Scan(&n)
	return n, mapError(err, "provider", "")
}

func (r *providerRepository) Update(ctx context.Context, p *provider.Provider) error {
	p.UpdatedAt = time.Now().UTC()
	p.UpdatedBy = types.GetUserID(ctx)

	w := newTenantWhere(ctx, "")
	set := "name = " + w.nextArg(p.Name) +
		", email = " + w.nextArg(p.Email) +
		", phone = " + w.nextArg(p.Phone) +
		", website = " + w.nextArg(p.Website) +
		", updated_at = " + w.nextArg(p.UpdatedAt) +
		", updated_by = " + w.nextArg(p.UpdatedBy)
	w.add("id = %s", p.ID)

	tag, err := r.db.Querier(ctx).Exec(ctx, `UPDATE providers SET `+set+w.sql(), w.args...)
	if err != nil {
		return mapError(err, "provider", p.ID)
	}
	if tag.RowsAffected() == 0 {
		return notFound("provider", p.ID)
	}
	return nil
}

func (r *providerRepository) Delete(ctx context.Context, id string) error {
	return softDelete(ctx, r.db, "providers", "provider", id)
}

func (r *providerRepository) where(ctx context.Context, f *types.ProviderFilter) *whereBuilder {
	w := newTenantWhere(ctx, "")
	w.addIn("id", f.ProviderIDs)
	w.addSearch(f.GetSearch(), "name", "email")
	return w
}

func scanProvider(row pgx.Row) (*provider.Provider, error) {
	var p provider.Provider
	dest := append([]any{&p.ID, &p.Name, &p.Email, &p.Phone, &p.Website}, baseDest(&p.BaseModel)...)
	if err := row.Scan(dest...); err != nil {
		return nil, err
	}
	return &p, nil
}

package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
)

const uniqueViolation = "23505"

// whereBuilder accumulates AND-ed conditions with positional arguments.
type whereBuilder struct {
	conds []string
	args  []any
}

// newTenantWhere starts every query scoped to the tenant in ctx and hides
// soft deleted rows. alias may be empty.
func newTenantWhere(ctx context.Context, alias string) *whereBuilder {
	w := &whereBuilder{}
	w.add(col(alias, "tenant_id")+" = %s", types.GetTenantID(ctx))
	w.add(col(alias, "status")+" <> %s", string(types.StatusDeleted))
	return w
}

// add appends cond, replacing each %s with the next placeholder.
func (w *whereBuilder) add(cond string, args ...any) {
	placeholders := make([]any, len(args))
	for i, a := range args {
		w.args = append(w.args, a)
		placeholders[i] = fmt.Sprintf("$%d", len(w.args))
	}
	w.conds = append(w.conds, fmt.Sprintf(cond, placeholders...))
}

func (w *whereBuilder) addIn(column string, values []string) {
	if len(values) == 0 {
		return
	}
	w.add(column+" = ANY(%s)", values)
}

// addSearch matches term case-insensitively against any of columns.
func (w *whereBuilder) addSearch(term string, columns ...string) {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return
	}
	w.args = append(w.args, "%"+term+"%")
	p := fmt.Sprintf("$%d", len(w.args))
	parts := make([]string, len(columns))
	for i, c := range columns {
		parts[i] = c + " ILIKE " + p
	}
	w.conds = append(w.conds, "("+strings.Join(parts, " OR ")+")")
}

func (w *whereBuilder) sql() string {
	if len(w.conds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.conds, " AND ")
}

// nextArg registers an argument outside the WHERE clause and returns its placeholder.
func (w *whereBuilder) nextArg(v any) string {
	w.args = append(w.args, v)
	return fmt.Sprintf("$%d", len(w.args))
}

// orderAndPage renders ORDER BY and LIMIT/OFFSET. Only columns in allowed
// may be sorted on; anything else falls back to created_at.
func orderAndPage(w *whereBuilder, f *types.QueryFilter, alias string, allowed ...string) string {
	sortCol := "created_at"
	if s := f.GetSort(); s != "" {
		for _, a := range allowed {
			if a == s {
				sortCol = s
				break
			}
		}
	}
	order := "DESC"
	if strings.EqualFold(f.GetOrder(), types.SortOrderAsc) {
		order = "ASC"
	}

	var b strings.Builder
	fmt.Fprintf(&b, " ORDER BY %s %s, %s ASC", col(alias, sortCol), order, col(alias, "id"))
	if !f.IsUnlimited() {
		fmt.Fprintf(&b, " LIMIT %s OFFSET %s", w.nextArg(f.GetLimit()), w.nextArg(f.GetOffset()))
	}
	return b.String()
}

func col(alias, name string) string {
	if alias == "" {
		return name
	}
	return alias + "." + name
}

func baseColumns(alias string) string {
	return strings.Join([]string{
		col(alias, "tenant_id"),
		col(alias, "status"),
		col(alias, "created_at"),
		col(alias, "updated_at"),
		"COALESCE(" + col(alias, "created_by") + ", '')",
		"COALESCE(" + col(alias, "updated_by") + ", '')",
	}, ", ")
}

const baseInsertColumns = "tenant_id, status, created_at, updated_at, created_by, updated_by"

func baseArgs(b *types.BaseModel) []any {
	return []any{b.TenantID, string(b.Status), b.CreatedAt, b.UpdatedAt, b.CreatedBy, b.UpdatedBy}
}

// placeholders renders $from..$from+n-1.
func placeholders(from, n int) string {
	ps := make([]string, n)
	for i := range ps {
		ps[i] = fmt.Sprintf("$%d", from+i)
	}
	return strings.Join(ps, ", ")
}

// baseDest returns scan targets matching baseColumns.
func baseDest(b *types.BaseModel) []any {
	return []any{&b.TenantID, &b.Status, &b.CreatedAt, &b.UpdatedAt, &b.CreatedBy, &b.UpdatedBy}
}

// parseAmount converts a numeric::text column. NULL or malformed amounts
// become zero.
func parseAmount(s *string) decimal.Decimal {
	if s == nil {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(*s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func dateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func dateOnlyPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := dateOnly(*t)
	return &d
}

// mapError marks pgx errors with the matching sentinel.
func mapError(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ierr.WithError(err).
			WithHintf("%s not found", entity).
			WithReportableDetails(map[string]any{"id": id}).
			Mark(ierr.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return ierr.WithError(err).
			WithHintf("%s already exists", entity).
			WithReportableDetails(map[string]any{"constraint": pgErr.ConstraintName}).
			Mark(ierr.ErrAlreadyExists)
	}
	logger.L.Errorw("database query failed", "entity", entity, "id", id, "error", err)
	return ierr.WithError(err).
		WithHintf("Failed to access %s", entity).
		Mark(ierr.ErrDatabase)
}

func notFound(entity, id string) error {
	return ierr.NewErrorf("%s %s not found", entity, id).
		WithHintf("%s not found", entity).
		WithReportableDetails(map[string]any{"id": id}).
		Mark(ierr.ErrNotFound)
}

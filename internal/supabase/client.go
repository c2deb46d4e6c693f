package supabase

import (
	"context"
	"regexp"
	"sort"

	"github.com/devicedesk/devicedesk/internal/config"
	ierr "github.com/devicedesk/devicedesk/internal/errors"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/nedpals/supabase-go"
	"github.com/samber/lo"
)

const (
	DefaultRowLimit = 100
	MaxRowLimit     = 1000
)

var columnPattern = regexp.MustCompile(`^[a-z][a-z0-9_]{0,62}$`)

// Row is one record as returned by the REST endpoint.
type Row map[string]interface{}

// TableReader reads tenant scoped rows from the hosted database.
type TableReader interface {
	Select(ctx context.Context, req SelectRequest) ([]Row, error)
}

// SelectRequest selects rows of an allow-listed table matching all Filters.
type SelectRequest struct {
	Table    types.TableName
	TenantID string
	Filters  map[string]string
	Limit    int
}

func (r *SelectRequest) Validate() error {
	if !lo.Contains(types.ReadableTables, r.Table) {
		return ierr.NewErrorf("table %q is not readable", r.Table).
			WithHint("Unknown table").
			WithReportableDetails(map[string]any{"allowed": types.ReadableTables}).
			Mark(ierr.ErrNotFound)
	}
	if r.TenantID == "" {
		return ierr.NewError("tenant id is required").
			WithHint("Missing workspace").
			Mark(ierr.ErrPermissionDenied)
	}
	for col := range r.Filters {
		if !columnPattern.MatchString(col) || col == "tenant_id" {
			return ierr.NewErrorf("invalid filter column %q", col).
				WithHint("Invalid filter").
				Mark(ierr.ErrValidation)
		}
	}
	if r.Limit < 0 || r.Limit > MaxRowLimit {
		return ierr.NewErrorf("limit must be between 0 and %d", MaxRowLimit).
			WithHint("Invalid limit").
			Mark(ierr.ErrValidation)
	}
	return nil
}

type client struct {
	sb  *supabase.Client
	log *logger.Logger
}

// NewClient uses the service key, so every query adds the tenant filter
// itself.
func NewClient(cfg config.SupabaseConfig, log *logger.Logger) (TableReader, error) {
	if cfg.BaseURL == "" || cfg.ServiceKey == "" {
		return nil, ierr.NewError("supabase base_url and service_key are required").
			WithHint("Hosted database is not configured").
			Mark(ierr.ErrSystem)
	}
	return &client{sb: supabase.CreateClient(cfg.BaseURL, cfg.ServiceKey), log: log}, nil
}

func (c *client) Select(ctx context.Context, req SelectRequest) ([]Row, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	limit := req.Limit
	if limit == 0 {
		limit = DefaultRowLimit
	}

	sel := c.sb.DB.From(string(req.Table)).Select("*").Limit(limit)
	q := sel.Eq("tenant_id", req.TenantID)

	// deterministic order keeps request logs comparable
	cols := lo.Keys(req.Filters)
	sort.Strings(cols)
	for _, col := range cols {
		q = q.Eq(col, req.Filters[col])
	}

	var rows []Row
	if err := q.ExecuteWithContext(ctx, &rows); err != nil {
		c.log.WithContext(ctx).Errorw("hosted select failed", "table", req.Table, "error", err)
		return nil, ierr.WithError(err).
			WithHintf("Failed to read %s", req.Table).
			Mark(ierr.ErrHTTPClient)
	}

	// the server may ignore the Range header
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

package postgres

import (
	"context"

	"github.com/devicedesk/devicedesk/internal/domain/alert"
	"github.com/devicedesk/devicedesk/internal/logger"
	"github.com/devicedesk/devicedesk/internal/postgres"
	"github.com/devicedesk/devicedesk/internal/types"
)

// rawAlertsQuery merges every alert condition into one row set. Arguments:
// $1 tenant, $2 renewal window days, $3 ending soon days, $4 maintenance
// days, $5 deleted status. Severity and ordering are left to the ranker.
const rawAlertsQuery = `
SELECT 'inv-overdue-' || i.id, 'overdue_invoice',
       CASE WHEN i.due_date < CURRENT_DATE - 30 THEN 'high' ELSE 'medium' END,
       to_char(i.due_date, 'YYYY-MM-DD'),
       'Invoice ' || i.number || ' is overdue',
       COALESCE(c.name, '') || ' · ' || i.amount::text || ' ' || COALESCE(i.currency, ''),
       '/invoices/' || i.id, 'invoice', i.id
  FROM invoices i
  LEFT JOIN clients c ON c.id = i.client_id AND c.tenant_id = i.tenant_id
 WHERE i.tenant_id = $1 AND i.status <> $5
   AND (i.invoice_status = 'overdue' OR (i.invoice_status = 'sent' AND i.due_date < CURRENT_DATE))
UNION ALL
SELECT 'sub-overdue-' || s.id, 'overdue_subscription', 'high',
       COALESCE(to_char(s.next_invoice_date, 'YYYY-MM-DD'), ''),
       'Subscription ' || COALESCE(s.plan_name, '') || ' missed its invoice date',
       COALESCE(c.name, ''),
       '/subscriptions/' || s.id, 'subscription', s.id
  FROM subscriptions s
  LEFT JOIN clients c ON c.id = s.client_id AND c.tenant_id = s.tenant_id
 WHERE s.tenant_id = $1 AND s.status <> $5
   AND s.subscription_status = 'active' AND s.next_invoice_date < CURRENT_DATE
UNION ALL
SELECT 'sub-renewal-' || s.id, 'renewal_due', 'medium',
       to_char(s.next_invoice_date, 'YYYY-MM-DD'),
       'Renewal due for ' || COALESCE(s.plan_name, ''),
       COALESCE(c.name, ''),
       '/subscriptions/' || s.id, 'subscription', s.id
  FROM subscriptions s
  LEFT JOIN clients c ON c.id = s.client_id AND c.tenant_id = s.tenant_id
 WHERE s.tenant_id = $1 AND s.status <> $5
   AND s.subscription_status = 'active'
   AND s.next_invoice_date BETWEEN CURRENT_DATE AND CURRENT_DATE + $2::int
UNION ALL
SELECT 'sub-ending-' || s.id, 'subscription_ending_soon', 'low',
       to_char(s.end_date, 'YYYY-MM-DD'),
       COALESCE(s.plan_name, '') || ' ends soon',
       COALESCE(c.name, ''),
       '/subscriptions/' || s.id, 'subscription', s.id
  FROM subscriptions s
  LEFT JOIN clients c ON c.id = s.client_id AND c.tenant_id = s.tenant_id
 WHERE s.tenant_id = $1 AND s.status <> $5
   AND s.subscription_status = 'active'
   AND s.end_date BETWEEN CURRENT_DATE AND CURRENT_DATE + $3::int
UNION ALL
SELECT 'dev-maint-' || d.id, 'device_maintenance_long', 'medium',
       COALESCE(to_char(d.maintenance_since, 'YYYY-MM-DD'), ''),
       d.name || ' has been in maintenance too long',
       d.serial_number,
       '/devices/' || d.id, 'device', d.id
  FROM devices d
 WHERE d.tenant_id = $1 AND d.status <> $5
   AND d.device_status = 'maintenance'
   AND (d.maintenance_since IS NULL OR d.maintenance_since < CURRENT_DATE - $4::int)`

// rawAlertsArgs orders arguments to match the placeholders of rawAlertsQuery.
func rawAlertsArgs(ctx context.Context, t types.AlertThresholds) []any {
	return []any{types.GetTenantID(ctx), t.RenewalWindowDays, t.EndingSoonDays, t.MaintenanceDays, string(types.StatusDeleted)}
}

type alertRepository struct {
	db  *postgres.Client
	log *logger.Logger
}

func NewAlertRepository(db *postgres.Client, log *logger.Logger) alert.Repository {
	return &alertRepository{db: db, log: log}
}

func (r *alertRepository) ListRawAlerts(ctx context.Context, t types.AlertThresholds) ([]alert.RawAlertRow, error) {
	rows, err := r.db.Querier(ctx).Query(ctx, rawAlertsQuery, rawAlertsArgs(ctx, t)...)
	if err != nil {
		return nil, mapError(err, "alert", "")
	}
	defer rows.Close()

	out := make([]alert.RawAlertRow, 0)
	for rows.Next() {
		var a alert.RawAlertRow
		if err := rows.Scan(&a.ID, &a.AlertType, &a.Severity, &a.DateVal, &a.Title, &a.Subtitle,
			&a.LinkPath, &a.EntityType, &a.EntityID); err != nil {
			return nil, mapError(err, "alert", "")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, mapError(err, "alert", "")
	}
	return out, nil
}

package alert

import "github.com/devicedesk/devicedesk/internal/types"

// RawAlertRow is one row of the aggregating alerts query. Severity is kept
// as the raw string the query produced; Rank coerces it.
type RawAlertRow struct {
	ID         string `json:"id"`
	AlertType  string `json:"alert_type"`
	Severity   string `json:"severity"`
	DateVal    string `json:"date_val"`
	Title      string `json:"title"`
	Subtitle   string `json:"subtitle"`
	LinkPath   string `json:"link_path"`
	EntityType string `json:"entity_type"`
	EntityID   string `json:"entity_id"`
}

// UnifiedAlert is the normalized alert shown on the dashboard and in digests.
type UnifiedAlert struct {
	ID         string              `json:"id"`
	Type       types.AlertType     `json:"type"`
	Severity   types.AlertSeverity `json:"severity"`
	Date       string              `json:"date"`
	Title      string              `json:"title"`
	Subtitle   string              `json:"subtitle,omitempty"`
	LinkPath   string              `json:"link_path,omitempty"`
	EntityType string              `json:"entity_type"`
	EntityID   string              `json:"entity_id"`
}

func FromRawRow(row RawAlertRow) UnifiedAlert {
	return UnifiedAlert{
		ID:         row.ID,
		Type:       types.AlertType(row.AlertType),
		Severity:   types.ParseAlertSeverity(row.Severity),
		Date:       row.DateVal,
		Title:      row.Title,
		Subtitle:   row.Subtitle,
		LinkPath:   row.LinkPath,
		EntityType: row.EntityType,
		EntityID:   row.EntityID,
	}
}

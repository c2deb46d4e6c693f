package types

const (
	// DefaultDashboardTopN is how many revenue buckets each dashboard card shows.
	DefaultDashboardTopN = 5
)

// EntityCounts summarises how many records each table holds for a tenant.
type EntityCounts struct {
	Clients             int `json:"clients"`
	Providers           int `json:"providers"`
	Devices             int `json:"devices"`
	DevicesAssigned     int `json:"devices_assigned"`
	DevicesMaintenance  int `json:"devices_maintenance"`
	ActiveSubscriptions int `json:"active_subscriptions"`
	OpenInvoices        int `json:"open_invoices"`
}

// AlertSeverityCounts is the per severity count shown on the alerts card.
type AlertSeverityCounts struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
	Total  int `json:"total"`
}

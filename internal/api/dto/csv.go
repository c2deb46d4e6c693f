package dto

import (
	"strings"

	"github.com/devicedesk/devicedesk/internal/domain/client"
	"github.com/devicedesk/devicedesk/internal/domain/device"
	"github.com/devicedesk/devicedesk/internal/domain/invoice"
	"github.com/devicedesk/devicedesk/internal/domain/provider"
	"github.com/devicedesk/devicedesk/internal/domain/subscription"
	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/samber/lo"
)

// ClientCSVRow is one line of a client import or export file.
type ClientCSVRow struct {
	ID      string `csv:"id,omitempty"`
	Name    string `csv:"name"`
	Email   string `csv:"email"`
	Phone   string `csv:"phone"`
	Company string `csv:"company"`
	Notes   string `csv:"notes"`
}

func (r *ClientCSVRow) ToCreateRequest() *CreateClientRequest {
	return &CreateClientRequest{
		Name:    r.Name,
		Email:   r.Email,
		Phone:   r.Phone,
		Company: r.Company,
		Notes:   r.Notes,
	}
}

func NewClientCSVRow(c *client.Client) *ClientCSVRow {
	return &ClientCSVRow{ID: c.ID, Name: c.Name, Email: c.Email, Phone: c.Phone, Company: c.Company, Notes: c.Notes}
}

type ProviderCSVRow struct {
	ID      string `csv:"id,omitempty"`
	Name    string `csv:"name"`
	Email   string `csv:"email"`
	Phone   string `csv:"phone"`
	Website string `csv:"website"`
}

func (r *ProviderCSVRow) ToCreateRequest() *CreateProviderRequest {
	return &CreateProviderRequest{Name: r.Name, Email: r.Email, Phone: r.Phone, Website: r.Website}
}

func NewProviderCSVRow(p *provider.Provider) *ProviderCSVRow {
	return &ProviderCSVRow{ID: p.ID, Name: p.Name, Email: p.Email, Phone: p.Phone, Website: p.Website}
}

type DeviceCSVRow struct {
	ID               string `csv:"id,omitempty"`
	Name             string `csv:"name"`
	SerialNumber     string `csv:"serial_number"`
	Category         string `csv:"category"`
	DeviceStatus     string `csv:"device_status"`
	ClientID         string `csv:"client_id"`
	ProviderID       string `csv:"provider_id"`
	PurchaseDate     string `csv:"purchase_date"`
	MaintenanceSince string `csv:"maintenance_since"`
	Notes            string `csv:"notes"`
}

func (r *DeviceCSVRow) ToCreateRequest() *CreateDeviceRequest {
	return &CreateDeviceRequest{
		Name:             r.Name,
		SerialNumber:     r.SerialNumber,
		Category:         r.Category,
		DeviceStatus:     types.DeviceStatus(strings.ToLower(strings.TrimSpace(r.DeviceStatus))),
		ClientID:         trimPtr(&r.ClientID),
		ProviderID:       trimPtr(&r.ProviderID),
		PurchaseDate:     r.PurchaseDate,
		MaintenanceSince: r.MaintenanceSince,
		Notes:            r.Notes,
	}
}

func NewDeviceCSVRow(d *device.Device) *DeviceCSVRow {
	return &DeviceCSVRow{
		ID:               d.ID,
		Name:             d.Name,
		SerialNumber:     d.SerialNumber,
		Category:         d.Category,
		DeviceStatus:     string(d.DeviceStatus),
		ClientID:         lo.FromPtr(d.ClientID),
		ProviderID:       lo.FromPtr(d.ProviderID),
		PurchaseDate:     types.FormatDate(d.PurchaseDate),
		MaintenanceSince: types.FormatDate(d.MaintenanceSince),
		Notes:            d.Notes,
	}
}

// SubscriptionCSVRow is export only.
type SubscriptionCSVRow struct {
	ID                 string `csv:"id"`
	ClientID           string `csv:"client_id"`
	DeviceID           string `csv:"device_id"`
	PlanName           string `csv:"plan_name"`
	Amount             string `csv:"amount"`
	Currency           string `csv:"currency"`
	BillingCycle       string `csv:"billing_cycle"`
	MonthlyAmount      string `csv:"monthly_amount"`
	SubscriptionStatus string `csv:"subscription_status"`
	StartDate          string `csv:"start_date"`
	NextInvoiceDate    string `csv:"next_invoice_date"`
	EndDate            string `csv:"end_date"`
}

func NewSubscriptionCSVRow(s *subscription.Subscription) *SubscriptionCSVRow {
	return &SubscriptionCSVRow{
		ID:                 s.ID,
		ClientID:           s.ClientID,
		DeviceID:           lo.FromPtr(s.DeviceID),
		PlanName:           s.PlanName,
		Amount:             s.Amount.StringFixed(2),
		Currency:           s.Currency,
		BillingCycle:       string(s.BillingCycle),
		MonthlyAmount:      s.MonthlyEquivalent().StringFixed(2),
		SubscriptionStatus: string(s.SubscriptionStatus),
		StartDate:          types.FormatDate(&s.StartDate),
		NextInvoiceDate:    types.FormatDate(s.NextInvoiceDate),
		EndDate:            types.FormatDate(s.EndDate),
	}
}

// InvoiceCSVRow is export only.
type InvoiceCSVRow struct {
	ID             string `csv:"id"`
	Number         string `csv:"number"`
	ClientID       string `csv:"client_id"`
	SubscriptionID string `csv:"subscription_id"`
	Amount         string `csv:"amount"`
	Currency       string `csv:"currency"`
	InvoiceStatus  string `csv:"invoice_status"`
	IssueDate      string `csv:"issue_date"`
	DueDate        string `csv:"due_date"`
	PaidAt         string `csv:"paid_at"`
}

func NewInvoiceCSVRow(inv *invoice.Invoice) *InvoiceCSVRow {
	return &InvoiceCSVRow{
		ID:             inv.ID,
		Number:         inv.Number,
		ClientID:       inv.ClientID,
		SubscriptionID: lo.FromPtr(inv.SubscriptionID),
		Amount:         inv.Amount.StringFixed(2),
		Currency:       inv.Currency,
		InvoiceStatus:  string(inv.InvoiceStatus),
		IssueDate:      types.FormatDate(&inv.IssueDate),
		DueDate:        types.FormatDate(&inv.DueDate),
		PaidAt:         types.FormatDate(inv.PaidAt),
	}
}

// ImportRowError points at a rejected line of an import file. Row is the
// 1-based line number in the uploaded file, header included.
type ImportRowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// ImportResult summarises one import. Total counts data rows read;
// Imported + Skipped + Failed == Total.
type ImportResult struct {
	Entity   types.TableName  `json:"entity"`
	Total    int              `json:"total"`
	Imported int              `json:"imported"`
	Skipped  int              `json:"skipped"`
	Failed   int              `json:"failed"`
	Errors   []ImportRowError `json:"errors,omitempty"`
}

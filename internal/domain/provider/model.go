package provider

import "github.com/devicedesk/devicedesk/internal/types"

// Provider supplies devices (vendor, carrier, repair shop).
type Provider struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Website string `json:"website,omitempty"`
	types.BaseModel
}

package client

import (
	"strings"

	"github.com/devicedesk/devicedesk/internal/types"
)

// Client is a customer that devices are assigned to and subscriptions billed to.
type Client struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Email   string `json:"email,omitempty"`
	Phone   string `json:"phone,omitempty"`
	Company string `json:"company,omitempty"`
	Notes   string `json:"notes,omitempty"`
	types.BaseModel
}

// BusinessKey identifies a client for duplicate detection: the lower-cased
// email, or the lower-cased name when no email is known.
func (c *Client) BusinessKey() string {
	if email := strings.ToLower(strings.TrimSpace(c.Email)); email != "" {
		return email
	}
	return strings.ToLower(strings.TrimSpace(c.Name))
}

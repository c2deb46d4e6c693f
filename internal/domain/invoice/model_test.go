package invoice

import (
	"testing"
	"time"

	"github.com/devicedesk/devicedesk/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestGenerateNumber(t *testing.T) {
	issued := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "INV-202403-7Q2K9M", GenerateNumber("inv_01hx3abc7q2k9m", issued))
	assert.Equal(t, "INV-202403-AB", GenerateNumber("ab", issued))
}

func TestInvoice_IsOverdue(t *testing.T) {
	today := time.Date(2024, 3, 10, 0, 0, 0, 0, time.UTC)
	due := time.Date(2024, 3, 9, 0, 0, 0, 0, time.UTC)

	assert.True(t, (&Invoice{InvoiceStatus: types.InvoiceStatusSent, DueDate: due}).IsOverdue(today))
	assert.False(t, (&Invoice{InvoiceStatus: types.InvoiceStatusPaid, DueDate: due}).IsOverdue(today))
	assert.False(t, (&Invoice{InvoiceStatus: types.InvoiceStatusSent, DueDate: today}).IsOverdue(today))
}

package types

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRole_Helpers(t *testing.T) {
	tests := []struct {
		role      Role
		billing   bool
		inventory bool
		imports   bool
	}{
		{RoleAdmin, true, true, true},
		{RoleFrontDesk, true, false, false},
		{RoleTechnician, false, true, false},
		{RoleViewer, false, false, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.role), func(t *testing.T) {
			assert.Equal(t, tt.billing, tt.role.CanManageBilling())
			assert.Equal(t, tt.inventory, tt.role.CanManageInventory())
			assert.Equal(t, tt.imports, tt.role.CanImport())
		})
	}
}

func TestParseRoleAndContext(t *testing.T) {
	assert.Equal(t, RoleTechnician, ParseRole("technician"))
	assert.Equal(t, RoleViewer, ParseRole("superuser"))

	ctx := context.Background()
	assert.Equal(t, RoleViewer, GetRole(ctx))
	ctx = SetRole(ctx, RoleAdmin)
	assert.Equal(t, RoleAdmin, GetRole(ctx))
}

func TestParseAlertSeverity(t *testing.T) {
	assert.Equal(t, AlertSeverityHigh, ParseAlertSeverity("high"))
	assert.Equal(t, AlertSeverityMedium, ParseAlertSeverity("medium"))
	assert.Equal(t, AlertSeverityLow, ParseAlertSeverity("critical"))
	assert.Equal(t, AlertSeverityLow, ParseAlertSeverity(""))
	assert.Less(t, AlertSeverityHigh.Rank(), AlertSeverityMedium.Rank())
	assert.Less(t, AlertSeverityMedium.Rank(), AlertSeverityLow.Rank())
}

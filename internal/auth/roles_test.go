package auth

import (
	"testing"

	"github.com/stretchr/testify/require"

	"pharmatrack/domain"
)

func TestCan(t *testing.T) {
	tests := []struct {
		role   string
		action string
		want   bool
	}{
		{domain.RoleAdmin, ActionDeleteRecord, true},
		{domain.RoleAdmin, ActionManageUsers, true},
		{domain.RoleAdmin, ActionViewAudit, true},
		{domain.RoleEmployee, ActionCreateRecord, true},
		{domain.RoleEmployee, ActionEditRecord, true},
		{domain.RoleEmployee, ActionUploadDocument, true},
		{domain.RoleEmployee, ActionDeleteRecord, false},
		{domain.RoleEmployee, ActionDeleteDocument, false},
		{domain.RoleEmployee, ActionViewAllRecords, false},
		{domain.RoleEmployee, ActionManageUsers, false},
		{domain.RoleEmployee, ActionBulkImport, false},
		{"superuser", ActionCreateRecord, false},
		{domain.RoleAdmin, "made.up", false},
	}
	for _, tc := range tests {
		require.Equal(t, tc.want, Can(tc.role, tc.action), "role %s action %s", tc.role, tc.action)
	}
}

package auth

import "pharmatrack/domain"

// Actions whose availability depends on the caller's role. Restricted
// operations consult Can instead of branching on the role inline.
const (
	ActionCreateRecord    = "inventory.create"
	ActionEditRecord      = "inventory.edit"
	ActionDeleteRecord    = "inventory.delete"
	ActionBulkImport      = "inventory.import"
	ActionUseScanner      = "inventory.scan"
	ActionUploadDocument  = "documents.upload"
	ActionDeleteDocument  = "documents.delete"
	ActionViewAllRecords  = "reports.all"
	ActionViewAlerts      = "alerts.view"
	ActionConfigureAlerts = "alerts.configure"
	ActionViewAudit       = "audit.view"
	ActionManageUsers     = "users.manage"
)

var capabilities = map[string]map[string]bool{
	domain.RoleAdmin: {
		ActionCreateRecord:    true,
		ActionEditRecord:      true,
		ActionDeleteRecord:    true,
		ActionBulkImport:      true,
		ActionUseScanner:      true,
		ActionUploadDocument:  true,
		ActionDeleteDocument:  true,
		ActionViewAllRecords:  true,
		ActionViewAlerts:      true,
		ActionConfigureAlerts: true,
		ActionViewAudit:       true,
		ActionManageUsers:     true,
	},
	domain.RoleEmployee: {
		ActionCreateRecord:   true,
		ActionEditRecord:     true,
		ActionUploadDocument: true,
	},
}

// Can reports whether the given role may perform the given action.
// Unknown roles and unknown actions are both denied.
func Can(role, action string) bool {
	return capabilities[role][action]
}

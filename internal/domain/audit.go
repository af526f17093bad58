package domain

import "time"

// Audit actions recorded by the workspace services.
const (
	AuditShareBatch      = "SHARE_BATCH"
	AuditMoveFolder      = "MOVE_FOLDER"
	AuditMoveDashboard   = "MOVE_DASHBOARD"
	AuditDeleteFolder    = "DELETE_FOLDER"
	AuditDeleteDashboard = "DELETE_DASHBOARD"
	AuditCreateFolder    = "CREATE_FOLDER"
	AuditCreateDashboard = "CREATE_DASHBOARD"
	AuditRenameFolder    = "RENAME_FOLDER"
)

// AuditEntry represents a single audit log record.
type AuditEntry struct {
	ID           string
	ViewerID     string
	Action       string
	AssetType    string
	AssetID      string
	Target       *string // share target key, when the action has one
	Status       string  // "ALLOWED", "DENIED", "ERROR"
	ErrorMessage *string
	CreatedAt    time.Time
}

// AuditFilter holds filter parameters for querying audit logs. Zero-valued
// fields do not filter.
type AuditFilter struct {
	ViewerID string
	Action   string
	Status   string
	Since    time.Time
	Limit    int
}

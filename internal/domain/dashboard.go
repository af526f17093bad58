package domain

import (
	"strings"
	"time"
)

// Dashboard is a shareable BI asset, optionally filed in a folder. A
// dashboard with no FolderID is unfiled — a valid root-level state. Its
// share list is owned by the dashboard itself: folder-level and
// dashboard-level grants are independent and never implicitly inherited.
type Dashboard struct {
	ID         string
	Title      string
	FolderID   *string // nil = unfiled
	CreatedBy  string  // empty = ownerless/legacy data
	SharedWith []SharePermission
	Pages      []Page
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Page is a dashboard page, referenced by id from RLS configs. Titles and
// widgets are presentation concerns outside the engine.
type Page struct {
	ID string
}

// PageIDs returns the ids of all pages on the dashboard, in order.
func (d *Dashboard) PageIDs() []string {
	ids := make([]string, len(d.Pages))
	for i, p := range d.Pages {
		ids[i] = p.ID
	}
	return ids
}

// CreateDashboardRequest holds parameters for creating a dashboard.
type CreateDashboardRequest struct {
	Title    string   `json:"title"`
	FolderID *string  `json:"folderId,omitempty"`
	PageIDs  []string `json:"pageIds,omitempty"`
}

// Validate checks that the request is well-formed.
func (r *CreateDashboardRequest) Validate() error {
	if strings.TrimSpace(r.Title) == "" {
		return ErrValidation("dashboard title is required")
	}
	return nil
}

// Asset type discriminators used by the facade and the audit log.
const (
	AssetFolder    = "folder"
	AssetDashboard = "dashboard"
)

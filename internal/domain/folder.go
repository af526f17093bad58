package domain

import (
	"strings"
	"time"
)

// Folder is a node in the workspace hierarchy. The parent chain must be
// acyclic and finite; a folder may never be its own ancestor.
type Folder struct {
	ID         string
	Name       string
	ParentID   *string // nil = root level
	CreatedBy  string  // empty = ownerless/legacy data
	SharedWith []SharePermission
	Version    int64
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// CascadePolicy controls what happens to a deleted folder's contents.
type CascadePolicy string

const (
	// CascadeDefault defers to the configured workspace default.
	CascadeDefault CascadePolicy = ""
	// CascadeDelete recursively deletes descendant folders and every
	// dashboard filed anywhere in the subtree.
	CascadeDelete CascadePolicy = "delete"
	// CascadeReparent moves the folder's direct children (subfolders and
	// dashboards) to the deleted folder's own parent, or to root.
	CascadeReparent CascadePolicy = "reparent"
)

// Validate checks that the policy is a known value.
func (p CascadePolicy) Validate() error {
	switch p {
	case CascadeDefault, CascadeDelete, CascadeReparent:
		return nil
	}
	return ErrValidation("unknown cascade policy %q", p)
}

// CreateFolderRequest holds parameters for creating a folder.
type CreateFolderRequest struct {
	Name     string  `json:"name"`
	ParentID *string `json:"parentId,omitempty"`
}

// Validate checks that the request is well-formed.
func (r *CreateFolderRequest) Validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation("folder name is required")
	}
	return nil
}

// RenameFolderRequest holds parameters for renaming a folder.
type RenameFolderRequest struct {
	FolderID string
	Name     string
}

// Validate checks that the request is well-formed.
func (r *RenameFolderRequest) Validate() error {
	if r.FolderID == "" {
		return ErrValidation("folder_id is required")
	}
	if strings.TrimSpace(r.Name) == "" {
		return ErrValidation("folder name is required")
	}
	return nil
}

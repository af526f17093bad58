package domain

import (
	"context"
	"time"
)

// FolderRepository provides persistence for folders.
type FolderRepository interface {
	Create(ctx context.Context, f *Folder) (*Folder, error)
	GetByID(ctx context.Context, id string) (*Folder, error)
	List(ctx context.Context) ([]Folder, error)
	ListChildren(ctx context.Context, parentID *string) ([]Folder, error)
	Rename(ctx context.Context, id, name string, expectedVersion int64) error
	// SetParent reparents the folder, guarded by an optimistic version check.
	SetParent(ctx context.Context, id string, parentID *string, expectedVersion int64) error
	// BumpVersion increments the folder version, guarded by an optimistic
	// version check. Returns ConflictError when the check fails.
	BumpVersion(ctx context.Context, id string, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}

// DashboardRepository provides persistence for dashboards and their pages.
type DashboardRepository interface {
	Create(ctx context.Context, d *Dashboard) (*Dashboard, error)
	GetByID(ctx context.Context, id string) (*Dashboard, error)
	List(ctx context.Context) ([]Dashboard, error)
	ListByFolder(ctx context.Context, folderID *string) ([]Dashboard, error)
	SetFolder(ctx context.Context, id string, folderID *string, expectedVersion int64) error
	BumpVersion(ctx context.Context, id string, expectedVersion int64) error
	Delete(ctx context.Context, id string) error
}

// ShareRepository provides persistence for share grants on assets.
type ShareRepository interface {
	ListForAsset(ctx context.Context, assetType, assetID string) ([]SharePermission, error)
	// ReplaceForAsset replaces the asset's full share list with the merged
	// one. Callers must run this inside a transaction together with an
	// asset version bump so concurrent merges never lose each other's
	// writes.
	ReplaceForAsset(ctx context.Context, assetType, assetID string, shares []SharePermission) error
	// DeleteForAsset removes every grant on the asset (cascade delete).
	DeleteForAsset(ctx context.Context, assetType, assetID string) error
}

// AuditRepository provides operations for audit log entries.
type AuditRepository interface {
	Insert(ctx context.Context, e *AuditEntry) error
	List(ctx context.Context, filter AuditFilter) ([]AuditEntry, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

// WorkspaceTx groups the repositories that participate in one unit of work.
type WorkspaceTx interface {
	Folders() FolderRepository
	Dashboards() DashboardRepository
	Shares() ShareRepository
	Audit() AuditRepository
}

// WorkspaceStore is the storage entry point. InTx runs fn inside a single
// storage transaction; any error rolls the whole unit of work back, so a
// share batch or hierarchy mutation is never partially applied.
type WorkspaceStore interface {
	WorkspaceTx
	InTx(ctx context.Context, fn func(tx WorkspaceTx) error) error
}

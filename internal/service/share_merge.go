package service

import (
	"context"
	"log/slog"
	"time"

	"lakeboard/internal/domain"
)

// ShareChange is the per-asset slice of a share batch: one target, one
// role, and — for dashboards only — the page allow-list and RLS rules the
// new grant carries.
type ShareChange struct {
	Target domain.ShareTarget
	Role   domain.Permission
	RLS    *domain.RLSConfig
	Now    time.Time
}

// MergeShares applies one change to an asset's share list and returns the
// new list. It is a pure function: any existing entry whose target key
// matches is removed (a viewer holds at most one entry per asset), and a
// replacement is appended unless the role is none, which revokes. Entries
// for other targets pass through untouched.
func MergeShares(current []domain.SharePermission, change ShareChange) []domain.SharePermission {
	key := change.Target.Key()
	merged := make([]domain.SharePermission, 0, len(current)+1)
	for i := range current {
		if current[i].Key() != key {
			merged = append(merged, current[i])
		}
	}
	if change.Role == domain.PermNone || change.Role == "" {
		return merged
	}

	entry := domain.SharePermission{
		TargetType: domain.Normalize(change.Target.TargetType),
		TargetID:   change.Target.TargetID,
		Permission: change.Role,
		SharedAt:   change.Now,
	}
	if change.RLS != nil {
		entry.AllowedPageIDs = append([]string(nil), change.RLS.AllowedPageIDs...)
		entry.RLS = change.RLS
	}
	return append(merged, entry)
}

// ShareService applies sharing transactions. The merge itself is pure;
// this service supplies the outer transactional apply step.
type ShareService struct {
	store    domain.WorkspaceStore
	resolver *PermissionResolver
	logger   *slog.Logger
	now      func() time.Time
}

// NewShareService creates a ShareService.
func NewShareService(store domain.WorkspaceStore, resolver *PermissionResolver, logger *slog.Logger) *ShareService {
	return &ShareService{
		store:    store,
		resolver: resolver,
		logger:   logger,
		now:      time.Now,
	}
}

// ApplyShareBatch applies a multi-asset sharing transaction: the folder,
// when present, and every dashboard named in the batch, as one atomic unit
// of work. The viewer must hold share rights on every affected asset. Any
// sub-step failure — an unknown asset, a permission check, a version
// conflict — rolls the whole batch back; callers retry the whole batch.
func (s *ShareService) ApplyShareBatch(ctx context.Context, viewer domain.Viewer, batch *domain.ShareBatch) error {
	if err := batch.Validate(); err != nil {
		return err
	}

	err := s.store.InTx(ctx, func(tx domain.WorkspaceTx) error {
		if batch.FolderID != "" {
			if err := s.applyToFolder(ctx, tx, viewer, batch); err != nil {
				return err
			}
		}
		for dashboardID, role := range batch.DashboardRoles {
			if err := s.applyToDashboard(ctx, tx, viewer, batch, dashboardID, role); err != nil {
				return err
			}
		}
		return tx.Audit().Insert(ctx, s.auditEntry(viewer, batch, nil))
	})
	if err != nil {
		s.logger.Warn("share batch rejected",
			"target", batch.Target.Key(),
			"folder_id", batch.FolderID,
			"dashboards", len(batch.DashboardRoles),
			"error", err)
		// Best effort; the transaction that would have carried the audit
		// row is already gone.
		_ = s.store.Audit().Insert(ctx, s.auditEntry(viewer, batch, err))
		return err
	}
	return nil
}

func (s *ShareService) applyToFolder(ctx context.Context, tx domain.WorkspaceTx, viewer domain.Viewer, batch *domain.ShareBatch) error {
	f, err := tx.Folders().GetByID(ctx, batch.FolderID)
	if err != nil {
		return err
	}
	if !s.resolver.CanShare(f.SharedWith, f.CreatedBy, viewer) {
		return domain.ErrAccessDenied("viewer may not share folder %s", f.ID)
	}
	// Folders carry no page restrictions or RLS.
	merged := MergeShares(f.SharedWith, ShareChange{
		Target: batch.Target,
		Role:   batch.FolderRole,
		Now:    s.now().UTC(),
	})
	if err := tx.Shares().ReplaceForAsset(ctx, domain.AssetFolder, f.ID, merged); err != nil {
		return err
	}
	return tx.Folders().BumpVersion(ctx, f.ID, f.Version)
}

func (s *ShareService) applyToDashboard(ctx context.Context, tx domain.WorkspaceTx, viewer domain.Viewer, batch *domain.ShareBatch, dashboardID string, role domain.Permission) error {
	d, err := tx.Dashboards().GetByID(ctx, dashboardID)
	if err != nil {
		return err
	}
	if !s.resolver.CanShare(d.SharedWith, d.CreatedBy, viewer) {
		return domain.ErrAccessDenied("viewer may not share dashboard %s", d.ID)
	}
	merged := MergeShares(d.SharedWith, ShareChange{
		Target: batch.Target,
		Role:   role,
		RLS:    batch.RLSByDashboard[dashboardID],
		Now:    s.now().UTC(),
	})
	if err := tx.Shares().ReplaceForAsset(ctx, domain.AssetDashboard, d.ID, merged); err != nil {
		return err
	}
	return tx.Dashboards().BumpVersion(ctx, d.ID, d.Version)
}

func (s *ShareService) auditEntry(viewer domain.Viewer, batch *domain.ShareBatch, cause error) *domain.AuditEntry {
	target := batch.Target.Key()
	assetType := domain.AssetDashboard
	assetID := ""
	if batch.FolderID != "" {
		assetType = domain.AssetFolder
		assetID = batch.FolderID
	}
	e := &domain.AuditEntry{
		ViewerID:  viewer.ID,
		Action:    domain.AuditShareBatch,
		AssetType: assetType,
		AssetID:   assetID,
		Target:    &target,
		Status:    "ALLOWED",
	}
	if cause != nil {
		msg := cause.Error()
		e.Status = "ERROR"
		e.ErrorMessage = &msg
	}
	return e
}

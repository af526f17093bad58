package service

import (
	"context"
	"log/slog"

	"lakeboard/internal/domain"
)

// HierarchyService owns the folder/dashboard tree: create, rename, move,
// and delete. Moves enforce acyclicity; deletes either cascade or reparent
// per policy. All mutations run inside a single storage transaction so a
// concurrent move cannot invalidate a cycle check between check and commit.
type HierarchyService struct {
	store          domain.WorkspaceStore
	resolver       *PermissionResolver
	logger         *slog.Logger
	cascadeDefault domain.CascadePolicy
}

// NewHierarchyService creates a HierarchyService. cascadeDefault is applied
// when a delete passes CascadeDefault; the workspace default is reparent.
func NewHierarchyService(store domain.WorkspaceStore, resolver *PermissionResolver, cascadeDefault domain.CascadePolicy, logger *slog.Logger) *HierarchyService {
	if cascadeDefault == domain.CascadeDefault {
		cascadeDefault = domain.CascadeReparent
	}
	return &HierarchyService{
		store:          store,
		resolver:       resolver,
		logger:         logger,
		cascadeDefault: cascadeDefault,
	}
}

// CreateFolder creates an empty folder owned by the viewer.
func (s *HierarchyService) CreateFolder(ctx context.Context, viewer domain.Viewer, req *domain.CreateFolderRequest) (*domain.Folder, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.ParentID != nil {
		if _, err := s.store.Folders().GetByID(ctx, *req.ParentID); err != nil {
			return nil, err
		}
	}
	f := &domain.Folder{
		ID:        domain.NewID(),
		Name:      req.Name,
		ParentID:  req.ParentID,
		CreatedBy: viewer.ID,
	}
	created, err := s.store.Folders().Create(ctx, f)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, viewer, domain.AuditCreateFolder, domain.AssetFolder, created.ID, nil)
	return created, nil
}

// CreateDashboard creates an empty dashboard owned by the viewer,
// optionally filed in an existing folder.
func (s *HierarchyService) CreateDashboard(ctx context.Context, viewer domain.Viewer, req *domain.CreateDashboardRequest) (*domain.Dashboard, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}
	if req.FolderID != nil {
		if _, err := s.store.Folders().GetByID(ctx, *req.FolderID); err != nil {
			return nil, err
		}
	}
	d := &domain.Dashboard{
		ID:        domain.NewID(),
		Title:     req.Title,
		FolderID:  req.FolderID,
		CreatedBy: viewer.ID,
	}
	for _, pageID := range req.PageIDs {
		d.Pages = append(d.Pages, domain.Page{ID: pageID})
	}
	created, err := s.store.Dashboards().Create(ctx, d)
	if err != nil {
		return nil, err
	}
	s.audit(ctx, viewer, domain.AuditCreateDashboard, domain.AssetDashboard, created.ID, nil)
	return created, nil
}

// RenameFolder renames a folder. Requires edit on the folder.
func (s *HierarchyService) RenameFolder(ctx context.Context, viewer domain.Viewer, req *domain.RenameFolderRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	err := s.store.InTx(ctx, func(tx domain.WorkspaceTx) error {
		f, err := tx.Folders().GetByID(ctx, req.FolderID)
		if err != nil {
			return err
		}
		if !s.resolver.CanEdit(f.SharedWith, f.CreatedBy, viewer) {
			return domain.ErrAccessDenied("viewer may not rename folder %s", f.ID)
		}
		return tx.Folders().Rename(ctx, f.ID, req.Name, f.Version)
	})
	s.audit(ctx, viewer, domain.AuditRenameFolder, domain.AssetFolder, req.FolderID, err)
	return err
}

// MoveFolder reparents a folder. A nil newParentID moves it to root. The
// move is rejected with CycleError when the destination is the folder
// itself or any of its descendants; the check walks the parent chain
// upward from the destination, so it costs tree depth, not tree size, and
// it runs inside the same transaction that commits the move.
func (s *HierarchyService) MoveFolder(ctx context.Context, viewer domain.Viewer, id string, newParentID *string) error {
	err := s.store.InTx(ctx, func(tx domain.WorkspaceTx) error {
		f, err := tx.Folders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.resolver.CanEdit(f.SharedWith, f.CreatedBy, viewer) {
			return domain.ErrAccessDenied("viewer may not move folder %s", f.ID)
		}
		if newParentID != nil {
			if err := s.checkNoCycle(ctx, tx, id, *newParentID); err != nil {
				return err
			}
		}
		return tx.Folders().SetParent(ctx, id, newParentID, f.Version)
	})
	s.audit(ctx, viewer, domain.AuditMoveFolder, domain.AssetFolder, id, err)
	return err
}

// MoveDashboard files a dashboard into a folder, or unfiles it when
// newFolderID is nil. Dashboards are leaves, so no cycle is possible.
func (s *HierarchyService) MoveDashboard(ctx context.Context, viewer domain.Viewer, id string, newFolderID *string) error {
	err := s.store.InTx(ctx, func(tx domain.WorkspaceTx) error {
		d, err := tx.Dashboards().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.resolver.CanEdit(d.SharedWith, d.CreatedBy, viewer) {
			return domain.ErrAccessDenied("viewer may not move dashboard %s", d.ID)
		}
		if newFolderID != nil {
			if _, err := tx.Folders().GetByID(ctx, *newFolderID); err != nil {
				return err
			}
		}
		return tx.Dashboards().SetFolder(ctx, id, newFolderID, d.Version)
	})
	s.audit(ctx, viewer, domain.AuditMoveDashboard, domain.AssetDashboard, id, err)
	return err
}

// DeleteFolder deletes a folder under the given cascade policy. Requires
// share rights (admin or creator) on the folder. CascadeDelete removes the
// whole subtree including every dashboard filed in it; CascadeReparent
// moves direct children to the deleted folder's own parent, so deeper
// descendants ride along with their subfolders and stay independently
// shareable.
func (s *HierarchyService) DeleteFolder(ctx context.Context, viewer domain.Viewer, id string, policy domain.CascadePolicy) error {
	if err := policy.Validate(); err != nil {
		return err
	}
	if policy == domain.CascadeDefault {
		policy = s.cascadeDefault
	}
	err := s.store.InTx(ctx, func(tx domain.WorkspaceTx) error {
		f, err := tx.Folders().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.resolver.CanShare(f.SharedWith, f.CreatedBy, viewer) {
			return domain.ErrAccessDenied("viewer may not delete folder %s", f.ID)
		}
		if policy == domain.CascadeDelete {
			return s.deleteSubtree(ctx, tx, f)
		}
		return s.reparentAndDelete(ctx, tx, f)
	})
	s.audit(ctx, viewer, domain.AuditDeleteFolder, domain.AssetFolder, id, err)
	return err
}

// DeleteDashboard deletes a dashboard and its grants. Requires share
// rights on the dashboard.
func (s *HierarchyService) DeleteDashboard(ctx context.Context, viewer domain.Viewer, id string) error {
	err := s.store.InTx(ctx, func(tx domain.WorkspaceTx) error {
		d, err := tx.Dashboards().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !s.resolver.CanShare(d.SharedWith, d.CreatedBy, viewer) {
			return domain.ErrAccessDenied("viewer may not delete dashboard %s", d.ID)
		}
		return s.removeDashboard(ctx, tx, d.ID)
	})
	s.audit(ctx, viewer, domain.AuditDeleteDashboard, domain.AssetDashboard, id, err)
	return err
}

// checkNoCycle walks the parent chain upward from the destination folder.
// Encountering the moved folder means the destination sits inside it.
func (s *HierarchyService) checkNoCycle(ctx context.Context, tx domain.WorkspaceTx, movedID, destID string) error {
	if destID == movedID {
		return domain.ErrCycle("cannot move folder %s into itself", movedID)
	}
	current := destID
	for {
		f, err := tx.Folders().GetByID(ctx, current)
		if err != nil {
			return err
		}
		if f.ParentID == nil {
			return nil
		}
		if *f.ParentID == movedID {
			return domain.ErrCycle("cannot move folder %s under its descendant %s", movedID, destID)
		}
		current = *f.ParentID
	}
}

func (s *HierarchyService) deleteSubtree(ctx context.Context, tx domain.WorkspaceTx, f *domain.Folder) error {
	children, err := tx.Folders().ListChildren(ctx, &f.ID)
	if err != nil {
		return err
	}
	for i := range children {
		if err := s.deleteSubtree(ctx, tx, &children[i]); err != nil {
			return err
		}
	}
	dashboards, err := tx.Dashboards().ListByFolder(ctx, &f.ID)
	if err != nil {
		return err
	}
	for i := range dashboards {
		if err := s.removeDashboard(ctx, tx, dashboards[i].ID); err != nil {
			return err
		}
	}
	return s.removeFolder(ctx, tx, f.ID)
}

func (s *HierarchyService) reparentAndDelete(ctx context.Context, tx domain.WorkspaceTx, f *domain.Folder) error {
	children, err := tx.Folders().ListChildren(ctx, &f.ID)
	if err != nil {
		return err
	}
	for i := range children {
		if err := tx.Folders().SetParent(ctx, children[i].ID, f.ParentID, children[i].Version); err != nil {
			return err
		}
	}
	dashboards, err := tx.Dashboards().ListByFolder(ctx, &f.ID)
	if err != nil {
		return err
	}
	for i := range dashboards {
		if err := tx.Dashboards().SetFolder(ctx, dashboards[i].ID, f.ParentID, dashboards[i].Version); err != nil {
			return err
		}
	}
	return s.removeFolder(ctx, tx, f.ID)
}

func (s *HierarchyService) removeFolder(ctx context.Context, tx domain.WorkspaceTx, id string) error {
	if err := tx.Shares().DeleteForAsset(ctx, domain.AssetFolder, id); err != nil {
		return err
	}
	return tx.Folders().Delete(ctx, id)
}

func (s *HierarchyService) removeDashboard(ctx context.Context, tx domain.WorkspaceTx, id string) error {
	if err := tx.Shares().DeleteForAsset(ctx, domain.AssetDashboard, id); err != nil {
		return err
	}
	return tx.Dashboards().Delete(ctx, id)
}

func (s *HierarchyService) audit(ctx context.Context, viewer domain.Viewer, action, assetType, assetID string, cause error) {
	e := &domain.AuditEntry{
		ViewerID:  viewer.ID,
		Action:    action,
		AssetType: assetType,
		AssetID:   assetID,
		Status:    "ALLOWED",
	}
	if cause != nil {
		msg := cause.Error()
		e.Status = "ERROR"
		e.ErrorMessage = &msg
	}
	if err := s.store.Audit().Insert(ctx, e); err != nil {
		s.logger.Warn("audit insert failed", "action", action, "error", err)
	}
}

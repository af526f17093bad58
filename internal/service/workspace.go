package service

import (
	"context"
	"log/slog"

	"lakeboard/internal/domain"
	"lakeboard/internal/rls"
)

// Workspace is the single entry point external collaborators call. It
// composes the permission resolver, share merge engine, and hierarchy
// manager; mutations run on the write store, snapshot reads on reads.
type Workspace struct {
	store     domain.WorkspaceStore
	reads     domain.WorkspaceStore
	resolver  *PermissionResolver
	shares    *ShareService
	hierarchy *HierarchyService
	logger    *slog.Logger
}

// NewWorkspace wires the workspace facade. Mutations go through store;
// snapshot reads (permission resolution, page visibility, row filtering)
// go through reads, which is typically backed by the wider read pool. A
// nil reads falls back to store.
func NewWorkspace(store, reads domain.WorkspaceStore, policy AccessPolicy, cascadeDefault domain.CascadePolicy, logger *slog.Logger) *Workspace {
	if reads == nil {
		reads = store
	}
	resolver := NewPermissionResolver(policy)
	return &Workspace{
		store:     store,
		reads:     reads,
		resolver:  resolver,
		shares:    NewShareService(store, resolver, logger.With("component", "share-merge")),
		hierarchy: NewHierarchyService(store, resolver, cascadeDefault, logger.With("component", "hierarchy")),
		logger:    logger,
	}
}

// Resolver exposes the permission resolver for callers that already hold
// an asset snapshot.
func (w *Workspace) Resolver() *PermissionResolver { return w.resolver }

// Hierarchy exposes the hierarchy manager for asset creation.
func (w *Workspace) Hierarchy() *HierarchyService { return w.hierarchy }

// ResolvePermission computes the viewer's effective permission on an
// asset. "Not allowed" is a normal value, never an error: unknown levels
// of access come back as none and callers decide what is fatal.
func (w *Workspace) ResolvePermission(ctx context.Context, assetType, assetID string, viewer domain.Viewer) (domain.Permission, error) {
	switch assetType {
	case domain.AssetFolder:
		f, err := w.reads.Folders().GetByID(ctx, assetID)
		if err != nil {
			return domain.PermNone, err
		}
		return w.resolver.ResolveFolder(f, viewer), nil
	case domain.AssetDashboard:
		d, err := w.reads.Dashboards().GetByID(ctx, assetID)
		if err != nil {
			return domain.PermNone, err
		}
		return w.resolver.ResolveDashboard(d, viewer), nil
	default:
		return domain.PermNone, domain.ErrValidation("unknown asset type %q", assetType)
	}
}

// VisiblePages returns the page ids on the dashboard the viewer may see.
func (w *Workspace) VisiblePages(ctx context.Context, dashboardID string, viewer domain.Viewer) ([]string, error) {
	d, err := w.reads.Dashboards().GetByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	return w.resolver.VisiblePages(d, viewer), nil
}

// FilterRows applies the viewer's effective RLS predicate to the rows: the
// conjunction of every rule attached to the viewer's matching shares. A
// viewer with no access gets no rows. Malformed rule structure aborts the
// whole row set with ConfigError rather than silently leaking rows.
func (w *Workspace) FilterRows(ctx context.Context, dashboardID string, viewer domain.Viewer, rows []domain.Row) ([]domain.Row, error) {
	d, err := w.reads.Dashboards().GetByID(ctx, dashboardID)
	if err != nil {
		return nil, err
	}
	if w.resolver.ResolveDashboard(d, viewer) == domain.PermNone {
		return []domain.Row{}, nil
	}
	cfgs := w.resolver.EffectiveRLS(d, viewer)
	if len(cfgs) == 0 {
		return rows, nil
	}

	filtered := make([]domain.Row, 0, len(rows))
	for _, row := range rows {
		ok, err := rls.EvaluateAll(cfgs, row)
		if err != nil {
			return nil, err
		}
		if ok {
			filtered = append(filtered, row)
		}
	}
	return filtered, nil
}

// ApplyShareBatch applies a sharing transaction atomically across the
// folder and dashboards it names.
func (w *Workspace) ApplyShareBatch(ctx context.Context, viewer domain.Viewer, batch *domain.ShareBatch) error {
	return w.shares.ApplyShareBatch(ctx, viewer, batch)
}

// MoveAsset reparents a folder or refiles a dashboard. A nil newParentID
// moves the asset to root.
func (w *Workspace) MoveAsset(ctx context.Context, viewer domain.Viewer, assetType, assetID string, newParentID *string) error {
	switch assetType {
	case domain.AssetFolder:
		return w.hierarchy.MoveFolder(ctx, viewer, assetID, newParentID)
	case domain.AssetDashboard:
		return w.hierarchy.MoveDashboard(ctx, viewer, assetID, newParentID)
	default:
		return domain.ErrValidation("unknown asset type %q", assetType)
	}
}

// DeleteAsset deletes a folder (under the cascade policy) or a dashboard.
func (w *Workspace) DeleteAsset(ctx context.Context, viewer domain.Viewer, assetType, assetID string, policy domain.CascadePolicy) error {
	switch assetType {
	case domain.AssetFolder:
		return w.hierarchy.DeleteFolder(ctx, viewer, assetID, policy)
	case domain.AssetDashboard:
		return w.hierarchy.DeleteDashboard(ctx, viewer, assetID)
	default:
		return domain.ErrValidation("unknown asset type %q", assetType)
	}
}

// Package service implements the workspace engine: permission resolution,
// share merging, hierarchy management, and the facade external callers use.
package service

import (
	"lakeboard/internal/domain"
)

// AccessPolicy makes the resolver's fallback behavior explicit and
// swappable: what a creator holds with no matching share, and what anyone
// holds on ownerless legacy assets that carry no shares.
type AccessPolicy struct {
	CreatorPermission   domain.Permission
	OwnerlessPermission domain.Permission
}

// DefaultAccessPolicy grants admin to creators and treats ownerless assets
// as admin-for-everyone, matching the historical workspace behavior.
func DefaultAccessPolicy() AccessPolicy {
	return AccessPolicy{
		CreatorPermission:   domain.PermAdmin,
		OwnerlessPermission: domain.PermAdmin,
	}
}

// PermissionResolver computes the effective permission a viewer holds on an
// asset. Resolution is a pure read over the asset snapshot.
type PermissionResolver struct {
	policy AccessPolicy
}

// NewPermissionResolver creates a resolver with the given fallback policy.
func NewPermissionResolver(policy AccessPolicy) *PermissionResolver {
	return &PermissionResolver{policy: policy}
}

// Resolve computes the effective permission from an asset's share list and
// creator. The highest-ranked matching share wins — a viewer granted
// access via both an individual and a group share gets the more
// permissive, never the more restrictive. Creators resolve to at least the
// creator permission regardless of conflicting explicit shares; assets
// with no creator and no matching share fall back to the ownerless
// permission.
func (r *PermissionResolver) Resolve(shares []domain.SharePermission, createdBy string, viewer domain.Viewer) domain.Permission {
	best := domain.PermNone
	matched := false
	for i := range shares {
		if !shares[i].MatchesViewer(viewer) {
			continue
		}
		matched = true
		if shares[i].Permission.Rank() > best.Rank() {
			best = shares[i].Permission
		}
	}
	if r.isCreator(createdBy, viewer) && r.policy.CreatorPermission.Rank() > best.Rank() {
		best = r.policy.CreatorPermission
	}
	if !matched && createdBy == "" && r.policy.OwnerlessPermission.Rank() > best.Rank() {
		best = r.policy.OwnerlessPermission
	}
	return best
}

// ResolveFolder computes the viewer's effective permission on a folder.
func (r *PermissionResolver) ResolveFolder(f *domain.Folder, viewer domain.Viewer) domain.Permission {
	return r.Resolve(f.SharedWith, f.CreatedBy, viewer)
}

// ResolveDashboard computes the viewer's effective permission on a
// dashboard. Folder-level grants do not cascade here: a dashboard checks
// its own share list only.
func (r *PermissionResolver) ResolveDashboard(d *domain.Dashboard, viewer domain.Viewer) domain.Permission {
	return r.Resolve(d.SharedWith, d.CreatedBy, viewer)
}

// CanEdit reports whether the viewer holds at least edit.
func (r *PermissionResolver) CanEdit(shares []domain.SharePermission, createdBy string, viewer domain.Viewer) bool {
	return r.Resolve(shares, createdBy, viewer).AtLeast(domain.PermEdit)
}

// CanShare reports whether the viewer may (re)share the asset: admin level,
// or the creator. Creators keep share rights even when their own explicit
// grant was downgraded — self-lockout on your own asset is not permitted.
func (r *PermissionResolver) CanShare(shares []domain.SharePermission, createdBy string, viewer domain.Viewer) bool {
	if r.isCreator(createdBy, viewer) {
		return true
	}
	return r.Resolve(shares, createdBy, viewer) == domain.PermAdmin
}

// VisiblePages computes the dashboard pages the viewer may see. Restriction
// is additive allow-listing: the result is the union of AllowedPageIDs
// across the viewer's matching shares, and any matching share without a
// restriction opens all pages. Admins and creators are never
// page-restricted, even when a stale share entry carries one.
func (r *PermissionResolver) VisiblePages(d *domain.Dashboard, viewer domain.Viewer) []string {
	perm := r.ResolveDashboard(d, viewer)
	if perm == domain.PermNone {
		return []string{}
	}
	if perm == domain.PermAdmin || r.isCreator(d.CreatedBy, viewer) {
		return d.PageIDs()
	}

	allowed := map[string]bool{}
	restricted := false
	unrestricted := false
	for i := range d.SharedWith {
		s := &d.SharedWith[i]
		if !s.MatchesViewer(viewer) {
			continue
		}
		if len(s.AllowedPageIDs) == 0 {
			unrestricted = true
			continue
		}
		restricted = true
		for _, id := range s.AllowedPageIDs {
			allowed[id] = true
		}
	}
	if unrestricted || !restricted {
		return d.PageIDs()
	}

	// Keep dashboard page order; drop stale allow-list entries that no
	// longer reference a real page.
	pages := make([]string, 0, len(allowed))
	for _, p := range d.Pages {
		if allowed[p.ID] {
			pages = append(pages, p.ID)
		}
	}
	return pages
}

// EffectiveRLS returns the RLS configs whose rules restrict the viewer's
// rows on the dashboard: every config attached to a matching share.
// Ownership does not imply RLS — a creator is never row-restricted, and an
// admin grant is restricted only by rules explicitly configured on it.
func (r *PermissionResolver) EffectiveRLS(d *domain.Dashboard, viewer domain.Viewer) []*domain.RLSConfig {
	if r.isCreator(d.CreatedBy, viewer) {
		return nil
	}
	var cfgs []*domain.RLSConfig
	for i := range d.SharedWith {
		s := &d.SharedWith[i]
		if s.RLS != nil && s.MatchesViewer(viewer) {
			cfgs = append(cfgs, s.RLS)
		}
	}
	return cfgs
}

func (r *PermissionResolver) isCreator(createdBy string, viewer domain.Viewer) bool {
	return createdBy != "" && viewer.IsCurrentUser(createdBy)
}

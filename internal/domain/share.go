package domain

import "time"

// Permission is the effective access level a viewer holds on an asset.
type Permission string

// Permission levels, lowest to highest.
const (
	PermNone  Permission = "none"
	PermView  Permission = "view"
	PermEdit  Permission = "edit"
	PermAdmin Permission = "admin"
)

var permRanks = map[Permission]int{
	PermNone:  0,
	PermView:  1,
	PermEdit:  2,
	PermAdmin: 3,
}

// Rank returns the ordering rank of the permission. Unknown permissions
// rank as none.
func (p Permission) Rank() int {
	return permRanks[p]
}

// AtLeast reports whether p grants at least the level of other.
func (p Permission) AtLeast(other Permission) bool {
	return p.Rank() >= other.Rank()
}

// Valid reports whether p is a known permission level.
func (p Permission) Valid() bool {
	_, ok := permRanks[p]
	return ok
}

// SharePermission binds a target identity to a permission level on an asset.
// AllowedPageIDs and RLS only ever apply to dashboard shares; folder shares
// carry neither.
type SharePermission struct {
	TargetType     string     `json:"targetType"` // "user" or "group"
	TargetID       string     `json:"targetId"`
	Permission     Permission `json:"permission"`
	SharedAt       time.Time  `json:"sharedAt"`
	AllowedPageIDs []string   `json:"allowedPageIds,omitempty"`
	RLS            *RLSConfig `json:"rls,omitempty"`
}

// Key returns the share's upsert identity within an asset.
func (s SharePermission) Key() string {
	return TargetKey(s.TargetType, s.TargetID)
}

// MatchesViewer reports whether this share applies to the viewer: user
// shares match by viewer id or email, group shares by group membership.
func (s SharePermission) MatchesViewer(v Viewer) bool {
	switch Normalize(s.TargetType) {
	case TargetUser:
		return v.IsCurrentUser(s.TargetID)
	case TargetGroup:
		return v.InGroup(s.TargetID)
	default:
		return false
	}
}

// ShareTarget identifies the grantee of a share batch.
type ShareTarget struct {
	TargetType string `json:"targetType"`
	TargetID   string `json:"targetId"`
}

// Key returns the target's upsert identity.
func (t ShareTarget) Key() string {
	return TargetKey(t.TargetType, t.TargetID)
}

// Validate checks that the target is well-formed.
func (t ShareTarget) Validate() error {
	if Normalize(t.TargetID) == "" {
		return ErrValidation("target_id is required")
	}
	if nt := Normalize(t.TargetType); nt != TargetUser && nt != TargetGroup {
		return ErrValidation("target_type must be 'user' or 'group'")
	}
	return nil
}

// ShareBatch is one sharing transaction: a role change for a single target
// across a folder and the dashboards it contains. The batch is applied
// atomically; a role of "none" revokes the target's entry on that asset.
type ShareBatch struct {
	FolderID       string                `json:"folderId,omitempty"` // empty when no folder is affected
	FolderRole     Permission            `json:"folderRole,omitempty"`
	DashboardRoles map[string]Permission `json:"dashboardRoles,omitempty"`
	RLSByDashboard map[string]*RLSConfig `json:"rlsByDashboard,omitempty"`
	Target         ShareTarget           `json:"target"`
}

// Validate checks that the batch is well-formed.
func (b *ShareBatch) Validate() error {
	if err := b.Target.Validate(); err != nil {
		return err
	}
	if b.FolderID == "" && len(b.DashboardRoles) == 0 {
		return ErrValidation("share batch affects no assets")
	}
	if b.FolderID != "" && !b.FolderRole.Valid() {
		return ErrValidation("folder role %q is not a valid permission", b.FolderRole)
	}
	for id, role := range b.DashboardRoles {
		if id == "" {
			return ErrValidation("dashboard id is required")
		}
		if !role.Valid() {
			return ErrValidation("dashboard role %q is not a valid permission", role)
		}
	}
	for id, cfg := range b.RLSByDashboard {
		if _, ok := b.DashboardRoles[id]; !ok {
			return ErrValidation("rls config for dashboard %q without a role", id)
		}
		if cfg != nil {
			if err := cfg.Validate(); err != nil {
				return err
			}
		}
	}
	return nil
}

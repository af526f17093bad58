package domain

import "strings"

// Viewer is the trusted identity the engine authorizes against. It is
// supplied by the authentication layer; the engine never authenticates.
// Viewers may be identified interchangeably by id or email — invite flows
// often only have an email on hand.
type Viewer struct {
	ID     string
	Email  string
	Groups []string
}

// TargetType discriminates share grantees.
const (
	TargetUser  = "user"
	TargetGroup = "group"
)

// Normalize canonicalizes a user or group identifier for comparison:
// whitespace trimmed, lowercased. Empty input normalizes to the empty
// string, which never matches anything.
func Normalize(raw string) string {
	return strings.ToLower(strings.TrimSpace(raw))
}

// IsCurrentUser reports whether candidate identifies the viewer, matching
// against either the viewer id or the viewer email.
func (v Viewer) IsCurrentUser(candidate string) bool {
	c := Normalize(candidate)
	if c == "" {
		return false
	}
	return c == Normalize(v.ID) || c == Normalize(v.Email)
}

// InGroup reports whether the viewer belongs to the named group.
func (v Viewer) InGroup(group string) bool {
	g := Normalize(group)
	if g == "" {
		return false
	}
	for _, mine := range v.Groups {
		if Normalize(mine) == g {
			return true
		}
	}
	return false
}

// TargetKey computes the upsert identity of a share target. At most one
// active share per (asset, target key) exists; the merge engine enforces
// this by replace-on-write.
func TargetKey(targetType, targetID string) string {
	return Normalize(targetType) + ":" + Normalize(targetID)
}

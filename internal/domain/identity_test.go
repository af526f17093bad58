package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "alice@example.com", Normalize("  Alice@Example.COM "))
	assert.Equal(t, "", Normalize("   "))
}

func TestIsCurrentUser(t *testing.T) {
	v := Viewer{ID: "U-Alice", Email: "Alice@Example.com"}

	assert.True(t, v.IsCurrentUser("u-alice"))
	assert.True(t, v.IsCurrentUser(" ALICE@example.com "))
	assert.False(t, v.IsCurrentUser("u-bob"))
	assert.False(t, v.IsCurrentUser(""), "empty identifier never matches")

	empty := Viewer{}
	assert.False(t, empty.IsCurrentUser(""), "empty never matches empty")
}

func TestInGroup(t *testing.T) {
	v := Viewer{ID: "u-alice", Groups: []string{"Analysts", " emea "}}

	assert.True(t, v.InGroup("analysts"))
	assert.True(t, v.InGroup("EMEA"))
	assert.False(t, v.InGroup("finance"))
	assert.False(t, v.InGroup(""))
}

func TestTargetKey(t *testing.T) {
	assert.Equal(t, "user:alice@example.com", TargetKey("User", " Alice@Example.com "))
	assert.Equal(t,
		TargetKey("group", "Analysts"),
		SharePermission{TargetType: "GROUP", TargetID: " analysts"}.Key(),
	)
}

func TestMatchesViewer(t *testing.T) {
	v := Viewer{ID: "u-alice", Email: "alice@example.com", Groups: []string{"analysts"}}

	assert.True(t, SharePermission{TargetType: TargetUser, TargetID: "alice@example.com"}.MatchesViewer(v))
	assert.True(t, SharePermission{TargetType: "User", TargetID: "U-ALICE"}.MatchesViewer(v))
	assert.True(t, SharePermission{TargetType: TargetGroup, TargetID: "Analysts"}.MatchesViewer(v))
	assert.False(t, SharePermission{TargetType: TargetGroup, TargetID: "u-alice"}.MatchesViewer(v),
		"group shares never match by user id")
	assert.False(t, SharePermission{TargetType: "service", TargetID: "u-alice"}.MatchesViewer(v))
}

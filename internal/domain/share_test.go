package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPermissionRanking(t *testing.T) {
	assert.True(t, PermAdmin.AtLeast(PermEdit))
	assert.True(t, PermEdit.AtLeast(PermEdit))
	assert.False(t, PermView.AtLeast(PermEdit))
	assert.False(t, PermNone.AtLeast(PermView))

	// Unknown permissions rank at zero.
	assert.Equal(t, 0, Permission("owner").Rank())
	assert.False(t, Permission("owner").Valid())
	assert.True(t, PermNone.Valid())
}

func TestShareTargetValidate(t *testing.T) {
	assert.NoError(t, ShareTarget{TargetType: "user", TargetID: "u1"}.Validate())
	assert.NoError(t, ShareTarget{TargetType: "GROUP ", TargetID: "analysts"}.Validate())

	var ve *ValidationError
	assert.ErrorAs(t, ShareTarget{TargetType: "user", TargetID: "  "}.Validate(), &ve)
	assert.ErrorAs(t, ShareTarget{TargetType: "robot", TargetID: "r2"}.Validate(), &ve)
}

func TestShareBatchValidate(t *testing.T) {
	target := ShareTarget{TargetType: TargetUser, TargetID: "u1"}

	t.Run("valid batch", func(t *testing.T) {
		b := &ShareBatch{
			FolderID:       "f1",
			FolderRole:     PermView,
			DashboardRoles: map[string]Permission{"d1": PermNone},
			RLSByDashboard: map[string]*RLSConfig{"d1": nil},
			Target:         target,
		}
		assert.NoError(t, b.Validate())
	})

	t.Run("must affect something", func(t *testing.T) {
		var ve *ValidationError
		assert.ErrorAs(t, (&ShareBatch{Target: target}).Validate(), &ve)
	})

	t.Run("rejects unknown roles", func(t *testing.T) {
		var ve *ValidationError
		b := &ShareBatch{FolderID: "f1", FolderRole: "owner", Target: target}
		assert.ErrorAs(t, b.Validate(), &ve)

		b = &ShareBatch{DashboardRoles: map[string]Permission{"d1": "super"}, Target: target}
		assert.ErrorAs(t, b.Validate(), &ve)
	})

	t.Run("rejects rls without a role", func(t *testing.T) {
		var ve *ValidationError
		b := &ShareBatch{
			FolderID:       "f1",
			FolderRole:     PermView,
			RLSByDashboard: map[string]*RLSConfig{"d1": nil},
			Target:         target,
		}
		assert.ErrorAs(t, b.Validate(), &ve)
	})

	t.Run("rejects malformed rls rules", func(t *testing.T) {
		var ce *ConfigError
		b := &ShareBatch{
			DashboardRoles: map[string]Permission{"d1": PermView},
			RLSByDashboard: map[string]*RLSConfig{"d1": {Rules: []RLSRule{{
				Combinator: CombinatorAnd,
				Conditions: []RLSCondition{{Field: "x", Operator: "matches"}},
			}}}},
			Target: target,
		}
		assert.ErrorAs(t, b.Validate(), &ce)
	})
}

func TestCascadePolicyValidate(t *testing.T) {
	assert.NoError(t, CascadeDefault.Validate())
	assert.NoError(t, CascadeDelete.Validate())
	assert.NoError(t, CascadeReparent.Validate())

	var ve *ValidationError
	assert.ErrorAs(t, CascadePolicy("archive").Validate(), &ve)
}

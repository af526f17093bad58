package service

import (
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lakeboard/internal/domain"
)

func TestMergeSharesUpsert(t *testing.T) {
	now := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	current := []domain.SharePermission{
		{TargetType: domain.TargetUser, TargetID: "u-bob", Permission: domain.PermEdit},
		{TargetType: domain.TargetGroup, TargetID: "analysts", Permission: domain.PermView},
	}

	merged := MergeShares(current, ShareChange{
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
		Role:   domain.PermView,
		Now:    now,
	})

	require.Len(t, merged, 2, "re-sharing the same target replaces, never duplicates")
	assert.Equal(t, domain.PermView, merged[1].Permission)
	assert.Equal(t, "u-bob", merged[1].TargetID)
	assert.Equal(t, now, merged[1].SharedAt)
	assert.Equal(t, "analysts", merged[0].TargetID, "other targets pass through")
}

func TestMergeSharesRevoke(t *testing.T) {
	current := []domain.SharePermission{
		{TargetType: domain.TargetUser, TargetID: "u-bob", Permission: domain.PermEdit},
		{TargetType: domain.TargetGroup, TargetID: "analysts", Permission: domain.PermView},
	}

	merged := MergeShares(current, ShareChange{
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
		Role:   domain.PermNone,
	})
	require.Len(t, merged, 1)
	assert.Equal(t, "analysts", merged[0].TargetID)

	// Revoking a target that holds nothing is a no-op, not an error.
	merged = MergeShares(merged, ShareChange{
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-ghost"},
		Role:   domain.PermNone,
	})
	assert.Len(t, merged, 1)
}

func TestMergeSharesKeyIsCaseInsensitive(t *testing.T) {
	current := []domain.SharePermission{
		{TargetType: "User", TargetID: "Bob@Example.com", Permission: domain.PermView},
	}

	merged := MergeShares(current, ShareChange{
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "  bob@example.com "},
		Role:   domain.PermAdmin,
	})
	require.Len(t, merged, 1)
	assert.Equal(t, domain.PermAdmin, merged[0].Permission)
	assert.Equal(t, domain.TargetUser, merged[0].TargetType, "target type is stored normalized")
}

func TestMergeSharesCopiesPageAllowList(t *testing.T) {
	cfg := &domain.RLSConfig{AllowedPageIDs: []string{"p1", "p2"}}

	merged := MergeShares(nil, ShareChange{
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
		Role:   domain.PermView,
		RLS:    cfg,
	})
	require.Len(t, merged, 1)
	assert.Equal(t, []string{"p1", "p2"}, merged[0].AllowedPageIDs)
	assert.Same(t, cfg, merged[0].RLS)
}

func TestApplyShareBatchAcrossFolderAndDashboards(t *testing.T) {
	ws, store := newTestWorkspace(t)

	f := mustCreateFolder(t, ws, alice, "Sales", nil)
	d1 := mustCreateDashboard(t, ws, alice, "Revenue", &f.ID, "p1")
	d2 := mustCreateDashboard(t, ws, alice, "Pipeline", &f.ID, "p1")

	batch := &domain.ShareBatch{
		FolderID:   f.ID,
		FolderRole: domain.PermView,
		DashboardRoles: map[string]domain.Permission{
			d1.ID: domain.PermEdit,
			d2.ID: domain.PermView,
		},
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
	}
	require.NoError(t, ws.ApplyShareBatch(ctx, alice, batch))

	perm, err := ws.ResolvePermission(ctx, domain.AssetFolder, f.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.PermView, perm)

	perm, err = ws.ResolvePermission(ctx, domain.AssetDashboard, d1.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.PermEdit, perm)

	perm, err = ws.ResolvePermission(ctx, domain.AssetDashboard, d2.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.PermView, perm)

	entries, err := store.Audit().List(ctx, domain.AuditFilter{Action: domain.AuditShareBatch})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "ALLOWED", entries[0].Status)
}

func TestApplyShareBatchRejectsNonSharer(t *testing.T) {
	ws, store := newTestWorkspace(t)

	f := mustCreateFolder(t, ws, alice, "Sales", nil)
	// Bob only holds edit on the folder; sharing needs admin or ownership.
	require.NoError(t, ws.ApplyShareBatch(ctx, alice, &domain.ShareBatch{
		FolderID:   f.ID,
		FolderRole: domain.PermEdit,
		Target:     domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
	}))

	err := ws.ApplyShareBatch(ctx, bob, &domain.ShareBatch{
		FolderID:   f.ID,
		FolderRole: domain.PermAdmin,
		Target:     domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-carol"},
	})
	var denied *domain.AccessDeniedError
	require.ErrorAs(t, err, &denied)

	// The rejected attempt still leaves an audit trail.
	entries, err := store.Audit().List(ctx, domain.AuditFilter{Status: "ERROR"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "u-bob", entries[0].ViewerID)
}

func TestApplyShareBatchIsAtomic(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	f := mustCreateFolder(t, ws, alice, "Sales", nil)

	// One unknown dashboard poisons the whole batch: the folder share must
	// not survive the rollback.
	err := ws.ApplyShareBatch(ctx, alice, &domain.ShareBatch{
		FolderID:       f.ID,
		FolderRole:     domain.PermView,
		DashboardRoles: map[string]domain.Permission{"missing-dashboard": domain.PermView},
		Target:         domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
	})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)

	perm, err := ws.ResolvePermission(ctx, domain.AssetFolder, f.ID, bob)
	require.NoError(t, err)
	assert.Equal(t, domain.PermNone, perm)
}

func TestApplyShareBatchRevokes(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	d := mustCreateDashboard(t, ws, alice, "Revenue", nil, "p1")
	target := domain.ShareTarget{TargetType: domain.TargetGroup, TargetID: "analysts"}
	shareDashboard(t, ws, alice, d.ID, target, domain.PermEdit, nil)

	member := domain.Viewer{ID: "u-dora", Groups: []string{"analysts"}}
	perm, err := ws.ResolvePermission(ctx, domain.AssetDashboard, d.ID, member)
	require.NoError(t, err)
	require.Equal(t, domain.PermEdit, perm)

	shareDashboard(t, ws, alice, d.ID, target, domain.PermNone, nil)
	perm, err = ws.ResolvePermission(ctx, domain.AssetDashboard, d.ID, member)
	require.NoError(t, err)
	assert.Equal(t, domain.PermNone, perm)

	got, err := ws.store.Dashboards().GetByID(ctx, d.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SharedWith, "revocation removes the row, not just the rank")
}

func TestApplyShareBatchValidation(t *testing.T) {
	ws, _ := newTestWorkspace(t)

	var ve *domain.ValidationError

	err := ws.ApplyShareBatch(ctx, alice, &domain.ShareBatch{
		Target: domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
	})
	assert.ErrorAs(t, err, &ve, "empty batch")

	err = ws.ApplyShareBatch(ctx, alice, &domain.ShareBatch{
		FolderID:   "f1",
		FolderRole: "owner",
		Target:     domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
	})
	assert.ErrorAs(t, err, &ve, "unknown role")

	err = ws.ApplyShareBatch(ctx, alice, &domain.ShareBatch{
		FolderID:   "f1",
		FolderRole: domain.PermView,
		Target:     domain.ShareTarget{TargetType: "robot", TargetID: "r2"},
	})
	assert.ErrorAs(t, err, &ve, "unknown target type")

	err = ws.ApplyShareBatch(ctx, alice, &domain.ShareBatch{
		RLSByDashboard: map[string]*domain.RLSConfig{"d1": nil},
		FolderID:       "f1",
		FolderRole:     domain.PermView,
		Target:         domain.ShareTarget{TargetType: domain.TargetUser, TargetID: "u-bob"},
	})
	assert.ErrorAs(t, err, &ve, "rls for a dashboard the batch gives no role")
}

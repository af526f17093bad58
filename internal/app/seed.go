package app

import (
	"context"
	"fmt"

	"lakeboard/internal/domain"
)

// SeedDemo populates an empty workspace with demo folders, dashboards, and
// shares. Idempotent — returns immediately when any folder already exists.
func (a *App) SeedDemo(ctx context.Context) error {
	existing, err := a.Store.Folders().List(ctx)
	if err != nil {
		return fmt.Errorf("check existing folders: %w", err)
	}
	if len(existing) > 0 {
		return nil // already seeded
	}

	admin := domain.Viewer{ID: "demo-admin", Email: "admin@example.com", Groups: []string{"admins"}}
	ws := a.Workspace

	sales, err := ws.Hierarchy().CreateFolder(ctx, admin, &domain.CreateFolderRequest{Name: "Sales"})
	if err != nil {
		return fmt.Errorf("create Sales folder: %w", err)
	}
	regional, err := ws.Hierarchy().CreateFolder(ctx, admin, &domain.CreateFolderRequest{
		Name: "Regional", ParentID: &sales.ID,
	})
	if err != nil {
		return fmt.Errorf("create Regional folder: %w", err)
	}

	revenue, err := ws.Hierarchy().CreateDashboard(ctx, admin, &domain.CreateDashboardRequest{
		Title:    "Revenue Overview",
		FolderID: &regional.ID,
		PageIDs:  []string{"summary", "by-region", "forecast"},
	})
	if err != nil {
		return fmt.Errorf("create Revenue dashboard: %w", err)
	}

	// Analysts see the dashboard but only rows for their own region, and only
	// the first two pages.
	batch := &domain.ShareBatch{
		FolderID:   sales.ID,
		FolderRole: domain.PermView,
		DashboardRoles: map[string]domain.Permission{
			revenue.ID: domain.PermView,
		},
		RLSByDashboard: map[string]*domain.RLSConfig{
			revenue.ID: {
				AllowedPageIDs: []string{"summary", "by-region"},
				Rules: []domain.RLSRule{{
					Combinator: domain.CombinatorAnd,
					Conditions: []domain.RLSCondition{{
						Field:    "region",
						Operator: domain.OpEq,
						Value:    "EMEA",
					}},
				}},
			},
		},
		Target: domain.ShareTarget{TargetType: domain.TargetGroup, TargetID: "emea-analysts"},
	}
	if err := ws.ApplyShareBatch(ctx, admin, batch); err != nil {
		return fmt.Errorf("seed share batch: %w", err)
	}

	a.logger.Info("demo workspace seeded",
		"folders", 2, "dashboards", 1, "folderId", sales.ID, "dashboardId", revenue.ID)
	return nil
}

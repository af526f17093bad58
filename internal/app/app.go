// Package app provides application-level wiring for the lakeboard server.
package app

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"lakeboard/internal/config"
	"lakeboard/internal/db/repository"
	"lakeboard/internal/domain"
	"lakeboard/internal/service"
)

// Deps holds the external dependencies that main() must provide: database
// handles, config, and the logger.
type Deps struct {
	Cfg     *config.Config
	WriteDB *sql.DB
	ReadDB  *sql.DB
	Logger  *slog.Logger
}

// App holds the fully-wired application.
type App struct {
	Workspace *service.Workspace
	Store     *repository.Store
	cron      *cron.Cron
	logger    *slog.Logger
}

// New wires the store, services, and scheduled jobs from the provided deps.
func New(deps Deps) (*App, error) {
	cfg := deps.Cfg

	policy, err := accessPolicyFromConfig(cfg)
	if err != nil {
		return nil, err
	}
	cascade := domain.CascadeReparent
	if cfg.DeleteCascadeDefault == "delete" {
		cascade = domain.CascadeDelete
	}

	store := repository.NewStore(deps.WriteDB)
	var reads domain.WorkspaceStore
	if deps.ReadDB != nil {
		reads = repository.NewStore(deps.ReadDB)
	}
	workspace := service.NewWorkspace(store, reads, policy, cascade, deps.Logger.With("component", "workspace"))

	a := &App{
		Workspace: workspace,
		Store:     store,
		logger:    deps.Logger,
	}

	if cfg.AuditRetentionDays > 0 {
		a.cron = cron.New()
		retention := time.Duration(cfg.AuditRetentionDays) * 24 * time.Hour
		_, err := a.cron.AddFunc(cfg.AuditPruneSchedule, func() {
			ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
			defer cancel()
			cutoff := time.Now().UTC().Add(-retention)
			n, err := store.Audit().DeleteOlderThan(ctx, cutoff)
			if err != nil {
				deps.Logger.Warn("audit prune failed", "error", err)
				return
			}
			deps.Logger.Info("audit log pruned", "removed", n, "cutoff", cutoff)
		})
		if err != nil {
			return nil, fmt.Errorf("schedule audit prune (%q): %w", cfg.AuditPruneSchedule, err)
		}
	}

	return a, nil
}

// StartJobs starts the scheduled background jobs, if any are configured.
func (a *App) StartJobs() {
	if a.cron != nil {
		a.cron.Start()
	}
}

// StopJobs stops the scheduled background jobs and waits for running ones.
func (a *App) StopJobs() {
	if a.cron != nil {
		<-a.cron.Stop().Done()
	}
}

func accessPolicyFromConfig(cfg *config.Config) (service.AccessPolicy, error) {
	creator := domain.Permission(cfg.CreatorPermission)
	ownerless := domain.Permission(cfg.OwnerlessPermission)
	if !creator.Valid() {
		return service.AccessPolicy{}, fmt.Errorf("invalid CREATOR_PERMISSION %q", cfg.CreatorPermission)
	}
	if !ownerless.Valid() {
		return service.AccessPolicy{}, fmt.Errorf("invalid OWNERLESS_PERMISSION %q", cfg.OwnerlessPermission)
	}
	return service.AccessPolicy{
		CreatorPermission:   creator,
		OwnerlessPermission: ownerless,
	}, nil
}

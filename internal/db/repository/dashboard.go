package repository

import (
	"context"
	"database/sql"
	"time"

	"lakeboard/internal/domain"
)

// DashboardRepo persists dashboards and their page lists. Guarded
// mutations follow the same version-check discipline as FolderRepo.
type DashboardRepo struct {
	q querier
}

// NewDashboardRepo creates a DashboardRepo over the given pool.
func NewDashboardRepo(q querier) *DashboardRepo { return &DashboardRepo{q: q} }

func (r *DashboardRepo) Create(ctx context.Context, d *domain.Dashboard) (*domain.Dashboard, error) {
	if d.ID == "" {
		d.ID = domain.NewID()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO dashboards (id, title, folder_id, created_by, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		d.ID, d.Title, nullString(d.FolderID), d.CreatedBy, now, now)
	if err != nil {
		return nil, mapDBError(err)
	}
	for i, p := range d.Pages {
		if _, err := r.q.ExecContext(ctx, `
			INSERT INTO dashboard_pages (dashboard_id, page_id, position) VALUES (?, ?, ?)`,
			d.ID, p.ID, i); err != nil {
			return nil, mapDBError(err)
		}
	}
	return r.GetByID(ctx, d.ID)
}

func (r *DashboardRepo) GetByID(ctx context.Context, id string) (*domain.Dashboard, error) {
	d, err := r.scanDashboard(ctx, id)
	if err != nil {
		return nil, err
	}
	if d.Pages, err = r.listPages(ctx, id); err != nil {
		return nil, err
	}
	shares := ShareRepo{q: r.q}
	if d.SharedWith, err = shares.ListForAsset(ctx, domain.AssetDashboard, id); err != nil {
		return nil, err
	}
	return d, nil
}

func (r *DashboardRepo) scanDashboard(ctx context.Context, id string) (*domain.Dashboard, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, title, folder_id, created_by, version, created_at, updated_at
		FROM dashboards WHERE id = ?`, id)
	var d domain.Dashboard
	var folder sql.NullString
	if err := row.Scan(&d.ID, &d.Title, &folder, &d.CreatedBy, &d.Version, &d.CreatedAt, &d.UpdatedAt); err != nil {
		return nil, mapDBError(err)
	}
	d.FolderID = fromNullString(folder)
	return &d, nil
}

func (r *DashboardRepo) listPages(ctx context.Context, id string) ([]domain.Page, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT page_id FROM dashboard_pages WHERE dashboard_id = ? ORDER BY position`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pages []domain.Page
	for rows.Next() {
		var p domain.Page
		if err := rows.Scan(&p.ID); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (r *DashboardRepo) List(ctx context.Context) ([]domain.Dashboard, error) {
	return r.list(ctx, `
		SELECT id, title, folder_id, created_by, version, created_at, updated_at
		FROM dashboards ORDER BY title`)
}

func (r *DashboardRepo) ListByFolder(ctx context.Context, folderID *string) ([]domain.Dashboard, error) {
	if folderID == nil {
		return r.list(ctx, `
			SELECT id, title, folder_id, created_by, version, created_at, updated_at
			FROM dashboards WHERE folder_id IS NULL ORDER BY title`)
	}
	return r.list(ctx, `
		SELECT id, title, folder_id, created_by, version, created_at, updated_at
		FROM dashboards WHERE folder_id = ? ORDER BY title`, *folderID)
}

func (r *DashboardRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Dashboard, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var dashboards []domain.Dashboard
	for rows.Next() {
		var d domain.Dashboard
		var folder sql.NullString
		if err := rows.Scan(&d.ID, &d.Title, &folder, &d.CreatedBy, &d.Version, &d.CreatedAt, &d.UpdatedAt); err != nil {
			return nil, err
		}
		d.FolderID = fromNullString(folder)
		dashboards = append(dashboards, d)
	}
	return dashboards, rows.Err()
}

func (r *DashboardRepo) SetFolder(ctx context.Context, id string, folderID *string, expectedVersion int64) error {
	return r.guardedUpdate(ctx, id, expectedVersion, `
		UPDATE dashboards SET folder_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		nullString(folderID), time.Now().UTC(), id, expectedVersion)
}

func (r *DashboardRepo) BumpVersion(ctx context.Context, id string, expectedVersion int64) error {
	return r.guardedUpdate(ctx, id, expectedVersion, `
		UPDATE dashboards SET version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		time.Now().UTC(), id, expectedVersion)
}

func (r *DashboardRepo) guardedUpdate(ctx context.Context, id string, expectedVersion int64, query string, args ...interface{}) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.scanDashboard(ctx, id); err != nil {
			return err
		}
		return domain.ErrConflict("dashboard %s changed concurrently (expected version %d)", id, expectedVersion)
	}
	return nil
}

func (r *DashboardRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM dashboards WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("dashboard %s not found", id)
	}
	return nil
}

var _ domain.DashboardRepository = (*DashboardRepo)(nil)

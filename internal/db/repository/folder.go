package repository

import (
	"context"
	"database/sql"
	"time"

	"lakeboard/internal/domain"
)

// FolderRepo persists folders. Reads hydrate the share list; every guarded
// mutation carries a WHERE version = ? check and reports ConflictError when
// the row moved underneath the caller.
type FolderRepo struct {
	q querier
}

// NewFolderRepo creates a FolderRepo over the given pool.
func NewFolderRepo(q querier) *FolderRepo { return &FolderRepo{q: q} }

func (r *FolderRepo) Create(ctx context.Context, f *domain.Folder) (*domain.Folder, error) {
	if f.ID == "" {
		f.ID = domain.NewID()
	}
	now := time.Now().UTC()
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO folders (id, name, parent_id, created_by, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)`,
		f.ID, f.Name, nullString(f.ParentID), f.CreatedBy, now, now)
	if err != nil {
		return nil, mapDBError(err)
	}
	return r.GetByID(ctx, f.ID)
}

func (r *FolderRepo) GetByID(ctx context.Context, id string) (*domain.Folder, error) {
	f, err := r.scanFolder(ctx, id)
	if err != nil {
		return nil, err
	}
	shares := ShareRepo{q: r.q}
	f.SharedWith, err = shares.ListForAsset(ctx, domain.AssetFolder, id)
	if err != nil {
		return nil, err
	}
	return f, nil
}

func (r *FolderRepo) scanFolder(ctx context.Context, id string) (*domain.Folder, error) {
	row := r.q.QueryRowContext(ctx, `
		SELECT id, name, parent_id, created_by, version, created_at, updated_at
		FROM folders WHERE id = ?`, id)
	var f domain.Folder
	var parent sql.NullString
	if err := row.Scan(&f.ID, &f.Name, &parent, &f.CreatedBy, &f.Version, &f.CreatedAt, &f.UpdatedAt); err != nil {
		return nil, mapDBError(err)
	}
	f.ParentID = fromNullString(parent)
	return &f, nil
}

func (r *FolderRepo) List(ctx context.Context) ([]domain.Folder, error) {
	return r.list(ctx, `
		SELECT id, name, parent_id, created_by, version, created_at, updated_at
		FROM folders ORDER BY name`)
}

func (r *FolderRepo) ListChildren(ctx context.Context, parentID *string) ([]domain.Folder, error) {
	if parentID == nil {
		return r.list(ctx, `
			SELECT id, name, parent_id, created_by, version, created_at, updated_at
			FROM folders WHERE parent_id IS NULL ORDER BY name`)
	}
	return r.list(ctx, `
		SELECT id, name, parent_id, created_by, version, created_at, updated_at
		FROM folders WHERE parent_id = ? ORDER BY name`, *parentID)
}

func (r *FolderRepo) list(ctx context.Context, query string, args ...interface{}) ([]domain.Folder, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		var f domain.Folder
		var parent sql.NullString
		if err := rows.Scan(&f.ID, &f.Name, &parent, &f.CreatedBy, &f.Version, &f.CreatedAt, &f.UpdatedAt); err != nil {
			return nil, err
		}
		f.ParentID = fromNullString(parent)
		folders = append(folders, f)
	}
	return folders, rows.Err()
}

func (r *FolderRepo) Rename(ctx context.Context, id, name string, expectedVersion int64) error {
	return r.guardedUpdate(ctx, id, expectedVersion, `
		UPDATE folders SET name = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		name, time.Now().UTC(), id, expectedVersion)
}

func (r *FolderRepo) SetParent(ctx context.Context, id string, parentID *string, expectedVersion int64) error {
	return r.guardedUpdate(ctx, id, expectedVersion, `
		UPDATE folders SET parent_id = ?, version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		nullString(parentID), time.Now().UTC(), id, expectedVersion)
}

func (r *FolderRepo) BumpVersion(ctx context.Context, id string, expectedVersion int64) error {
	return r.guardedUpdate(ctx, id, expectedVersion, `
		UPDATE folders SET version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?`,
		time.Now().UTC(), id, expectedVersion)
}

func (r *FolderRepo) guardedUpdate(ctx context.Context, id string, expectedVersion int64, query string, args ...interface{}) error {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return mapDBError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// Distinguish a stale version from a missing row.
		if _, err := r.scanFolder(ctx, id); err != nil {
			return err
		}
		return domain.ErrConflict("folder %s changed concurrently (expected version %d)", id, expectedVersion)
	}
	return nil
}

func (r *FolderRepo) Delete(ctx context.Context, id string) error {
	res, err := r.q.ExecContext(ctx, `DELETE FROM folders WHERE id = ?`, id)
	if err != nil {
		return mapDBError(err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return domain.ErrNotFound("folder %s not found", id)
	}
	return nil
}

var _ domain.FolderRepository = (*FolderRepo)(nil)

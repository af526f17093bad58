package repository

import (
	"context"
	"database/sql"
	"time"

	"lakeboard/internal/domain"
)

// AuditRepo persists workspace audit log entries.
type AuditRepo struct {
	q querier
}

// NewAuditRepo creates an AuditRepo over the given pool.
func NewAuditRepo(q querier) *AuditRepo { return &AuditRepo{q: q} }

func (r *AuditRepo) Insert(ctx context.Context, e *domain.AuditEntry) error {
	if e.ID == "" {
		e.ID = domain.NewID()
	}
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}
	_, err := r.q.ExecContext(ctx, `
		INSERT INTO audit_log (id, viewer_id, action, asset_type, asset_id, target, status, error_message, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		e.ID, e.ViewerID, e.Action, e.AssetType, e.AssetID,
		nullString(e.Target), e.Status, nullString(e.ErrorMessage), e.CreatedAt)
	return mapDBError(err)
}

func (r *AuditRepo) List(ctx context.Context, filter domain.AuditFilter) ([]domain.AuditEntry, error) {
	query := `
		SELECT id, viewer_id, action, asset_type, asset_id, target, status, error_message, created_at
		FROM audit_log WHERE 1=1`
	var args []interface{}
	if filter.ViewerID != "" {
		query += ` AND viewer_id = ?`
		args = append(args, filter.ViewerID)
	}
	if filter.Action != "" {
		query += ` AND action = ?`
		args = append(args, filter.Action)
	}
	if filter.Status != "" {
		query += ` AND status = ?`
		args = append(args, filter.Status)
	}
	if !filter.Since.IsZero() {
		query += ` AND created_at >= ?`
		args = append(args, filter.Since)
	}
	query += ` ORDER BY created_at DESC`
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []domain.AuditEntry
	for rows.Next() {
		var e domain.AuditEntry
		var target, errMsg sql.NullString
		if err := rows.Scan(&e.ID, &e.ViewerID, &e.Action, &e.AssetType, &e.AssetID, &target, &e.Status, &errMsg, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.Target = fromNullString(target)
		e.ErrorMessage = fromNullString(errMsg)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *AuditRepo) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.q.ExecContext(ctx, `DELETE FROM audit_log WHERE created_at < ?`, cutoff)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

var _ domain.AuditRepository = (*AuditRepo)(nil)

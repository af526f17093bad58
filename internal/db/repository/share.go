package repository

import (
	"context"
	"encoding/json"
	"fmt"

	"lakeboard/internal/domain"
)

// ShareRepo persists share grants in the share_permissions table. The page
// allow-list and RLS config are stored as JSON columns; the target key is
// materialized so the per-asset uniqueness of (asset, target) is enforced
// by the schema as well as by the merge engine.
type ShareRepo struct {
	q querier
}

// NewShareRepo creates a ShareRepo over the given pool.
func NewShareRepo(q querier) *ShareRepo { return &ShareRepo{q: q} }

func (r *ShareRepo) ListForAsset(ctx context.Context, assetType, assetID string) ([]domain.SharePermission, error) {
	rows, err := r.q.QueryContext(ctx, `
		SELECT target_type, target_id, permission, shared_at, allowed_page_ids, rls_config
		FROM share_permissions
		WHERE asset_type = ? AND asset_id = ?
		ORDER BY shared_at, target_key`,
		assetType, assetID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var shares []domain.SharePermission
	for rows.Next() {
		var s domain.SharePermission
		var pagesJSON, rlsJSON []byte
		if err := rows.Scan(&s.TargetType, &s.TargetID, &s.Permission, &s.SharedAt, &pagesJSON, &rlsJSON); err != nil {
			return nil, err
		}
		if len(pagesJSON) > 0 {
			if err := json.Unmarshal(pagesJSON, &s.AllowedPageIDs); err != nil {
				return nil, fmt.Errorf("decode allowed_page_ids for %s/%s: %w", assetType, assetID, err)
			}
		}
		if len(rlsJSON) > 0 {
			var cfg domain.RLSConfig
			if err := json.Unmarshal(rlsJSON, &cfg); err != nil {
				return nil, fmt.Errorf("decode rls_config for %s/%s: %w", assetType, assetID, err)
			}
			s.RLS = &cfg
		}
		shares = append(shares, s)
	}
	return shares, rows.Err()
}

func (r *ShareRepo) ReplaceForAsset(ctx context.Context, assetType, assetID string, shares []domain.SharePermission) error {
	if _, err := r.q.ExecContext(ctx,
		`DELETE FROM share_permissions WHERE asset_type = ? AND asset_id = ?`,
		assetType, assetID); err != nil {
		return err
	}
	for i := range shares {
		s := &shares[i]
		var pagesJSON, rlsJSON interface{}
		if len(s.AllowedPageIDs) > 0 {
			b, err := json.Marshal(s.AllowedPageIDs)
			if err != nil {
				return err
			}
			pagesJSON = string(b)
		}
		if s.RLS != nil {
			b, err := json.Marshal(s.RLS)
			if err != nil {
				return err
			}
			rlsJSON = string(b)
		}
		_, err := r.q.ExecContext(ctx, `
			INSERT INTO share_permissions
				(id, asset_type, asset_id, target_type, target_id, target_key, permission, allowed_page_ids, rls_config, shared_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			domain.NewID(), assetType, assetID,
			s.TargetType, s.TargetID, s.Key(),
			string(s.Permission), pagesJSON, rlsJSON, s.SharedAt)
		if err != nil {
			return mapDBError(err)
		}
	}
	return nil
}

func (r *ShareRepo) DeleteForAsset(ctx context.Context, assetType, assetID string) error {
	_, err := r.q.ExecContext(ctx,
		`DELETE FROM share_permissions WHERE asset_type = ? AND asset_id = ?`,
		assetType, assetID)
	return err
}

var _ domain.ShareRepository = (*ShareRepo)(nil)

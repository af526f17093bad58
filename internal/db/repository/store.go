// Package repository implements the domain repository interfaces using SQLite.
package repository

import (
	"context"
	"database/sql"
	"fmt"

	"lakeboard/internal/domain"
)

// querier abstracts *sql.DB and *sql.Tx so repositories run unchanged
// inside and outside a transaction.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...interface{}) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...interface{}) *sql.Row
}

// Store implements domain.WorkspaceStore over a SQLite pool. The zero
// transaction state reads and writes through the pool directly; InTx
// produces a view of the same store bound to one transaction.
type Store struct {
	db *sql.DB
	q  querier
}

// NewStore creates a Store over the write pool.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db, q: db}
}

// Folders returns the folder repository bound to the current querier.
func (s *Store) Folders() domain.FolderRepository { return &FolderRepo{q: s.q} }

// Dashboards returns the dashboard repository bound to the current querier.
func (s *Store) Dashboards() domain.DashboardRepository { return &DashboardRepo{q: s.q} }

// Shares returns the share repository bound to the current querier.
func (s *Store) Shares() domain.ShareRepository { return &ShareRepo{q: s.q} }

// Audit returns the audit repository bound to the current querier.
func (s *Store) Audit() domain.AuditRepository { return &AuditRepo{q: s.q} }

// InTx runs fn inside a single SQLite transaction. The write pool holds one
// connection and the DSN uses _txlock=immediate, so transactions serialize
// and a unit of work observes a stable snapshot from begin to commit. Any
// error from fn rolls everything back. Nested calls join the open
// transaction rather than starting a second one.
func (s *Store) InTx(ctx context.Context, fn func(tx domain.WorkspaceTx) error) error {
	if _, already := s.q.(*sql.Tx); already {
		return fn(s)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}

	txStore := &Store{db: s.db, q: tx}
	if err := fn(txStore); err != nil {
		_ = tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit tx: %w", err)
	}
	return nil
}

var _ domain.WorkspaceStore = (*Store)(nil)

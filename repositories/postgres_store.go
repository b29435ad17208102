package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Dosada05/tourney/models"
	"github.com/google/uuid"
)

// pgRepo implements Repository on top of any executor, so the same queries serve
// both the pooled handle and an open transaction.
type pgRepo struct {
	exec SQLExecutor
}

type PostgresStore struct {
	pgRepo
	db *sql.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{pgRepo: pgRepo{exec: db}, db: db}
}

func (s *PostgresStore) WithTx(ctx context.Context, fn func(tx Tx) error) (err error) {
	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if p := recover(); p != nil {
			_ = sqlTx.Rollback()
			panic(p)
		}
		if err != nil {
			_ = sqlTx.Rollback()
		}
	}()

	if err = fn(&postgresTx{pgRepo: pgRepo{exec: sqlTx}}); err != nil {
		return err
	}
	if err = sqlTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type postgresTx struct {
	pgRepo
}

var _ Tx = (*postgresTx)(nil)

// LockMatch takes a row lock (SELECT ... FOR UPDATE) held until commit or rollback.
func (t *postgresTx) LockMatch(ctx context.Context, id uuid.UUID) (*models.Match, error) {
	return t.lockMatch(ctx, id)
}

func (t *postgresTx) LockTournament(ctx context.Context, id uuid.UUID) (*models.Tournament, error) {
	return t.lockTournament(ctx, id)
}

// Package storage persists per-guild configuration in PostgreSQL.
package storage

import (
	"context"

	"github.com/jackc/pgx/v4"
	"github.com/jackc/pgx/v4/pgxpool"
	"go.uber.org/zap"
)

type Storage struct {
	logger *zap.SugaredLogger
	pool   *pgxpool.Pool
}

func NewStorage(l *zap.SugaredLogger) *Storage {
	return &Storage{logger: l}
}

// Connect opens the connection pool and creates missing tables.
func (s *Storage) Connect(ctx context.Context, dsn string) error {
	var err error
	s.pool, err = pgxpool.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	return s.ensureSchema(ctx)
}

func (s *Storage) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx,
		`create table if not exists guild_config (id bigint primary key, config jsonb not null)`)
	return err
}

func (s *Storage) query(ctx context.Context, sql string, args []interface{}, scans []interface{}) error {
	_, err := s.pool.QueryFunc(ctx, sql, args, scans, func(pgx.QueryFuncRow) error { return nil })
	return err
}

func (s *Storage) Close() error {
	s.pool.Close()
	return nil
}

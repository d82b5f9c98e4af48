package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"logguard/internal/model"
)

type postgresStore struct {
	baseStore
}

func NewPostgres(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "postgres://localhost:5432/logguard?sslmode=disable"
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	return &postgresStore{baseStore{db: db}}, nil
}

func (s *postgresStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id BIGSERIAL PRIMARY KEY,
			run_at TIMESTAMPTZ NOT NULL,
			type TEXT NOT NULL,
			ip TEXT NOT NULL,
			failed_logins INTEGER NOT NULL,
			requests INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_run_at ON alerts(run_at)`,
		`CREATE TABLE IF NOT EXISTS aggregates (
			id BIGSERIAL PRIMARY KEY,
			run_at TIMESTAMPTZ NOT NULL,
			ip TEXT NOT NULL,
			failed_logins INTEGER NOT NULL,
			requests INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_aggregates_run_ip ON aggregates(run_at, ip)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func (s *postgresStore) SaveAlerts(ctx context.Context, runAt time.Time, alerts []model.Alert) error {
	if s.db == nil || len(alerts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO alerts (run_at, type, ip, failed_logins, requests) VALUES ($1, $2, $3, $4, $5)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, a := range alerts {
		if _, err := stmt.ExecContext(ctx, runAt.UTC(), a.Type, a.IP, a.FailedLogins, a.Requests); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

func (s *postgresStore) SaveAggregates(ctx context.Context, runAt time.Time, records []model.AggregatedRecord) error {
	if s.db == nil || len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO aggregates (run_at, ip, failed_logins, requests) VALUES ($1, $2, $3, $4)`)
	if err != nil {
		_ = tx.Rollback()
		return err
	}
	defer stmt.Close()
	for _, rec := range records {
		if _, err := stmt.ExecContext(ctx, runAt.UTC(), rec.IP, rec.FailedLogins, rec.Requests); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

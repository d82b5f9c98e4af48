package storage

import (
	"context"
	"database/sql"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"logguard/internal/model"
)

type sqliteStore struct {
	baseStore
}

func NewSQLite(dsn string) (Store, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = "file:logguard.db?_pragma=busy_timeout(5000)"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	return &sqliteStore{baseStore{db: db}}, nil
}

func (s *sqliteStore) Init(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS alerts (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_at TEXT NOT NULL,
			type TEXT NOT NULL,
			ip TEXT NOT NULL,
			failed_logins INTEGER NOT NULL,
			requests INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_run_at ON alerts(run_at)`,
		`CREATE TABLE IF NOT EXISTS aggregates (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_at TEXT NOT NULL,
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

func (s *sqliteStore) SaveAlerts(ctx context.Context, runAt time.Time, alerts []model.Alert) error {
	if s.db == nil || len(alerts) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO alerts (run_at, type, ip, failed_logins, requests) VALUES (?, ?, ?, ?, ?)`)
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

func (s *sqliteStore) SaveAggregates(ctx context.Context, runAt time.Time, records []model.AggregatedRecord) error {
	if s.db == nil || len(records) == 0 {
		return nil
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	stmt, err := tx.PrepareContext(ctx,
		`INSERT INTO aggregates (run_at, ip, failed_logins, requests) VALUES (?, ?, ?, ?)`)
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

package storage

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"logguard/internal/config"
	"logguard/internal/model"
)

// Store persists detection output. A nil Store is valid and means
// persistence is disabled.
type Store interface {
	Init(ctx context.Context) error
	Close() error
	SaveAlerts(ctx context.Context, runAt time.Time, alerts []model.Alert) error
	SaveAggregates(ctx context.Context, runAt time.Time, records []model.AggregatedRecord) error
}

func NewStore(cfg config.StorageConfig) (Store, error) {
	if !cfg.Enabled {
		return nil, nil
	}
	switch strings.ToLower(cfg.Driver) {
	case "sqlite":
		return NewSQLite(cfg.DSN)
	case "postgres", "postgresql":
		return NewPostgres(cfg.DSN)
	default:
		return nil, errors.New("unsupported storage driver")
	}
}

type baseStore struct {
	db *sql.DB
}

func (b *baseStore) Close() error {
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

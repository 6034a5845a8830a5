// Package storage defines the record sources reports are printed from and a
// factory that picks one from configuration.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/ingest"
	"github.com/chrissnell/printview/internal/storage/jsonfile"
	"github.com/chrissnell/printview/internal/storage/sqlite"
	"github.com/chrissnell/printview/internal/storage/timescaledb"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/config"
)

// ErrUnknownBackend is returned for a storage backend New does not know.
var ErrUnknownBackend = errors.New("storage: unknown backend")

// Query is re-exported for callers that only deal with sources.
type Query = ingest.Query

// Source loads a patient's decoded records.
type Source interface {
	Load(ctx context.Context, q Query) (*types.Records, error)
	Ping(ctx context.Context) error
	Close() error
}

// Importer is a Source that can also store data.
type Importer interface {
	Source
	Import(ctx context.Context, patientID string, data []ingest.Datum) (int, error)
}

var (
	_ Source   = (*jsonfile.Storage)(nil)
	_ Importer = (*sqlite.Storage)(nil)
	_ Importer = (*timescaledb.Storage)(nil)
)

// New opens the source cfg selects.
func New(ctx context.Context, cfg config.StorageData, logger *zap.SugaredLogger) (Source, error) {
	switch cfg.Backend {
	case config.BackendJSON:
		if cfg.JSONFile == nil {
			return nil, fmt.Errorf("json storage is not configured")
		}
		return jsonfile.New(cfg.JSONFile.Path, logger), nil
	case config.BackendSQLite:
		if cfg.SQLite == nil {
			return nil, fmt.Errorf("sqlite storage is not configured")
		}
		return sqlite.New(ctx, cfg.SQLite.Path, logger)
	case config.BackendTimescaleDB:
		if cfg.TimescaleDB == nil {
			return nil, fmt.Errorf("timescaledb storage is not configured")
		}
		return timescaledb.New(ctx, cfg.TimescaleDB.ConnectionString, logger)
	}
	return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, cfg.Backend)
}

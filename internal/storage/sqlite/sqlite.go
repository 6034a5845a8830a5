// Package sqlite keeps imported device data in an embedded SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	_ "modernc.org/sqlite"

	"github.com/chrissnell/printview/internal/ingest"
	"github.com/chrissnell/printview/internal/types"
	"github.com/chrissnell/printview/pkg/migrate"
)

//go:embed migrations/*.sql
var migrations embed.FS

// timeLayout is fixed width so stored times sort lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

const insertSQL = `
INSERT OR REPLACE INTO device_data (patient_id, id, type, time, payload)
VALUES (?, ?, ?, ?, ?)`

// Uploads are loaded regardless of the window since they describe the device.
const selectSQL = `
SELECT payload FROM device_data
WHERE patient_id = ? AND (type = 'upload' OR (time >= ? AND time < ?))
ORDER BY time`

// Storage is a SQLite-backed source.
type Storage struct {
	db     *sql.DB
	path   string
	logger *zap.SugaredLogger
}

// New opens the database at path and creates the schema if needed.
func New(ctx context.Context, path string, logger *zap.SugaredLogger) (*Storage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite database: %w", err)
	}

	// Test the connection
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping SQLite database: %w", err)
	}

	s := &Storage{db: db, path: path, logger: logger}
	if err := s.Migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Migrate brings the schema up to date.
func (s *Storage) Migrate(ctx context.Context) error {
	m := migrate.NewMigrator(s.db, migrate.NewFSSource(migrations, "migrations"), s.logger)
	if err := m.Up(ctx); err != nil {
		return fmt.Errorf("migrating %s: %w", s.path, err)
	}
	return nil
}

// Import stores data for a patient, replacing data with the same IDs.
func (s *Storage) Import(ctx context.Context, patientID string, data []ingest.Datum) (int, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("starting import: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, insertSQL)
	if err != nil {
		return 0, fmt.Errorf("preparing import: %w", err)
	}
	defer stmt.Close()

	n := 0
	for _, d := range data {
		if d.ID == "" {
			s.logger.Debugw("skipping datum without an id", "type", d.Type, "time", d.Time)
			continue
		}
		payload, err := json.Marshal(d)
		if err != nil {
			return 0, fmt.Errorf("encoding datum %s: %w", d.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, patientID, d.ID, d.Type, d.Time.UTC().Format(timeLayout), string(payload)); err != nil {
			return 0, fmt.Errorf("storing datum %s: %w", d.ID, err)
		}
		n++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("committing import: %w", err)
	}
	s.logger.Infof("imported %d of %d data for patient %s", n, len(data), patientID)
	return n, nil
}

func (s *Storage) Load(ctx context.Context, q ingest.Query) (*types.Records, error) {
	start, end := q.Bounds()
	rows, err := s.db.QueryContext(ctx, selectSQL, q.PatientID, start.Format(timeLayout), end.Format(timeLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query device data: %w", err)
	}
	defer rows.Close()

	var payloads []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, fmt.Errorf("failed to scan device data row: %w", err)
		}
		payloads = append(payloads, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading device data: %w", err)
	}

	return ingest.DecodeStored(payloads, q.Units)
}

func (s *Storage) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *Storage) Close() error {
	return s.db.Close()
}

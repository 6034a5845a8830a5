// Package timescaledb keeps imported device data in a TimescaleDB hypertable.
package timescaledb

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/chrissnell/printview/internal/database"
	"github.com/chrissnell/printview/internal/ingest"
	"github.com/chrissnell/printview/internal/types"
)

const (
	createExtensionSQL  = `CREATE EXTENSION IF NOT EXISTS timescaledb CASCADE;`
	createHypertableSQL = `SELECT create_hypertable('device_data', 'time', if_not_exists => TRUE, migrate_data => TRUE);`

	importBatchSize = 500
)

// DeviceDatum is one stored datum. The raw payload is kept whole so the
// ingestion decoder sees exactly what was imported.
type DeviceDatum struct {
	PatientID string    `gorm:"primaryKey;index:idx_device_data_patient_time,priority:1"`
	ID        string    `gorm:"primaryKey"`
	Time      time.Time `gorm:"primaryKey;index:idx_device_data_patient_time,priority:2"`
	Type      string    `gorm:"not null"`
	Payload   string    `gorm:"type:jsonb;not null"`
}

// We declare the Tabler interface for purposes of customizing the table name in the DB
type Tabler interface {
	TableName() string
}

var _ Tabler = DeviceDatum{}

func (DeviceDatum) TableName() string {
	return "device_data"
}

// Storage holds the connection for a TimescaleDB source
type Storage struct {
	TimescaleDBConn *gorm.DB
	logger          *zap.SugaredLogger
}

// New connects to TimescaleDB and sets up the device_data hypertable
func New(ctx context.Context, connectionString string, logger *zap.SugaredLogger) (*Storage, error) {
	conn, err := database.CreateConnection(connectionString, logger)
	if err != nil {
		return nil, err
	}

	t := &Storage{TimescaleDBConn: conn, logger: logger}
	if err := t.Migrate(ctx); err != nil {
		t.Close()
		return nil, err
	}
	return t, nil
}

// Migrate creates the extension, table and hypertable.
func (t *Storage) Migrate(ctx context.Context) error {
	db := t.TimescaleDBConn.WithContext(ctx)

	t.logger.Info("creating TimescaleDB extension...")
	if err := db.Exec(createExtensionSQL).Error; err != nil {
		return fmt.Errorf("could not create TimescaleDB extension: %w", err)
	}

	t.logger.Info("creating device_data table...")
	if err := db.AutoMigrate(&DeviceDatum{}); err != nil {
		return fmt.Errorf("could not create device_data table: %w", err)
	}

	t.logger.Info("creating hypertable...")
	if err := db.Exec(createHypertableSQL).Error; err != nil {
		return fmt.Errorf("could not create hypertable: %w", err)
	}
	return nil
}

// Import stores data for a patient, replacing data with the same keys
func (t *Storage) Import(ctx context.Context, patientID string, data []ingest.Datum) (int, error) {
	rows := make([]DeviceDatum, 0, len(data))
	for _, d := range data {
		if d.ID == "" {
			continue
		}
		payload, err := json.Marshal(d)
		if err != nil {
			return 0, fmt.Errorf("encoding datum %s: %w", d.ID, err)
		}
		rows = append(rows, DeviceDatum{
			PatientID: patientID,
			ID:        d.ID,
			Time:      d.Time.UTC(),
			Type:      d.Type,
			Payload:   string(payload),
		})
	}
	if len(rows) == 0 {
		return 0, nil
	}

	err := t.TimescaleDBConn.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		CreateInBatches(rows, importBatchSize).Error
	if err != nil {
		t.logger.Error("could not store device data:", err)
		return 0, err
	}
	t.logger.Infof("imported %d of %d data for patient %s", len(rows), len(data), patientID)
	return len(rows), nil
}

func (t *Storage) Load(ctx context.Context, q ingest.Query) (*types.Records, error) {
	start, end := q.Bounds()

	var rows []DeviceDatum
	err := t.TimescaleDBConn.WithContext(ctx).
		Where("patient_id = ?", q.PatientID).
		Where("type = ? OR (time >= ? AND time < ?)", "upload", start, end).
		Order("time").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("error querying database for device data: %w", err)
	}

	payloads := make([]string, len(rows))
	for i, r := range rows {
		payloads[i] = r.Payload
	}
	return ingest.DecodeStored(payloads, q.Units)
}

func (t *Storage) Close() error {
	sqlDB, err := t.TimescaleDBConn.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

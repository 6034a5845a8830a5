// Package jsonfile reads records straight from a device-data export file.
package jsonfile

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/chrissnell/printview/internal/ingest"
	"github.com/chrissnell/printview/internal/types"
)

// Storage is a read-only source over one export file. The file is re-read
// on every Load so edits show up without a restart.
type Storage struct {
	path   string
	logger *zap.SugaredLogger
}

func New(path string, logger *zap.SugaredLogger) *Storage {
	return &Storage{path: path, logger: logger}
}

func (s *Storage) Load(ctx context.Context, q ingest.Query) (*types.Records, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(s.path)
	if err != nil {
		return nil, fmt.Errorf("opening export %s: %w", s.path, err)
	}
	defer f.Close()

	rec, err := ingest.Decode(f, q)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.path, err)
	}
	s.logger.Debugw("loaded export", "path", s.path, "basal", len(rec.Basal), "bolus", len(rec.Bolus),
		"cbg", len(rec.CBG), "smbg", len(rec.SMBG))
	return rec, nil
}

// Ping checks that the export is still readable.
func (s *Storage) Ping(ctx context.Context) error {
	_, err := os.Stat(s.path)
	return err
}

func (s *Storage) Close() error {
	return nil
}

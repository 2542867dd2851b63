package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"recolhe/pkg/logger"
	"recolhe/pkg/model"
)

// LedgerRepository persists the date-keyed appointment ledger as a unit.
//
// Load never fails the caller: absent or unreadable storage degrades to an
// empty ledger so a corrupt file reads as "no appointments exist". Save
// replaces the whole ledger; callers must Load, mutate in memory, then Save
// to avoid lost updates (last-writer-wins, single-process deployment).
type LedgerRepository interface {
	Load(ctx context.Context) model.Ledger
	Save(ctx context.Context, ledger model.Ledger) error
	AppointmentsOn(ctx context.Context, date string) []model.Appointment
}

type fileLedgerRepository struct {
	path string
	log  *logger.Logger
}

func NewFileLedgerRepository(path string, log *logger.Logger) LedgerRepository {
	return &fileLedgerRepository{
		path: path,
		log:  log,
	}
}

func (r *fileLedgerRepository) Load(_ context.Context) model.Ledger {
	data, err := os.ReadFile(r.path)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			r.log.Error("Failed to read ledger file, treating as empty", "path", r.path, "error", err)
		}
		return model.Ledger{}
	}

	if len(data) == 0 {
		return model.Ledger{}
	}

	var ledger model.Ledger
	if err := json.Unmarshal(data, &ledger); err != nil {
		r.log.Error("Failed to decode ledger file, treating as empty", "path", r.path, "error", err)
		return model.Ledger{}
	}
	if ledger == nil {
		return model.Ledger{}
	}

	return ledger
}

// Save writes the whole ledger to a temporary file and renames it into
// place, so a concurrent Load never observes a torn write.
func (r *fileLedgerRepository) Save(_ context.Context, ledger model.Ledger) error {
	data, err := json.MarshalIndent(ledger, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode ledger: %w", err)
	}

	dir := filepath.Dir(r.path)
	tmp, err := os.CreateTemp(dir, filepath.Base(r.path)+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp ledger file: %w", err)
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("failed to write ledger: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to close temp ledger file: %w", err)
	}

	if err := os.Rename(tmpName, r.path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("failed to replace ledger file: %w", err)
	}

	return nil
}

func (r *fileLedgerRepository) AppointmentsOn(ctx context.Context, date string) []model.Appointment {
	appointments := r.Load(ctx)[date]
	if appointments == nil {
		return []model.Appointment{}
	}
	return appointments
}

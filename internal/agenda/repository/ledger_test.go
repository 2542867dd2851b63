package repository

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"recolhe/pkg/logger"
	"recolhe/pkg/model"
)

func testLogger() *logger.Logger {
	return logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"})
}

func sampleLedger() model.Ledger {
	return model.Ledger{
		"2025-06-02": {
			{ID: "7f9c24e8-3b12-4a9e-9f1a-0d2c5b6a7e81", Name: "João Silva", Address: "Rua das Flores, 10", Period: "manhã", Liters: "5 litros", Timestamp: "30/05/2025 09:15:00"},
			{ID: "c1a2b3d4-5e6f-4789-8abc-def012345678", Name: "Maria", Address: "Av. Paulista, 1000, apto 42", Period: "tarde", Liters: "uns 2 litros", Timestamp: "30/05/2025 10:00:00"},
		},
		"2025-06-04": {
			{ID: "0a1b2c3d-4e5f-4678-9abc-def987654321", Name: "Ana", Address: "Travessa B", Period: "noite", Liters: "10", Timestamp: "31/05/2025 18:45:00"},
		},
	}
}

func TestFileLedgerRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendamentos.json")
	repo := NewFileLedgerRepository(path, testLogger())
	ctx := context.Background()

	original := sampleLedger()
	if err := repo.Save(ctx, original); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded := repo.Load(ctx)
	if !reflect.DeepEqual(loaded, original) {
		t.Errorf("round trip mismatch:\nsaved:  %+v\nloaded: %+v", original, loaded)
	}
}

func TestFileLedgerLoadMissingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.json")
	repo := NewFileLedgerRepository(path, testLogger())

	ledger := repo.Load(context.Background())
	if ledger == nil {
		t.Fatal("expected an empty ledger, got nil")
	}
	if len(ledger) != 0 {
		t.Errorf("expected empty ledger, got %d dates", len(ledger))
	}
}

func TestFileLedgerLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendamentos.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0o644); err != nil {
		t.Fatalf("failed to seed corrupt file: %v", err)
	}

	repo := NewFileLedgerRepository(path, testLogger())
	ledger := repo.Load(context.Background())
	if len(ledger) != 0 {
		t.Errorf("expected empty ledger for corrupt file, got %d dates", len(ledger))
	}
}

func TestFileLedgerSaveReplacesWholeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendamentos.json")
	repo := NewFileLedgerRepository(path, testLogger())
	ctx := context.Background()

	if err := repo.Save(ctx, sampleLedger()); err != nil {
		t.Fatalf("first Save failed: %v", err)
	}

	replacement := model.Ledger{
		"2025-07-07": {
			{ID: "2b3c4d5e-6f70-4812-9345-6789abcdef01", Name: "Pedro", Address: "Rua C", Period: "manhã", Liters: "1", Timestamp: "01/07/2025 08:00:00"},
		},
	}
	if err := repo.Save(ctx, replacement); err != nil {
		t.Fatalf("second Save failed: %v", err)
	}

	loaded := repo.Load(ctx)
	if !reflect.DeepEqual(loaded, replacement) {
		t.Errorf("expected file to hold only the replacement ledger, got %+v", loaded)
	}

	// The temp file used for the atomic replace must not linger.
	entries, err := os.ReadDir(filepath.Dir(path))
	if err != nil {
		t.Fatalf("failed to read dir: %v", err)
	}
	if len(entries) != 1 {
		t.Errorf("expected only the ledger file in the directory, found %d entries", len(entries))
	}
}

func TestFileLedgerAppointmentsOn(t *testing.T) {
	path := filepath.Join(t.TempDir(), "agendamentos.json")
	repo := NewFileLedgerRepository(path, testLogger())
	ctx := context.Background()

	if err := repo.Save(ctx, sampleLedger()); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	appointments := repo.AppointmentsOn(ctx, "2025-06-02")
	if len(appointments) != 2 {
		t.Fatalf("expected 2 appointments on 2025-06-02, got %d", len(appointments))
	}

	empty := repo.AppointmentsOn(ctx, "2025-12-25")
	if empty == nil {
		t.Fatal("expected an empty slice for an unbooked date, got nil")
	}
	if len(empty) != 0 {
		t.Errorf("expected no appointments, got %d", len(empty))
	}
}

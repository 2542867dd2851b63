package service

import (
	"context"
	"errors"
	"testing"
	"time"

	agendaerrors "recolhe/internal/agenda/errors"
	"recolhe/internal/agenda/validator"
	"recolhe/pkg/config"
	"recolhe/pkg/logger"
	"recolhe/pkg/model"
)

type mockLedgerRepository struct {
	LoadFunc           func(ctx context.Context) model.Ledger
	SaveFunc           func(ctx context.Context, ledger model.Ledger) error
	AppointmentsOnFunc func(ctx context.Context, date string) []model.Appointment
}

func (m *mockLedgerRepository) Load(ctx context.Context) model.Ledger {
	if m.LoadFunc != nil {
		return m.LoadFunc(ctx)
	}
	return model.Ledger{}
}

func (m *mockLedgerRepository) Save(ctx context.Context, ledger model.Ledger) error {
	if m.SaveFunc != nil {
		return m.SaveFunc(ctx, ledger)
	}
	return nil
}

func (m *mockLedgerRepository) AppointmentsOn(ctx context.Context, date string) []model.Appointment {
	if m.AppointmentsOnFunc != nil {
		return m.AppointmentsOnFunc(ctx, date)
	}
	return []model.Appointment{}
}

type mockPublisher struct {
	AppointmentConfirmedFunc func(ctx context.Context, conversationID string, date string, appointment model.Appointment) error
	calls                    int
}

func (m *mockPublisher) AppointmentConfirmed(ctx context.Context, conversationID string, date string, appointment model.Appointment) error {
	m.calls++
	if m.AppointmentConfirmedFunc != nil {
		return m.AppointmentConfirmedFunc(ctx, conversationID, date, appointment)
	}
	return nil
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		DailyLimit:        config.DefaultDailyLimit,
		SearchHorizonDays: config.DefaultSearchHorizonDays,
		Location:          time.UTC,
		CollectionDays:    config.DefaultCollectionDays,
		CollectionPeriods: config.DefaultCollectionPeriods,
		Log:               logger.New(logger.Config{Level: logger.ERROR, Format: logger.TEXT, Service: "test"}),
	}
}

func newTestService(t *testing.T, repo *mockLedgerRepository, publisher EventPublisher, now time.Time) *agendaService {
	t.Helper()
	cfg := testConfig(t)
	svc := NewAgendaService(repo, validator.NewAppointmentValidator(cfg.CollectionPeriods, cfg.Log), publisher, cfg).(*agendaService)
	svc.now = func() time.Time { return now }
	return svc
}

func fullBucket(n int) []model.Appointment {
	bucket := make([]model.Appointment, n)
	for i := range bucket {
		bucket[i] = model.Appointment{Name: "Cliente", Address: "Rua A", Period: "manhã", Liters: "5"}
	}
	return bucket
}

func TestResolveWeekday(t *testing.T) {
	svc := newTestService(t, &mockLedgerRepository{}, nil, time.Now())

	tests := []struct {
		input    string
		expected string
		ok       bool
	}{
		{"segunda", "segunda", true},
		{"Segunda-feira", "segunda", true},
		{"  QUARTA  ", "quarta", true},
		{"sexta-FEIRA", "sexta", true},
		{"domingo", "", false},
		{"amanhã", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			name, ok := svc.ResolveWeekday(tt.input)
			if ok != tt.ok {
				t.Fatalf("ResolveWeekday(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if name != tt.expected {
				t.Errorf("ResolveWeekday(%q) = %q, expected %q", tt.input, name, tt.expected)
			}
		})
	}
}

func TestWeekdayNamesOrder(t *testing.T) {
	svc := newTestService(t, &mockLedgerRepository{}, nil, time.Now())

	names := svc.WeekdayNames()
	expected := []string{"segunda", "quarta", "sexta"}
	if len(names) != len(expected) {
		t.Fatalf("expected %d weekday names, got %d", len(expected), len(names))
	}
	for i, name := range expected {
		if names[i] != name {
			t.Errorf("WeekdayNames()[%d] = %q, expected %q", i, names[i], name)
		}
	}
}

func TestFindNextSlotSkipsToRequestedWeekday(t *testing.T) {
	// Tuesday 2025-06-03: asking for segunda must land on the next Monday,
	// not on the nearer Wednesday or Friday.
	tuesday := time.Date(2025, 6, 3, 10, 0, 0, 0, time.UTC)
	svc := newTestService(t, &mockLedgerRepository{}, nil, tuesday)

	slot, err := svc.FindNextSlot(context.Background(), "segunda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == nil {
		t.Fatal("expected a slot, got nil")
	}
	if slot.Date != "2025-06-09" {
		t.Errorf("slot date = %q, expected 2025-06-09", slot.Date)
	}
	if slot.WeekdayName != "segunda" {
		t.Errorf("slot weekday = %q, expected segunda", slot.WeekdayName)
	}
}

func TestFindNextSlotIncludesToday(t *testing.T) {
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	svc := newTestService(t, &mockLedgerRepository{}, nil, monday)

	slot, err := svc.FindNextSlot(context.Background(), "segunda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == nil || slot.Date != "2025-06-02" {
		t.Fatalf("expected today's slot 2025-06-02, got %+v", slot)
	}
}

func TestFindNextSlotSkipsFullDates(t *testing.T) {
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	repo := &mockLedgerRepository{
		LoadFunc: func(ctx context.Context) model.Ledger {
			return model.Ledger{"2025-06-02": fullBucket(config.DefaultDailyLimit)}
		},
	}
	svc := newTestService(t, repo, nil, monday)

	slot, err := svc.FindNextSlot(context.Background(), "segunda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot == nil || slot.Date != "2025-06-09" {
		t.Fatalf("expected next Monday 2025-06-09, got %+v", slot)
	}
}

func TestFindNextSlotExhaustedHorizon(t *testing.T) {
	monday := time.Date(2025, 6, 2, 8, 0, 0, 0, time.UTC)
	repo := &mockLedgerRepository{
		LoadFunc: func(ctx context.Context) model.Ledger {
			ledger := model.Ledger{}
			for i := 0; i < config.DefaultSearchHorizonDays; i++ {
				date := monday.AddDate(0, 0, i).Format(model.DateLayout)
				ledger[date] = fullBucket(config.DefaultDailyLimit)
			}
			return ledger
		},
	}
	svc := newTestService(t, repo, nil, monday)

	slot, err := svc.FindNextSlot(context.Background(), "segunda")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if slot != nil {
		t.Fatalf("expected no slot, got %+v", slot)
	}
}

func TestFindNextSlotUnknownWeekday(t *testing.T) {
	svc := newTestService(t, &mockLedgerRepository{}, nil, time.Now())

	if _, err := svc.FindNextSlot(context.Background(), "domingo"); !errors.Is(err, agendaerrors.ErrUnknownWeekday) {
		t.Fatalf("expected ErrUnknownWeekday, got %v", err)
	}
}

func TestBookAppendsAndSaves(t *testing.T) {
	var saved model.Ledger
	repo := &mockLedgerRepository{
		SaveFunc: func(ctx context.Context, ledger model.Ledger) error {
			saved = ledger
			return nil
		},
	}
	publisher := &mockPublisher{}
	now := time.Date(2025, 6, 2, 14, 30, 0, 0, time.UTC)
	svc := newTestService(t, repo, publisher, now)

	appointment := model.Appointment{Name: "João", Address: "Rua das Flores, 10", Period: "manhã", Liters: "5 litros"}
	booked, err := svc.Book(context.Background(), "5511999990000", "2025-06-09", appointment)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if booked.ID == "" {
		t.Error("expected a generated appointment ID")
	}
	if booked.Timestamp != "02/06/2025 14:30:00" {
		t.Errorf("timestamp = %q, expected 02/06/2025 14:30:00", booked.Timestamp)
	}
	if len(saved["2025-06-09"]) != 1 {
		t.Fatalf("expected 1 appointment saved on 2025-06-09, got %d", len(saved["2025-06-09"]))
	}
	if saved["2025-06-09"][0].Name != "João" {
		t.Errorf("saved name = %q, expected João", saved["2025-06-09"][0].Name)
	}
	if publisher.calls != 1 {
		t.Errorf("expected 1 publish call, got %d", publisher.calls)
	}
}

func TestBookRejectsFullDate(t *testing.T) {
	repo := &mockLedgerRepository{
		LoadFunc: func(ctx context.Context) model.Ledger {
			return model.Ledger{"2025-06-09": fullBucket(config.DefaultDailyLimit)}
		},
		SaveFunc: func(ctx context.Context, ledger model.Ledger) error {
			t.Fatal("Save must not be called when the date is full")
			return nil
		},
	}
	svc := newTestService(t, repo, nil, time.Now())

	appointment := model.Appointment{Name: "João", Address: "Rua das Flores, 10", Period: "manhã", Liters: "5"}
	if _, err := svc.Book(context.Background(), "5511999990000", "2025-06-09", appointment); !errors.Is(err, agendaerrors.ErrDailyLimitReached) {
		t.Fatalf("expected ErrDailyLimitReached, got %v", err)
	}
}

func TestBookSaveFailure(t *testing.T) {
	repo := &mockLedgerRepository{
		SaveFunc: func(ctx context.Context, ledger model.Ledger) error {
			return errors.New("disk full")
		},
	}
	publisher := &mockPublisher{}
	svc := newTestService(t, repo, publisher, time.Now())

	appointment := model.Appointment{Name: "João", Address: "Rua das Flores, 10", Period: "tarde", Liters: "2"}
	if _, err := svc.Book(context.Background(), "5511999990000", "2025-06-09", appointment); err == nil {
		t.Fatal("expected an error when save fails")
	}
	if publisher.calls != 0 {
		t.Errorf("expected no publish call on save failure, got %d", publisher.calls)
	}
}

func TestBookInvalidPeriod(t *testing.T) {
	repo := &mockLedgerRepository{
		SaveFunc: func(ctx context.Context, ledger model.Ledger) error {
			t.Fatal("Save must not be called for an invalid appointment")
			return nil
		},
	}
	svc := newTestService(t, repo, nil, time.Now())

	appointment := model.Appointment{Name: "João", Address: "Rua das Flores, 10", Period: "madrugada", Liters: "5"}
	if _, err := svc.Book(context.Background(), "5511999990000", "2025-06-09", appointment); err == nil {
		t.Fatal("expected a validation error for unknown period")
	}
}

func TestBookPublishFailureDoesNotFailBooking(t *testing.T) {
	publisher := &mockPublisher{
		AppointmentConfirmedFunc: func(ctx context.Context, conversationID string, date string, appointment model.Appointment) error {
			return errors.New("broker unavailable")
		},
	}
	svc := newTestService(t, &mockLedgerRepository{}, publisher, time.Now())

	appointment := model.Appointment{Name: "João", Address: "Rua das Flores, 10", Period: "noite", Liters: "3"}
	if _, err := svc.Book(context.Background(), "5511999990000", "2025-06-09", appointment); err != nil {
		t.Fatalf("booking must succeed despite publish failure, got %v", err)
	}
}

package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	agendaerrors "recolhe/internal/agenda/errors"
	"recolhe/internal/agenda/repository"
	"recolhe/internal/agenda/validator"
	"recolhe/pkg/config"
	apperrors "recolhe/pkg/errors"
	"recolhe/pkg/model"
	"recolhe/pkg/sanitizer"
)

// EventPublisher emits confirmed-appointment events to downstream consumers.
// Publishing is best-effort: a failure is logged, never surfaced to the user.
type EventPublisher interface {
	AppointmentConfirmed(ctx context.Context, conversationID string, date string, appointment model.Appointment) error
}

type AgendaService interface {
	// ResolveWeekday normalizes a weekday answer and maps it into the weekly
	// collection pattern, returning the canonical name.
	ResolveWeekday(input string) (string, bool)

	// WeekdayNames lists the collection weekdays in configured order.
	WeekdayNames() []string

	// FindNextSlot scans forward from today across the search horizon and
	// returns the first date on the requested collection weekday with spare
	// capacity. A nil slot with nil error means the horizon is fully booked,
	// which is a legitimate business outcome rather than an error.
	FindNextSlot(ctx context.Context, weekdayName string) (*model.Slot, error)

	// Book appends the appointment to the date bucket and persists the
	// ledger. The whole load-mutate-save sequence runs under one mutex so
	// two near-simultaneous completions cannot drop an appointment.
	Book(ctx context.Context, conversationID string, date string, appointment model.Appointment) (model.Appointment, error)

	// AppointmentsOn is the read path consumed by the route notifier.
	AppointmentsOn(ctx context.Context, date string) []model.Appointment
}

type agendaService struct {
	repo      repository.LedgerRepository
	validator *validator.AppointmentValidator
	publisher EventPublisher
	cfg       *config.Config

	dayByName map[string]config.CollectionDay

	mu  sync.Mutex
	now func() time.Time
}

func NewAgendaService(
	repo repository.LedgerRepository,
	appointmentValidator *validator.AppointmentValidator,
	publisher EventPublisher,
	cfg *config.Config,
) AgendaService {
	dayByName := make(map[string]config.CollectionDay, len(cfg.CollectionDays))
	for _, day := range cfg.CollectionDays {
		dayByName[day.Name] = day
	}

	return &agendaService{
		repo:      repo,
		validator: appointmentValidator,
		publisher: publisher,
		cfg:       cfg,
		dayByName: dayByName,
		now:       time.Now,
	}
}

func (s *agendaService) ResolveWeekday(input string) (string, bool) {
	name := sanitizer.NormalizeWeekday(input)
	if _, ok := s.dayByName[name]; !ok {
		return "", false
	}
	return name, true
}

func (s *agendaService) WeekdayNames() []string {
	names := make([]string, 0, len(s.cfg.CollectionDays))
	for _, day := range s.cfg.CollectionDays {
		names = append(names, day.Name)
	}
	return names
}

func (s *agendaService) FindNextSlot(ctx context.Context, weekdayName string) (*model.Slot, error) {
	day, ok := s.dayByName[weekdayName]
	if !ok {
		return nil, agendaerrors.ErrUnknownWeekday
	}

	ledger := s.repo.Load(ctx)
	today := s.now().In(s.cfg.Location)

	for i := 0; i < s.cfg.SearchHorizonDays; i++ {
		candidate := today.AddDate(0, 0, i)
		if candidate.Weekday() != day.Weekday {
			continue
		}

		date := candidate.Format(model.DateLayout)
		if len(ledger[date]) < s.cfg.DailyLimit {
			return &model.Slot{Date: date, WeekdayName: day.Name}, nil
		}
	}

	s.cfg.Log.Info("No collection slot available within horizon",
		"weekday", weekdayName,
		"horizon_days", s.cfg.SearchHorizonDays,
	)
	return nil, nil
}

func (s *agendaService) Book(ctx context.Context, conversationID string, date string, appointment model.Appointment) (model.Appointment, error) {
	appointment.ID = uuid.New().String()
	appointment.Timestamp = s.now().In(s.cfg.Location).Format(model.TimestampLayout)

	if err := s.validator.Validate(&appointment); err != nil {
		s.cfg.Log.Warn("Appointment validation failed", "conversation_id", conversationID, "error", err)
		return model.Appointment{}, apperrors.Validation("Appointment validation failed", map[string]any{"error": err.Error()})
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ledger := s.repo.Load(ctx)
	if len(ledger[date]) >= s.cfg.DailyLimit {
		return model.Appointment{}, agendaerrors.ErrDailyLimitReached
	}

	ledger[date] = append(ledger[date], appointment)
	if err := s.repo.Save(ctx, ledger); err != nil {
		s.cfg.Log.Error("Failed to persist ledger", "conversation_id", conversationID, "date", date, "error", err)
		return model.Appointment{}, apperrors.Internal("Failed to persist appointment", err)
	}

	s.cfg.Log.Info("Appointment confirmed",
		"appointment_id", appointment.ID,
		"date", date,
		"period", appointment.Period,
	)

	if s.publisher != nil {
		if err := s.publisher.AppointmentConfirmed(ctx, conversationID, date, appointment); err != nil {
			s.cfg.Log.Warn("Failed to publish appointment event", "appointment_id", appointment.ID, "error", err)
		}
	}

	return appointment, nil
}

func (s *agendaService) AppointmentsOn(ctx context.Context, date string) []model.Appointment {
	return s.repo.AppointmentsOn(ctx, date)
}

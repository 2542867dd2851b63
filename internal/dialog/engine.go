// Package dialog drives the appointment-booking conversation. Each inbound
// message advances one conversation's state machine by at most one step and
// produces exactly one reply.
package dialog

import (
	"context"
	"errors"

	agendaerrors "recolhe/internal/agenda/errors"
	"recolhe/internal/agenda/service"
	"recolhe/internal/dialog/session"
	"recolhe/pkg/config"
	"recolhe/pkg/logger"
	"recolhe/pkg/model"
	"recolhe/pkg/sanitizer"
)

const cancelKeyword = "cancelar"

type Engine struct {
	agenda   service.AgendaService
	sessions session.Store
	cfg      *config.Config
	log      *logger.Logger
}

func NewEngine(agenda service.AgendaService, sessions session.Store, cfg *config.Config) *Engine {
	return &Engine{
		agenda:   agenda,
		sessions: sessions,
		cfg:      cfg,
		log:      cfg.Log,
	}
}

// Handle processes one inbound message and returns the reply to send. The
// cancel keyword aborts any conversation regardless of its current step.
func (e *Engine) Handle(ctx context.Context, msg model.InboundMessage) string {
	if sanitizer.FoldToken(msg.Text) == cancelKeyword {
		e.sessions.Delete(msg.ConversationID)
		return replyCancelled
	}

	current, ok := e.sessions.Get(msg.ConversationID)
	if !ok {
		e.sessions.Put(msg.ConversationID, &session.Session{Step: session.StepInitial})
		return replyGreeting(msg.SenderName)
	}

	switch current.Step {
	case session.StepInitial:
		return e.handleInitial(msg, current)
	case session.StepGetName:
		return e.handleGetName(msg, current)
	case session.StepGetAddress:
		return e.handleGetAddress(msg, current)
	case session.StepGetDay:
		return e.handleGetDay(ctx, msg, current)
	case session.StepGetPeriod:
		return e.handleGetPeriod(msg, current)
	case session.StepGetLiters:
		return e.handleGetLiters(ctx, msg, current)
	default:
		e.log.Warn("Session in unknown step, restarting conversation",
			"conversation_id", msg.ConversationID,
			"step", current.Step,
		)
		e.sessions.Delete(msg.ConversationID)
		return replyRestart()
	}
}

func (e *Engine) handleInitial(msg model.InboundMessage, current *session.Session) string {
	switch sanitizer.TrimAndNormalize(msg.Text) {
	case "1":
		current.Step = session.StepGetName
		e.sessions.Put(msg.ConversationID, current)
		return replyAskName
	case "2":
		e.sessions.Delete(msg.ConversationID)
		return replyHandoff
	default:
		return replyInvalid
	}
}

func (e *Engine) handleGetName(msg model.InboundMessage, current *session.Session) string {
	current.Name = msg.Text
	current.Step = session.StepGetAddress
	e.sessions.Put(msg.ConversationID, current)
	return replyAskAddress
}

func (e *Engine) handleGetAddress(msg model.InboundMessage, current *session.Session) string {
	current.Address = msg.Text
	current.Step = session.StepGetDay
	e.sessions.Put(msg.ConversationID, current)
	return replyAskDay(e.agenda.WeekdayNames())
}

func (e *Engine) handleGetDay(ctx context.Context, msg model.InboundMessage, current *session.Session) string {
	weekdayName, ok := e.agenda.ResolveWeekday(msg.Text)
	if !ok {
		return replyInvalidDay(e.agenda.WeekdayNames())
	}

	slot, err := e.agenda.FindNextSlot(ctx, weekdayName)
	if err != nil {
		e.log.Error("Slot search failed", "conversation_id", msg.ConversationID, "error", err)
		e.sessions.Delete(msg.ConversationID)
		return replyRestart()
	}
	if slot == nil {
		e.sessions.Delete(msg.ConversationID)
		return replyNoSlots
	}

	current.Date = slot.Date
	current.WeekdayName = slot.WeekdayName
	current.Step = session.StepGetPeriod
	e.sessions.Put(msg.ConversationID, current)
	return replySlotFound(slot, e.cfg.CollectionPeriods)
}

func (e *Engine) handleGetPeriod(msg model.InboundMessage, current *session.Session) string {
	folded := sanitizer.FoldToken(msg.Text)
	valid := false
	for _, period := range e.cfg.CollectionPeriods {
		if folded == sanitizer.FoldToken(period) {
			valid = true
			break
		}
	}
	if !valid {
		return replyInvalidPeriod(e.cfg.CollectionPeriods)
	}

	// The answer is stored as typed; only the comparison is folded.
	current.Period = msg.Text
	current.Step = session.StepGetLiters
	e.sessions.Put(msg.ConversationID, current)
	return replyAskLiters
}

func (e *Engine) handleGetLiters(ctx context.Context, msg model.InboundMessage, current *session.Session) string {
	appointment := model.Appointment{
		Name:    current.Name,
		Address: current.Address,
		Period:  current.Period,
		Liters:  msg.Text,
	}

	booked, err := e.agenda.Book(ctx, msg.ConversationID, current.Date, appointment)
	if err != nil {
		if errors.Is(err, agendaerrors.ErrDailyLimitReached) {
			// The slot filled up between selection and completion.
			e.sessions.Delete(msg.ConversationID)
			return replyNoSlots
		}
		// Keep the session so the sender can just resend the liters answer.
		e.sessions.Put(msg.ConversationID, current)
		return replyRetrySave
	}

	e.sessions.Delete(msg.ConversationID)
	return replyConfirmation(booked, current.WeekdayName, current.Date)
}

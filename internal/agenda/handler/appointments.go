// Package handler serves the ledger read path. The route notifier and other
// internal tools query it for the appointments booked on a given date.
package handler

import (
	"net/http"
	"time"

	"github.com/julienschmidt/httprouter"

	"recolhe/internal/agenda/service"
	apperrors "recolhe/pkg/errors"
	apphttp "recolhe/pkg/http"
	"recolhe/pkg/logger"
	"recolhe/pkg/model"
)

type AppointmentsResponse struct {
	Date         string              `json:"date"`
	Count        int                 `json:"count"`
	Appointments []model.Appointment `json:"appointments"`
}

type AppointmentHandler struct {
	agenda service.AgendaService
	log    *logger.Logger
}

func NewAppointmentHandler(agenda service.AgendaService, log *logger.Logger) *AppointmentHandler {
	return &AppointmentHandler{agenda: agenda, log: log}
}

func (h *AppointmentHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/appointments/:date", h.ListByDate)
}

func (h *AppointmentHandler) ListByDate(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	date := ps.ByName("date")
	if _, err := time.Parse(model.DateLayout, date); err != nil {
		apphttp.WriteError(w, apperrors.InvalidInput("Date must be in YYYY-MM-DD format"))
		return
	}

	appointments := h.agenda.AppointmentsOn(r.Context(), date)

	response := AppointmentsResponse{
		Date:         date,
		Count:        len(appointments),
		Appointments: appointments,
	}
	if err := apphttp.WriteSuccess(w, response); err != nil {
		h.log.Error("Failed to write appointments response", "error", err)
	}
}

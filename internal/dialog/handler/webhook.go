// Package handler exposes the conversation engine over HTTP. The webhook
// endpoint is the boundary between the messaging transport and the dialogue:
// one inbound message in, one reply out.
package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/julienschmidt/httprouter"

	"recolhe/internal/dialog"
	apperrors "recolhe/pkg/errors"
	apphttp "recolhe/pkg/http"
	"recolhe/pkg/logger"
	"recolhe/pkg/model"
)

type WebhookResponse struct {
	Reply string `json:"reply"`
}

type WebhookHandler struct {
	engine   *dialog.Engine
	validate *validator.Validate
	log      *logger.Logger
}

func NewWebhookHandler(engine *dialog.Engine, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		engine:   engine,
		validate: validator.New(),
		log:      log,
	}
}

func (h *WebhookHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/webhook", h.HandleMessage)
}

func (h *WebhookHandler) HandleMessage(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var msg model.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
		h.log.Warn("Failed to decode webhook payload", "error", err)
		apphttp.WriteError(w, apperrors.InvalidInput("Request body must be valid JSON"))
		return
	}

	if err := h.validate.Struct(&msg); err != nil {
		h.log.Warn("Webhook payload failed validation", "error", err)
		apphttp.WriteError(w, apperrors.Validation("conversation_id is required", nil))
		return
	}

	reply := h.engine.Handle(r.Context(), msg)

	if err := apphttp.WriteJSON(w, http.StatusOK, WebhookResponse{Reply: reply}); err != nil {
		h.log.Error("Failed to write webhook response", "error", err)
	}
}

package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

type EventHandler struct {
	RegisterUC RegisterEventService
	ConfirmUC  ConfirmPresenceService
}

func NewEventHandler(register RegisterEventService, confirm ConfirmPresenceService) *EventHandler {
	return &EventHandler{RegisterUC: register, ConfirmUC: confirm}
}

// Register (POST /events/{eventId}/registrations)
func (h *EventHandler) Register(w http.ResponseWriter, r *http.Request) {
	var input usecase.RegisterEventInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.EventID = chi.URLParam(r, "eventId")

	output, err := h.RegisterUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	middleware.RecordCRMFailures(output.CRMFailures)
	writeJSON(w, http.StatusCreated, output)
}

// ConfirmPresence (GET /events/confirm?token=) é o link do e-mail.
func (h *EventHandler) ConfirmPresence(w http.ResponseWriter, r *http.Request) {
	output, err := h.ConfirmUC.Execute(r.Context(), r.URL.Query().Get("token"))
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

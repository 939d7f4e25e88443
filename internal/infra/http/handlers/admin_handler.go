package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

// AdminHandler agrupa as rotas /admin (JWT + role admin).
type AdminHandler struct {
	Pipelines     PipelineAdminService
	Deals         DealService
	Ambassadors   AmbassadorAdminService
	Events        EventAdminService
	Registrations RegistrationStatusService
}

func (h *AdminHandler) ListPipelines(w http.ResponseWriter, r *http.Request) {
	pipelines, err := h.Pipelines.List(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	if pipelines == nil {
		pipelines = []*entity.Pipeline{}
	}
	writeJSON(w, http.StatusOK, pipelines)
}

func (h *AdminHandler) CreatePipeline(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreatePipelineInput
	if !decodeJSON(w, r, &input) {
		return
	}
	pipeline, err := h.Pipelines.Create(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, pipeline)
}

func (h *AdminHandler) UpdatePipeline(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdatePipelineInput
	if !decodeJSON(w, r, &input) {
		return
	}
	pipeline, err := h.Pipelines.Update(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, pipeline)
}

// AdvanceDeal (PATCH /admin/deals/{id}) muda etapa, valor ou resultado.
func (h *AdminHandler) AdvanceDeal(w http.ResponseWriter, r *http.Request) {
	var input usecase.AdvanceDealInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if err := h.Deals.Advance(r.Context(), chi.URLParam(r, "id"), input); err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) CreateAmbassador(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateAmbassadorInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ambassador, err := h.Ambassadors.Create(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, ambassador)
}

func (h *AdminHandler) SetAmbassadorActive(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Active *bool `json:"active"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	if input.Active == nil {
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeValidation, "active is required")
		return
	}
	if err := h.Ambassadors.SetActive(r.Context(), chi.URLParam(r, "id"), *input.Active); err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *AdminHandler) UpdateAmbassadorPayment(w http.ResponseWriter, r *http.Request) {
	var input usecase.PaymentDetailsInput
	if !decodeJSON(w, r, &input) {
		return
	}
	ambassador, err := h.Ambassadors.UpdatePaymentDetails(r.Context(), chi.URLParam(r, "id"), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ambassador)
}

func (h *AdminHandler) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var input usecase.CreateEventInput
	if !decodeJSON(w, r, &input) {
		return
	}
	event, err := h.Events.Create(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, event)
}

func (h *AdminHandler) SetEventStatus(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Status entity.EventStatus `json:"status"`
	}
	if !decodeJSON(w, r, &input) {
		return
	}
	event, err := h.Events.SetStatus(r.Context(), chi.URLParam(r, "id"), input.Status)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, event)
}

func (h *AdminHandler) UpdateRegistrationStatus(w http.ResponseWriter, r *http.Request) {
	var input usecase.UpdateRegistrationStatusInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.RegistrationID = chi.URLParam(r, "id")

	reg, err := h.Registrations.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

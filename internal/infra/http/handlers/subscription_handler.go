package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

type SubscriptionHandler struct {
	CancelUC CancelSubscriptionService
}

func NewSubscriptionHandler(uc CancelSubscriptionService) *SubscriptionHandler {
	return &SubscriptionHandler{CancelUC: uc}
}

// Cancel (POST /subscriptions/{id}/cancel) exige JWT; só a dona ou admin.
func (h *SubscriptionHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "missing credentials")
		return
	}

	var body struct {
		Reason string `json:"reason"`
	}
	// corpo é opcional
	if r.ContentLength != 0 {
		if err := decodeBody(r.Body, &body); err != nil {
			writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
			return
		}
	}

	output, err := h.CancelUC.Execute(r.Context(), usecase.CancelSubscriptionInput{
		SubscriptionID: chi.URLParam(r, "id"),
		RequesterID:    claims.Subject,
		IsAdmin:        claims.HasRole(middleware.RoleAdmin),
		Reason:         body.Reason,
	})
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

func decodeBody(body io.Reader, dst any) error {
	err := json.NewDecoder(body).Decode(dst)
	if errors.Is(err, io.EOF) {
		return nil
	}
	return err
}

package handlers

import (
	"net/http"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

type CheckoutHandler struct {
	CheckoutUC CheckoutService
}

func NewCheckoutHandler(uc CheckoutService) *CheckoutHandler {
	return &CheckoutHandler{CheckoutUC: uc}
}

// Handle (POST /checkout) assina um plano. Com JWT, o user id vem do token.
func (h *CheckoutHandler) Handle(w http.ResponseWriter, r *http.Request) {
	var input usecase.CheckoutInput
	if !decodeJSON(w, r, &input) {
		return
	}
	if claims, ok := middleware.ClaimsFrom(r.Context()); ok {
		input.UserID = claims.Subject
	}

	output, err := h.CheckoutUC.Execute(r.Context(), input)
	if err != nil {
		middleware.RecordIntegrationError("checkout")
		writeUseCaseError(w, r, err)
		return
	}

	middleware.RecordCRMFailures(output.CRMFailures)
	writeJSON(w, http.StatusCreated, output)
}

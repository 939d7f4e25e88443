package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/integration/asaas"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

const WebhookTokenHeader = "asaas-access-token"

type WebhookHandler struct {
	WebhookUC PaymentWebhookService
	Token     string
}

func NewWebhookHandler(uc PaymentWebhookService, token string) *WebhookHandler {
	return &WebhookHandler{WebhookUC: uc, Token: token}
}

// Handle (POST /webhooks/asaas). Responde 200 para tudo que foi tratado ou
// ignorado; 5xx faz o Asaas reenviar, e a idempotência segura a repetição.
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	if h.Token != "" {
		got := r.Header.Get(WebhookTokenHeader)
		if subtle.ConstantTimeCompare([]byte(got), []byte(h.Token)) != 1 {
			log.WithField("remote", getClientIP(r)).Warn("⚠️ webhook com token inválido")
			writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "invalid webhook token")
			return
		}
	}

	var event asaas.WebhookEvent
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "Bad JSON")
		return
	}

	output, err := h.WebhookUC.Execute(r.Context(), usecase.PaymentWebhookInputFrom(event))
	if err != nil {
		middleware.RecordWebhook(event.Event, "error")
		writeUseCaseError(w, r, err)
		return
	}

	middleware.RecordWebhook(event.Event, output.Status)
	if output.Status == usecase.WebhookProcessed {
		if output.ProductType == entity.ProductPlan {
			middleware.RecordSubscriptionActivation()
		}
		if c := output.Confirmation; c != nil {
			middleware.RecordPaymentConfirmed(output.ProductType)
			middleware.RecordCRMFailures(c.CRMFailures)
		}
	}

	writeJSON(w, http.StatusOK, output)
}

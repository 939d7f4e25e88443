package handlers

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"
	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

const ReferralCookie = "referral_code"

type ReferralHandler struct {
	ReferralUC ReferralService
	SignupURL  string
	CookieTTL  time.Duration
}

func NewReferralHandler(uc ReferralService, signupURL string, cookieDays int) *ReferralHandler {
	if cookieDays <= 0 {
		cookieDays = 30
	}
	return &ReferralHandler{
		ReferralUC: uc,
		SignupURL:  signupURL,
		CookieTTL:  time.Duration(cookieDays) * 24 * time.Hour,
	}
}

// Click (GET /r/{code}) conta o clique, grava o cookie e manda para o cadastro.
// Código desconhecido ainda redireciona, só não vira cookie.
func (h *ReferralHandler) Click(w http.ResponseWriter, r *http.Request) {
	code := entity.NormalizeReferralCode(chi.URLParam(r, "code"))

	err := h.ReferralUC.TrackClick(r.Context(), code)
	switch {
	case err == nil:
		http.SetCookie(w, &http.Cookie{
			Name:     ReferralCookie,
			Value:    code,
			Path:     "/",
			MaxAge:   int(h.CookieTTL.Seconds()),
			HttpOnly: true,
			Secure:   r.TLS != nil,
			SameSite: http.SameSiteLaxMode,
		})
	case errors.Is(err, entity.ErrNotFound):
		log.WithField("referral_code", code).Info("clique em código desconhecido ou inativo")
	default:
		log.WithError(err).WithField("referral_code", code).Error("❌ erro ao contar clique")
	}

	target := h.SignupURL
	if err == nil {
		if u, parseErr := url.Parse(h.SignupURL); parseErr == nil {
			q := u.Query()
			q.Set("ref", code)
			u.RawQuery = q.Encode()
			target = u.String()
		}
	}
	http.Redirect(w, r, target, http.StatusFound)
}

// Signup (POST /referrals/signup) atribui o cadastro recém-criado à embaixadora.
// Roda atrás do Auth: usuária e e-mail saem do token, não do corpo.
// O código vem do corpo ou, na falta, do cookie.
func (h *ReferralHandler) Signup(w http.ResponseWriter, r *http.Request) {
	claims, ok := middleware.ClaimsFrom(r.Context())
	if !ok {
		writeErrorResponse(w, http.StatusUnauthorized, "UNAUTHORIZED", "authentication required")
		return
	}

	var input usecase.ReferralSignupInput
	if !decodeJSON(w, r, &input) {
		return
	}
	input.UserID = claims.Subject
	if claims.Email != "" {
		input.Email = claims.Email
	}
	if input.ReferralCode == "" {
		if c, err := r.Cookie(ReferralCookie); err == nil {
			input.ReferralCode = c.Value
		}
	}

	output, err := h.ReferralUC.Execute(r.Context(), input)
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}

	result := output.Reason
	if output.Attributed {
		result = "attributed"
	}
	middleware.RecordReferralAttribution(result)
	middleware.RecordCRMFailures(output.CRMFailures)

	if output.Attributed {
		// atribuição consumida: o cookie não vale para um segundo cadastro
		http.SetCookie(w, &http.Cookie{Name: ReferralCookie, Value: "", Path: "/", MaxAge: -1})
	}
	writeJSON(w, http.StatusOK, output)
}

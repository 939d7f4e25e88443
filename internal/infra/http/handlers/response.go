package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// status HTTP de cada código de DomainError
var domainStatus = map[string]int{
	usecase.CodeValidation:         http.StatusBadRequest,
	usecase.CodeNotFound:           http.StatusNotFound,
	usecase.CodeForbidden:          http.StatusForbidden,
	usecase.CodeEventNotFound:      http.StatusNotFound,
	usecase.CodeEventNotPublished:  http.StatusConflict,
	usecase.CodeEventFull:          http.StatusConflict,
	usecase.CodeDuplicate:          http.StatusConflict,
	usecase.CodeInvalidToken:       http.StatusNotFound,
	usecase.CodeInvalidTransition:  http.StatusConflict,
	usecase.CodePlanNotFound:       http.StatusNotFound,
	usecase.CodeInvalidStage:       http.StatusBadRequest,
	usecase.CodeDealClosed:         http.StatusConflict,
	usecase.CodeRegistrationClosed: http.StatusGone,
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body != nil {
		json.NewEncoder(w).Encode(body)
	}
}

func writeErrorResponse(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}

// writeUseCaseError traduz o erro do caso de uso em status + JSON.
func writeUseCaseError(w http.ResponseWriter, r *http.Request, err error) {
	var de *usecase.DomainError
	if errors.As(err, &de) {
		status, ok := domainStatus[de.Code]
		if !ok {
			status = http.StatusUnprocessableEntity
		}
		writeErrorResponse(w, status, de.Code, de.Message)
		return
	}

	switch {
	case errors.Is(err, entity.ErrNotFound):
		writeErrorResponse(w, http.StatusNotFound, usecase.CodeNotFound, "not found")
		return
	case errors.Is(err, entity.ErrInvalidStage):
		writeErrorResponse(w, http.StatusBadRequest, usecase.CodeInvalidStage, err.Error())
		return
	case errors.Is(err, entity.ErrAlreadyClosed):
		writeErrorResponse(w, http.StatusConflict, usecase.CodeDealClosed, err.Error())
		return
	}

	logger := log.WithError(err).WithFields(log.Fields{"method": r.Method, "path": r.URL.Path})

	var te *usecase.TechnicalError
	if errors.As(err, &te) {
		logger.WithField("code", te.Code).Error("❌ falha técnica")
		writeErrorResponse(w, http.StatusInternalServerError, te.Code, te.Message)
		return
	}

	logger.Error("❌ erro inesperado")
	writeErrorResponse(w, http.StatusInternalServerError, "INTERNAL_ERROR", "internal error")
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		writeErrorResponse(w, http.StatusBadRequest, "INVALID_JSON", "JSON inválido")
		return false
	}
	return true
}

package usecase

import "errors"

// DomainError é rejeição de negócio/validação: vira 4xx e nada foi gravado.
type DomainError struct {
	Code    string
	Message string
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de backend no caminho principal: vira 5xx.
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

// Códigos de DomainError usados pelos handlers para escolher o status HTTP
const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeForbidden          = "FORBIDDEN"
	CodeEventNotFound      = "EVENT_NOT_FOUND"
	CodeEventNotPublished  = "EVENT_NOT_PUBLISHED"
	CodeEventFull          = "EVENT_FULL"
	CodeDuplicate          = "DUPLICATE_REGISTRATION"
	CodeInvalidToken       = "INVALID_TOKEN"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodePlanNotFound       = "PLAN_NOT_FOUND"
	CodeInvalidStage       = "INVALID_STAGE"
	CodeDealClosed         = "DEAL_CLOSED"
	CodeRegistrationClosed = "REGISTRATION_CANCELLED"
)

func validationError(errs []ValidationError) *DomainError {
	errMsg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			errMsg += ", "
		}
		errMsg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: errMsg}
}

package entity

import "errors"

var (
	ErrNotFound              = errors.New("registro não encontrado")
	ErrLeadExists            = errors.New("lead já existe")
	ErrEventFull             = errors.New("event is full")
	ErrEventNotPublished     = errors.New("event is not published")
	ErrDuplicateRegistration = errors.New("email already registered for this event")
	ErrReferralCodeTaken     = errors.New("referral code already issued")
	ErrInvalidStage          = errors.New("stage does not belong to pipeline")
	ErrInvalidPipeline       = errors.New("pipeline inválido")
	ErrPipelineInactive      = errors.New("pipeline inativo")
	ErrNoOpenDeal            = errors.New("no open deal for lead")
	ErrAlreadyClosed         = errors.New("deal already closed")
	ErrInvalidTransition     = errors.New("invalid status transition")
	ErrMetadataMismatch      = errors.New("metadata kind does not match type")
	ErrLeaseLost             = errors.New("outbox task lease lost")
)

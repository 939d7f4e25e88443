package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type CreateEventInput struct {
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartsAt        time.Time `json:"starts_at"`
	Location        string    `json:"location"`
	Online          bool      `json:"online"`
	MeetingURL      string    `json:"meeting_url"`
	PriceCents      int64     `json:"price_cents"`
	MaxParticipants *int      `json:"max_participants"`
	Publish         bool      `json:"publish"`
}

type EventAdminUseCase struct {
	Events EventRepository
	Now    func() time.Time
}

func NewEventAdminUseCase(events EventRepository) *EventAdminUseCase {
	return &EventAdminUseCase{Events: events, Now: time.Now}
}

func (uc *EventAdminUseCase) Create(ctx context.Context, input CreateEventInput) (*entity.Event, error) {
	now := uc.Now()
	if errs := ValidateCreateEventInput(input, now); len(errs) > 0 {
		return nil, validationError(errs)
	}

	event := entity.NewEvent(strings.TrimSpace(input.Title), input.StartsAt, input.PriceCents, input.MaxParticipants, now)
	event.Description = input.Description
	event.Location = input.Location
	event.Online = input.Online
	event.MeetingURL = input.MeetingURL
	if input.Publish {
		event.Status = entity.EventPublished
	}

	if err := uc.Events.Create(ctx, event); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to save event", Err: err}
	}
	return event, nil
}

var eventTransitions = map[entity.EventStatus][]entity.EventStatus{
	entity.EventDraft:     {entity.EventPublished, entity.EventCancelled},
	entity.EventPublished: {entity.EventCancelled, entity.EventCompleted, entity.EventDraft},
}

func (uc *EventAdminUseCase) SetStatus(ctx context.Context, id string, status entity.EventStatus) (*entity.Event, error) {
	event, err := uc.Events.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, entity.ErrNotFound) {
			return nil, &DomainError{Code: CodeEventNotFound, Message: "event not found"}
		}
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to load event", Err: err}
	}
	if event.Status == status {
		return event, nil
	}

	allowed := false
	for _, s := range eventTransitions[event.Status] {
		if s == status {
			allowed = true
			break
		}
	}
	if !allowed {
		return nil, &DomainError{Code: CodeInvalidTransition, Message: "cannot change event from " + string(event.Status) + " to " + string(status)}
	}

	if err := uc.Events.UpdateStatus(ctx, id, status); err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to update event", Err: err}
	}
	event.Status = status
	event.UpdatedAt = uc.Now()
	return event, nil
}

package entity

import (
	"time"

	"github.com/google/uuid"
)

type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventPublished EventStatus = "published"
	EventCancelled EventStatus = "cancelled"
	EventCompleted EventStatus = "completed"
)

type Event struct {
	ID                  string      `json:"id"`
	Title               string      `json:"title"`
	Description         string      `json:"description,omitempty"`
	StartsAt            time.Time   `json:"starts_at"`
	Location            string      `json:"location,omitempty"`
	Online              bool        `json:"online"`
	MeetingURL          string      `json:"meeting_url,omitempty"`
	PriceCents          int64       `json:"price_cents"`
	MaxParticipants     *int        `json:"max_participants,omitempty"` // nil = sem limite
	CurrentParticipants int         `json:"current_participants"`
	Status              EventStatus `json:"status"`
	CreatedAt           time.Time   `json:"created_at"`
	UpdatedAt           time.Time   `json:"updated_at"`
}

func NewEvent(title string, startsAt time.Time, priceCents int64, maxParticipants *int, now time.Time) *Event {
	return &Event{
		ID:              uuid.New().String(),
		Title:           title,
		StartsAt:        startsAt,
		PriceCents:      priceCents,
		MaxParticipants: maxParticipants,
		Status:          EventDraft,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

func (e *Event) IsFree() bool      { return e.PriceCents <= 0 }
func (e *Event) IsPublished() bool { return e.Status == EventPublished }

func (e *Event) IsFull() bool {
	return e.MaxParticipants != nil && e.CurrentParticipants >= *e.MaxParticipants
}

// DaysUntil conta dias de calendário entre now e o início do evento no fuso loc.
func (e *Event) DaysUntil(now time.Time, loc *time.Location) int {
	if loc == nil {
		loc = time.UTC
	}
	n := now.In(loc)
	s := e.StartsAt.In(loc)
	today := time.Date(n.Year(), n.Month(), n.Day(), 0, 0, 0, 0, time.UTC)
	day := time.Date(s.Year(), s.Month(), s.Day(), 0, 0, 0, 0, time.UTC)
	return int(day.Sub(today).Hours() / 24)
}

package entity

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

type OutboxStatus string

const (
	OutboxPending    OutboxStatus = "pending"
	OutboxDispatched OutboxStatus = "dispatched"
	OutboxDone       OutboxStatus = "done"
	OutboxDead       OutboxStatus = "dead"
)

const TaskSendEmail = "send_email"

// OutboxTask é um efeito colateral descrito, gravado junto da ação principal
// e executado depois pelo worker.
type OutboxTask struct {
	ID            string          `json:"id"`
	Kind          string          `json:"kind"`
	Payload       json.RawMessage `json:"payload"`
	Status        OutboxStatus    `json:"status"`
	Attempts      int             `json:"attempts"`
	NextAttemptAt time.Time       `json:"next_attempt_at"`
	LastError     string          `json:"last_error,omitempty"`
	// LockedUntil é o lease do dispatch; serve de token para o consumer.
	LockedUntil   *time.Time      `json:"locked_until,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
}

// EmailTask é o payload de TaskSendEmail; o HTML já vai renderizado.
type EmailTask struct {
	To             string `json:"to"`
	ToName         string `json:"to_name,omitempty"`
	Subject        string `json:"subject"`
	HTML           string `json:"html"`
	Template       string `json:"template"`
	LeadID         string `json:"lead_id,omitempty"`
	RegistrationID string `json:"registration_id,omitempty"`
}

func NewEmailTask(email EmailTask, now time.Time) (*OutboxTask, error) {
	payload, err := json.Marshal(email)
	if err != nil {
		return nil, err
	}
	return &OutboxTask{
		ID:            uuid.New().String(),
		Kind:          TaskSendEmail,
		Payload:       payload,
		Status:        OutboxPending,
		NextAttemptAt: now,
		CreatedAt:     now,
	}, nil
}

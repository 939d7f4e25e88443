package entity

import "time"

// Business é a ficha do diretório de negócios; aqui só importa a cortesia.
type Business struct {
	ID                 string     `json:"id"`
	Name               string     `json:"name"`
	OwnerID            string     `json:"owner_id"`
	SubscriptionActive bool       `json:"subscription_active"`
	IsComplimentary    bool       `json:"is_complimentary"`
	ComplimentaryUntil *time.Time `json:"complimentary_until,omitempty"`
}

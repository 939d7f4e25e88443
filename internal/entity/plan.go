package entity

import "errors"

var ErrPlanNotFound = errors.New("plano não encontrado")

type Plan struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	PriceCents int64  `json:"price_cents"`
	Cycle      string `json:"cycle"` // MONTHLY, YEARLY
	Active     bool   `json:"active"`
}

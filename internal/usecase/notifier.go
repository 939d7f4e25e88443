package usecase

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

// Templates de e-mail
const (
	TemplateRegistrationConfirmation = "registration_confirmation"
	TemplatePaymentReceived          = "payment_received"
	TemplateWelcome                  = "welcome"
	TemplateReminder2h               = "reminder_2h"
)

func ReminderTemplate(slot entity.ReminderSlot) string {
	return fmt.Sprintf("reminder_%d", slot)
}

// EmailData alimenta os templates de evento.
type EmailData struct {
	Name       string
	EventTitle string
	EventDate  string
	Location   string
	Online     bool
	MeetingURL string
	ConfirmURL string
	InvoiceURL string
	Amount     string
	Pending    bool
	DaysLeft   int
}

// Notifier monta e-mails de evento e os coloca na outbox.
type Notifier struct {
	Renderer TemplateRenderer
	Outbox   OutboxRepository
	BaseURL  string
	Location *time.Location
	Now      func() time.Time
}

func NewNotifier(renderer TemplateRenderer, outbox OutboxRepository, baseURL string, loc *time.Location) *Notifier {
	if loc == nil {
		loc = time.UTC
	}
	return &Notifier{
		Renderer: renderer,
		Outbox:   outbox,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		Location: loc,
		Now:      time.Now,
	}
}

// EventEmail renderiza o template e devolve a task, sem gravar.
func (n *Notifier) EventEmail(template string, event *entity.Event, reg *entity.EventRegistration) (*entity.OutboxTask, error) {
	subject, html, err := n.Renderer.Render(template, n.eventData(event, reg))
	if err != nil {
		return nil, fmt.Errorf("erro ao renderizar %s: %w", template, err)
	}
	return entity.NewEmailTask(entity.EmailTask{
		To:             reg.Email,
		ToName:         reg.FullName,
		Subject:        subject,
		HTML:           html,
		Template:       template,
		LeadID:         reg.LeadID,
		RegistrationID: reg.ID,
	}, n.Now())
}

// EnqueueEventEmail é o caminho best-effort: falha só é logada.
func (n *Notifier) EnqueueEventEmail(ctx context.Context, template string, event *entity.Event, reg *entity.EventRegistration) bool {
	logger := log.WithFields(log.Fields{"registration_id": reg.ID, "template": template})

	task, err := n.EventEmail(template, event, reg)
	if err != nil {
		logger.WithError(err).Error("❌ erro ao montar e-mail")
		return false
	}
	if err := n.Outbox.Enqueue(ctx, task); err != nil {
		logger.WithError(err).Error("❌ erro ao enfileirar e-mail")
		return false
	}
	logger.WithField("task_id", task.ID).Info("📧 e-mail enfileirado")
	return true
}

func (n *Notifier) eventData(event *entity.Event, reg *entity.EventRegistration) EmailData {
	data := EmailData{
		Name:       reg.FullName,
		EventTitle: event.Title,
		EventDate:  event.StartsAt.In(n.Location).Format("02/01/2006 às 15:04"),
		Location:   event.Location,
		Online:     event.Online,
		MeetingURL: event.MeetingURL,
		InvoiceURL: reg.InvoiceURL,
		Pending:    reg.PaymentAmountCents > 0 && !reg.Paid,
		DaysLeft:   event.DaysUntil(n.Now(), n.Location),
	}
	if reg.PaymentAmountCents > 0 {
		data.Amount = FormatBRL(reg.PaymentAmountCents)
	}
	if reg.ConfirmationToken != "" {
		data.ConfirmURL = n.BaseURL + "/events/confirm?token=" + url.QueryEscape(reg.ConfirmationToken)
	}
	return data
}

// FormatBRL formata centavos como "R$ 1.234,56".
func FormatBRL(cents int64) string {
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	reais := fmt.Sprintf("%d", cents/100)
	var b strings.Builder
	for i, r := range reais {
		if i > 0 && (len(reais)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}
	return fmt.Sprintf("%sR$ %s,%02d", sign, b.String(), cents%100)
}

package usecase

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type ReminderReport struct {
	EventsScanned int         `json:"events_scanned"`
	Sent          int         `json:"sent"`
	Skipped       int         `json:"skipped"`
	Failed        int         `json:"failed"`
	BySlot        map[int]int `json:"by_slot,omitempty"`
}

// EventRemindersUseCase roda as passadas de lembrete disparadas pelo agendador.
// Cada envio é reivindicado com o timestamp do slot na mesma transação da
// outbox, então passadas sobrepostas não duplicam e-mail.
type EventRemindersUseCase struct {
	Events        EventRepository
	Registrations RegistrationRepository
	Notifier      *Notifier
	Location      *time.Location
	Now           func() time.Time
}

func NewEventRemindersUseCase(events EventRepository, regs RegistrationRepository, notifier *Notifier, loc *time.Location) *EventRemindersUseCase {
	if loc == nil {
		loc = time.UTC
	}
	return &EventRemindersUseCase{
		Events:        events,
		Registrations: regs,
		Notifier:      notifier,
		Location:      loc,
		Now:           time.Now,
	}
}

// RunDailyReminders envia o lembrete 1, 2 ou 3 para eventos a 5, 3 ou 1 dia.
func (uc *EventRemindersUseCase) RunDailyReminders(ctx context.Context) (*ReminderReport, error) {
	now := uc.Now()
	events, err := uc.Events.ListUpcoming(ctx, now)
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to list events", Err: err}
	}

	report := &ReminderReport{BySlot: map[int]int{}}
	for _, event := range events {
		report.EventsScanned++

		slot, ok := entity.ReminderSlotForDays(event.DaysUntil(now, uc.Location))
		if !ok {
			continue
		}

		logger := log.WithFields(log.Fields{"event_id": event.ID, "slot": int(slot)})
		regs, err := uc.Registrations.ListForReminder(ctx, event.ID, slot)
		if err != nil {
			logger.WithError(err).Error("❌ erro ao listar inscrições para lembrete")
			report.Failed++
			continue
		}

		for _, reg := range regs {
			if !reg.EligibleForReminder(slot) {
				report.Skipped++
				continue
			}
			sent, err := uc.claim(ctx, ReminderTemplate(slot), event, reg, func(task *entity.OutboxTask) (bool, error) {
				return uc.Registrations.ClaimReminder(ctx, reg.ID, slot, uc.Now(), task)
			})
			switch {
			case err != nil:
				logger.WithError(err).WithField("registration_id", reg.ID).Error("❌ lembrete não enviado")
				report.Failed++
			case sent:
				report.Sent++
				report.BySlot[int(slot)]++
			default:
				report.Skipped++
			}
		}
	}

	log.WithFields(log.Fields{"sent": report.Sent, "skipped": report.Skipped, "failed": report.Failed}).Info("⏰ lembretes diários processados")
	return report, nil
}

// RunTwoHourReminders cobre eventos que começam entre 2 e 3 horas a partir de agora.
func (uc *EventRemindersUseCase) RunTwoHourReminders(ctx context.Context) (*ReminderReport, error) {
	now := uc.Now()
	events, err := uc.Events.ListStartingBetween(ctx, now.Add(2*time.Hour), now.Add(3*time.Hour))
	if err != nil {
		return nil, &TechnicalError{Code: "DATABASE_ERROR", Message: "failed to list events", Err: err}
	}

	report := &ReminderReport{}
	for _, event := range events {
		report.EventsScanned++
		logger := log.WithField("event_id", event.ID)

		regs, err := uc.Registrations.ListForTwoHourReminder(ctx, event.ID)
		if err != nil {
			logger.WithError(err).Error("❌ erro ao listar inscrições para lembrete de 2h")
			report.Failed++
			continue
		}

		for _, reg := range regs {
			if !reg.EligibleForTwoHourReminder() {
				report.Skipped++
				continue
			}
			sent, err := uc.claim(ctx, TemplateReminder2h, event, reg, func(task *entity.OutboxTask) (bool, error) {
				return uc.Registrations.ClaimTwoHourReminder(ctx, reg.ID, uc.Now(), task)
			})
			switch {
			case err != nil:
				logger.WithError(err).WithField("registration_id", reg.ID).Error("❌ lembrete de 2h não enviado")
				report.Failed++
			case sent:
				report.Sent++
			default:
				report.Skipped++
			}
		}
	}

	log.WithFields(log.Fields{"sent": report.Sent, "skipped": report.Skipped, "failed": report.Failed}).Info("⏰ lembretes de 2h processados")
	return report, nil
}

func (uc *EventRemindersUseCase) claim(ctx context.Context, template string, event *entity.Event, reg *entity.EventRegistration, claimFn func(*entity.OutboxTask) (bool, error)) (bool, error) {
	task, err := uc.Notifier.EventEmail(template, event, reg)
	if err != nil {
		return false, err
	}
	return claimFn(task)
}

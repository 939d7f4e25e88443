package handlers

import (
	"net/http"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/http/middleware"
)

// SchedulerHandler expõe as passadas que o cron externo dispara.
type SchedulerHandler struct {
	RemindersUC ReminderService
	CleanupUC   CleanupService
}

func NewSchedulerHandler(reminders ReminderService, cleanup CleanupService) *SchedulerHandler {
	return &SchedulerHandler{RemindersUC: reminders, CleanupUC: cleanup}
}

// EventReminders (POST /scheduler/event-reminders)
func (h *SchedulerHandler) EventReminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.RemindersUC.RunDailyReminders(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	middleware.RecordRemindersSent(report.BySlot)
	writeJSON(w, http.StatusOK, report)
}

// TwoHourReminders (POST /scheduler/two-hour-reminders)
func (h *SchedulerHandler) TwoHourReminders(w http.ResponseWriter, r *http.Request) {
	report, err := h.RemindersUC.RunTwoHourReminders(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	middleware.RecordTwoHourReminders(report.Sent)
	writeJSON(w, http.StatusOK, report)
}

// CleanupComplimentary (POST /scheduler/cleanup-complimentary) exige admin.
func (h *SchedulerHandler) CleanupComplimentary(w http.ResponseWriter, r *http.Request) {
	output, err := h.CleanupUC.Execute(r.Context())
	if err != nil {
		writeUseCaseError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, output)
}

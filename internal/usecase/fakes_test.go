package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/infra/integration/asaas"
)

// memStore é um banco em memória com os mesmos contratos dos repositórios.
// failures injeta erro por operação ("leads.Create", "outbox.Enqueue", ...).
type memStore struct {
	mu sync.Mutex

	leads        map[string]*entity.Lead
	interactions []*entity.Interaction
	pipelines    map[string]*entity.Pipeline
	deals        []*entity.Deal
	ambassadors  map[string]*entity.Ambassador
	events       map[string]*entity.Event
	regs         map[string]*entity.EventRegistration
	outbox       []*entity.OutboxTask
	subs         map[string]*entity.Subscription
	plans        map[string]*entity.Plan
	processed    map[string]string
	businesses   map[string]*entity.Business

	failures map[string]error
}

func newMemStore() *memStore {
	return &memStore{
		leads:       map[string]*entity.Lead{},
		pipelines:   map[string]*entity.Pipeline{},
		ambassadors: map[string]*entity.Ambassador{},
		events:      map[string]*entity.Event{},
		regs:        map[string]*entity.EventRegistration{},
		subs:        map[string]*entity.Subscription{},
		plans:       map[string]*entity.Plan{},
		processed:   map[string]string{},
		businesses:  map[string]*entity.Business{},
		failures:    map[string]error{},
	}
}

func (s *memStore) fail(op string) error { return s.failures[op] }

func (s *memStore) interactionsOf(t entity.InteractionType) []*entity.Interaction {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entity.Interaction
	for _, i := range s.interactions {
		if i.Type == t {
			out = append(out, i)
		}
	}
	return out
}

func (s *memStore) leadByEmail(email string) *entity.Lead {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, l := range s.leads {
		if l.Email == entity.NormalizeEmail(email) {
			c := *l
			return &c
		}
	}
	return nil
}

func (s *memStore) dealsOf(leadID string) []entity.Deal {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.Deal
	for _, d := range s.deals {
		if d.LeadID == leadID {
			out = append(out, *d)
		}
	}
	return out
}

func (s *memStore) tasksFor(template string) []entity.EmailTask {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []entity.EmailTask
	for _, t := range s.outbox {
		var email entity.EmailTask
		if err := json.Unmarshal(t.Payload, &email); err == nil && email.Template == template {
			out = append(out, email)
		}
	}
	return out
}

func (s *memStore) writes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.leads) + len(s.interactions) + len(s.deals) + len(s.regs) + len(s.outbox)
}

// --- leads ---

type memLeads struct{ *memStore }

func (r memLeads) FindByTaxID(ctx context.Context, taxID string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("leads.Find"); err != nil {
		return nil, err
	}
	for _, l := range r.leads {
		if l.TaxID != "" && l.TaxID == taxID {
			c := *l
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r memLeads) FindByEmail(ctx context.Context, email string) (*entity.Lead, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("leads.Find"); err != nil {
		return nil, err
	}
	var found *entity.Lead
	for _, l := range r.leads {
		if strings.EqualFold(l.Email, email) && (found == nil || l.CreatedAt.Before(found.CreatedAt)) {
			found = l
		}
	}
	if found == nil {
		return nil, entity.ErrNotFound
	}
	c := *found
	return &c, nil
}

func (r memLeads) Create(ctx context.Context, lead *entity.Lead) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("leads.Create"); err != nil {
		return err
	}
	for _, l := range r.leads {
		if lead.TaxID != "" && l.TaxID == lead.TaxID {
			return entity.ErrLeadExists
		}
		if lead.TaxID == "" && l.TaxID == "" && l.Email == lead.Email {
			return entity.ErrLeadExists
		}
	}
	c := *lead
	r.leads[lead.ID] = &c
	return nil
}

func (r memLeads) UpdateStatus(ctx context.Context, id string, status entity.LeadStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.leads[id]
	if !ok {
		return entity.ErrNotFound
	}
	l.Status = status
	return nil
}

// --- interactions ---

type memInteractions struct{ *memStore }

func (r memInteractions) Create(ctx context.Context, i *entity.Interaction) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("interactions.Create"); err != nil {
		return err
	}
	c := *i
	r.interactions = append(r.interactions, &c)
	return nil
}

// --- pipelines ---

type memPipelines struct{ *memStore }

func (r memPipelines) FindByID(ctx context.Context, id string) (*entity.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.pipelines[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *p
	return &c, nil
}

func (r memPipelines) FindActiveByKind(ctx context.Context, kind entity.PipelineKind) (*entity.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("pipelines.FindActiveByKind"); err != nil {
		return nil, err
	}
	for _, p := range r.pipelines {
		if p.Kind == kind && p.Active {
			c := *p
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r memPipelines) List(ctx context.Context) ([]*entity.Pipeline, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.Pipeline
	for _, p := range r.pipelines {
		c := *p
		out = append(out, &c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slug < out[j].Slug })
	return out, nil
}

func (r memPipelines) Create(ctx context.Context, p *entity.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *p
	r.pipelines[p.ID] = &c
	return nil
}

func (r memPipelines) Update(ctx context.Context, p *entity.Pipeline) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.pipelines[p.ID]; !ok {
		return entity.ErrNotFound
	}
	c := *p
	r.pipelines[p.ID] = &c
	return nil
}

// --- deals ---

type memDeals struct{ *memStore }

func (r memDeals) Create(ctx context.Context, d *entity.Deal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("deals.Create"); err != nil {
		return err
	}
	c := *d
	r.deals = append(r.deals, &c)
	return nil
}

func (r memDeals) find(id string) *entity.Deal {
	for _, d := range r.deals {
		if d.ID == id {
			return d
		}
	}
	return nil
}

func (r memDeals) latestOpen(leadID, productType string) *entity.Deal {
	for i := len(r.deals) - 1; i >= 0; i-- {
		d := r.deals[i]
		if d.LeadID == leadID && d.ProductType == productType && d.IsOpen() {
			return d
		}
	}
	return nil
}

func (r memDeals) FindByID(ctx context.Context, id string) (*entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(id)
	if d == nil {
		return nil, entity.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r memDeals) FindOpen(ctx context.Context, leadID, productType string) (*entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.latestOpen(leadID, productType)
	if d == nil {
		return nil, entity.ErrNotFound
	}
	c := *d
	return &c, nil
}

func (r memDeals) UpdateOpen(ctx context.Context, id string, upd entity.DealUpdate) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d := r.find(id)
	if d == nil {
		return entity.ErrNotFound
	}
	if !d.IsOpen() {
		return entity.ErrAlreadyClosed
	}
	if upd.Stage != nil {
		d.Stage = *upd.Stage
	}
	if upd.ValueCents != nil {
		d.ValueCents = *upd.ValueCents
	}
	if upd.Won != nil {
		won := *upd.Won
		d.Won = &won
	}
	if upd.ClosedAt != nil {
		at := *upd.ClosedAt
		d.ClosedAt = &at
	}
	return nil
}

func (r memDeals) CloseLatestOpen(ctx context.Context, leadID, productType string, valueCents int64, closedAt time.Time) (*entity.Deal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("deals.CloseLatestOpen"); err != nil {
		return nil, err
	}
	d := r.latestOpen(leadID, productType)
	if d == nil {
		return nil, entity.ErrNotFound
	}
	won := true
	d.Won = &won
	d.ClosedAt = &closedAt
	d.ValueCents = valueCents
	if p, ok := r.pipelines[d.PipelineID]; ok && p.HasStage(entity.StageConverted) {
		d.Stage = entity.StageConverted
	}
	c := *d
	return &c, nil
}

// --- ambassadors ---

type memAmbassadors struct{ *memStore }

func (r memAmbassadors) FindByID(ctx context.Context, id string) (*entity.Ambassador, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.ambassadors[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *a
	return &c, nil
}

func (r memAmbassadors) FindByReferralCode(ctx context.Context, code string) (*entity.Ambassador, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("ambassadors.FindByReferralCode"); err != nil {
		return nil, err
	}
	for _, a := range r.ambassadors {
		if a.ReferralCode == code {
			c := *a
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r memAmbassadors) Create(ctx context.Context, a *entity.Ambassador) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.ambassadors {
		if existing.ReferralCode == a.ReferralCode {
			return entity.ErrReferralCodeTaken
		}
	}
	c := *a
	r.ambassadors[a.ID] = &c
	return nil
}

func (r memAmbassadors) SetActive(ctx context.Context, id string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.ambassadors[id]
	if !ok {
		return entity.ErrNotFound
	}
	a.Active = active
	return nil
}

func (r memAmbassadors) UpdatePaymentDetails(ctx context.Context, a *entity.Ambassador) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.ambassadors[a.ID]
	if !ok {
		return entity.ErrNotFound
	}
	stored.PaymentPreference = a.PaymentPreference
	stored.PixKey = a.PixKey
	stored.Bank = a.Bank
	return nil
}

func (r memAmbassadors) IncrementClicks(ctx context.Context, code string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.ambassadors {
		if a.ReferralCode == code && a.Active {
			a.TotalClicks++
			return nil
		}
	}
	return entity.ErrNotFound
}

func (r memAmbassadors) CreditSale(ctx context.Context, id string, commissionCents int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.ambassadors[id]
	if !ok {
		return entity.ErrNotFound
	}
	a.TotalSales++
	a.PendingCommissionCents += commissionCents
	a.TotalEarningsCents += commissionCents
	return nil
}

// --- events ---

type memEvents struct{ *memStore }

func (r memEvents) Create(ctx context.Context, e *entity.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c := *e
	r.events[e.ID] = &c
	return nil
}

func (r memEvents) FindByID(ctx context.Context, id string) (*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r memEvents) ReserveSeat(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	switch {
	case !ok:
		return entity.ErrNotFound
	case !e.IsPublished():
		return entity.ErrEventNotPublished
	case e.IsFull():
		return entity.ErrEventFull
	}
	e.CurrentParticipants++
	return nil
}

func (r memEvents) ReleaseSeat(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if e, ok := r.events[id]; ok && e.CurrentParticipants > 0 {
		e.CurrentParticipants--
	}
	return nil
}

func (r memEvents) UpdateStatus(ctx context.Context, id string, status entity.EventStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.events[id]
	if !ok {
		return entity.ErrNotFound
	}
	e.Status = status
	return nil
}

func (r memEvents) list(match func(*entity.Event) bool) []*entity.Event {
	var out []*entity.Event
	for _, e := range r.events {
		if e.IsPublished() && match(e) {
			c := *e
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartsAt.Before(out[j].StartsAt) })
	return out
}

func (r memEvents) ListUpcoming(ctx context.Context, now time.Time) ([]*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e *entity.Event) bool { return e.StartsAt.After(now) }), nil
}

func (r memEvents) ListStartingBetween(ctx context.Context, from, to time.Time) ([]*entity.Event, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.list(func(e *entity.Event) bool { return !e.StartsAt.Before(from) && e.StartsAt.Before(to) }), nil
}

// --- registrations ---

type memRegistrations struct{ *memStore }

func (r memRegistrations) Create(ctx context.Context, reg *entity.EventRegistration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("registrations.Create"); err != nil {
		return err
	}
	for _, existing := range r.regs {
		if existing.EventID == reg.EventID && existing.Email == reg.Email {
			return entity.ErrDuplicateRegistration
		}
	}
	c := *reg
	r.regs[reg.ID] = &c
	return nil
}

func (r memRegistrations) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.regs, id)
	return nil
}

func (r memRegistrations) get(id string) (*entity.EventRegistration, error) {
	reg, ok := r.regs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	return reg, nil
}

func (r memRegistrations) FindByID(ctx context.Context, id string) (*entity.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return nil, err
	}
	c := *reg
	return &c, nil
}

func (r memRegistrations) FindByEventAndEmail(ctx context.Context, eventID, email string) (*entity.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.Email == email {
			c := *reg
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r memRegistrations) FindByToken(ctx context.Context, token string) (*entity.EventRegistration, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, reg := range r.regs {
		if reg.ConfirmationToken == token {
			c := *reg
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r memRegistrations) SetCRMLinks(ctx context.Context, id, leadID, dealID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return err
	}
	if leadID != "" {
		reg.LeadID = leadID
	}
	if dealID != "" {
		reg.DealID = dealID
	}
	return nil
}

func (r memRegistrations) SetPayment(ctx context.Context, id, paymentID, invoiceURL string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return err
	}
	reg.GatewayPaymentID = paymentID
	reg.InvoiceURL = invoiceURL
	return nil
}

func (r memRegistrations) MarkPaid(ctx context.Context, id string, now time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil || reg.Paid {
		return false, err
	}
	reg.Paid = true
	if reg.Status == entity.RegistrationPending {
		reg.Status = entity.RegistrationConfirmed
	}
	return true, nil
}

func (r memRegistrations) UpdateStatus(ctx context.Context, id string, from, to entity.RegistrationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return err
	}
	if reg.Status != from {
		return entity.ErrInvalidTransition
	}
	reg.Status = to
	return nil
}

// ListForReminder devolve toda inscrição ativa do evento; o filtro fino fica
// com o caso de uso, que é o que se quer exercitar.
func (r memRegistrations) ListForReminder(ctx context.Context, eventID string, slot entity.ReminderSlot) ([]*entity.EventRegistration, error) {
	return r.active(eventID), nil
}

func (r memRegistrations) ListForTwoHourReminder(ctx context.Context, eventID string) ([]*entity.EventRegistration, error) {
	return r.active(eventID), nil
}

func (r memRegistrations) active(eventID string) []*entity.EventRegistration {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*entity.EventRegistration
	for _, reg := range r.regs {
		if reg.EventID == eventID && reg.Status != entity.RegistrationCancelled {
			c := *reg
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

// claim imita o UPDATE ... WHERE col IS NULL + insert na outbox na mesma transação.
func (r memRegistrations) claim(id string, field func(*entity.EventRegistration) **time.Time, now time.Time, task *entity.OutboxTask) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	reg, err := r.get(id)
	if err != nil {
		return false, err
	}
	slot := field(reg)
	if *slot != nil {
		return false, nil
	}
	at := now
	*slot = &at
	if task != nil {
		r.outbox = append(r.outbox, task)
	}
	return true, nil
}

func (r memRegistrations) ClaimReminder(ctx context.Context, id string, slot entity.ReminderSlot, now time.Time, task *entity.OutboxTask) (bool, error) {
	return r.claim(id, func(reg *entity.EventRegistration) **time.Time {
		switch slot {
		case entity.ReminderFirst:
			return &reg.Email1SentAt
		case entity.ReminderSecond:
			return &reg.Email2SentAt
		default:
			return &reg.Email3SentAt
		}
	}, now, task)
}

func (r memRegistrations) ClaimTwoHourReminder(ctx context.Context, id string, now time.Time, task *entity.OutboxTask) (bool, error) {
	return r.claim(id, func(reg *entity.EventRegistration) **time.Time { return &reg.Reminder2hSentAt }, now, task)
}

func (r memRegistrations) ConfirmPresence(ctx context.Context, id string, now time.Time, welcome *entity.OutboxTask) (bool, error) {
	ok, err := r.claim(id, func(reg *entity.EventRegistration) **time.Time { return &reg.PresenceConfirmedAt }, now, welcome)
	if ok && welcome != nil {
		r.mu.Lock()
		at := now
		r.regs[id].WelcomeEmailSentAt = &at
		r.mu.Unlock()
	}
	return ok, err
}

// --- outbox ---

type memOutbox struct{ *memStore }

func (r memOutbox) Enqueue(ctx context.Context, task *entity.OutboxTask) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("outbox.Enqueue"); err != nil {
		return err
	}
	r.outbox = append(r.outbox, task)
	return nil
}

func (r memOutbox) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxTask, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	until := now.Add(lease)
	var out []*entity.OutboxTask
	for _, t := range r.outbox {
		if len(out) == limit {
			break
		}
		due := t.Status == entity.OutboxPending && !t.NextAttemptAt.After(now)
		expired := t.Status == entity.OutboxDispatched && t.LockedUntil != nil && t.LockedUntil.Before(now)
		if due || expired {
			t.Status = entity.OutboxDispatched
			t.LockedUntil = &until
			out = append(out, copyTask(t))
		}
	}
	return out, nil
}

func (r memOutbox) task(id string) (*entity.OutboxTask, error) {
	for _, t := range r.outbox {
		if t.ID == id {
			return t, nil
		}
	}
	return nil, entity.ErrNotFound
}

// copyTask imita a mensagem publicada: uma cópia, não a linha do banco.
func copyTask(t *entity.OutboxTask) *entity.OutboxTask {
	c := *t
	return &c
}

// leased imita o predicado status = 'dispatched' AND locked_until = $lease.
func (r memOutbox) leased(id string, lease time.Time) (*entity.OutboxTask, error) {
	t, err := r.task(id)
	if err != nil {
		return nil, err
	}
	if t.Status != entity.OutboxDispatched || t.LockedUntil == nil || !t.LockedUntil.Equal(lease) {
		return nil, entity.ErrLeaseLost
	}
	return t, nil
}

func (r memOutbox) Acquire(ctx context.Context, id string, lease, until time.Time) (*entity.OutboxTask, bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.leased(id, lease)
	if errors.Is(err, entity.ErrLeaseLost) || errors.Is(err, entity.ErrNotFound) {
		return nil, false, nil
	}
	t.LockedUntil = &until
	return copyTask(t), true, nil
}

func (r memOutbox) MarkDone(ctx context.Context, id string, lease time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.leased(id, lease)
	if err != nil {
		return err
	}
	t.Status = entity.OutboxDone
	t.LockedUntil = nil
	return nil
}

func (r memOutbox) Reschedule(ctx context.Context, id string, lease time.Time, attempts int, next time.Time, lastErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.leased(id, lease)
	if err != nil {
		return err
	}
	t.Status = entity.OutboxPending
	t.Attempts = attempts
	t.NextAttemptAt = next
	t.LastError = lastErr
	t.LockedUntil = nil
	return nil
}

func (r memOutbox) MarkDead(ctx context.Context, id string, lease time.Time, attempts int, lastErr string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, err := r.leased(id, lease)
	if err != nil {
		return err
	}
	t.Status = entity.OutboxDead
	t.Attempts = attempts
	t.LastError = lastErr
	t.LockedUntil = nil
	return nil
}

// --- planos, assinaturas, pagamentos processados, negócios ---

type memPlans struct{ *memStore }

func (r memPlans) FindByID(ctx context.Context, id string) (*entity.Plan, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.plans[id]
	if !ok {
		return nil, entity.ErrPlanNotFound
	}
	c := *p
	return &c, nil
}

type memSubscriptions struct{ *memStore }

func (r memSubscriptions) Create(ctx context.Context, sub *entity.Subscription) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.fail("subscriptions.Create"); err != nil {
		return err
	}
	c := *sub
	r.subs[sub.ID] = &c
	return nil
}

func (r memSubscriptions) FindByID(ctx context.Context, id string) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return nil, entity.ErrNotFound
	}
	c := *s
	return &c, nil
}

func (r memSubscriptions) FindByGatewaySubscriptionID(ctx context.Context, gatewayID string) (*entity.Subscription, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.subs {
		if s.GatewaySubscriptionID == gatewayID {
			c := *s
			return &c, nil
		}
	}
	return nil, entity.ErrNotFound
}

func (r memSubscriptions) UpdateStatus(ctx context.Context, id string, status string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.subs[id]
	if !ok {
		return entity.ErrNotFound
	}
	s.Status = status
	return nil
}

type memProcessed struct{ *memStore }

func (r memProcessed) MarkProcessed(ctx context.Context, paymentID, event string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.processed[paymentID]; ok {
		return false, nil
	}
	r.processed[paymentID] = event
	return true, nil
}

type memBusinesses struct{ *memStore }

func (r memBusinesses) DeactivateExpiredComplimentary(ctx context.Context, now time.Time) ([]string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var ids []string
	for _, b := range r.businesses {
		if b.IsComplimentary && b.SubscriptionActive && b.ComplimentaryUntil != nil && b.ComplimentaryUntil.Before(now) {
			b.SubscriptionActive = false
			ids = append(ids, b.ID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// --- colaboradores externos ---

type fakeGateway struct {
	mu sync.Mutex

	customers     int
	subscriptions []asaas.SubscriptionInput
	payments      []asaas.PaymentInput
	cancelled     []string

	customerErr error
	subErr      error
	paymentErr  error
	cancelErr   error
}

func (g *fakeGateway) FindOrCreateCustomer(ctx context.Context, input asaas.CustomerInput) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.customerErr != nil {
		return "", g.customerErr
	}
	g.customers++
	return "cus_" + input.CpfCnpj, nil
}

func (g *fakeGateway) CreateSubscription(ctx context.Context, input asaas.SubscriptionInput) (*asaas.SubscriptionOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.subErr != nil {
		return nil, g.subErr
	}
	g.subscriptions = append(g.subscriptions, input)
	return &asaas.SubscriptionOutput{ID: "sub_gw_1", Status: "ACTIVE"}, nil
}

func (g *fakeGateway) CreatePayment(ctx context.Context, input asaas.PaymentInput) (*asaas.PaymentOutput, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.paymentErr != nil {
		return nil, g.paymentErr
	}
	g.payments = append(g.payments, input)
	return &asaas.PaymentOutput{ID: "pay_gw_1", Status: "PENDING", InvoiceURL: "https://sandbox.asaas.com/i/pay_gw_1"}, nil
}

func (g *fakeGateway) CancelSubscription(ctx context.Context, subscriptionID string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.cancelErr != nil {
		return g.cancelErr
	}
	g.cancelled = append(g.cancelled, subscriptionID)
	return nil
}

func (g *fakeGateway) SubscriptionInvoiceURL(ctx context.Context, subscriptionID string) (string, error) {
	return "https://sandbox.asaas.com/i/" + subscriptionID, nil
}

type fakeRenderer struct{}

func (fakeRenderer) Render(name string, data any) (string, string, error) {
	d, ok := data.(EmailData)
	if !ok {
		return "", "", errors.New("dados inesperados")
	}
	return name + ": " + d.EventTitle, "<p>" + d.Name + " " + d.ConfirmURL + "</p>", nil
}

type fakeSender struct {
	mu   sync.Mutex
	sent []entity.EmailTask
	err  error
}

func (s *fakeSender) Send(ctx context.Context, email entity.EmailTask) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, email)
	return nil
}

// --- ambiente de teste ---

var (
	saoPaulo = time.FixedZone("America/Sao_Paulo", -3*60*60)
	testNow  = time.Date(2026, 6, 9, 12, 0, 0, 0, time.UTC) // 09:00 em São Paulo
)

type testEnv struct {
	store   *memStore
	gateway *fakeGateway
	sender  *fakeSender

	leads        *LeadRegistry
	interactions *InteractionRecorder
	deals        *DealManager
	notifier     *Notifier

	referral  *ReferralAttributionUseCase
	register  *RegisterEventUseCase
	confirm   *ConfirmPresenceUseCase
	reminders *EventRemindersUseCase
	payment   *ConfirmPaymentUseCase
	webhook   *PaymentWebhookUseCase
	checkout  *SubscribePlanUseCase
	cancel    *CancelSubscriptionUseCase
	outbox    *ProcessOutboxTaskUseCase
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	s := newMemStore()
	clock := func() time.Time { return testNow }

	seedPipeline(t, s, "Vendas", "vendas", entity.PipelineSales, entity.StageLead, entity.StageProposal, entity.StageConverted, entity.StageLost)
	seedPipeline(t, s, "Eventos", "eventos", entity.PipelineEvents, entity.StageInterest, entity.StageRegistered, entity.StageConfirmed, entity.StageConverted, entity.StageLost)
	seedPipeline(t, s, "Planos", "planos", entity.PipelinePlans, entity.StageInterest, entity.StageProposal, entity.StageConverted, entity.StageLost)

	env := &testEnv{store: s, gateway: &fakeGateway{}, sender: &fakeSender{}}

	env.leads = NewLeadRegistry(memLeads{s})
	env.leads.Now = clock
	env.interactions = NewInteractionRecorder(memInteractions{s})
	env.interactions.Now = clock
	env.deals = NewDealManager(memPipelines{s}, memDeals{s})
	env.deals.Now = clock
	env.notifier = NewNotifier(fakeRenderer{}, memOutbox{s}, "https://portal.test/", saoPaulo)
	env.notifier.Now = clock

	env.referral = NewReferralAttributionUseCase(memAmbassadors{s}, env.leads, env.interactions, env.deals)

	env.register = NewRegisterEventUseCase(memEvents{s}, memRegistrations{s}, env.gateway, env.leads, env.interactions, env.deals, env.notifier)
	env.register.Now = clock

	env.confirm = NewConfirmPresenceUseCase(memRegistrations{s}, memEvents{s}, env.deals, env.interactions, env.notifier)
	env.confirm.Now = clock

	env.reminders = NewEventRemindersUseCase(memEvents{s}, memRegistrations{s}, env.notifier, saoPaulo)
	env.reminders.Now = clock

	env.payment = NewConfirmPaymentUseCase(env.leads, env.deals, memAmbassadors{s}, env.interactions)
	env.webhook = NewPaymentWebhookUseCase(memSubscriptions{s}, memRegistrations{s}, memEvents{s}, memProcessed{s}, env.payment, env.notifier)
	env.webhook.Now = clock

	env.checkout = NewSubscribePlanUseCase(memPlans{s}, memSubscriptions{s}, env.gateway, env.leads, env.interactions, env.deals)
	env.checkout.Now = clock

	env.cancel = NewCancelSubscriptionUseCase(memSubscriptions{s}, env.gateway, env.interactions, env.deals)

	env.outbox = NewProcessOutboxTaskUseCase(memOutbox{s}, env.sender, env.interactions, 3, 5*time.Minute)
	env.outbox.Now = clock

	return env
}

func seedPipeline(t *testing.T, s *memStore, name, slug string, kind entity.PipelineKind, stageIDs ...string) *entity.Pipeline {
	t.Helper()
	stages := make([]entity.Stage, len(stageIDs))
	for i, id := range stageIDs {
		stages[i] = entity.Stage{ID: id, Name: id, Order: i + 1}
	}
	p, err := entity.NewPipeline(name, slug, kind, stages, testNow)
	if err != nil {
		t.Fatalf("pipeline %s: %v", slug, err)
	}
	s.pipelines[p.ID] = p
	return p
}

func (e *testEnv) pipelineOf(kind entity.PipelineKind) *entity.Pipeline {
	for _, p := range e.store.pipelines {
		if p.Kind == kind {
			return p
		}
	}
	return nil
}

func (e *testEnv) seedAmbassador(name, email, code string, rate float64, active bool) *entity.Ambassador {
	a := &entity.Ambassador{
		ID:             "amb-" + strings.ToLower(code),
		UserID:         "user-" + strings.ToLower(code),
		Name:           name,
		Email:          email,
		ReferralCode:   code,
		CommissionRate: rate,
		Active:         active,
		CreatedAt:      testNow,
	}
	e.store.ambassadors[a.ID] = a
	return a
}

func (e *testEnv) seedEvent(title string, startsAt time.Time, priceCents int64, capacity *int) *entity.Event {
	ev := entity.NewEvent(title, startsAt, priceCents, capacity, testNow)
	ev.Status = entity.EventPublished
	e.store.events[ev.ID] = ev
	return ev
}

func (e *testEnv) seedPlan(id string, priceCents int64) *entity.Plan {
	p := &entity.Plan{ID: id, Name: "Plano " + id, PriceCents: priceCents, Cycle: "MONTHLY", Active: true}
	e.store.plans[id] = p
	return p
}

func intPtr(v int) *int { return &v }

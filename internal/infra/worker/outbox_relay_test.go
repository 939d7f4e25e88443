package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/entity"
)

type storeMock struct{ mock.Mock }

func (m *storeMock) ClaimDue(ctx context.Context, now time.Time, limit int, lease time.Duration) ([]*entity.OutboxTask, error) {
	args := m.Called(ctx, now, limit, lease)
	if v := args.Get(0); v != nil {
		return v.([]*entity.OutboxTask), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *storeMock) Acquire(ctx context.Context, id string, lease, until time.Time) (*entity.OutboxTask, bool, error) {
	args := m.Called(ctx, id, lease, until)
	task, _ := args.Get(0).(*entity.OutboxTask)
	return task, args.Bool(1), args.Error(2)
}

func (m *storeMock) MarkDone(ctx context.Context, id string, lease time.Time) error {
	return m.Called(ctx, id, lease).Error(0)
}

func (m *storeMock) Reschedule(ctx context.Context, id string, lease time.Time, attempts int, next time.Time, lastErr string) error {
	return m.Called(ctx, id, lease, attempts, next, lastErr).Error(0)
}

func (m *storeMock) MarkDead(ctx context.Context, id string, lease time.Time, attempts int, lastErr string) error {
	return m.Called(ctx, id, lease, attempts, lastErr).Error(0)
}

func (m *storeMock) Stats(ctx context.Context) (map[entity.OutboxStatus]int, error) {
	args := m.Called(ctx)
	stats, _ := args.Get(0).(map[entity.OutboxStatus]int)
	return stats, args.Error(1)
}

type publisherMock struct{ mock.Mock }

func (m *publisherMock) PublishTask(ctx context.Context, task *entity.OutboxTask) error {
	return m.Called(ctx, task).Error(0)
}

func TestOutboxRelay_RelayOnce(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	t1 := &entity.OutboxTask{ID: "t1", Kind: entity.TaskSendEmail}
	t2 := &entity.OutboxTask{ID: "t2", Kind: entity.TaskSendEmail}

	store := new(storeMock)
	store.On("ClaimDue", mock.Anything, now, 10, time.Minute).Return([]*entity.OutboxTask{t1, t2}, nil)
	store.On("Stats", mock.Anything).Return(map[entity.OutboxStatus]int{entity.OutboxDispatched: 2}, nil)

	pub := new(publisherMock)
	pub.On("PublishTask", mock.Anything, t1).Return(nil)
	pub.On("PublishTask", mock.Anything, t2).Return(errors.New("broker down"))

	relay := NewOutboxRelay(store, pub, time.Second, 10, time.Minute)
	relay.now = func() time.Time { return now }

	assert.Equal(t, 1, relay.RelayOnce(context.Background()))
	store.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestOutboxRelay_ClaimErrorPublishesNothing(t *testing.T) {
	store := new(storeMock)
	store.On("ClaimDue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(nil, errors.New("db down"))
	store.On("Stats", mock.Anything).Return(nil, errors.New("db down")).Maybe()
	pub := new(publisherMock)

	relay := NewOutboxRelay(store, pub, 0, 0, 0)

	assert.Equal(t, 0, relay.RelayOnce(context.Background()))
	pub.AssertNotCalled(t, "PublishTask", mock.Anything, mock.Anything)
}

func TestOutboxRelay_StatsErrorDoesNotStopRelay(t *testing.T) {
	t1 := &entity.OutboxTask{ID: "t1", Kind: entity.TaskSendEmail}

	store := new(storeMock)
	store.On("ClaimDue", mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return([]*entity.OutboxTask{t1}, nil)
	store.On("Stats", mock.Anything).Return(nil, errors.New("timeout"))
	pub := new(publisherMock)
	pub.On("PublishTask", mock.Anything, t1).Return(nil)

	relay := NewOutboxRelay(store, pub, 0, 0, 0)

	assert.Equal(t, 1, relay.RelayOnce(context.Background()))
	store.AssertCalled(t, "Stats", mock.Anything)
}

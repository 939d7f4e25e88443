package handlers_test

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/objetivatech/mulheres-em-convergencia-portal-sub003/internal/usecase"
)

type MockWebhookService struct {
	mock.Mock
}

func (m *MockWebhookService) Execute(ctx context.Context, input usecase.PaymentWebhookInput) (*usecase.PaymentWebhookOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.PaymentWebhookOutput), args.Error(1)
}

type MockReferralService struct {
	mock.Mock
}

func (m *MockReferralService) TrackClick(ctx context.Context, code string) error {
	args := m.Called(ctx, code)
	return args.Error(0)
}

func (m *MockReferralService) Execute(ctx context.Context, input usecase.ReferralSignupInput) (*usecase.ReferralSignupOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ReferralSignupOutput), args.Error(1)
}

type MockCaptureLeadService struct {
	mock.Mock
}

func (m *MockCaptureLeadService) Execute(ctx context.Context, input usecase.CaptureLeadInput) (*usecase.CaptureLeadOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.CaptureLeadOutput), args.Error(1)
}

type MockRegisterEventService struct {
	mock.Mock
}

func (m *MockRegisterEventService) Execute(ctx context.Context, input usecase.RegisterEventInput) (*usecase.RegisterEventOutput, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.RegisterEventOutput), args.Error(1)
}

type MockConfirmPresenceService struct {
	mock.Mock
}

func (m *MockConfirmPresenceService) Execute(ctx context.Context, token string) (*usecase.ConfirmPresenceOutput, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.ConfirmPresenceOutput), args.Error(1)
}

type MockDealService struct {
	mock.Mock
}

func (m *MockDealService) Advance(ctx context.Context, dealID string, in usecase.AdvanceDealInput) error {
	args := m.Called(ctx, dealID, in)
	return args.Error(0)
}

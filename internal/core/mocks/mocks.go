package mocks

import (
	"context"

	"github.com/lorrc/ticket-metrics/internal/core/domain"
	"github.com/lorrc/ticket-metrics/internal/core/ports"
	"github.com/stretchr/testify/mock"
)

// MockTicketSource is a mock implementation of ports.TicketSource
type MockTicketSource struct {
	mock.Mock
}

func NewMockTicketSource() *MockTicketSource {
	return &MockTicketSource{}
}

func (m *MockTicketSource) Dataset() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockTicketSource) LoadTickets(ctx context.Context) ([]domain.TicketRecord, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketRecord), args.Error(1)
}

// MockIndicatorSource is a mock implementation of ports.IndicatorSource
type MockIndicatorSource struct {
	mock.Mock
}

func NewMockIndicatorSource() *MockIndicatorSource {
	return &MockIndicatorSource{}
}

func (m *MockIndicatorSource) LoadIndicators(ctx context.Context) ([]domain.IndicatorTable, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.IndicatorTable), args.Error(1)
}

// MockSLAService is a mock implementation of ports.SLAService
type MockSLAService struct {
	mock.Mock
}

func NewMockSLAService() *MockSLAService {
	return &MockSLAService{}
}

func (m *MockSLAService) Overview(ctx context.Context, params ports.OverviewParams) (*domain.SLAOverview, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SLAOverview), args.Error(1)
}

func (m *MockSLAService) FilteredRecords(ctx context.Context, params ports.OverviewParams) ([]domain.TicketRecord, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.TicketRecord), args.Error(1)
}

func (m *MockSLAService) Reload(ctx context.Context) (*domain.SLAOverview, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.SLAOverview), args.Error(1)
}

func (m *MockSLAService) Shutdown() {
	m.Called()
}

// MockIndicatorService is a mock implementation of ports.IndicatorService
type MockIndicatorService struct {
	mock.Mock
}

func NewMockIndicatorService() *MockIndicatorService {
	return &MockIndicatorService{}
}

func (m *MockIndicatorService) List(ctx context.Context) ([]*domain.IndicatorReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.IndicatorReport), args.Error(1)
}

func (m *MockIndicatorService) Get(ctx context.Context, name string) (*domain.IndicatorReport, error) {
	args := m.Called(ctx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.IndicatorReport), args.Error(1)
}

// MockAuthService is a mock implementation of ports.AuthService
type MockAuthService struct {
	mock.Mock
}

func NewMockAuthService() *MockAuthService {
	return &MockAuthService{}
}

func (m *MockAuthService) Login(ctx context.Context, username, password string) (*domain.Viewer, error) {
	args := m.Called(ctx, username, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Viewer), args.Error(1)
}

// MockNotifier is a mock implementation of ports.Notifier
type MockNotifier struct {
	mock.Mock
}

func NewMockNotifier() *MockNotifier {
	return &MockNotifier{}
}

func (m *MockNotifier) Notify(ctx context.Context, params ports.NotificationParams) {
	m.Called(ctx, params)
}

// MockEventBroadcaster is a mock implementation of ports.EventBroadcaster
type MockEventBroadcaster struct {
	mock.Mock
}

func NewMockEventBroadcaster() *MockEventBroadcaster {
	return &MockEventBroadcaster{}
}

func (m *MockEventBroadcaster) Broadcast(event domain.Event) error {
	args := m.Called(event)
	return args.Error(0)
}

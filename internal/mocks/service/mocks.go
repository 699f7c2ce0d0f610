// Package service provides testify mocks for the domain service interfaces.
package service

import (
	"context"
	"sync"
	"time"

	"warden/internal/domain/entity"
	"warden/internal/domain/service"

	"github.com/stretchr/testify/mock"
)

// MockPasswordHasher is a mock implementation of service.PasswordHasher.
type MockPasswordHasher struct {
	mock.Mock
}

// NewMockPasswordHasher creates a mock whose expectations are asserted at cleanup.
func NewMockPasswordHasher(t mock.TestingT) *MockPasswordHasher {
	m := &MockPasswordHasher{}
	m.Test(t)
	registerCleanup(t, &m.Mock)

	return m
}

func (m *MockPasswordHasher) Hash(password string) (string, error) {
	args := m.Called(password)

	return args.String(0), args.Error(1)
}

func (m *MockPasswordHasher) Verify(password, hash string) (bool, error) {
	args := m.Called(password, hash)

	return args.Bool(0), args.Error(1)
}

// MockTokenService is a mock implementation of service.TokenService.
type MockTokenService struct {
	mock.Mock
}

// NewMockTokenService creates a mock whose expectations are asserted at cleanup.
func NewMockTokenService(t mock.TestingT) *MockTokenService {
	m := &MockTokenService{}
	m.Test(t)
	registerCleanup(t, &m.Mock)

	return m
}

func (m *MockTokenService) Issue(principal entity.Principal) (*service.IssuedToken, error) {
	args := m.Called(principal)
	token, _ := args.Get(0).(*service.IssuedToken)

	return token, args.Error(1)
}

func (m *MockTokenService) Verify(token string) (*service.Claims, error) {
	args := m.Called(token)
	claims, _ := args.Get(0).(*service.Claims)

	return claims, args.Error(1)
}

func (m *MockTokenService) TTL() time.Duration {
	args := m.Called()

	return args.Get(0).(time.Duration)
}

// MockEventPublisher is a mock implementation of service.EventPublisher.
type MockEventPublisher struct {
	mock.Mock
}

// NewMockEventPublisher creates a mock whose expectations are asserted at cleanup.
func NewMockEventPublisher(t mock.TestingT) *MockEventPublisher {
	m := &MockEventPublisher{}
	m.Test(t)
	registerCleanup(t, &m.Mock)

	return m
}

func (m *MockEventPublisher) PublishAuditEvent(ctx context.Context, event *service.AuditEvent) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockEventPublisher) Close() error {
	return m.Called().Error(0)
}

// RecordingMetrics is a MetricsRecorder fake that keeps every access decision.
type RecordingMetrics struct {
	service.NopMetrics

	mu        sync.Mutex
	decisions []string
	logins    map[bool]int
}

func (r *RecordingMetrics) RecordAccessDecision(policy, outcome string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.decisions = append(r.decisions, policy+"="+outcome)
}

func (r *RecordingMetrics) RecordLogin(success bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.logins == nil {
		r.logins = make(map[bool]int)
	}
	r.logins[success]++
}

// Decisions returns the recorded "policy=outcome" pairs in order.
func (r *RecordingMetrics) Decisions() []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	return append([]string(nil), r.decisions...)
}

// Logins returns how many logins were recorded with the given result.
func (r *RecordingMetrics) Logins(success bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.logins[success]
}

type cleanuper interface {
	Cleanup(func())
}

func registerCleanup(t mock.TestingT, m *mock.Mock) {
	if c, ok := t.(cleanuper); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}
}

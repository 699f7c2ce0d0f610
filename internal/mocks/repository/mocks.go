// Package repository provides testify mocks for the persistence interfaces.
package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockOwnerLookup is a mock implementation of repository.OwnerLookup.
type MockOwnerLookup struct {
	mock.Mock
}

// NewMockOwnerLookup creates a mock whose expectations are asserted at cleanup.
func NewMockOwnerLookup(t mock.TestingT) *MockOwnerLookup {
	m := &MockOwnerLookup{}
	m.Test(t)
	if c, ok := t.(interface{ Cleanup(func()) }); ok {
		c.Cleanup(func() { m.AssertExpectations(t) })
	}

	return m
}

func (m *MockOwnerLookup) FindOwnerID(ctx context.Context, id uuid.UUID) (uuid.UUID, error) {
	args := m.Called(ctx, id)

	return args.Get(0).(uuid.UUID), args.Error(1)
}

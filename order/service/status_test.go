package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/arvglez/storefront/internal/repository"
)

func TestCanTransition(t *testing.T) {
	tests := []struct {
		name    string
		from    repository.OrderStatus
		to      repository.OrderStatus
		allowed bool
	}{
		{"pending to processing", repository.OrderStatusPending, repository.OrderStatusProcessing, true},
		{"pending to cancelled", repository.OrderStatusPending, repository.OrderStatusCancelled, true},
		{"pending to completed skips processing", repository.OrderStatusPending, repository.OrderStatusCompleted, false},
		{"pending to pending", repository.OrderStatusPending, repository.OrderStatusPending, false},
		{"processing to completed", repository.OrderStatusProcessing, repository.OrderStatusCompleted, true},
		{"processing to cancelled", repository.OrderStatusProcessing, repository.OrderStatusCancelled, true},
		{"processing to pending", repository.OrderStatusProcessing, repository.OrderStatusPending, false},
		{"completed is terminal", repository.OrderStatusCompleted, repository.OrderStatusProcessing, false},
		{"completed to cancelled", repository.OrderStatusCompleted, repository.OrderStatusCancelled, false},
		{"cancelled is terminal", repository.OrderStatusCancelled, repository.OrderStatusPending, false},
		{"cancelled to completed", repository.OrderStatusCancelled, repository.OrderStatusCompleted, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, CanTransition(tt.from, tt.to))
		})
	}
}

func TestIsTerminal(t *testing.T) {
	assert.False(t, IsTerminal(repository.OrderStatusPending))
	assert.False(t, IsTerminal(repository.OrderStatusProcessing))
	assert.True(t, IsTerminal(repository.OrderStatusCompleted))
	assert.True(t, IsTerminal(repository.OrderStatusCancelled))
}

package service

import "github.com/arvglez/storefront/internal/repository"

// transitions is the full order lifecycle. Completed and cancelled are
// terminal, an order never leaves them.
var transitions = map[repository.OrderStatus][]repository.OrderStatus{
	repository.OrderStatusPending: {
		repository.OrderStatusProcessing,
		repository.OrderStatusCancelled,
	},
	repository.OrderStatusProcessing: {
		repository.OrderStatusCompleted,
		repository.OrderStatusCancelled,
	},
	repository.OrderStatusCompleted: {},
	repository.OrderStatusCancelled: {},
}

func CanTransition(from repository.OrderStatus, to repository.OrderStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

func IsTerminal(status repository.OrderStatus) bool {
	return status == repository.OrderStatusCompleted ||
		status == repository.OrderStatusCancelled
}

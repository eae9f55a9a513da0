package request

import "github.com/google/uuid"

type Checkout struct {
	AddressId uuid.UUID `validate:"required" json:"address_id"`
}

type UpdateOrderStatus struct {
	Status string `validate:"required,oneof=pending processing completed cancelled" json:"status"`
}

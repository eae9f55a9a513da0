package response

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	addressResponse "github.com/arvglez/storefront/address/pkg/response"
)

type Order struct {
	ID        uuid.UUID                `json:"id"`
	OwnerId   uuid.UUID                `json:"owner_id"`
	AddressId uuid.UUID                `json:"address_id"`
	Total     decimal.Decimal          `json:"total"`
	Status    string                   `json:"status"`
	CreatedAt time.Time                `json:"created_at"`
	Items     []OrderItem              `json:"items"`
	Address   *addressResponse.Address `json:"address,omitempty"`
}

// OrderItem carries the price snapshot captured at checkout commit; it never
// changes when the catalog price does.
type OrderItem struct {
	ProductId uuid.UUID       `json:"product_id"`
	Title     string          `json:"title"`
	Quantity  int32           `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	Subtotal  decimal.Decimal `json:"subtotal"`
}

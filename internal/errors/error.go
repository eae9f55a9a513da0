package errors

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrEmptyAuth         = errors.New("missing authorization")
	ErrTokenInvalid      = errors.New("invalid token")
	ErrForbidden         = errors.New("forbidden")
	ErrCartNotFound      = errors.New("cart not found")
	ErrCartItemNotFound  = errors.New("product not found in cart")
	ErrProductNotFound   = errors.New("product not found")
	ErrAddressNotFound   = errors.New("address not found")
	ErrOrderNotFound     = errors.New("order not found")
	ErrOrderNotDeletable = errors.New("only completed or cancelled orders can be deleted")
	ErrInvalidTransition = errors.New("invalid order status transition")
)

// StockAdvisoryError is returned by cart mutations when the requested
// quantity exceeds the currently visible stock. It is advisory only; the
// authoritative check happens inside the checkout transaction.
type StockAdvisoryError struct {
	Available int32
	InCart    int32
}

func (e *StockAdvisoryError) Error() string {
	return fmt.Sprintf(
		"not enough stock available, stock=%d quantityInCart=%d",
		e.Available,
		e.InCart,
	)
}

// Checkout result tags. The order controller maps each tag to an HTTP status.
const (
	CheckoutEmptyCart      = "empty_cart"
	CheckoutInvalidAddress = "invalid_address"
	CheckoutStockError     = "stock_error"
)

type Shortfall struct {
	ProductID uuid.UUID `json:"product_id"`
	Title     string    `json:"title"`
	Available int32     `json:"stock_available"`
	Requested int32     `json:"quantity_requested"`
}

// CheckoutError is the single tagged result type for every business rule
// the checkout transaction can reject on. Shortfalls is populated only for
// the stock_error tag and always carries the complete list.
type CheckoutError struct {
	Code       string
	Shortfalls []Shortfall
}

func (e *CheckoutError) Error() string {
	if e.Code == CheckoutStockError {
		return fmt.Sprintf("checkout rejected with code=%s shortfalls=%d", e.Code, len(e.Shortfalls))
	}
	return fmt.Sprintf("checkout rejected with code=%s", e.Code)
}

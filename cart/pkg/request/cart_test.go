package request

import (
	"testing"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func TestAddCartItemValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	tests := []struct {
		name    string
		request AddCartItem
		wantErr bool
	}{
		{"valid", AddCartItem{ProductId: uuid.New(), Quantity: 1}, false},
		{"missing product id", AddCartItem{Quantity: 1}, true},
		{"zero quantity", AddCartItem{ProductId: uuid.New(), Quantity: 0}, true},
		{"negative quantity", AddCartItem{ProductId: uuid.New(), Quantity: -2}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Struct(tt.request)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestUpdateCartItemValidation(t *testing.T) {
	validate := validator.New(validator.WithRequiredStructEnabled())

	// zero is valid, it means remove the line
	assert.NoError(t, validate.Struct(UpdateCartItem{ProductId: uuid.New(), Quantity: 0}))
	assert.NoError(t, validate.Struct(UpdateCartItem{ProductId: uuid.New(), Quantity: 5}))
	assert.Error(t, validate.Struct(UpdateCartItem{ProductId: uuid.New(), Quantity: -1}))
	assert.Error(t, validate.Struct(UpdateCartItem{Quantity: 1}))
}

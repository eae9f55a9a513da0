package controller

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/arvglez/storefront/internal/errors"
)

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := map[string]interface{}{}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func TestWriteCheckoutError_TagsEveryRejection(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantTag    string
	}{
		{
			name:       "empty cart",
			err:        &errors.CheckoutError{Code: errors.CheckoutEmptyCart},
			wantStatus: http.StatusBadRequest,
			wantTag:    errors.CheckoutEmptyCart,
		},
		{
			name:       "invalid address",
			err:        &errors.CheckoutError{Code: errors.CheckoutInvalidAddress},
			wantStatus: http.StatusBadRequest,
			wantTag:    errors.CheckoutInvalidAddress,
		},
		{
			name: "stock error",
			err: &errors.CheckoutError{
				Code: errors.CheckoutStockError,
				Shortfalls: []errors.Shortfall{
					{ProductID: uuid.New(), Title: "Yerba Mate 1kg", Available: 2, Requested: 5},
				},
			},
			wantStatus: http.StatusConflict,
			wantTag:    errors.CheckoutStockError,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			writeCheckoutError(context.Background(), rec, tt.err)

			assert.Equal(t, tt.wantStatus, rec.Code)
			body := decodeBody(t, rec)
			assert.Equal(t, tt.wantTag, body["status"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestWriteCheckoutError_StockErrorCarriesShortfalls(t *testing.T) {
	productId := uuid.New()
	rec := httptest.NewRecorder()
	writeCheckoutError(context.Background(), rec, &errors.CheckoutError{
		Code: errors.CheckoutStockError,
		Shortfalls: []errors.Shortfall{
			{ProductID: productId, Title: "Termo Acero", Available: 2, Requested: 5},
		},
	})

	assert.Equal(t, http.StatusConflict, rec.Code)
	body := decodeBody(t, rec)
	shortfalls, ok := body["stock_errors"].([]interface{})
	require.True(t, ok)
	require.Len(t, shortfalls, 1)
	shortfall, ok := shortfalls[0].(map[string]interface{})
	require.True(t, ok)
	assert.Equal(t, productId.String(), shortfall["product_id"])
	assert.Equal(t, "Termo Acero", shortfall["title"])
	assert.Equal(t, float64(2), shortfall["stock_available"])
	assert.Equal(t, float64(5), shortfall["quantity_requested"])
}

func TestWriteCheckoutError_StorageFailureStaysGeneric(t *testing.T) {
	rec := httptest.NewRecorder()
	writeCheckoutError(context.Background(), rec, stderrors.New("connection reset by peer"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	body := decodeBody(t, rec)
	assert.Equal(t, "failed", body["status"])
	assert.Equal(t, "Internal Server Error", body["message"])
}

package controller

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/internal"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/response"
	"github.com/arvglez/storefront/order/otel"
	"github.com/arvglez/storefront/order/service"
	"github.com/arvglez/storefront/order/pkg/request"
)

type OrderController struct {
	service *service.OrderService
}

func AttachOrderController(router *mux.Router, service *service.OrderService) {
	controller := OrderController{service: service}

	orderRouter := router.PathPrefix("/orders").Subrouter()
	orderRouter.HandleFunc("", controller.Checkout).Methods(http.MethodPost)
	orderRouter.HandleFunc("", controller.FindOrders).Methods(http.MethodGet)
	orderRouter.HandleFunc("/{orderId}", controller.FindOrderById).Methods(http.MethodGet)
	orderRouter.HandleFunc("/{orderId}", controller.DeleteOrder).Methods(http.MethodDelete)
}

// writeCheckoutError maps each checkout rejection tag onto its HTTP status.
// Anything that is not a CheckoutError is a storage failure and stays a 500
// with no internals leaked.
func writeCheckoutError(c context.Context, w http.ResponseWriter, err error) {
	var checkoutErr *errors.CheckoutError
	if !stderrors.As(err, &checkoutErr) {
		response.WriteJsonResponse(c, w, http.StatusInternalServerError, map[string]interface{}{
			"status":  "failed",
			"message": "Internal Server Error",
		})
		return
	}

	switch checkoutErr.Code {
	case errors.CheckoutEmptyCart:
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  errors.CheckoutEmptyCart,
			"message": "your cart is empty",
		})
	case errors.CheckoutInvalidAddress:
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  errors.CheckoutInvalidAddress,
			"message": "shipping address is invalid",
		})
	case errors.CheckoutStockError:
		response.WriteJsonResponse(c, w, http.StatusConflict, map[string]interface{}{
			"status":       errors.CheckoutStockError,
			"message":      "some products do not have enough stock",
			"stock_errors": checkoutErr.Shortfalls,
		})
	default:
		response.WriteJsonResponse(c, w, http.StatusInternalServerError, map[string]interface{}{
			"status":  "failed",
			"message": "Internal Server Error",
		})
	}
}

func writeOrderError(c context.Context, w http.ResponseWriter, err error) {
	switch {
	case stderrors.Is(err, errors.ErrOrderNotFound):
		response.WriteJsonResponse(c, w, http.StatusNotFound, map[string]interface{}{
			"status":  "failed",
			"message": "order not found",
		})
	case stderrors.Is(err, errors.ErrOrderNotDeletable):
		response.WriteJsonResponse(c, w, http.StatusConflict, map[string]interface{}{
			"status":  "failed",
			"message": "only completed or cancelled orders can be deleted",
		})
	case stderrors.Is(err, errors.ErrInvalidTransition):
		response.WriteJsonResponse(c, w, http.StatusConflict, map[string]interface{}{
			"status":  "failed",
			"message": "order status transition is not allowed",
		})
	case stderrors.Is(err, errors.ErrEmptyAuth), stderrors.Is(err, errors.ErrTokenInvalid):
		response.WriteJsonResponse(c, w, http.StatusUnauthorized, map[string]interface{}{
			"status":  "failed",
			"message": "unauthorized",
		})
	default:
		response.WriteJsonResponse(c, w, http.StatusInternalServerError, map[string]interface{}{
			"status":  "failed",
			"message": "Internal Server Error",
		})
	}
}

func (ctrl OrderController) Checkout(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController Checkout").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.Checkout{}
	if err := json.NewDecoder(r.Body).Decode(&reqBody); err != nil {
		err = fmt.Errorf("failed decoding request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  "failed",
			"message": "invalid request body",
		})
		return
	}
	logger.Trace().Msg("decoded request body")

	logger = logger.With().Str(log.KeyProcess, "validating request body").Logger()
	logger.Trace().Msg("validating request body")
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.StructCtx(c, reqBody); err != nil {
		err = fmt.Errorf("failed validating request body with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusUnprocessableEntity, map[string]interface{}{
			"status":  "failed",
			"message": err.Error(),
		})
		return
	}
	logger.Trace().Msg("validated request body")

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeOrderError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "checking out").Logger()
	logger.Info().Msg("checking out")
	c = logger.WithContext(c)
	order, err := ctrl.service.Checkout(c, userId, reqBody)
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeCheckoutError(c, w, err)
		return
	}
	logger.Info().Msg("checked out")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"status":      "success",
		"message":     "order created",
		"order":       order,
		"cart_status": "completed",
	})
}

func (ctrl OrderController) FindOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController FindOrders").
		Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeOrderError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding orders").Logger()
	logger.Trace().Msg("finding orders")
	c = logger.WithContext(c)
	orders, err := ctrl.service.FindOrders(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeOrderError(c, w, err)
		return
	}
	logger.Info().Msg("found orders")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully found orders",
		"orders":  orders,
	})
}

func (ctrl OrderController) FindOrderById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController FindOrderById").
		Logger()

	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("failed parsing orderId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  "failed",
			"message": "orderId is not a valid uuid",
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeOrderError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding order").Logger()
	logger.Trace().Msg("finding order")
	c = logger.WithContext(c)
	order, err := ctrl.service.FindOrderById(c, userId, orderId, internal.IsAdminFromJwtToken(c))
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeOrderError(c, w, err)
		return
	}
	logger.Info().Msg("found order")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully found order",
		"order":   order,
	})
}

func (ctrl OrderController) DeleteOrder(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "OrderController DeleteOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderController DeleteOrder").
		Logger()

	orderId, err := uuid.Parse(mux.Vars(r)["orderId"])
	if err != nil {
		err = fmt.Errorf("failed parsing orderId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  "failed",
			"message": "orderId is not a valid uuid",
		})
		return
	}
	logger = logger.With().Str(log.KeyOrderID, orderId.String()).Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeOrderError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "deleting order").Logger()
	logger.Info().Msg("deleting order")
	c = logger.WithContext(c)
	err = ctrl.service.DeleteOrder(c, userId, orderId, internal.IsAdminFromJwtToken(c))
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeOrderError(c, w, err)
		return
	}
	logger.Info().Msg("deleted order")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully deleted order",
	})
}

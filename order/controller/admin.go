package controller

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/repository"
	"github.com/arvglez/storefront/internal/response"
	"github.com/arvglez/storefront/order/otel"
	"github.com/arvglez/storefront/order/service"
	"github.com/arvglez/storefront/order/pkg/request"
)

type AdminOrderController struct {
	service *service.OrderService
}

// AttachAdminOrderController mounts the administrator surface. The router
// passed in must already be wrapped with the admin middleware.
func AttachAdminOrderController(router *mux.Router, service *service.OrderService) {
	controller := AdminOrderController{service: service}

	orderRouter := router.PathPrefix("/orders").Subrouter()
	orderRouter.HandleFunc("", controller.FindAllOrders).Methods(http.MethodGet)
	orderRouter.HandleFunc("/{orderId}/status", controller.UpdateOrderStatus).
		Methods(http.MethodPut)
}

func (ctrl AdminOrderController) FindAllOrders(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminOrderController FindAllOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AdminOrderController FindAllOrders").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding all orders").Logger()
	logger.Trace().Msg("finding all orders")
	c = logger.WithContext(c)
	orders, err := ctrl.service.FindAllOrders(c)
	if err != nil {
		err = fmt.Errorf("failed finding all orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeOrderError(c, w, err)
		return
	}
	logger.Info().Msg("found all orders")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully found orders",
		"orders":  orders,
	})
}

func (ctrl AdminOrderController) UpdateOrderStatus(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AdminOrderController UpdateOrderStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AdminOrderController UpdateOrderStatus").
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

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.UpdateOrderStatus{}
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

	logger = logger.With().
		Str(log.KeyProcess, "updating order status").
		Str(log.KeyOrderStatus, reqBody.Status).
		Logger()
	logger.Info().Msg("updating order status")
	c = logger.WithContext(c)
	order, err := ctrl.service.UpdateStatus(c, orderId, repository.OrderStatus(reqBody.Status))
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeOrderError(c, w, err)
		return
	}
	logger.Info().Msg("updated order status")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully updated order status",
		"order":   order,
	})
}

package controller

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/cart/otel"
	"github.com/arvglez/storefront/cart/service"
	"github.com/arvglez/storefront/cart/pkg/request"
	"github.com/arvglez/storefront/internal"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/response"
)

type CartController struct {
	service *service.CartService
}

func AttachCartController(router *mux.Router, service *service.CartService) {
	controller := CartController{service: service}

	cartRouter := router.PathPrefix("/cart").Subrouter()
	cartRouter.HandleFunc("", controller.GetCart).Methods(http.MethodGet)
	cartRouter.HandleFunc("/add", controller.AddItem).Methods(http.MethodPost)
	cartRouter.HandleFunc("/update", controller.UpdateItem).Methods(http.MethodPut)
	cartRouter.HandleFunc("/remove", controller.RemoveItem).Methods(http.MethodDelete)
}

// writeCartError maps service errors shared by the cart handlers. The
// advisory stock shape mirrors what storefront clients render inline.
func writeCartError(c context.Context, w http.ResponseWriter, err error) {
	var advisory *errors.StockAdvisoryError
	switch {
	case stderrors.As(err, &advisory):
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":           "failed",
			"message":          "not enough stock available",
			"stock_available":  advisory.Available,
			"quantity_in_cart": advisory.InCart,
		})
	case stderrors.Is(err, errors.ErrProductNotFound):
		response.WriteJsonResponse(c, w, http.StatusNotFound, map[string]interface{}{
			"status":  "failed",
			"message": "product not found",
		})
	case stderrors.Is(err, errors.ErrCartNotFound):
		response.WriteJsonResponse(c, w, http.StatusNotFound, map[string]interface{}{
			"status":  "failed",
			"message": "no active cart",
		})
	case stderrors.Is(err, errors.ErrCartItemNotFound):
		response.WriteJsonResponse(c, w, http.StatusNotFound, map[string]interface{}{
			"status":  "failed",
			"message": "product not found in cart",
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

func (ctrl CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController GetCart").
		Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeCartError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "getting cart").Logger()
	logger.Trace().Msg("getting cart")
	c = logger.WithContext(c)
	cart, err := ctrl.service.GetCart(c, userId)
	if err != nil {
		err = fmt.Errorf("failed getting cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeCartError(c, w, err)
		return
	}
	logger.Info().Msg("got cart")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully found cart",
		"items":   cart.Items,
		"total":   cart.Total,
	})
}

func (ctrl CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController AddItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.AddCartItem{}
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
		writeCartError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "adding item to cart").Logger()
	logger.Info().Msg("adding item to cart")
	c = logger.WithContext(c)
	newStock, err := ctrl.service.AddItem(c, userId, reqBody)
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeCartError(c, w, err)
		return
	}
	logger.Info().Msg("added item to cart")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   "product added to cart",
		"new_stock": newStock,
	})
}

func (ctrl CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController UpdateItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.UpdateCartItem{}
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
		writeCartError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating cart item").Logger()
	logger.Info().Msg("updating cart item")
	c = logger.WithContext(c)
	newQuantity, stockAvailable, err := ctrl.service.UpdateItem(c, userId, reqBody)
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeCartError(c, w, err)
		return
	}
	logger.Info().Msg("updated cart item")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":          "success",
		"message":         "cart updated",
		"new_quantity":    newQuantity,
		"stock_available": stockAvailable,
	})
}

func (ctrl CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "CartController RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartController RemoveItem").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.RemoveCartItem{}
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
		writeCartError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Info().Msg("removing cart item")
	c = logger.WithContext(c)
	if err := ctrl.service.RemoveItem(c, userId, reqBody.ProductId); err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeCartError(c, w, err)
		return
	}
	logger.Info().Msg("removed cart item")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "product removed from cart",
	})
}

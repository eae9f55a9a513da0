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

	"github.com/arvglez/storefront/address/otel"
	"github.com/arvglez/storefront/address/service"
	"github.com/arvglez/storefront/address/pkg/request"
	"github.com/arvglez/storefront/internal"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/response"
)

type AddressController struct {
	service *service.AddressService
}

func AttachAddressController(router *mux.Router, service *service.AddressService) {
	controller := AddressController{service: service}

	addressRouter := router.PathPrefix("/addresses").Subrouter()
	addressRouter.HandleFunc("", controller.CreateAddress).Methods(http.MethodPost)
	addressRouter.HandleFunc("", controller.FindAddresses).Methods(http.MethodGet)
	addressRouter.HandleFunc("/{addressId}", controller.FindAddressById).Methods(http.MethodGet)
	addressRouter.HandleFunc("/{addressId}", controller.UpdateAddress).Methods(http.MethodPut)
	addressRouter.HandleFunc("/{addressId}", controller.DeleteAddress).Methods(http.MethodDelete)
}

// writeAddressError maps service errors onto the HTTP surface shared by all
// address handlers.
func writeAddressError(
	c context.Context,
	w http.ResponseWriter,
	err error,
) {
	switch {
	case stderrors.Is(err, errors.ErrAddressNotFound):
		response.WriteJsonResponse(c, w, http.StatusNotFound, map[string]interface{}{
			"status":  "failed",
			"message": "address not found",
		})
	case stderrors.Is(err, errors.ErrForbidden):
		response.WriteJsonResponse(c, w, http.StatusForbidden, map[string]interface{}{
			"status":  "failed",
			"message": "this address belongs to another user",
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

func (ctrl AddressController) CreateAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController CreateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressController CreateAddress").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.CreateAddress{}
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
		writeAddressError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "creating address").Logger()
	logger.Info().Msg("creating address")
	c = logger.WithContext(c)
	address, err := ctrl.service.CreateAddress(c, userId, reqBody)
	if err != nil {
		err = fmt.Errorf("failed creating address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeAddressError(c, w, err)
		return
	}
	logger.Info().Msg("created address")

	response.WriteJsonResponse(c, w, http.StatusCreated, map[string]interface{}{
		"status":  "success",
		"message": "successfully created address",
		"address": address,
	})
}

func (ctrl AddressController) FindAddresses(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController FindAddresses")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressController FindAddresses").
		Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeAddressError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding addresses").Logger()
	logger.Trace().Msg("finding addresses")
	c = logger.WithContext(c)
	addresses, err := ctrl.service.FindAddresses(c, userId)
	if err != nil {
		err = fmt.Errorf("failed finding addresses with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		writeAddressError(c, w, err)
		return
	}
	logger.Info().Msg("found addresses")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":    "success",
		"message":   "successfully found addresses",
		"addresses": addresses,
	})
}

func (ctrl AddressController) FindAddressById(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController FindAddressById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressController FindAddressById").
		Logger()

	addressId, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  "failed",
			"message": "addressId is not a valid uuid",
		})
		return
	}
	logger = logger.With().Str(log.KeyAddressID, addressId.String()).Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeAddressError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "finding address").Logger()
	logger.Trace().Msg("finding address")
	c = logger.WithContext(c)
	address, err := ctrl.service.FindAddressById(c, userId, addressId)
	if err != nil {
		logger.Info().Err(err).Msg(err.Error())
		writeAddressError(c, w, err)
		return
	}
	logger.Info().Msg("found address")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully found address",
		"address": address,
	})
}

func (ctrl AddressController) UpdateAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController UpdateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressController UpdateAddress").
		Logger()

	addressId, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  "failed",
			"message": "addressId is not a valid uuid",
		})
		return
	}
	logger = logger.With().Str(log.KeyAddressID, addressId.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "decoding request body").Logger()
	logger.Trace().Msg("decoding request body")
	reqBody := request.UpdateAddress{}
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
		writeAddressError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "updating address").Logger()
	logger.Info().Msg("updating address")
	c = logger.WithContext(c)
	address, err := ctrl.service.UpdateAddress(c, userId, addressId, reqBody)
	if err != nil {
		logger.Error().Err(err).Msg(err.Error())
		writeAddressError(c, w, err)
		return
	}
	logger.Info().Msg("updated address")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully updated address",
		"address": address,
	})
}

func (ctrl AddressController) DeleteAddress(w http.ResponseWriter, r *http.Request) {
	c, span := otel.Tracer.Start(r.Context(), "AddressController DeleteAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressController DeleteAddress").
		Logger()

	addressId, err := uuid.Parse(mux.Vars(r)["addressId"])
	if err != nil {
		err = fmt.Errorf("failed parsing addressId with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		response.WriteJsonResponse(c, w, http.StatusBadRequest, map[string]interface{}{
			"status":  "failed",
			"message": "addressId is not a valid uuid",
		})
		return
	}
	logger = logger.With().Str(log.KeyAddressID, addressId.String()).Logger()

	userId, err := internal.UserIdFromJwtToken(c)
	if err != nil {
		writeAddressError(c, w, errors.ErrEmptyAuth)
		return
	}

	logger = logger.With().Str(log.KeyProcess, "deleting address").Logger()
	logger.Info().Msg("deleting address")
	c = logger.WithContext(c)
	if err := ctrl.service.DeleteAddress(c, userId, addressId); err != nil {
		logger.Error().Err(err).Msg(err.Error())
		writeAddressError(c, w, err)
		return
	}
	logger.Info().Msg("deleted address")

	response.WriteJsonResponse(c, w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": "successfully deleted address",
	})
}

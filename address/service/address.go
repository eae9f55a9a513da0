package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/rs/zerolog"

	"github.com/arvglez/storefront/address/otel"
	"github.com/arvglez/storefront/address/pkg/request"
	"github.com/arvglez/storefront/address/pkg/response"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/repository"
)

type AddressService struct {
	queries *repository.Queries
}

func NewAddressService(queries *repository.Queries) AddressService {
	return AddressService{queries: queries}
}

func phoneText(phone string) pgtype.Text {
	return pgtype.Text{String: phone, Valid: phone != ""}
}

// findOwned loads the address and enforces ownership. Missing rows map to
// ErrAddressNotFound, rows owned by someone else to ErrForbidden.
func (svc AddressService) findOwned(
	c context.Context,
	userId uuid.UUID,
	addressId uuid.UUID,
) (repository.Address, error) {
	address, err := svc.queries.FindAddressById(c, addressId)
	if err != nil {
		if stderrors.Is(err, pgx.ErrNoRows) {
			return repository.Address{}, errors.ErrAddressNotFound
		}
		return repository.Address{}, err
	}
	if address.OwnerID != userId {
		return repository.Address{}, errors.ErrForbidden
	}
	return address, nil
}

func (svc AddressService) CreateAddress(
	c context.Context,
	userId uuid.UUID,
	param request.CreateAddress,
) (response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService CreateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressService CreateAddress").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "inserting address to database").Logger()
	logger.Trace().Msg("inserting address to database")
	span.AddEvent("inserting address to database")
	address, err := svc.queries.InsertAddress(c, repository.InsertAddressParams{
		OwnerID:  userId,
		Street:   param.Street,
		City:     param.City,
		Province: param.Province,
		Phone:    phoneText(param.Phone),
	})
	if err != nil {
		err = fmt.Errorf("failed to insert address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	span.AddEvent("inserted address to database")
	logger = logger.With().Str(log.KeyAddressID, address.ID.String()).Logger()
	logger.Info().Msg("inserted address to database")

	return address.Response(), nil
}

func (svc AddressService) FindAddresses(
	c context.Context,
	userId uuid.UUID,
) ([]response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService FindAddresses")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressService FindAddresses").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding addresses in database").Logger()
	logger.Trace().Msg("finding addresses in database")
	span.AddEvent("finding addresses in database")
	rows, err := svc.queries.FindAddressesByOwnerId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed to find addresses with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found addresses in database")
	logger.Info().Msg("found addresses in database")

	addresses := make([]response.Address, 0, len(rows))
	for _, row := range rows {
		addresses = append(addresses, row.Response())
	}
	return addresses, nil
}

func (svc AddressService) FindAddressById(
	c context.Context,
	userId uuid.UUID,
	addressId uuid.UUID,
) (response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService FindAddressById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressService FindAddressById").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyAddressID, addressId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding address in database").Logger()
	logger.Trace().Msg("finding address in database")
	address, err := svc.findOwned(c, userId, addressId)
	if err != nil {
		err = fmt.Errorf("failed to find address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	logger.Info().Msg("found address in database")

	return address.Response(), nil
}

func (svc AddressService) UpdateAddress(
	c context.Context,
	userId uuid.UUID,
	addressId uuid.UUID,
	param request.UpdateAddress,
) (response.Address, error) {
	c, span := otel.Tracer.Start(c, "AddressService UpdateAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressService UpdateAddress").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyAddressID, addressId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding address in database").Logger()
	logger.Trace().Msg("finding address in database")
	if _, err := svc.findOwned(c, userId, addressId); err != nil {
		err = fmt.Errorf("failed to find address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	logger.Trace().Msg("found address in database")

	logger = logger.With().Str(log.KeyProcess, "updating address in database").Logger()
	logger.Trace().Msg("updating address in database")
	span.AddEvent("updating address in database")
	address, err := svc.queries.UpdateAddress(c, repository.UpdateAddressParams{
		ID:       addressId,
		Street:   param.Street,
		City:     param.City,
		Province: param.Province,
		Phone:    phoneText(param.Phone),
	})
	if err != nil {
		err = fmt.Errorf("failed to update address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Address{}, err
	}
	span.AddEvent("updated address in database")
	logger.Info().Msg("updated address in database")

	return address.Response(), nil
}

func (svc AddressService) DeleteAddress(
	c context.Context,
	userId uuid.UUID,
	addressId uuid.UUID,
) error {
	c, span := otel.Tracer.Start(c, "AddressService DeleteAddress")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "AddressService DeleteAddress").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyAddressID, addressId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding address in database").Logger()
	logger.Trace().Msg("finding address in database")
	if _, err := svc.findOwned(c, userId, addressId); err != nil {
		err = fmt.Errorf("failed to find address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Info().Err(err).Msg(err.Error())
		return err
	}
	logger.Trace().Msg("found address in database")

	logger = logger.With().Str(log.KeyProcess, "deleting address in database").Logger()
	logger.Trace().Msg("deleting address in database")
	span.AddEvent("deleting address in database")
	affected, err := svc.queries.DeleteAddress(c, addressId)
	if err != nil {
		err = fmt.Errorf("failed to delete address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if affected == 0 {
		return errors.ErrAddressNotFound
	}
	span.AddEvent("deleted address in database")
	logger.Info().Msg("deleted address in database")

	return nil
}

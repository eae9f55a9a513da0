package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arvglez/storefront/cart/otel"
	"github.com/arvglez/storefront/cart/pkg/request"
	"github.com/arvglez/storefront/cart/pkg/response"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/repository"
)

// CartService mutates the owner's single active cart. All stock checks here
// are advisory; the checkout transaction re-validates under row locks.
type CartService struct {
	queries *repository.Queries
}

func NewCartService(queries *repository.Queries) CartService {
	return CartService{queries: queries}
}

func (svc CartService) GetCart(c context.Context, userId uuid.UUID) (response.Cart, error) {
	c, span := otel.Tracer.Start(c, "CartService GetCart")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService GetCart").
		Str(log.KeyUserID, userId.String()).
		Logger()

	empty := response.Cart{Items: []response.CartItem{}, Total: decimal.Zero}

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Trace().Msg("finding active cart")
	span.AddEvent("finding active cart")
	cart, err := svc.queries.FindActiveCartByOwnerId(c, userId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("no active cart, returning empty cart")
		return empty, nil
	}
	if err != nil {
		err = fmt.Errorf("failed to find active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	span.AddEvent("found active cart")

	logger = logger.With().Str(log.KeyProcess, "finding cart items").Logger()
	logger.Trace().Msg("finding cart items")
	rows, err := svc.queries.FindCartItemsWithProduct(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed to find cart items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Cart{}, err
	}
	logger.Info().Msg("found cart items")

	items := make([]response.CartItem, 0, len(rows))
	total := decimal.Zero
	for _, row := range rows {
		price := repository.DecimalFromNumeric(row.Price)
		subtotal := price.Mul(decimal.NewFromInt32(row.Quantity))
		total = total.Add(subtotal)
		items = append(items, response.CartItem{
			ID:             row.ProductID,
			Title:          row.Title,
			Image:          row.Image.String,
			Price:          price,
			QuantityInCart: row.Quantity,
			StockAvailable: row.Stock,
			Subtotal:       subtotal,
		})
	}

	return response.Cart{Items: items, Total: total}, nil
}

// AddItem merges the requested quantity into the active cart, creating the
// cart when none exists. Returns the stock still available after the merged
// line is accounted for.
func (svc CartService) AddItem(
	c context.Context,
	userId uuid.UUID,
	param request.AddCartItem,
) (int32, error) {
	c, span := otel.Tracer.Start(c, "CartService AddItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService AddItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	span.AddEvent("finding product")
	product, err := svc.queries.FindProductById(c, param.ProductId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("product not found")
		return 0, errors.ErrProductNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	span.AddEvent("found product")

	logger = logger.With().Str(log.KeyProcess, "upserting active cart").Logger()
	logger.Trace().Msg("upserting active cart")
	span.AddEvent("upserting active cart")
	cart, err := svc.queries.UpsertActiveCart(c, userId)
	if err != nil {
		err = fmt.Errorf("failed to upsert active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	span.AddEvent("upserted active cart")

	logger = logger.With().Str(log.KeyProcess, "checking available stock").Logger()
	logger.Trace().Msg("checking available stock")
	inCart := int32(0)
	item, err := svc.queries.FindCartItem(c, repository.FindCartItemParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
	})
	if err != nil && !stderrors.Is(err, pgx.ErrNoRows) {
		err = fmt.Errorf("failed to find cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	if err == nil {
		inCart = item.Quantity
	}
	if inCart+param.Quantity > product.Stock {
		err := &errors.StockAdvisoryError{Available: product.Stock, InCart: inCart}
		logger.Info().Err(err).Msg(err.Error())
		return 0, err
	}

	logger = logger.With().Str(log.KeyProcess, "adding cart item quantity").Logger()
	logger.Trace().Msg("adding cart item quantity")
	span.AddEvent("adding cart item quantity")
	newQuantity, err := svc.queries.AddCartItemQuantity(c, repository.AddCartItemQuantityParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
		Quantity:  param.Quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed to add cart item quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, err
	}
	span.AddEvent("added cart item quantity")
	logger.Info().Int32(log.KeyQuantity, newQuantity).Msg("added cart item quantity")

	return product.Stock - newQuantity, nil
}

// UpdateItem sets the line quantity outright. Quantity zero removes the
// line, mirroring RemoveItem.
func (svc CartService) UpdateItem(
	c context.Context,
	userId uuid.UUID,
	param request.UpdateCartItem,
) (newQuantity int32, stockAvailable int32, err error) {
	c, span := otel.Tracer.Start(c, "CartService UpdateItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService UpdateItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, param.ProductId.String()).
		Int32(log.KeyQuantity, param.Quantity).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding product").Logger()
	logger.Trace().Msg("finding product")
	product, err := svc.queries.FindProductById(c, param.ProductId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("product not found")
		return 0, 0, errors.ErrProductNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find product with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, 0, err
	}

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Trace().Msg("finding active cart")
	cart, err := svc.queries.FindActiveCartByOwnerId(c, userId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("no active cart")
		return 0, 0, errors.ErrCartNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, 0, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()

	if param.Quantity == 0 {
		logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
		logger.Trace().Msg("removing cart item")
		span.AddEvent("removing cart item")
		affected, err := svc.queries.DeleteCartItem(c, repository.DeleteCartItemParams{
			CartID:    cart.ID,
			ProductID: param.ProductId,
		})
		if err != nil {
			err = fmt.Errorf("failed to remove cart item with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return 0, 0, err
		}
		if affected == 0 {
			logger.Info().Msg("cart item not found")
			return 0, 0, errors.ErrCartItemNotFound
		}
		span.AddEvent("removed cart item")
		logger.Info().Msg("removed cart item")
		return 0, product.Stock, nil
	}

	logger = logger.With().Str(log.KeyProcess, "finding cart item").Logger()
	logger.Trace().Msg("finding cart item")
	item, err := svc.queries.FindCartItem(c, repository.FindCartItemParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
	})
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("cart item not found")
		return 0, 0, errors.ErrCartItemNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, 0, err
	}

	if param.Quantity > product.Stock {
		err := &errors.StockAdvisoryError{Available: product.Stock, InCart: item.Quantity}
		logger.Info().Err(err).Msg(err.Error())
		return 0, 0, err
	}

	logger = logger.With().Str(log.KeyProcess, "setting cart item quantity").Logger()
	logger.Trace().Msg("setting cart item quantity")
	span.AddEvent("setting cart item quantity")
	newQuantity, err = svc.queries.SetCartItemQuantity(c, repository.SetCartItemQuantityParams{
		CartID:    cart.ID,
		ProductID: param.ProductId,
		Quantity:  param.Quantity,
	})
	if err != nil {
		err = fmt.Errorf("failed to set cart item quantity with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return 0, 0, err
	}
	span.AddEvent("set cart item quantity")
	logger.Info().Int32(log.KeyQuantity, newQuantity).Msg("set cart item quantity")

	return newQuantity, product.Stock, nil
}

func (svc CartService) RemoveItem(
	c context.Context,
	userId uuid.UUID,
	productId uuid.UUID,
) error {
	c, span := otel.Tracer.Start(c, "CartService RemoveItem")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "CartService RemoveItem").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyProductID, productId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Trace().Msg("finding active cart")
	cart, err := svc.queries.FindActiveCartByOwnerId(c, userId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("no active cart")
		return errors.ErrCartNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()

	logger = logger.With().Str(log.KeyProcess, "removing cart item").Logger()
	logger.Trace().Msg("removing cart item")
	span.AddEvent("removing cart item")
	affected, err := svc.queries.DeleteCartItem(c, repository.DeleteCartItemParams{
		CartID:    cart.ID,
		ProductID: productId,
	})
	if err != nil {
		err = fmt.Errorf("failed to remove cart item with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if affected == 0 {
		logger.Info().Msg("cart item not found")
		return errors.ErrCartItemNotFound
	}
	span.AddEvent("removed cart item")
	logger.Info().Msg("removed cart item")

	return nil
}

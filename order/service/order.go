package service

import (
	"context"
	stderrors "errors"
	"fmt"

	"github.com/google/uuid"
	pgx "github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/arvglez/storefront/internal/cache"
	"github.com/arvglez/storefront/internal/errors"
	"github.com/arvglez/storefront/internal/log"
	inOtel "github.com/arvglez/storefront/internal/otel"
	"github.com/arvglez/storefront/internal/repository"
	"github.com/arvglez/storefront/order/otel"
	"github.com/arvglez/storefront/order/pkg/request"
	"github.com/arvglez/storefront/order/pkg/response"
)

type OrderService struct {
	pool    *pgxpool.Pool
	queries *repository.Queries
	cache   *redis.Client
}

func NewOrderService(
	pool *pgxpool.Pool,
	queries *repository.Queries,
	cache *redis.Client,
) OrderService {
	return OrderService{pool: pool, queries: queries, cache: cache}
}

// Checkout converts the caller's active cart into an order inside one
// transaction. Every cart line is re-validated against live stock under row
// locks taken in ascending product id order; all insufficient lines are
// collected before the transaction is rejected, so the caller sees the
// complete picture in a single response. On success the order, its items,
// the stock decrements and the cart completion commit atomically.
func (s OrderService) Checkout(
	c context.Context,
	userId uuid.UUID,
	param request.Checkout,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService Checkout")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService Checkout").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyAddressID, param.AddressId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "verifying shipping address").Logger()
	logger.Trace().Msg("verifying shipping address")
	span.AddEvent("verifying shipping address")
	address, err := s.queries.FindAddressById(c, param.AddressId)
	if stderrors.Is(err, pgx.ErrNoRows) || (err == nil && address.OwnerID != userId) {
		err = &errors.CheckoutError{Code: errors.CheckoutInvalidAddress}
		logger.Info().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed to find address with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("verified shipping address")
	logger.Trace().Msg("verified shipping address")

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger.Trace().Msg("initialized transaction")
	defer func() {
		logger := logger.With().Str(log.KeyProcess, "rolling back transaction").Logger()
		err := tx.Rollback(c)
		if err != nil {
			if stderrors.Is(err, pgx.ErrTxClosed) {
				return
			}
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return
		}
		logger.Info().Msg("rolled back transaction")
	}()
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "finding active cart").Logger()
	logger.Trace().Msg("finding active cart")
	span.AddEvent("finding active cart")
	cart, err := qtx.FindActiveCartByOwnerId(c, userId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		err = &errors.CheckoutError{Code: errors.CheckoutEmptyCart}
		logger.Info().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if err != nil {
		err = fmt.Errorf("failed to find active cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyCartID, cart.ID.String()).Logger()
	span.AddEvent("found active cart")

	logger = logger.With().Str(log.KeyProcess, "finding cart items").Logger()
	logger.Trace().Msg("finding cart items")
	lines, err := qtx.FindCartItemsWithProduct(c, cart.ID)
	if err != nil {
		err = fmt.Errorf("failed to find cart items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if len(lines) == 0 {
		err = &errors.CheckoutError{Code: errors.CheckoutEmptyCart}
		logger.Info().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("found cart items")

	// lines arrive ordered by product id, so concurrent checkouts sharing
	// products lock the same rows in the same order and cannot deadlock.
	logger = logger.With().Str(log.KeyProcess, "locking and validating stock").Logger()
	logger.Trace().Msg("locking and validating stock")
	span.AddEvent("locking and validating stock")
	type lockedLine struct {
		product  repository.Product
		quantity int32
	}
	locked := make([]lockedLine, 0, len(lines))
	shortfalls := []errors.Shortfall{}
	for _, line := range lines {
		product, err := qtx.FindProductForUpdate(c, line.ProductID)
		if stderrors.Is(err, pgx.ErrNoRows) {
			// product vanished between carting and checkout; report it the
			// same way as zero stock
			shortfalls = append(shortfalls, errors.Shortfall{
				ProductID: line.ProductID,
				Title:     line.Title,
				Available: 0,
				Requested: line.Quantity,
			})
			continue
		}
		if err != nil {
			err = fmt.Errorf("failed to lock product with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}
		if product.Stock < line.Quantity {
			shortfalls = append(shortfalls, errors.Shortfall{
				ProductID: product.ID,
				Title:     product.Title,
				Available: product.Stock,
				Requested: line.Quantity,
			})
			continue
		}
		locked = append(locked, lockedLine{product: product, quantity: line.Quantity})
	}
	if len(shortfalls) > 0 {
		err = &errors.CheckoutError{Code: errors.CheckoutStockError, Shortfalls: shortfalls}
		logger.Info().
			Int(log.KeyShortfalls, len(shortfalls)).
			Err(err).
			Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("locked and validated stock")

	total := decimal.Zero
	for _, line := range locked {
		price := repository.DecimalFromNumeric(line.product.Price)
		total = total.Add(price.Mul(decimal.NewFromInt32(line.quantity)))
	}

	logger = logger.With().
		Str(log.KeyProcess, "inserting order").
		Str(log.KeyTotal, total.String()).
		Logger()
	logger.Trace().Msg("inserting order")
	span.AddEvent("inserting order")
	order, err := qtx.InsertOrder(c, repository.InsertOrderParams{
		OwnerID:   userId,
		AddressID: address.ID,
		Total:     repository.NumericFromDecimal(total),
		Status:    repository.OrderStatusPending,
	})
	if err != nil {
		err = fmt.Errorf("failed to insert order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	logger = logger.With().Str(log.KeyOrderID, order.ID.String()).Logger()
	span.AddEvent("inserted order")

	logger = logger.With().Str(log.KeyProcess, "inserting order items").Logger()
	logger.Trace().Msg("inserting order items")
	span.AddEvent("inserting order items")
	items := make([]response.OrderItem, 0, len(locked))
	for _, line := range locked {
		price := repository.DecimalFromNumeric(line.product.Price)
		subtotal := price.Mul(decimal.NewFromInt32(line.quantity))
		_, err := qtx.InsertOrderItem(c, repository.InsertOrderItemParams{
			OrderID:   order.ID,
			ProductID: line.product.ID,
			Quantity:  line.quantity,
			UnitPrice: repository.NumericFromDecimal(price),
			Subtotal:  repository.NumericFromDecimal(subtotal),
		})
		if err != nil {
			err = fmt.Errorf("failed to insert order item with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}

		_, err = qtx.DecrementProductStock(c, repository.DecrementProductStockParams{
			ID:       line.product.ID,
			Quantity: line.quantity,
		})
		if err != nil {
			err = fmt.Errorf("failed to decrement product stock with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return response.Order{}, err
		}

		items = append(items, response.OrderItem{
			ProductId: line.product.ID,
			Title:     line.product.Title,
			Quantity:  line.quantity,
			UnitPrice: price,
			Subtotal:  subtotal,
		})
	}
	span.AddEvent("inserted order items")

	logger = logger.With().Str(log.KeyProcess, "completing cart").Logger()
	logger.Trace().Msg("completing cart")
	span.AddEvent("completing cart")
	if err := qtx.CompleteCart(c, cart.ID); err != nil {
		err = fmt.Errorf("failed to complete cart with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("completed cart")

	logger = logger.With().Str(log.KeyProcess, "committing transaction").Logger()
	logger.Trace().Msg("committing transaction")
	span.AddEvent("committing transaction")
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("committed transaction")
	logger.Info().Msg("committed transaction")

	productIds := make([]uuid.UUID, 0, len(locked))
	for _, line := range locked {
		productIds = append(productIds, line.product.ID)
	}
	s.invalidateProductCache(c, productIds)

	res := order.Response()
	res.Items = items
	addressRes := address.Response()
	res.Address = &addressRes
	return res, nil
}

// invalidateProductCache drops cached product entries after a committed
// stock change. The database already holds the truth, so failures are only
// logged.
func (s OrderService) invalidateProductCache(c context.Context, ids []uuid.UUID) {
	logger := zerolog.Ctx(c).
		With().
		Str(log.KeyTag, "OrderService invalidateProductCache").
		Str(log.KeyProcess, "invalidating product cache").
		Logger()

	if err := cache.InvalidateProducts(c, s.cache, ids...); err != nil {
		err = fmt.Errorf("failed to invalidate product cache with error=%w", err)
		logger.Error().Err(err).Msg(err.Error())
		return
	}
	logger.Info().Msg("invalidated product cache")
}

// loadRelations fills in the order items and shipping address for a single
// order row.
func (s OrderService) loadRelations(
	c context.Context,
	order repository.Order,
) (response.Order, error) {
	res := order.Response()

	rows, err := s.queries.FindOrderItemsWithProduct(c, order.ID)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed to find order items with error=%w", err)
	}
	for _, row := range rows {
		res.Items = append(res.Items, row.Response())
	}

	address, err := s.queries.FindAddressById(c, order.AddressID)
	if err != nil {
		return response.Order{}, fmt.Errorf("failed to find order address with error=%w", err)
	}
	addressRes := address.Response()
	res.Address = &addressRes

	return res, nil
}

func (s OrderService) FindOrders(
	c context.Context,
	userId uuid.UUID,
) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindOrders").
		Str(log.KeyUserID, userId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders in database").Logger()
	logger.Trace().Msg("finding orders in database")
	span.AddEvent("finding orders in database")
	rows, err := s.queries.FindOrdersByOwnerId(c, userId)
	if err != nil {
		err = fmt.Errorf("failed to find orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found orders in database")
	logger.Info().Msg("found orders in database")

	orders := make([]response.Order, 0, len(rows))
	for _, row := range rows {
		order, err := s.loadRelations(c, row)
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s OrderService) FindAllOrders(c context.Context) ([]response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindAllOrders")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindAllOrders").
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding orders in database").Logger()
	logger.Trace().Msg("finding orders in database")
	span.AddEvent("finding orders in database")
	rows, err := s.queries.FindOrders(c)
	if err != nil {
		err = fmt.Errorf("failed to find orders with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return nil, err
	}
	span.AddEvent("found orders in database")
	logger.Info().Msg("found orders in database")

	orders := make([]response.Order, 0, len(rows))
	for _, row := range rows {
		order, err := s.loadRelations(c, row)
		if err != nil {
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}

func (s OrderService) FindOrderById(
	c context.Context,
	userId uuid.UUID,
	orderId uuid.UUID,
	isAdmin bool,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService FindOrderById")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService FindOrderById").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyOrderID, orderId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order in database").Logger()
	logger.Trace().Msg("finding order in database")
	span.AddEvent("finding order in database")
	order, err := s.queries.FindOrderById(c, orderId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("order not found")
		return response.Order{}, errors.ErrOrderNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if !isAdmin && order.OwnerID != userId {
		logger.Info().Msg("order belongs to another user")
		return response.Order{}, errors.ErrOrderNotFound
	}
	span.AddEvent("found order in database")
	logger.Info().Msg("found order in database")

	res, err := s.loadRelations(c, order)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return res, nil
}

// UpdateStatus moves an order along the lifecycle. The update is guarded on
// the status the caller observed, so a concurrent transition makes this one
// fail instead of silently overwriting it.
func (s OrderService) UpdateStatus(
	c context.Context,
	orderId uuid.UUID,
	to repository.OrderStatus,
) (response.Order, error) {
	c, span := otel.Tracer.Start(c, "OrderService UpdateStatus")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService UpdateStatus").
		Str(log.KeyOrderID, orderId.String()).
		Str(log.KeyOrderStatus, string(to)).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order in database").Logger()
	logger.Trace().Msg("finding order in database")
	order, err := s.queries.FindOrderById(c, orderId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("order not found")
		return response.Order{}, errors.ErrOrderNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	if !CanTransition(order.Status, to) {
		err = fmt.Errorf(
			"transition from=%s to=%s is not allowed with error=%w",
			order.Status,
			to,
			errors.ErrInvalidTransition,
		)
		logger.Info().Err(err).Msg(err.Error())
		return response.Order{}, err
	}

	logger = logger.With().Str(log.KeyProcess, "updating order status").Logger()
	logger.Trace().Msg("updating order status")
	span.AddEvent("updating order status")
	affected, err := s.queries.UpdateOrderStatusGuard(c, repository.UpdateOrderStatusGuardParams{
		ID:         orderId,
		FromStatus: order.Status,
		ToStatus:   to,
	})
	if err != nil {
		err = fmt.Errorf("failed to update order status with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	if affected == 0 {
		err = fmt.Errorf(
			"order status changed concurrently with error=%w",
			errors.ErrInvalidTransition,
		)
		logger.Info().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	span.AddEvent("updated order status")
	logger.Info().Msg("updated order status")

	order.Status = to
	res, err := s.loadRelations(c, order)
	if err != nil {
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return response.Order{}, err
	}
	return res, nil
}

// DeleteOrder removes an order and its items. Owners may delete only their
// own terminal orders; administrators may delete any order.
func (s OrderService) DeleteOrder(
	c context.Context,
	userId uuid.UUID,
	orderId uuid.UUID,
	isAdmin bool,
) error {
	c, span := otel.Tracer.Start(c, "OrderService DeleteOrder")
	defer span.End()

	logger := zerolog.Ctx(c).
		With().
		Ctx(c).
		Str(log.KeyTag, "OrderService DeleteOrder").
		Str(log.KeyUserID, userId.String()).
		Str(log.KeyOrderID, orderId.String()).
		Logger()

	logger = logger.With().Str(log.KeyProcess, "finding order in database").Logger()
	logger.Trace().Msg("finding order in database")
	order, err := s.queries.FindOrderById(c, orderId)
	if stderrors.Is(err, pgx.ErrNoRows) {
		logger.Info().Msg("order not found")
		return errors.ErrOrderNotFound
	}
	if err != nil {
		err = fmt.Errorf("failed to find order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if !isAdmin && order.OwnerID != userId {
		logger.Info().Msg("order belongs to another user")
		return errors.ErrOrderNotFound
	}
	if !isAdmin && !IsTerminal(order.Status) {
		logger.Info().Msg("order is not in a terminal status")
		return errors.ErrOrderNotDeletable
	}

	logger = logger.With().Str(log.KeyProcess, "initializing transaction").Logger()
	logger.Trace().Msg("initializing transaction")
	tx, err := s.pool.BeginTx(c, pgx.TxOptions{})
	if err != nil {
		err = fmt.Errorf("failed initializing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	defer func() {
		err := tx.Rollback(c)
		if err != nil && !stderrors.Is(err, pgx.ErrTxClosed) {
			err = fmt.Errorf("failed rolling back transaction with error=%w", err)
			inOtel.RecordError(err, span)
			logger.Error().Err(err).Msg(err.Error())
		}
	}()
	qtx := s.queries.WithTx(tx)

	logger = logger.With().Str(log.KeyProcess, "deleting order").Logger()
	logger.Trace().Msg("deleting order")
	span.AddEvent("deleting order")
	if err := qtx.DeleteOrderItems(c, orderId); err != nil {
		err = fmt.Errorf("failed to delete order items with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err := qtx.DeleteOrder(c, orderId); err != nil {
		err = fmt.Errorf("failed to delete order with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	if err := tx.Commit(c); err != nil {
		err = fmt.Errorf("failed committing transaction with error=%w", err)
		inOtel.RecordError(err, span)
		logger.Error().Err(err).Msg(err.Error())
		return err
	}
	span.AddEvent("deleted order")
	logger.Info().Msg("deleted order")

	return nil
}

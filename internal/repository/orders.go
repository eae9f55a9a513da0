package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertOrder = `
INSERT INTO orders (owner_id, address_id, total, status)
VALUES ($1, $2, $3, $4)
RETURNING id, owner_id, address_id, total, status, created_at, updated_at
`

type InsertOrderParams struct {
	OwnerID   uuid.UUID
	AddressID uuid.UUID
	Total     pgtype.Numeric
	Status    OrderStatus
}

func (q *Queries) InsertOrder(c context.Context, arg InsertOrderParams) (Order, error) {
	row := q.db.QueryRow(c, insertOrder, arg.OwnerID, arg.AddressID, arg.Total, arg.Status)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.AddressID,
		&i.Total,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const insertOrderItem = `
INSERT INTO order_items (order_id, product_id, quantity, unit_price, subtotal)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, order_id, product_id, quantity, unit_price, subtotal, created_at
`

type InsertOrderItemParams struct {
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}

func (q *Queries) InsertOrderItem(c context.Context, arg InsertOrderItemParams) (OrderItem, error) {
	row := q.db.QueryRow(
		c,
		insertOrderItem,
		arg.OrderID,
		arg.ProductID,
		arg.Quantity,
		arg.UnitPrice,
		arg.Subtotal,
	)
	var i OrderItem
	err := row.Scan(
		&i.ID,
		&i.OrderID,
		&i.ProductID,
		&i.Quantity,
		&i.UnitPrice,
		&i.Subtotal,
		&i.CreatedAt,
	)
	return i, err
}

const findOrderById = `
SELECT id, owner_id, address_id, total, status, created_at, updated_at
FROM orders
WHERE id = $1
`

func (q *Queries) FindOrderById(c context.Context, id uuid.UUID) (Order, error) {
	row := q.db.QueryRow(c, findOrderById, id)
	var i Order
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.AddressID,
		&i.Total,
		&i.Status,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findOrdersByOwnerId = `
SELECT id, owner_id, address_id, total, status, created_at, updated_at
FROM orders
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (q *Queries) FindOrdersByOwnerId(c context.Context, ownerID uuid.UUID) ([]Order, error) {
	rows, err := q.db.Query(c, findOrdersByOwnerId, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.AddressID,
			&i.Total,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findOrders = `
SELECT id, owner_id, address_id, total, status, created_at, updated_at
FROM orders
ORDER BY created_at DESC
`

func (q *Queries) FindOrders(c context.Context) ([]Order, error) {
	rows, err := q.db.Query(c, findOrders)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Order{}
	for rows.Next() {
		var i Order
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.AddressID,
			&i.Total,
			&i.Status,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findOrderItemsWithProduct = `
SELECT oi.id, oi.order_id, oi.product_id, p.title, oi.quantity, oi.unit_price, oi.subtotal
FROM order_items oi
JOIN products p ON p.id = oi.product_id
WHERE oi.order_id = $1
ORDER BY oi.product_id
`

type FindOrderItemsWithProductRow struct {
	ID        uuid.UUID
	OrderID   uuid.UUID
	ProductID uuid.UUID
	Title     string
	Quantity  int32
	UnitPrice pgtype.Numeric
	Subtotal  pgtype.Numeric
}

func (q *Queries) FindOrderItemsWithProduct(
	c context.Context,
	orderID uuid.UUID,
) ([]FindOrderItemsWithProductRow, error) {
	rows, err := q.db.Query(c, findOrderItemsWithProduct, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindOrderItemsWithProductRow{}
	for rows.Next() {
		var i FindOrderItemsWithProductRow
		if err := rows.Scan(
			&i.ID,
			&i.OrderID,
			&i.ProductID,
			&i.Title,
			&i.Quantity,
			&i.UnitPrice,
			&i.Subtotal,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateOrderStatusGuard = `
UPDATE orders
SET status = $3, updated_at = now()
WHERE id = $1 AND status = $2
`

type UpdateOrderStatusGuardParams struct {
	ID         uuid.UUID
	FromStatus OrderStatus
	ToStatus   OrderStatus
}

// UpdateOrderStatusGuard transitions only when the current status still
// matches FromStatus; zero rows affected means a concurrent transition won.
func (q *Queries) UpdateOrderStatusGuard(
	c context.Context,
	arg UpdateOrderStatusGuardParams,
) (int64, error) {
	tag, err := q.db.Exec(c, updateOrderStatusGuard, arg.ID, arg.FromStatus, arg.ToStatus)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const deleteOrderItems = `
DELETE FROM order_items
WHERE order_id = $1
`

func (q *Queries) DeleteOrderItems(c context.Context, orderID uuid.UUID) error {
	_, err := q.db.Exec(c, deleteOrderItems, orderID)
	return err
}

const deleteOrder = `
DELETE FROM orders
WHERE id = $1
`

func (q *Queries) DeleteOrder(c context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(c, deleteOrder, id)
	return err
}

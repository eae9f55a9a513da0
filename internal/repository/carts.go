package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const upsertActiveCart = `
INSERT INTO carts (owner_id, status)
VALUES ($1, 'active')
ON CONFLICT (owner_id) WHERE status = 'active'
DO UPDATE SET updated_at = now()
RETURNING id, owner_id, status, created_at, updated_at
`

// UpsertActiveCart returns the owner's active cart, creating it when none
// exists. The partial unique index on carts makes the get-or-create race
// free under concurrent requests.
func (q *Queries) UpsertActiveCart(c context.Context, ownerID uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, upsertActiveCart, ownerID)
	var i Cart
	err := row.Scan(&i.ID, &i.OwnerID, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findActiveCartByOwnerId = `
SELECT id, owner_id, status, created_at, updated_at
FROM carts
WHERE owner_id = $1 AND status = 'active'
`

func (q *Queries) FindActiveCartByOwnerId(c context.Context, ownerID uuid.UUID) (Cart, error) {
	row := q.db.QueryRow(c, findActiveCartByOwnerId, ownerID)
	var i Cart
	err := row.Scan(&i.ID, &i.OwnerID, &i.Status, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const findCartItemsWithProduct = `
SELECT ci.product_id, p.title, p.image, p.price, p.stock, ci.quantity
FROM cart_items ci
JOIN products p ON p.id = ci.product_id
WHERE ci.cart_id = $1
ORDER BY ci.product_id
`

type FindCartItemsWithProductRow struct {
	ProductID uuid.UUID
	Title     string
	Image     pgtype.Text
	Price     pgtype.Numeric
	Stock     int32
	Quantity  int32
}

// FindCartItemsWithProduct returns cart lines joined with their product,
// ordered by product id so lock acquisition order is stable across
// concurrent checkouts.
func (q *Queries) FindCartItemsWithProduct(
	c context.Context,
	cartID uuid.UUID,
) ([]FindCartItemsWithProductRow, error) {
	rows, err := q.db.Query(c, findCartItemsWithProduct, cartID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []FindCartItemsWithProductRow{}
	for rows.Next() {
		var i FindCartItemsWithProductRow
		if err := rows.Scan(
			&i.ProductID,
			&i.Title,
			&i.Image,
			&i.Price,
			&i.Stock,
			&i.Quantity,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findCartItem = `
SELECT cart_id, product_id, quantity, created_at, updated_at
FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type FindCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) FindCartItem(c context.Context, arg FindCartItemParams) (CartItem, error) {
	row := q.db.QueryRow(c, findCartItem, arg.CartID, arg.ProductID)
	var i CartItem
	err := row.Scan(&i.CartID, &i.ProductID, &i.Quantity, &i.CreatedAt, &i.UpdatedAt)
	return i, err
}

const addCartItemQuantity = `
INSERT INTO cart_items (cart_id, product_id, quantity)
VALUES ($1, $2, $3)
ON CONFLICT (cart_id, product_id)
DO UPDATE SET quantity = cart_items.quantity + excluded.quantity, updated_at = now()
RETURNING quantity
`

type AddCartItemQuantityParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

// AddCartItemQuantity merges the added quantity into an existing line for
// the same product instead of duplicating the row.
func (q *Queries) AddCartItemQuantity(
	c context.Context,
	arg AddCartItemQuantityParams,
) (int32, error) {
	row := q.db.QueryRow(c, addCartItemQuantity, arg.CartID, arg.ProductID, arg.Quantity)
	var quantity int32
	err := row.Scan(&quantity)
	return quantity, err
}

const setCartItemQuantity = `
UPDATE cart_items
SET quantity = $3, updated_at = now()
WHERE cart_id = $1 AND product_id = $2
RETURNING quantity
`

type SetCartItemQuantityParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
	Quantity  int32
}

func (q *Queries) SetCartItemQuantity(
	c context.Context,
	arg SetCartItemQuantityParams,
) (int32, error) {
	row := q.db.QueryRow(c, setCartItemQuantity, arg.CartID, arg.ProductID, arg.Quantity)
	var quantity int32
	err := row.Scan(&quantity)
	return quantity, err
}

const deleteCartItem = `
DELETE FROM cart_items
WHERE cart_id = $1 AND product_id = $2
`

type DeleteCartItemParams struct {
	CartID    uuid.UUID
	ProductID uuid.UUID
}

func (q *Queries) DeleteCartItem(c context.Context, arg DeleteCartItemParams) (int64, error) {
	tag, err := q.db.Exec(c, deleteCartItem, arg.CartID, arg.ProductID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

const completeCart = `
UPDATE carts
SET status = 'completed', updated_at = now()
WHERE id = $1
`

func (q *Queries) CompleteCart(c context.Context, id uuid.UUID) error {
	_, err := q.db.Exec(c, completeCart, id)
	return err
}

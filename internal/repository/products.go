package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const findProducts = `
SELECT id, title, image, price, stock, created_at, updated_at
FROM products
ORDER BY title
`

func (q *Queries) FindProducts(c context.Context) ([]Product, error) {
	rows, err := q.db.Query(c, findProducts)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Product{}
	for rows.Next() {
		var i Product
		if err := rows.Scan(
			&i.ID,
			&i.Title,
			&i.Image,
			&i.Price,
			&i.Stock,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const findProductById = `
SELECT id, title, image, price, stock, created_at, updated_at
FROM products
WHERE id = $1
`

func (q *Queries) FindProductById(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductById, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Image,
		&i.Price,
		&i.Stock,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findProductForUpdate = `
SELECT id, title, image, price, stock, created_at, updated_at
FROM products
WHERE id = $1
FOR UPDATE
`

// FindProductForUpdate acquires an exclusive row lock on the product. It is
// only meaningful inside a transaction; callers must go through WithTx.
func (q *Queries) FindProductForUpdate(c context.Context, id uuid.UUID) (Product, error) {
	row := q.db.QueryRow(c, findProductForUpdate, id)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Image,
		&i.Price,
		&i.Stock,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const decrementProductStock = `
UPDATE products
SET stock = stock - $2, updated_at = now()
WHERE id = $1
RETURNING stock
`

type DecrementProductStockParams struct {
	ID       uuid.UUID
	Quantity int32
}

func (q *Queries) DecrementProductStock(
	c context.Context,
	arg DecrementProductStockParams,
) (int32, error) {
	row := q.db.QueryRow(c, decrementProductStock, arg.ID, arg.Quantity)
	var stock int32
	err := row.Scan(&stock)
	return stock, err
}

const insertProduct = `
INSERT INTO products (title, image, price, stock)
VALUES ($1, $2, $3, $4)
RETURNING id, title, image, price, stock, created_at, updated_at
`

type InsertProductParams struct {
	Title string
	Image pgtype.Text
	Price pgtype.Numeric
	Stock int32
}

func (q *Queries) InsertProduct(c context.Context, arg InsertProductParams) (Product, error) {
	row := q.db.QueryRow(c, insertProduct, arg.Title, arg.Image, arg.Price, arg.Stock)
	var i Product
	err := row.Scan(
		&i.ID,
		&i.Title,
		&i.Image,
		&i.Price,
		&i.Stock,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

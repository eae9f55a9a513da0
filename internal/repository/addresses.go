package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"
)

const insertAddress = `
INSERT INTO addresses (owner_id, street, city, province, phone)
VALUES ($1, $2, $3, $4, $5)
RETURNING id, owner_id, street, city, province, phone, created_at, updated_at
`

type InsertAddressParams struct {
	OwnerID  uuid.UUID
	Street   string
	City     string
	Province string
	Phone    pgtype.Text
}

func (q *Queries) InsertAddress(c context.Context, arg InsertAddressParams) (Address, error) {
	row := q.db.QueryRow(
		c,
		insertAddress,
		arg.OwnerID,
		arg.Street,
		arg.City,
		arg.Province,
		arg.Phone,
	)
	var i Address
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Street,
		&i.City,
		&i.Province,
		&i.Phone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findAddressById = `
SELECT id, owner_id, street, city, province, phone, created_at, updated_at
FROM addresses
WHERE id = $1
`

func (q *Queries) FindAddressById(c context.Context, id uuid.UUID) (Address, error) {
	row := q.db.QueryRow(c, findAddressById, id)
	var i Address
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Street,
		&i.City,
		&i.Province,
		&i.Phone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const findAddressesByOwnerId = `
SELECT id, owner_id, street, city, province, phone, created_at, updated_at
FROM addresses
WHERE owner_id = $1
ORDER BY created_at DESC
`

func (q *Queries) FindAddressesByOwnerId(c context.Context, ownerID uuid.UUID) ([]Address, error) {
	rows, err := q.db.Query(c, findAddressesByOwnerId, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	items := []Address{}
	for rows.Next() {
		var i Address
		if err := rows.Scan(
			&i.ID,
			&i.OwnerID,
			&i.Street,
			&i.City,
			&i.Province,
			&i.Phone,
			&i.CreatedAt,
			&i.UpdatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, i)
	}
	return items, rows.Err()
}

const updateAddress = `
UPDATE addresses
SET street = $2, city = $3, province = $4, phone = $5, updated_at = now()
WHERE id = $1
RETURNING id, owner_id, street, city, province, phone, created_at, updated_at
`

type UpdateAddressParams struct {
	ID       uuid.UUID
	Street   string
	City     string
	Province string
	Phone    pgtype.Text
}

func (q *Queries) UpdateAddress(c context.Context, arg UpdateAddressParams) (Address, error) {
	row := q.db.QueryRow(
		c,
		updateAddress,
		arg.ID,
		arg.Street,
		arg.City,
		arg.Province,
		arg.Phone,
	)
	var i Address
	err := row.Scan(
		&i.ID,
		&i.OwnerID,
		&i.Street,
		&i.City,
		&i.Province,
		&i.Phone,
		&i.CreatedAt,
		&i.UpdatedAt,
	)
	return i, err
}

const deleteAddress = `
DELETE FROM addresses
WHERE id = $1
`

func (q *Queries) DeleteAddress(c context.Context, id uuid.UUID) (int64, error) {
	tag, err := q.db.Exec(c, deleteAddress, id)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

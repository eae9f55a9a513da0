package repository

import (
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/shopspring/decimal"

	addressResponse "github.com/arvglez/storefront/address/pkg/response"
	orderResponse "github.com/arvglez/storefront/order/pkg/response"
	productResponse "github.com/arvglez/storefront/product/pkg/response"
)

func NumericFromDecimal(d decimal.Decimal) pgtype.Numeric {
	return pgtype.Numeric{
		Int:              d.Coefficient(),
		Exp:              d.Exponent(),
		InfinityModifier: pgtype.Finite,
		NaN:              false,
		Valid:            true,
	}
}

func DecimalFromNumeric(n pgtype.Numeric) decimal.Decimal {
	if !n.Valid || n.Int == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(n.Int, n.Exp)
}

func (p Product) Response() productResponse.Product {
	return productResponse.Product{
		ID:        p.ID,
		Title:     p.Title,
		Image:     p.Image.String,
		Price:     DecimalFromNumeric(p.Price),
		Stock:     p.Stock,
		CreatedAt: p.CreatedAt.Time,
		UpdatedAt: p.UpdatedAt.Time,
	}
}

func (a Address) Response() addressResponse.Address {
	return addressResponse.Address{
		ID:        a.ID,
		OwnerId:   a.OwnerID,
		Street:    a.Street,
		City:      a.City,
		Province:  a.Province,
		Phone:     a.Phone.String,
		CreatedAt: a.CreatedAt.Time,
		UpdatedAt: a.UpdatedAt.Time,
	}
}

func (o Order) Response() orderResponse.Order {
	return orderResponse.Order{
		ID:        o.ID,
		OwnerId:   o.OwnerID,
		AddressId: o.AddressID,
		Total:     DecimalFromNumeric(o.Total),
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt.Time,
		Items:     []orderResponse.OrderItem{},
	}
}

func (r FindOrderItemsWithProductRow) Response() orderResponse.OrderItem {
	return orderResponse.OrderItem{
		ProductId: r.ProductID,
		Title:     r.Title,
		Quantity:  r.Quantity,
		UnitPrice: DecimalFromNumeric(r.UnitPrice),
		Subtotal:  DecimalFromNumeric(r.Subtotal),
	}
}

package model

import "github.com/shopspring/decimal"

// PriceBreakdown is the monetary summary of an order, every field rounded
// to two decimal places. Shipping and Tax stay nil until a destination is
// resolved; such a breakdown is provisional and Total equals Subtotal.
type PriceBreakdown struct {
	Subtotal decimal.Decimal
	Shipping *decimal.Decimal
	Tax      *decimal.Decimal
	Total    decimal.Decimal
}

// Final reports whether shipping and tax have both been resolved.
func (p PriceBreakdown) Final() bool {
	return p.Shipping != nil && p.Tax != nil
}

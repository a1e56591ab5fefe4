package model

import "github.com/shopspring/decimal"

// LineItem is a single cart line. Identity is the (ProductID, VariantSKU)
// pair; the pair must be unique within an order.
type LineItem struct {
	ProductID  string
	VariantSKU string
	Quantity   int
}

// PricedItem is a line item with catalog data resolved by the caller.
// Pricing never reads the catalog itself.
type PricedItem struct {
	LineItem
	UnitPrice  decimal.Decimal
	WeightKG   float64
	Dimensions Dimensions
}

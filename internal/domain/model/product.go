package model

import "github.com/shopspring/decimal"

// Dimensions are package dimensions in centimetres.
type Dimensions struct {
	Length float64
	Width  float64
	Height float64
}

// Package is a single physical parcel quoted with the carrier.
type Package struct {
	WeightKG   float64
	Dimensions Dimensions
}

// Variant is a purchasable variation of a product.
type Variant struct {
	SKU        string
	Price      decimal.Decimal
	Quantity   int
	WeightKG   float64
	Dimensions Dimensions
}

// Product is a catalog entry with its variants.
type Product struct {
	ID          string
	Name        string
	Description string
	Variants    []Variant
}

// Variant returns the variant with the given SKU.
func (p *Product) Variant(sku string) (*Variant, bool) {
	for i := range p.Variants {
		if p.Variants[i].SKU == sku {
			return &p.Variants[i], true
		}
	}
	return nil, false
}

package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/quayside/storefront/internal/adapter/carrier"
	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

// provinceTaxRates is the static tax table: combined sales tax rate per
// province of the supported country.
var provinceTaxRates = map[string]decimal.Decimal{
	"AB": decimal.NewFromFloat(0.05),
	"BC": decimal.NewFromFloat(0.12),
	"MB": decimal.NewFromFloat(0.12),
	"NB": decimal.NewFromFloat(0.15),
	"NL": decimal.NewFromFloat(0.15),
	"NS": decimal.NewFromFloat(0.15),
	"ON": decimal.NewFromFloat(0.13),
	"PE": decimal.NewFromFloat(0.15),
	"QC": decimal.NewFromFloat(0.14975),
	"SK": decimal.NewFromFloat(0.11),
}

// RateProvider quotes carrier rates for a single package.
type RateProvider interface {
	Rates(ctx context.Context, originPostal, destinationPostal string, pkg model.Package) ([]carrier.Rate, error)
}

// PriceEngine computes order totals from resolved line items. It is pure
// computation: catalog prices are resolved by the caller, shipping comes
// from the RateProvider port, tax from the static province table.
type PriceEngine struct {
	rates  RateProvider
	origin string
}

// NewPriceEngine constructs a price engine shipping from the given origin
// postal code.
func NewPriceEngine(rates RateProvider, originPostalCode string) *PriceEngine {
	return &PriceEngine{rates: rates, origin: originPostalCode}
}

// Compute prices the cart. With no destination it returns a provisional
// breakdown where Total equals Subtotal. With a destination it quotes one
// package per line item concurrently, takes the cheapest service per
// package and applies the destination province's tax rate. Rounding happens
// once per field, never on intermediate sums, so
// total == round2(subtotal + shipping + tax) holds exactly.
func (e *PriceEngine) Compute(ctx context.Context, items []model.PricedItem, dest *model.Address) (model.PriceBreakdown, error) {
	if len(items) == 0 {
		return model.PriceBreakdown{}, fmt.Errorf("%w: empty order", domainErrors.ErrInvalidLineItem)
	}

	subtotal := decimal.Zero
	for _, item := range items {
		if item.Quantity <= 0 {
			return model.PriceBreakdown{}, fmt.Errorf("%w: quantity must be positive for %s/%s", domainErrors.ErrInvalidLineItem, item.ProductID, item.VariantSKU)
		}
		subtotal = subtotal.Add(item.UnitPrice.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	subtotal = subtotal.Round(2)

	if dest == nil {
		return model.PriceBreakdown{Subtotal: subtotal, Total: subtotal}, nil
	}

	taxRate, err := taxRateFor(*dest)
	if err != nil {
		return model.PriceBreakdown{}, err
	}

	// One physical package per line item, weight scaled by quantity. All
	// packages are quoted concurrently; any single failure fails the whole
	// computation, a partial price is never returned as final.
	quotes := make([]decimal.Decimal, len(items))
	g, gctx := errgroup.WithContext(ctx)
	for i, item := range items {
		i, item := i, item
		g.Go(func() error {
			pkg := model.Package{
				WeightKG:   item.WeightKG * float64(item.Quantity),
				Dimensions: item.Dimensions,
			}
			rates, err := e.rates.Rates(gctx, e.origin, dest.PostalCode, pkg)
			if err != nil {
				return fmt.Errorf("quote package %s/%s: %w", item.ProductID, item.VariantSKU, err)
			}
			if len(rates) == 0 {
				return fmt.Errorf("package %s/%s: %w", item.ProductID, item.VariantSKU, domainErrors.ErrNoRates)
			}
			quotes[i] = cheapest(rates)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return model.PriceBreakdown{}, err
	}

	shipping := decimal.Zero
	for _, quote := range quotes {
		shipping = shipping.Add(quote)
	}
	shipping = shipping.Round(2)

	tax := taxRate.Mul(subtotal.Add(shipping)).Round(2)
	total := subtotal.Add(shipping).Add(tax).Round(2)

	return model.PriceBreakdown{
		Subtotal: subtotal,
		Shipping: &shipping,
		Tax:      &tax,
		Total:    total,
	}, nil
}

// taxRateFor resolves the destination's tax rate. Country is verified
// before the province lookup.
func taxRateFor(dest model.Address) (decimal.Decimal, error) {
	if dest.Country != model.SupportedCountry {
		return decimal.Zero, fmt.Errorf("%w: country %q", domainErrors.ErrUnsupportedRegion, dest.Country)
	}
	rate, ok := provinceTaxRates[strings.ToUpper(dest.Region)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: province %q", domainErrors.ErrUnsupportedRegion, dest.Region)
	}
	return rate, nil
}

func cheapest(rates []carrier.Rate) decimal.Decimal {
	min := rates[0].Price
	for _, rate := range rates[1:] {
		if rate.Price.LessThan(min) {
			min = rate.Price
		}
	}
	return min
}

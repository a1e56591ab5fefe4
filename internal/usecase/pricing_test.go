package usecase

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/quayside/storefront/internal/adapter/carrier"
	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

type stubRateProvider struct {
	fn func(ctx context.Context, origin, dest string, pkg model.Package) ([]carrier.Rate, error)
}

func (s stubRateProvider) Rates(ctx context.Context, origin, dest string, pkg model.Package) ([]carrier.Rate, error) {
	return s.fn(ctx, origin, dest, pkg)
}

func flatRate(price string) stubRateProvider {
	return stubRateProvider{fn: func(context.Context, string, string, model.Package) ([]carrier.Rate, error) {
		return []carrier.Rate{{Service: "regular", Price: decimal.RequireFromString(price)}}, nil
	}}
}

func pricedItem(pid, sku string, qty int, unitPrice string) model.PricedItem {
	return model.PricedItem{
		LineItem:  model.LineItem{ProductID: pid, VariantSKU: sku, Quantity: qty},
		UnitPrice: decimal.RequireFromString(unitPrice),
		WeightKG:  0.5,
	}
}

func ontario() *model.Address {
	return &model.Address{Line1: "1 Front St", City: "Toronto", Region: "ON", PostalCode: "M5J 2N1", Country: "CA"}
}

func TestComputeProvisionalWithoutDestination(t *testing.T) {
	engine := NewPriceEngine(stubRateProvider{fn: func(context.Context, string, string, model.Package) ([]carrier.Rate, error) {
		t.Fatal("carrier must not be called without a destination")
		return nil, nil
	}}, "K1A 0A6")

	breakdown, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 3, "9.99")}, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if breakdown.Final() {
		t.Fatal("expected provisional breakdown")
	}
	if !breakdown.Subtotal.Equal(decimal.RequireFromString("29.97")) {
		t.Fatalf("unexpected subtotal %s", breakdown.Subtotal)
	}
	if !breakdown.Total.Equal(breakdown.Subtotal) {
		t.Fatalf("expected total to equal subtotal, got %s", breakdown.Total)
	}
}

func TestComputeWorkedExample(t *testing.T) {
	engine := NewPriceEngine(flatRate("5.00"), "K1A 0A6")

	breakdown, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 2, "10.00")}, ontario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !breakdown.Subtotal.Equal(decimal.RequireFromString("20.00")) {
		t.Fatalf("unexpected subtotal %s", breakdown.Subtotal)
	}
	if !breakdown.Shipping.Equal(decimal.RequireFromString("5.00")) {
		t.Fatalf("unexpected shipping %s", breakdown.Shipping)
	}
	if !breakdown.Tax.Equal(decimal.RequireFromString("3.25")) {
		t.Fatalf("unexpected tax %s", breakdown.Tax)
	}
	if !breakdown.Total.Equal(decimal.RequireFromString("28.25")) {
		t.Fatalf("unexpected total %s", breakdown.Total)
	}
}

func TestComputeTotalInvariantAcrossRegionsAndCartSizes(t *testing.T) {
	regions := []string{"ON", "QC", "AB"}
	sizes := []int{1, 2, 10}

	for _, region := range regions {
		for _, size := range sizes {
			t.Run(fmt.Sprintf("%s_%d_items", region, size), func(t *testing.T) {
				engine := NewPriceEngine(flatRate("7.35"), "K1A 0A6")

				items := make([]model.PricedItem, 0, size)
				for i := 0; i < size; i++ {
					items = append(items, pricedItem("P", fmt.Sprintf("v%d", i), i+1, "3.33"))
				}
				dest := ontario()
				dest.Region = region

				breakdown, err := engine.Compute(context.Background(), items, dest)
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if !breakdown.Final() {
					t.Fatal("expected final breakdown")
				}
				want := breakdown.Subtotal.Add(*breakdown.Shipping).Add(*breakdown.Tax).Round(2)
				if !breakdown.Total.Equal(want) {
					t.Fatalf("total %s != round2(subtotal+shipping+tax) %s", breakdown.Total, want)
				}
			})
		}
	}
}

func TestComputeTakesCheapestServicePerPackage(t *testing.T) {
	engine := NewPriceEngine(stubRateProvider{fn: func(context.Context, string, string, model.Package) ([]carrier.Rate, error) {
		return []carrier.Rate{
			{Service: "priority", Price: decimal.RequireFromString("21.40")},
			{Service: "regular", Price: decimal.RequireFromString("9.80")},
			{Service: "express", Price: decimal.RequireFromString("14.10")},
		}, nil
	}}, "K1A 0A6")

	breakdown, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 1, "10.00")}, ontario())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !breakdown.Shipping.Equal(decimal.RequireFromString("9.80")) {
		t.Fatalf("expected cheapest rate 9.80, got %s", breakdown.Shipping)
	}
}

func TestComputeRejectsUnsupportedCountryBeforeRegionLookup(t *testing.T) {
	engine := NewPriceEngine(flatRate("5.00"), "K1A 0A6")

	dest := ontario()
	dest.Country = "US"
	// ON would resolve as a region; the country check must fire first.
	if _, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 1, "10.00")}, dest); !errors.Is(err, domainErrors.ErrUnsupportedRegion) {
		t.Fatalf("expected unsupported region error, got %v", err)
	}
}

func TestComputeRejectsUnknownProvince(t *testing.T) {
	engine := NewPriceEngine(flatRate("5.00"), "K1A 0A6")

	dest := ontario()
	dest.Region = "XX"
	if _, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 1, "10.00")}, dest); !errors.Is(err, domainErrors.ErrUnsupportedRegion) {
		t.Fatalf("expected unsupported region error, got %v", err)
	}
}

func TestComputeFailsWhenAnyPackageQuoteFails(t *testing.T) {
	carrierDown := &carrier.Error{Code: "SERVER_ERROR", Message: "rate service offline"}
	engine := NewPriceEngine(stubRateProvider{fn: func(_ context.Context, _, _ string, pkg model.Package) ([]carrier.Rate, error) {
		if pkg.WeightKG > 1 {
			return nil, carrierDown
		}
		return []carrier.Rate{{Service: "regular", Price: decimal.RequireFromString("5.00")}}, nil
	}}, "K1A 0A6")

	items := []model.PricedItem{
		pricedItem("A", "red", 1, "10.00"),
		pricedItem("B", "blue", 4, "2.00"),
	}
	_, err := engine.Compute(context.Background(), items, ontario())
	if err == nil {
		t.Fatal("expected whole computation to fail")
	}
	var ce *carrier.Error
	if !errors.As(err, &ce) {
		t.Fatalf("expected carrier error with diagnostic attached, got %v", err)
	}
	if ce.Code != "SERVER_ERROR" {
		t.Fatalf("unexpected diagnostic code %s", ce.Code)
	}
}

func TestComputeFailsOnEmptyQuoteList(t *testing.T) {
	engine := NewPriceEngine(stubRateProvider{fn: func(context.Context, string, string, model.Package) ([]carrier.Rate, error) {
		return nil, nil
	}}, "K1A 0A6")

	if _, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 1, "10.00")}, ontario()); !errors.Is(err, domainErrors.ErrNoRates) {
		t.Fatalf("expected no rates error, got %v", err)
	}
}

func TestComputeRejectsInvalidItems(t *testing.T) {
	engine := NewPriceEngine(flatRate("5.00"), "K1A 0A6")

	if _, err := engine.Compute(context.Background(), nil, nil); !errors.Is(err, domainErrors.ErrInvalidLineItem) {
		t.Fatalf("expected invalid line item error for empty cart, got %v", err)
	}
	if _, err := engine.Compute(context.Background(), []model.PricedItem{pricedItem("A", "red", 0, "10.00")}, nil); !errors.Is(err, domainErrors.ErrInvalidLineItem) {
		t.Fatalf("expected invalid line item error for zero quantity, got %v", err)
	}
}

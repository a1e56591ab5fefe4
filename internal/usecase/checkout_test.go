package usecase

import (
	"errors"
	"testing"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

func orderWith(shipping, payment bool) *model.GatewayOrder {
	order := &model.GatewayOrder{ID: "GW-1", Status: model.GatewayOrderCreated}
	if shipping {
		order.Customer.FullName = "Ada Byron"
		order.Customer.Address = model.Address{
			Line1: "1 Front St", City: "Toronto", Region: "ON", PostalCode: "M5J 2N1", Country: "CA",
		}
	}
	if payment {
		order.Customer.PaymentMethod = model.PaymentMethodCard
		order.Customer.PaymentSource = "4242"
	}
	return order
}

func TestStageOfTruthTable(t *testing.T) {
	cases := []struct {
		name     string
		shipping bool
		payment  bool
		want     Stage
	}{
		{"nothing entered", false, false, StageShipping},
		{"payment without address", false, true, StageShipping},
		{"address without payment", true, false, StagePayment},
		{"address and payment", true, true, StageReview},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			stage, err := StageOf(orderWith(tc.shipping, tc.payment))
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if stage != tc.want {
				t.Fatalf("expected stage %s, got %s", tc.want, stage)
			}
		})
	}
}

func TestStageOfCompletedOrderIsTerminal(t *testing.T) {
	order := orderWith(true, true)
	order.Status = model.GatewayOrderCompleted

	if _, err := StageOf(order); !errors.Is(err, domainErrors.ErrCheckoutCompleted) {
		t.Fatalf("expected checkout completed error, got %v", err)
	}
}

func TestGoToRejectsSkippingShipping(t *testing.T) {
	if err := GoTo(orderWith(false, false), StagePayment); !errors.Is(err, domainErrors.ErrInvalidTransition) {
		t.Fatalf("expected invalid transition, got %v", err)
	}
}

func TestGoToReviewRequiresPaymentRegardlessOfShipping(t *testing.T) {
	for _, shipping := range []bool{false, true} {
		if err := GoTo(orderWith(shipping, false), StageReview); !errors.Is(err, domainErrors.ErrInvalidTransition) {
			t.Fatalf("shipping=%v: expected invalid transition, got %v", shipping, err)
		}
	}
}

func TestGoToAllowsValidTransitions(t *testing.T) {
	if err := GoTo(orderWith(true, false), StagePayment); err != nil {
		t.Fatalf("unexpected error for payment transition: %v", err)
	}
	if err := GoTo(orderWith(true, true), StageReview); err != nil {
		t.Fatalf("unexpected error for review transition: %v", err)
	}
	if err := GoTo(orderWith(false, false), StageShipping); err != nil {
		t.Fatalf("unexpected error for shipping transition: %v", err)
	}
}

func TestGoToCompletedOrderIsTerminal(t *testing.T) {
	order := orderWith(true, true)
	order.Status = model.GatewayOrderCompleted

	if err := GoTo(order, StageShipping); !errors.Is(err, domainErrors.ErrCheckoutCompleted) {
		t.Fatalf("expected checkout completed error, got %v", err)
	}
}

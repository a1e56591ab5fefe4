package usecase

import (
	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

// Stage is a checkout wizard step. The stage is always derived from the
// gateway order snapshot, never stored, so a page reload or back button can
// never desynchronize the wizard from reality.
type Stage int

const (
	StageShipping Stage = iota
	StagePayment
	StageReview
)

func (s Stage) String() string {
	switch s {
	case StageShipping:
		return "shipping"
	case StagePayment:
		return "payment"
	case StageReview:
		return "review"
	default:
		return "unknown"
	}
}

// ShippingComplete reports whether the order has a valid destination and
// customer name.
func ShippingComplete(order *model.GatewayOrder) bool {
	return order.Customer.Address.Valid() && order.Customer.FullName != ""
}

// PaymentComplete reports whether a gateway payment source is bound. Once
// bound, a payment source cannot be replaced in place, only cleared and
// re-entered, so no further validation applies.
func PaymentComplete(order *model.GatewayOrder) bool {
	return order.Customer.PaymentSource != "" && order.Customer.PaymentMethod != ""
}

// StageOf derives the wizard stage for an order. A completed gateway order
// is terminal: the machine is not re-enterable and callers must redirect to
// the order confirmation instead.
func StageOf(order *model.GatewayOrder) (Stage, error) {
	if order.Status == model.GatewayOrderCompleted {
		return StageShipping, domainErrors.ErrCheckoutCompleted
	}
	if !ShippingComplete(order) {
		return StageShipping, nil
	}
	if !PaymentComplete(order) {
		return StagePayment, nil
	}
	return StageReview, nil
}

// GoTo validates a requested transition. It rejects, rather than clamps,
// any jump past required data entry; this guard is the only thing stopping
// direct navigation from skipping a step.
func GoTo(order *model.GatewayOrder, target Stage) error {
	if order.Status == model.GatewayOrderCompleted {
		return domainErrors.ErrCheckoutCompleted
	}
	switch target {
	case StageShipping:
		return nil
	case StagePayment:
		if !ShippingComplete(order) {
			return domainErrors.ErrInvalidTransition
		}
		return nil
	case StageReview:
		if !ShippingComplete(order) || !PaymentComplete(order) {
			return domainErrors.ErrInvalidTransition
		}
		return nil
	default:
		return domainErrors.ErrInvalidTransition
	}
}

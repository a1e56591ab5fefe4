package errors

import "errors"

var (
	ErrNotFound                = errors.New("not found")
	ErrInvalidLineItem         = errors.New("invalid line item")
	ErrInvalidAddress          = errors.New("invalid address")
	ErrUnsupportedRegion       = errors.New("unsupported region")
	ErrNoRates                 = errors.New("carrier returned no rates")
	ErrMalformedSKU            = errors.New("malformed composite sku")
	ErrInsufficientStock       = errors.New("insufficient stock")
	ErrMissingApproveLink      = errors.New("gateway returned no approve link")
	ErrInvalidTransition       = errors.New("invalid checkout transition")
	ErrCheckoutCompleted       = errors.New("checkout already completed")
	ErrOrderNotApproved        = errors.New("order not approved")
	ErrIncompleteCheckoutState = errors.New("incomplete checkout state")
	ErrDuplicateOrder          = errors.New("duplicate order")
)

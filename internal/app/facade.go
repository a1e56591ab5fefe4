package app

import (
	"context"

	"github.com/google/uuid"

	"github.com/quayside/storefront/internal/adapter/gateway"
	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
	"github.com/quayside/storefront/internal/domain/repository"
	"github.com/quayside/storefront/internal/usecase"
)

// GatewayAdapter is the gateway surface the facade drives.
type GatewayAdapter interface {
	Fetch(ctx context.Context, orderID string) (*model.GatewayOrder, error)
	Create(ctx context.Context, items []model.LineItem, dest *model.Address, express bool) (*gateway.CreateResult, error)
	PatchAddress(ctx context.Context, orderID string, addr model.Address, fullName string) (model.PriceBreakdown, error)
	Authorize(ctx context.Context, orderID string) (*gateway.AuthorizationResult, error)
}

// CheckoutFacade aggregates the checkout lifecycle operations exposed to
// transport handlers and the capture reconciler.
type CheckoutFacade struct {
	gateway   GatewayAdapter
	finalizer *usecase.OrderFinalizer
	orders    repository.OrderRepository
}

// NewCheckoutFacade constructs CheckoutFacade.
func NewCheckoutFacade(gw GatewayAdapter, finalizer *usecase.OrderFinalizer, orders repository.OrderRepository) *CheckoutFacade {
	return &CheckoutFacade{gateway: gw, finalizer: finalizer, orders: orders}
}

// CreateOrder registers a new gateway order for the given cart lines.
func (f *CheckoutFacade) CreateOrder(ctx context.Context, items []model.LineItem, dest *model.Address, express bool) (*gateway.CreateResult, error) {
	return f.gateway.Create(ctx, items, dest, express)
}

// Order fetches the gateway order and derives the wizard stage from it. On
// a completed order it returns the order together with ErrCheckoutCompleted
// so callers can redirect to the confirmation view.
func (f *CheckoutFacade) Order(ctx context.Context, orderID string) (*model.GatewayOrder, usecase.Stage, error) {
	order, err := f.gateway.Fetch(ctx, orderID)
	if err != nil {
		return nil, usecase.StageShipping, err
	}
	stage, err := usecase.StageOf(order)
	return order, stage, err
}

// UpdateAddress applies a user-confirmed address change: the price is
// recomputed for the new destination and patched to the gateway in one
// call. Invoke once per confirmed change, the patch is not idempotent at
// the gateway.
func (f *CheckoutFacade) UpdateAddress(ctx context.Context, orderID string, addr model.Address, fullName string) (model.PriceBreakdown, error) {
	if !addr.Valid() || fullName == "" {
		return model.PriceBreakdown{}, domainErrors.ErrInvalidAddress
	}
	return f.gateway.PatchAddress(ctx, orderID, addr, fullName)
}

// Finalize commits the terminal checkout transaction.
func (f *CheckoutFacade) Finalize(ctx context.Context, orderID string) (uuid.UUID, error) {
	return f.finalizer.Finalize(ctx, orderID)
}

// Confirmation returns the immutable finalized order for a gateway order.
func (f *CheckoutFacade) Confirmation(ctx context.Context, gatewayOrderID string) (*model.FinalizedOrder, error) {
	return f.orders.GetByGatewayOrderID(ctx, gatewayOrderID)
}

// IncompleteOrders lists finalized orders still waiting for fund capture.
func (f *CheckoutFacade) IncompleteOrders(ctx context.Context, limit int) ([]model.FinalizedOrder, error) {
	return f.orders.ListIncomplete(ctx, limit)
}

// ReconcileCapture retries fund capture for a finalized order whose gateway
// capture did not complete during checkout.
func (f *CheckoutFacade) ReconcileCapture(ctx context.Context, record model.FinalizedOrder) error {
	order, err := f.gateway.Fetch(ctx, record.GatewayOrderID)
	if err != nil {
		return err
	}

	switch order.Status {
	case model.GatewayOrderCompleted:
		return f.orders.MarkCompleted(ctx, record.ID)
	case model.GatewayOrderApproved:
		if _, err := f.gateway.Authorize(ctx, record.GatewayOrderID); err != nil {
			return err
		}
		return f.orders.MarkCompleted(ctx, record.ID)
	default:
		return domainErrors.ErrOrderNotApproved
	}
}

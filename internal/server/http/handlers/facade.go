package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/quayside/storefront/internal/adapter/gateway"
	"github.com/quayside/storefront/internal/domain/model"
	"github.com/quayside/storefront/internal/usecase"
)

// CheckoutFacade describes the checkout operations exposed over HTTP.
type CheckoutFacade interface {
	CreateOrder(ctx context.Context, items []model.LineItem, dest *model.Address, express bool) (*gateway.CreateResult, error)
	Order(ctx context.Context, orderID string) (*model.GatewayOrder, usecase.Stage, error)
	UpdateAddress(ctx context.Context, orderID string, addr model.Address, fullName string) (model.PriceBreakdown, error)
	Finalize(ctx context.Context, orderID string) (uuid.UUID, error)
	Confirmation(ctx context.Context, gatewayOrderID string) (*model.FinalizedOrder, error)
}

// HealthChecker reports backing store connectivity.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

package repository

import (
	"context"

	"github.com/google/uuid"

	"github.com/quayside/storefront/internal/domain/model"
)

// OrderRepository persists finalized orders. The store is append-only: only
// the completed flag is ever updated, nothing is deleted.
type OrderRepository interface {
	Create(ctx context.Context, order *model.FinalizedOrder) error
	CountByGatewayOrderID(ctx context.Context, gatewayOrderID string) (int, error)
	GetByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.FinalizedOrder, error)
	MarkCompleted(ctx context.Context, id uuid.UUID) error
	ListIncomplete(ctx context.Context, limit int) ([]model.FinalizedOrder, error)
}

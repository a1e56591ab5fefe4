package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/quayside/storefront/internal/adapter/gateway"
	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
	"github.com/quayside/storefront/internal/domain/repository"
)

// GatewayPort is the subset of gateway operations the finalizer drives.
type GatewayPort interface {
	Fetch(ctx context.Context, orderID string) (*model.GatewayOrder, error)
	Authorize(ctx context.Context, orderID string) (*gateway.AuthorizationResult, error)
}

// OrderFinalizer commits the terminal checkout transaction: it fossilizes
// the gateway order into an immutable record, decrements stock and captures
// funds.
type OrderFinalizer struct {
	gateway GatewayPort
	orders  repository.OrderRepository
	catalog repository.CatalogRepository
	logger  *slog.Logger
}

// NewOrderFinalizer constructs OrderFinalizer.
func NewOrderFinalizer(gw GatewayPort, orders repository.OrderRepository, catalog repository.CatalogRepository, logger *slog.Logger) *OrderFinalizer {
	return &OrderFinalizer{gateway: gw, orders: orders, catalog: catalog, logger: logger}
}

// Finalize turns an approved gateway order into a FinalizedOrder. The
// record is written before funds are captured so a capture failure leaves
// an order that can be reconciled instead of a silently lost sale. Stock
// decrements are best-effort and never fail the call once the record
// exists.
func (f *OrderFinalizer) Finalize(ctx context.Context, orderID string) (uuid.UUID, error) {
	order, err := f.gateway.Fetch(ctx, orderID)
	if err != nil {
		return uuid.Nil, err
	}

	if order.Status != model.GatewayOrderApproved && order.Status != model.GatewayOrderCompleted {
		return uuid.Nil, domainErrors.ErrOrderNotApproved
	}

	// Guards against a finalize racing ahead of a still in-flight address
	// patch: both customer info and price must be in their final shape.
	if !order.Price.Final() || !ShippingComplete(order) || !PaymentComplete(order) {
		return uuid.Nil, domainErrors.ErrIncompleteCheckoutState
	}

	if order.Status == model.GatewayOrderCompleted {
		existing, err := f.orders.CountByGatewayOrderID(ctx, orderID)
		if err != nil {
			return uuid.Nil, err
		}
		if existing > 0 {
			return uuid.Nil, domainErrors.ErrDuplicateOrder
		}
	}

	items, err := f.snapshotItems(ctx, order.LineItems)
	if err != nil {
		return uuid.Nil, err
	}

	record := &model.FinalizedOrder{
		ID:             uuid.New(),
		GatewayOrderID: orderID,
		Items:          items,
		Price:          order.Price,
		Customer:       order.Customer,
		Completed:      order.Status == model.GatewayOrderCompleted,
		CreatedAt:      time.Now().UTC(),
	}
	if err := f.orders.Create(ctx, record); err != nil {
		return uuid.Nil, err
	}

	f.decrementStock(ctx, record)

	if order.Status == model.GatewayOrderApproved {
		if _, err := f.gateway.Authorize(ctx, orderID); err != nil {
			// The order record stands; the capture reconciler or manual
			// reconciliation completes it later.
			f.logger.Error("capture failed after order write",
				slog.String("gateway_order_id", orderID),
				slog.String("finalized_order_id", record.ID.String()),
				slog.String("error", err.Error()),
			)
			return record.ID, nil
		}
		if err := f.orders.MarkCompleted(ctx, record.ID); err != nil {
			f.logger.Error("mark completed failed",
				slog.String("finalized_order_id", record.ID.String()),
				slog.String("error", err.Error()),
			)
		}
	}

	return record.ID, nil
}

// snapshotItems freezes catalog data for every line item at this instant so
// later catalog edits never alter the historical order.
func (f *OrderFinalizer) snapshotItems(ctx context.Context, items []model.LineItem) ([]model.FinalizedItem, error) {
	snapshot := make([]model.FinalizedItem, 0, len(items))
	for _, item := range items {
		product, err := f.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("snapshot product %s: %w", item.ProductID, err)
		}
		variant, ok := product.Variant(item.VariantSKU)
		if !ok {
			return nil, fmt.Errorf("%w: variant %s/%s", domainErrors.ErrNotFound, item.ProductID, item.VariantSKU)
		}
		snapshot = append(snapshot, model.FinalizedItem{
			ProductID:   item.ProductID,
			VariantSKU:  item.VariantSKU,
			Name:        product.Name,
			Description: product.Description,
			UnitPrice:   variant.Price,
			Quantity:    item.Quantity,
		})
	}
	return snapshot, nil
}

// decrementStock applies per-variant decrements concurrently and settles
// every outcome. A failed decrement is logged and reported through the
// logging channel only; it neither rolls back sibling decrements nor the
// order record, since funds are already captured or about to be.
func (f *OrderFinalizer) decrementStock(ctx context.Context, record *model.FinalizedOrder) {
	outcomes := make([]error, len(record.Items))
	var wg sync.WaitGroup
	for i, item := range record.Items {
		i, item := i, item
		wg.Add(1)
		go func() {
			defer wg.Done()
			outcomes[i] = f.catalog.DecrementVariantStock(ctx, item.ProductID, item.VariantSKU, item.Quantity)
		}()
	}
	wg.Wait()

	for i, err := range outcomes {
		if err == nil {
			continue
		}
		item := record.Items[i]
		level := slog.LevelError
		if errors.Is(err, domainErrors.ErrInsufficientStock) {
			level = slog.LevelWarn
		}
		f.logger.Log(ctx, level, "stock decrement failed",
			slog.String("gateway_order_id", record.GatewayOrderID),
			slog.String("product_id", item.ProductID),
			slog.String("variant_sku", item.VariantSKU),
			slog.Int("quantity", item.Quantity),
			slog.String("error", err.Error()),
		)
	}
}

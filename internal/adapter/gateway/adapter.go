package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"sync"

	"github.com/shopspring/decimal"

	domainErrors "github.com/quayside/storefront/internal/domain/errors"
	"github.com/quayside/storefront/internal/domain/model"
)

// Currency is the single currency this storefront trades in.
const Currency = "CAD"

// Pricer recomputes an order price for a destination.
type Pricer interface {
	Compute(ctx context.Context, items []model.PricedItem, dest *model.Address) (model.PriceBreakdown, error)
}

// CatalogReader resolves live catalog data for line items.
type CatalogReader interface {
	GetProduct(ctx context.Context, productID string) (*model.Product, error)
}

// CreateResult is the outcome of creating a gateway order.
type CreateResult struct {
	OrderID     string
	Status      model.GatewayOrderStatus
	RedirectURL string
}

// AuthorizationResult reports the gateway state after a capture call.
type AuthorizationResult struct {
	OrderID string
	Status  model.GatewayOrderStatus
}

// Adapter translates between the gateway's order representation and the
// internal line-item/customer/price model.
type Adapter struct {
	api     API
	pricer  Pricer
	catalog CatalogReader
	logger  *slog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAdapter constructs the gateway order adapter.
func NewAdapter(api API, pricer Pricer, catalog CatalogReader, logger *slog.Logger) *Adapter {
	return &Adapter{
		api:     api,
		pricer:  pricer,
		catalog: catalog,
		logger:  logger,
		locks:   make(map[string]*sync.Mutex),
	}
}

// Fetch reads the gateway order and translates it into the internal model.
// A malformed composite SKU or an unsupported shipping country fails the
// whole fetch.
func (a *Adapter) Fetch(ctx context.Context, orderID string) (*model.GatewayOrder, error) {
	wire, err := a.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return toDomainOrder(wire)
}

// Create validates stock against the live catalog, registers the order with
// the gateway and returns its approve action link. In the non-express path a
// missing approve link is a create failure.
func (a *Adapter) Create(ctx context.Context, items []model.LineItem, dest *model.Address, express bool) (*CreateResult, error) {
	priced, err := a.resolveItems(ctx, items, true)
	if err != nil {
		return nil, err
	}

	breakdown, err := a.pricer.Compute(ctx, priced, nil)
	if err != nil {
		return nil, err
	}

	unit := PurchaseUnit{Amount: amountFromBreakdown(breakdown)}
	for _, item := range priced {
		composite, err := EncodeSKU(item.ProductID, item.VariantSKU)
		if err != nil {
			return nil, err
		}
		unit.Items = append(unit.Items, Item{
			SKU:      composite,
			Quantity: strconv.Itoa(item.Quantity),
			UnitAmount: Money{
				CurrencyCode: Currency,
				Value:        item.UnitPrice.StringFixed(2),
			},
		})
	}
	if dest != nil {
		unit.Shipping = &Shipping{Address: wireAddress(*dest)}
	}

	wire, err := a.api.CreateOrder(ctx, CreateOrderRequest{
		Intent:        "CAPTURE",
		PurchaseUnits: []PurchaseUnit{unit},
	})
	if err != nil {
		return nil, err
	}

	result := &CreateResult{
		OrderID: wire.ID,
		Status:  model.GatewayOrderStatus(wire.Status),
	}
	for _, link := range wire.Links {
		if link.Rel == "approve" {
			result.RedirectURL = link.Href
		}
		if express && link.Rel == "payer-action" {
			result.RedirectURL = link.Href
		}
	}
	if !express && result.RedirectURL == "" {
		return nil, domainErrors.ErrMissingApproveLink
	}
	return result, nil
}

// PatchAddress recomputes the price for the new destination and submits the
// address, name and amount breakdown to the gateway in one call. Calls are
// serialized per order id so a stale price can never overwrite a newer one.
func (a *Adapter) PatchAddress(ctx context.Context, orderID string, addr model.Address, fullName string) (model.PriceBreakdown, error) {
	lock := a.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	order, err := a.Fetch(ctx, orderID)
	if err != nil {
		return model.PriceBreakdown{}, err
	}
	if order.Status == model.GatewayOrderCompleted {
		return model.PriceBreakdown{}, domainErrors.ErrCheckoutCompleted
	}

	priced, err := a.resolveItems(ctx, order.LineItems, false)
	if err != nil {
		return model.PriceBreakdown{}, err
	}
	breakdown, err := a.pricer.Compute(ctx, priced, &addr)
	if err != nil {
		return model.PriceBreakdown{}, err
	}

	ops := []PatchOp{
		{Op: "replace", Path: "/purchase_units/@reference_id=='default'/shipping/address", Value: wireAddress(addr)},
		{Op: "replace", Path: "/purchase_units/@reference_id=='default'/shipping/name", Value: Name{FullName: fullName}},
		{Op: "replace", Path: "/purchase_units/@reference_id=='default'/amount", Value: amountFromBreakdown(breakdown)},
	}
	if err := a.api.PatchOrder(ctx, orderID, ops); err != nil {
		return model.PriceBreakdown{}, err
	}
	return breakdown, nil
}

// Authorize captures funds for an approved order. A completed order is
// terminal and is rejected before any gateway call.
func (a *Adapter) Authorize(ctx context.Context, orderID string) (*AuthorizationResult, error) {
	current, err := a.api.GetOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	if model.GatewayOrderStatus(current.Status) == model.GatewayOrderCompleted {
		return nil, domainErrors.ErrCheckoutCompleted
	}

	wire, err := a.api.AuthorizeOrder(ctx, orderID)
	if err != nil {
		return nil, err
	}
	return &AuthorizationResult{
		OrderID: wire.ID,
		Status:  model.GatewayOrderStatus(wire.Status),
	}, nil
}

// resolveItems loads catalog data for every line item. With checkStock set
// it also verifies the requested quantity against live inventory.
func (a *Adapter) resolveItems(ctx context.Context, items []model.LineItem, checkStock bool) ([]model.PricedItem, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("%w: empty order", domainErrors.ErrInvalidLineItem)
	}

	seen := make(map[string]struct{}, len(items))
	priced := make([]model.PricedItem, 0, len(items))
	for _, item := range items {
		if item.Quantity <= 0 {
			return nil, fmt.Errorf("%w: quantity must be positive for %s/%s", domainErrors.ErrInvalidLineItem, item.ProductID, item.VariantSKU)
		}
		key := item.ProductID + SKUDelimiter + item.VariantSKU
		if _, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: duplicate line %s/%s", domainErrors.ErrInvalidLineItem, item.ProductID, item.VariantSKU)
		}
		seen[key] = struct{}{}

		product, err := a.catalog.GetProduct(ctx, item.ProductID)
		if err != nil {
			return nil, fmt.Errorf("resolve product %s: %w", item.ProductID, err)
		}
		variant, ok := product.Variant(item.VariantSKU)
		if !ok {
			return nil, fmt.Errorf("%w: variant %s/%s", domainErrors.ErrNotFound, item.ProductID, item.VariantSKU)
		}
		if checkStock && variant.Quantity < item.Quantity {
			return nil, fmt.Errorf("%w: %s/%s has %d, want %d", domainErrors.ErrInsufficientStock, item.ProductID, item.VariantSKU, variant.Quantity, item.Quantity)
		}

		priced = append(priced, model.PricedItem{
			LineItem:   item,
			UnitPrice:  variant.Price,
			WeightKG:   variant.WeightKG,
			Dimensions: variant.Dimensions,
		})
	}
	return priced, nil
}

func (a *Adapter) orderLock(orderID string) *sync.Mutex {
	a.mu.Lock()
	defer a.mu.Unlock()
	lock, ok := a.locks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		a.locks[orderID] = lock
	}
	return lock
}

func toDomainOrder(wire *Order) (*model.GatewayOrder, error) {
	order := &model.GatewayOrder{
		ID:     wire.ID,
		Status: model.GatewayOrderStatus(wire.Status),
		Links:  make(map[string]string, len(wire.Links)),
	}
	for _, link := range wire.Links {
		order.Links[link.Rel] = link.Href
	}

	if wire.PaymentSource != nil {
		switch {
		case wire.PaymentSource.Card != nil:
			order.Customer.PaymentMethod = model.PaymentMethodCard
			order.Customer.PaymentSource = wire.PaymentSource.Card.LastDigits
		case wire.PaymentSource.Wallet != nil:
			order.Customer.PaymentMethod = model.PaymentMethodWallet
			order.Customer.PaymentSource = wire.PaymentSource.Wallet.EmailAddress
		}
	}

	if len(wire.PurchaseUnits) == 0 {
		return order, nil
	}
	unit := wire.PurchaseUnits[0]

	for _, item := range unit.Items {
		productID, variantSKU, err := DecodeSKU(item.SKU)
		if err != nil {
			return nil, err
		}
		quantity, err := strconv.Atoi(item.Quantity)
		if err != nil || quantity <= 0 {
			return nil, fmt.Errorf("%w: bad quantity %q for %s", domainErrors.ErrInvalidLineItem, item.Quantity, item.SKU)
		}
		order.LineItems = append(order.LineItems, model.LineItem{
			ProductID:  productID,
			VariantSKU: variantSKU,
			Quantity:   quantity,
		})
	}

	if unit.Shipping != nil {
		if unit.Shipping.Name != nil {
			order.Customer.FullName = unit.Shipping.Name.FullName
		}
		if unit.Shipping.Address != nil {
			if unit.Shipping.Address.CountryCode != model.SupportedCountry {
				return nil, fmt.Errorf("%w: country %s", domainErrors.ErrUnsupportedRegion, unit.Shipping.Address.CountryCode)
			}
			order.Customer.Address = model.Address{
				Line1:      unit.Shipping.Address.AddressLine1,
				Line2:      unit.Shipping.Address.AddressLine2,
				City:       unit.Shipping.Address.AdminArea2,
				Region:     unit.Shipping.Address.AdminArea1,
				PostalCode: unit.Shipping.Address.PostalCode,
				Country:    unit.Shipping.Address.CountryCode,
			}
		}
	}

	breakdown, err := breakdownFromAmount(unit.Amount)
	if err != nil {
		return nil, err
	}
	order.Price = breakdown
	return order, nil
}

func breakdownFromAmount(amount Amount) (model.PriceBreakdown, error) {
	total, err := decimal.NewFromString(amount.Value)
	if err != nil {
		return model.PriceBreakdown{}, fmt.Errorf("parse amount %q: %w", amount.Value, err)
	}
	breakdown := model.PriceBreakdown{Subtotal: total, Total: total}
	if amount.Breakdown == nil {
		return breakdown, nil
	}

	if amount.Breakdown.ItemTotal != nil {
		subtotal, err := decimal.NewFromString(amount.Breakdown.ItemTotal.Value)
		if err != nil {
			return model.PriceBreakdown{}, fmt.Errorf("parse item total %q: %w", amount.Breakdown.ItemTotal.Value, err)
		}
		breakdown.Subtotal = subtotal
	}
	if amount.Breakdown.Shipping != nil {
		shipping, err := decimal.NewFromString(amount.Breakdown.Shipping.Value)
		if err != nil {
			return model.PriceBreakdown{}, fmt.Errorf("parse shipping %q: %w", amount.Breakdown.Shipping.Value, err)
		}
		breakdown.Shipping = &shipping
	}
	if amount.Breakdown.TaxTotal != nil {
		tax, err := decimal.NewFromString(amount.Breakdown.TaxTotal.Value)
		if err != nil {
			return model.PriceBreakdown{}, fmt.Errorf("parse tax %q: %w", amount.Breakdown.TaxTotal.Value, err)
		}
		breakdown.Tax = &tax
	}
	return breakdown, nil
}

func amountFromBreakdown(breakdown model.PriceBreakdown) Amount {
	amount := Amount{
		CurrencyCode: Currency,
		Value:        breakdown.Total.StringFixed(2),
		Breakdown: &Breakdown{
			ItemTotal: &Money{CurrencyCode: Currency, Value: breakdown.Subtotal.StringFixed(2)},
		},
	}
	if breakdown.Shipping != nil {
		amount.Breakdown.Shipping = &Money{CurrencyCode: Currency, Value: breakdown.Shipping.StringFixed(2)}
	}
	if breakdown.Tax != nil {
		amount.Breakdown.TaxTotal = &Money{CurrencyCode: Currency, Value: breakdown.Tax.StringFixed(2)}
	}
	return amount
}

func wireAddress(addr model.Address) *Address {
	return &Address{
		AddressLine1: addr.Line1,
		AddressLine2: addr.Line2,
		AdminArea2:   addr.City,
		AdminArea1:   addr.Region,
		PostalCode:   addr.PostalCode,
		CountryCode:  addr.Country,
	}
}

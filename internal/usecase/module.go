package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/quayside/storefront/internal/config"
	"github.com/quayside/storefront/internal/domain/repository"
)

// Module provides the core business use cases to the fx container.
var Module = fx.Provide(
	newPriceEngine,
	newOrderFinalizer,
)

type priceEngineParams struct {
	fx.In

	Rates  RateProvider
	Config *config.Config
}

func newPriceEngine(p priceEngineParams) *PriceEngine {
	return NewPriceEngine(p.Rates, p.Config.OriginPostalCode)
}

type finalizerParams struct {
	fx.In

	Gateway GatewayPort
	Orders  repository.OrderRepository
	Catalog repository.CatalogRepository
	Logger  *slog.Logger
}

func newOrderFinalizer(p finalizerParams) *OrderFinalizer {
	return NewOrderFinalizer(p.Gateway, p.Orders, p.Catalog, p.Logger)
}

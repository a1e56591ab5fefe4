package di

import (
	"go.uber.org/fx"

	"github.com/quayside/storefront/internal/adapter/carrier"
	"github.com/quayside/storefront/internal/adapter/gateway"
	"github.com/quayside/storefront/internal/app"
	"github.com/quayside/storefront/internal/config"
	"github.com/quayside/storefront/internal/domain/repository"
	"github.com/quayside/storefront/internal/logger"
	"github.com/quayside/storefront/internal/server/http/handlers"
	"github.com/quayside/storefront/internal/server/http/router"
	"github.com/quayside/storefront/internal/storage/postgres"
	"github.com/quayside/storefront/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		carrier.Module,
		gateway.Module,
		usecase.Module,
		fx.Provide(
			func(client carrier.Client) usecase.RateProvider { return client },
			func(engine *usecase.PriceEngine) gateway.Pricer { return engine },
			func(catalog repository.CatalogRepository) gateway.CatalogReader { return catalog },
			func(adapter *gateway.Adapter) usecase.GatewayPort { return adapter },
			func(adapter *gateway.Adapter) app.GatewayAdapter { return adapter },
			func(facade *app.CheckoutFacade) handlers.CheckoutFacade { return facade },
			func(storage *postgres.Storage) handlers.HealthChecker { return storage },
		),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

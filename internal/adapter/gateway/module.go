package gateway

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/quayside/storefront/internal/config"
)

// Module exposes the gateway client and order adapter to the fx graph.
var Module = fx.Options(
	fx.Provide(newClient),
	fx.Provide(newAdapter),
)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (API, error) {
	return NewHTTPClient(p.Config.GatewayAddress, p.Config.GatewayClientID, p.Config.GatewaySecret, p.Logger)
}

type adapterParams struct {
	fx.In

	API     API
	Pricer  Pricer
	Catalog CatalogReader
	Logger  *slog.Logger
}

func newAdapter(p adapterParams) *Adapter {
	return NewAdapter(p.API, p.Pricer, p.Catalog, p.Logger)
}

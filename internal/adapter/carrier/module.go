package carrier

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/quayside/storefront/internal/config"
)

// Module exposes the carrier client implementation to the fx graph.
var Module = fx.Provide(newClient)

type clientParams struct {
	fx.In

	Config *config.Config
	Logger *slog.Logger
}

func newClient(p clientParams) (Client, error) {
	return NewHTTPClient(p.Config.CarrierAddress, p.Config.CarrierAPIKey, p.Logger)
}

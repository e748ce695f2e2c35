//go:build wireinject

package api

import (
	"testing"

	"github.com/google/wire"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/metrics"
	"github/chapool/custody-signer/internal/wallet"
)

// INJECTORS - https://github.com/google/wire/blob/main/docs/guide.md#injectors

// serviceSet groups the default set of providers that are required for initing a server
var serviceSet = wire.NewSet(
	newServerWithComponents,
	NewClock,
)

// InitNewServer returns a new Server instance.
func InitNewServer(
	_ config.Server,
) (*Server, error) {
	wire.Build(serviceSet, NewMetrics, NewWallet, NoTest)
	return new(Server), nil
}

// InitNewServerWithWallet returns a new Server instance with the given metrics and wallet service.
// All the other components are initialized via go wire according to the configuration.
func InitNewServerWithWallet(
	_ config.Server,
	_ *metrics.Service,
	_ wallet.Service,
	t ...*testing.T,
) (*Server, error) {
	wire.Build(serviceSet)
	return new(Server), nil
}

package wallet

import (
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/wallet/signer"
)

// active is the (config, strategy) pair held by the Service. It is never
// mutated after construction; reconfiguration swaps the whole value.
type active struct {
	config   config.StrategyConfig
	strategy signer.Strategy
}

func (a *active) backend() string {
	return a.config.Backend().String()
}

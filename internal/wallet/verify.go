package wallet

import (
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/config"
)

// VerifyConfig checks that a strategy can be built from cfg without signing
// anything. The strategy is released again before returning.
func VerifyConfig(cfg config.StrategyConfig) error {
	strategy, err := NewStrategy(cfg)
	if err != nil {
		return errors.Wrap(err, "strategy config is not usable")
	}

	return release(&active{config: cfg, strategy: strategy})
}

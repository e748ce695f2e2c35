package wallet

import (
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/wallet/signer"
	"github/chapool/custody-signer/internal/wallet/signer/awskms"
	"github/chapool/custody-signer/internal/wallet/signer/dfns"
	"github/chapool/custody-signer/internal/wallet/signer/fireblocks"
)

// ErrUnsupportedConfig is returned by NewStrategy for unknown StrategyConfig implementations.
var ErrUnsupportedConfig = errors.New("unsupported strategy config")

// StrategyFactory builds a strategy from a config variant.
type StrategyFactory func(cfg config.StrategyConfig) (signer.Strategy, error)

// NewStrategy maps a config variant to its strategy. Each call builds a new
// strategy with its own backend client.
//
//nolint:ireturn // callers only need the Strategy contract
func NewStrategy(cfg config.StrategyConfig) (signer.Strategy, error) {
	if cfg == nil {
		return nil, errors.Wrap(ErrUnsupportedConfig, "nil config")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch c := cfg.(type) {
	case *config.KMSConfig:
		return awskms.NewStrategy(c), nil
	case *config.DFNSConfig:
		return dfns.NewStrategy(c)
	case *config.FireblocksConfig:
		return fireblocks.NewStrategy(c)
	default:
		return nil, errors.Wrapf(ErrUnsupportedConfig, "%T", cfg)
	}
}

package wallet

import (
	"context"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/metrics"
	"github/chapool/custody-signer/internal/util"
)

// Initialize resolves the strategy config from the server config and builds
// the wallet Service at startup.
//
//nolint:ireturn
func Initialize(_ context.Context, cfg config.SignerServer, metrics *metrics.Service, clock time2.Clock, opts ...Option) (Service, error) {
	log := log.With().Str("component", "wallet_init").Logger()

	strategyConfig, err := cfg.StrategyConfig()
	if err != nil {
		return nil, errors.Wrap(err, "failed to load strategy config")
	}

	log.Info().
		Str("backend", strategyConfig.Backend().String()).
		Str("strategy_file", cfg.StrategyFile).
		Msg("Initializing signing strategy")

	svc, err := NewService(strategyConfig, metrics, clock, opts...)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize signing strategy")
		return nil, err
	}

	log.Info().Msg("Signing strategy initialized")

	return svc, nil
}

// Reload re-reads the strategy config and swaps it into svc.
func Reload(ctx context.Context, cfg config.SignerServer, svc Service) error {
	log := util.LogFromContext(ctx)

	strategyConfig, err := cfg.StrategyConfig()
	if err != nil {
		log.Error().Err(err).Msg("Failed to reload strategy config, keeping active strategy")
		return errors.Wrap(err, "failed to load strategy config")
	}

	return svc.SetConfig(strategyConfig)
}

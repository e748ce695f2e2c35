package probe

import (
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet"
)

func newReadiness() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "readiness",
		Short: "Runs readiness probes",
		Long: `Runs readiness probes

Loads and validates the strategy config and builds the strategy
without contacting the signing backend. Exits with 1 if the config is not usable.`,
		Run: func(cmd *cobra.Command, _ []string) {
			verbose, err := cmd.Flags().GetBool(verboseFlag)
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to parse args")
			}

			if !runReadiness(config.DefaultServiceConfigFromEnv(), verbose) {
				os.Exit(1)
			}
		},
	}

	cmd.Flags().BoolP(verboseFlag, "v", false, "Show verbose output.")

	return cmd
}

func runReadiness(cfg config.Server, verbose bool) bool {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	util.ConfigureLogger(level, cfg.Logger.PrettyPrintConsole)

	strategyConfig, err := cfg.Signer.StrategyConfig()
	if err != nil {
		log.Error().Err(err).Msg("Strategy config readiness probe failed")
		return false
	}

	if err := wallet.VerifyConfig(strategyConfig); err != nil {
		log.Error().Err(err).Str("backend", strategyConfig.Backend().String()).Msg("Strategy readiness probe failed")
		return false
	}

	log.Debug().Str("backend", strategyConfig.Backend().String()).Msg("Strategy readiness probe succeeded")

	return true
}

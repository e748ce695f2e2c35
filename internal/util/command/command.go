package command

import (
	"context"
	"fmt"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github/chapool/custody-signer/internal/api"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/metrics"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet"
)

const (
	shutdownTimeout = 30 * time.Second
)

func NewSubcommandGroup(name string, subCommands ...*cobra.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:   name,
		Short: fmt.Sprintf("%s related subcommands", name),
		Run: func(cmd *cobra.Command, _ []string) {
			if err := cmd.Help(); err != nil {
				log.Error().Err(err).Msg("Failed to print help")
			}
		},
	}

	cmd.AddCommand(subCommands...)

	return cmd
}

// WithServer initializes a full Server from cfg, runs f and shuts the server down afterwards.
func WithServer(ctx context.Context, cfg config.Server, f func(ctx context.Context, s *api.Server) error) error {
	util.ConfigureLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	s, err := api.InitNewServer(cfg)
	if err != nil {
		log.Error().Err(err).Msg("Failed to initialize server")
		return errors.Wrap(err, "failed to initialize server")
	}

	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if errs := s.Shutdown(ctx); len(errs) > 0 {
			log.Error().Errs("shutdownErrors", errs).Msg("Failed to gracefully shut down server")
		}
	}()

	return f(ctx, s)
}

// WithWalletService builds only the wallet service, without HTTP surface, runs f and
// releases the strategy afterwards.
func WithWalletService(ctx context.Context, cfg config.Server, f func(ctx context.Context, w wallet.Service) error) error {
	util.ConfigureLogger(cfg.Logger.Level, cfg.Logger.PrettyPrintConsole)

	w, err := wallet.Initialize(ctx, cfg.Signer, metrics.NewService(nil), time2.DefaultClock)
	if err != nil {
		return err
	}

	defer func() {
		if err := w.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to release signing strategy")
		}
	}()

	return f(ctx, w)
}

package server

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog/log"
	"github/chapool/custody-signer/internal/api"
)

// reloadOnHangup swaps the signing strategy on every SIGHUP until ctx is done.
// A failed reload keeps the active strategy.
func reloadOnHangup(ctx context.Context, s *api.Server) {
	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)

	for {
		select {
		case <-ctx.Done():
			return
		case <-hup:
			log.Info().Msg("Received SIGHUP, reloading signing strategy")

			if err := s.ReloadWallet(ctx); err != nil {
				log.Error().Err(err).Msg("Failed to reload signing strategy")
				continue
			}

			log.Info().Str("backend", s.Wallet.GetConfig().Backend().String()).Msg("Signing strategy reloaded")
		}
	}
}

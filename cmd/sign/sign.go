package sign

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	"github.com/spf13/cobra"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/util/command"
	"github/chapool/custody-signer/internal/wallet"
)

const (
	strategyFileFlag string = "strategy-file"
)

func New() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sign <hex-message>",
		Short: "Signs a hex encoded message with the configured backend",
		Long: `Signs a hex encoded message with the configured backend

The message may carry a 0x prefix. The raw signature is printed as 0x prefixed hex.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			strategyFile, err := cmd.Flags().GetString(strategyFileFlag)
			if err != nil {
				return err
			}

			return runSign(cmd, args[0], strategyFile)
		},
	}

	cmd.Flags().String(strategyFileFlag, "", "TOML strategy file, overrides SIGNER_STRATEGY_FILE")

	return cmd
}

func runSign(cmd *cobra.Command, messageHex string, strategyFile string) error {
	message, err := util.HexToBytes(messageHex)
	if err != nil {
		return errors.Wrap(err, "invalid message")
	}

	cfg := config.DefaultServiceConfigFromEnv()
	if strategyFile != "" {
		cfg.Signer.StrategyFile = strategyFile
	}

	return command.WithWalletService(cmd.Context(), cfg, func(ctx context.Context, w wallet.Service) error {
		sig, err := w.Sign(ctx, message)
		if err != nil {
			return err
		}

		fmt.Fprintln(cmd.OutOrStdout(), "0x"+util.BytesToHex(sig))
		return nil
	})
}

// Package fireblocks signs raw messages through a Fireblocks vault account
// by creating a RAW transaction and polling it to completion.
package fireblocks

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet/signature"
	"github/chapool/custody-signer/internal/wallet/signer"
)

const (
	MaxRetries   = 10
	PollInterval = time.Second
)

var _ signer.Strategy = (*Strategy)(nil)

type Strategy struct {
	client         API
	vaultAccountID string
	assetID        string
	poll           signer.PollPolicy
}

type Option func(*Strategy)

// WithPollPolicy replaces the default 10 x 1s budget.
func WithPollPolicy(policy signer.PollPolicy) Option {
	return func(s *Strategy) {
		s.poll = policy
	}
}

func NewStrategy(cfg *config.FireblocksConfig, opts ...Option) (*Strategy, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewStrategyWithClient(client, cfg.VaultAccountID, cfg.AssetID, opts...), nil
}

func NewStrategyWithClient(client API, vaultAccountID string, assetID string, opts ...Option) *Strategy {
	s := &Strategy{
		client:         client,
		vaultAccountID: vaultAccountID,
		assetID:        assetID,
		poll: signer.PollPolicy{
			MaxAttempts: MaxRetries,
			Interval:    PollInterval,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Sign submits the hex encoded message unhashed; Fireblocks signs the raw bytes.
func (s *Strategy) Sign(ctx context.Context, req *signer.Request) ([]byte, error) {
	log := util.LogFromContext(ctx)

	created, err := s.client.CreateTransaction(ctx, &CreateTransactionRequest{
		Operation: OperationRaw,
		AssetID:   s.assetID,
		Source: TransferPeerPath{
			Type: PeerTypeVaultAccount,
			ID:   s.vaultAccountID,
		},
		ExtraParameters: ExtraParameters{
			RawMessageData: RawMessageData{
				Messages: []RawMessage{{Content: util.BytesToHex(req.Bytes())}},
			},
		},
	})
	if err != nil {
		return nil, signer.NewBackendError(signer.ErrBackendUnavailable, err, "fireblocks create transaction")
	}
	if created == nil || created.ID == "" {
		return nil, errors.Wrap(signer.ErrSigning, "transaction id not returned from fireblocks")
	}

	log.Debug().
		Str("tx_id", created.ID).
		Str("vault_account_id", s.vaultAccountID).
		Str("asset_id", s.assetID).
		Msg("Created Fireblocks RAW transaction")

	tx, err := s.pollTransaction(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	if len(tx.SignedMessages) == 0 {
		return nil, errors.Wrapf(signer.ErrSigning, "no signature found in fireblocks transaction %s", tx.ID)
	}

	sig := tx.SignedMessages[0].Signature
	if sig == nil || sig.FullSig == "" {
		return nil, errors.Wrapf(signer.ErrSigning, "full signature not found in fireblocks transaction %s", tx.ID)
	}

	raw, err := util.HexToBytes(sig.FullSig)
	if err != nil {
		return nil, signer.NewBackendError(signature.ErrMalformedSignature, err, "fireblocks transaction "+tx.ID)
	}

	return raw, nil
}

// pollTransaction treats poll transport errors as still pending.
func (s *Strategy) pollTransaction(ctx context.Context, txID string) (*TransactionResponse, error) {
	log := util.LogFromContext(ctx)

	var tx *TransactionResponse
	err := s.poll.Poll(ctx, func(ctx context.Context, attempt int) (bool, error) {
		res, err := s.client.GetTransaction(ctx, txID)
		if err != nil {
			log.Warn().Err(err).Str("tx_id", txID).Int("attempt", attempt).Msg("Error polling Fireblocks transaction")
			return false, nil
		}

		switch {
		case res.Status == TransactionStatusCompleted:
			tx = res
			return true, nil
		case res.Status.Failed():
			return false, errors.Wrapf(signer.ErrSigningFailed, "fireblocks transaction %s %s %s", txID, res.Status, res.SubStatus)
		}

		return false, nil
	})
	if err != nil {
		if errors.Is(err, signer.ErrSigningTimeout) {
			return nil, errors.Wrapf(err, "fireblocks transaction %s", txID)
		}
		return nil, err
	}

	if tx.ID == "" {
		tx.ID = txID
	}

	return tx, nil
}

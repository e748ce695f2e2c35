// Package dfns signs through a DFNS wallet: it submits a signature request
// and polls it until DFNS reports a terminal state.
package dfns

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
	// ED25519KeyLength is the public key length, in bytes, that selects EdDSA message signing.
	ED25519KeyLength = 32

	DefaultMaxRetries    = 3
	DefaultRetryInterval = time.Second
)

var _ signer.Strategy = (*Strategy)(nil)

type Strategy struct {
	client   API
	walletID string
	eddsa    bool
	poll     signer.PollPolicy
}

type Option func(*Strategy)

// WithPollPolicy replaces the default 3 x 1s budget.
func WithPollPolicy(policy signer.PollPolicy) Option {
	return func(s *Strategy) {
		s.poll = policy
	}
}

func NewStrategy(cfg *config.DFNSConfig, opts ...Option) (*Strategy, error) {
	client, err := NewClient(cfg)
	if err != nil {
		return nil, err
	}

	return NewStrategyWithClient(client, cfg.WalletID, cfg.PublicKey, opts...)
}

// NewStrategyWithClient decodes the hex wallet public key once; its length decides
// between EdDSA (sign the message) and ECDSA (sign the keccak-256 digest).
func NewStrategyWithClient(client API, walletID string, publicKey string, opts ...Option) (*Strategy, error) {
	pub, err := util.HexToBytes(publicKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to decode dfns wallet public key")
	}

	s := &Strategy{
		client:   client,
		walletID: walletID,
		eddsa:    len(pub) == ED25519KeyLength,
		poll: signer.PollPolicy{
			MaxAttempts: DefaultMaxRetries,
			Interval:    DefaultRetryInterval,
		},
	}

	for _, opt := range opts {
		opt(s)
	}

	return s, nil
}

func (s *Strategy) Sign(ctx context.Context, req *signer.Request) ([]byte, error) {
	log := util.LogFromContext(ctx)

	body := s.generateSignatureRequest(req.Bytes())

	created, err := s.client.GenerateSignature(ctx, s.walletID, body)
	if err != nil {
		return nil, signer.NewBackendError(signer.ErrBackendUnavailable, err, "dfns generate signature")
	}
	if created == nil || created.ID == "" {
		return nil, errors.Wrap(signer.ErrSigning, "dfns returned no signature request id")
	}

	log.Debug().
		Str("wallet_id", s.walletID).
		Str("signature_id", created.ID).
		Str("kind", string(body.Kind)).
		Msg("Submitted DFNS signature request")

	signatureHex, err := s.waitForSignature(ctx, created.ID)
	if err != nil {
		return nil, err
	}

	sig, err := util.HexToBytes(signatureHex)
	if err != nil {
		return nil, signer.NewBackendError(signature.ErrMalformedSignature, err, "dfns signature "+created.ID)
	}

	return sig, nil
}

func (s *Strategy) generateSignatureRequest(message []byte) *GenerateSignatureRequest {
	if s.eddsa {
		return &GenerateSignatureRequest{
			Kind:    SignatureKindMessage,
			Message: "0x" + util.BytesToHex(message),
		}
	}

	return &GenerateSignatureRequest{
		Kind: SignatureKindHash,
		Hash: util.BytesToHex(util.Keccak256(message)),
	}
}

// waitForSignature returns the r and s hex digits concatenated, without 0x prefixes.
func (s *Strategy) waitForSignature(ctx context.Context, signatureID string) (string, error) {
	log := util.LogFromContext(ctx)

	var signatureHex string
	err := s.poll.Poll(ctx, func(ctx context.Context, attempt int) (bool, error) {
		res, err := s.client.GetSignature(ctx, s.walletID, signatureID)
		if err != nil {
			return false, signer.NewBackendError(signer.ErrBackendUnavailable, err, "dfns get signature "+signatureID)
		}

		switch res.Status {
		case SignatureStatusSigned, SignatureStatusConfirmed:
			if res.Signature == nil {
				break
			}
			signatureHex = util.StripHexPrefix(res.Signature.R) + util.StripHexPrefix(res.Signature.S)
			return true, nil
		case SignatureStatusFailed, SignatureStatusRejected:
			return false, errors.Wrapf(signer.ErrSigningFailed, "dfns signature request %s %s: %s", signatureID, res.Status, res.Reason)
		}

		log.Debug().
			Str("signature_id", signatureID).
			Str("status", string(res.Status)).
			Int("attempt", attempt).
			Msg("DFNS signature not ready yet")

		return false, nil
	})
	if err != nil {
		if errors.Is(err, signer.ErrSigningTimeout) {
			return "", errors.Wrapf(err, "dfns signature request %s", signatureID)
		}
		return "", err
	}

	return signatureHex, nil
}

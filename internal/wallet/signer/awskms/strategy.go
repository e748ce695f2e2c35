// Package awskms signs keccak-256 digests with an asymmetric ECDSA key held in AWS KMS.
package awskms

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/aws/aws-sdk-go-v2/service/kms/types"
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet/signature"
	"github/chapool/custody-signer/internal/wallet/signer"
)

const (
	SigningAlgorithm = types.SigningAlgorithmSpecEcdsaSha256
	MessageType      = types.MessageTypeDigest
)

// API is the subset of the KMS client used by the strategy.
type API interface {
	Sign(ctx context.Context, params *kms.SignInput, optFns ...func(*kms.Options)) (*kms.SignOutput, error)
}

var _ signer.Strategy = (*Strategy)(nil)

type Strategy struct {
	client API
	keyID  string
}

// NewStrategy creates the KMS client once; it is reused for every Sign call.
func NewStrategy(cfg *config.KMSConfig) *Strategy {
	client := kms.New(kms.Options{
		Region: cfg.Region,
		Credentials: aws.NewCredentialsCache(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		),
	})

	return NewStrategyWithClient(client, cfg.KeyID)
}

func NewStrategyWithClient(client API, keyID string) *Strategy {
	return &Strategy{
		client: client,
		keyID:  keyID,
	}
}

// Sign hashes the message with keccak-256, asks KMS to sign the digest
// and converts the DER response to raw r||s.
func (s *Strategy) Sign(ctx context.Context, req *signer.Request) ([]byte, error) {
	log := util.LogFromContext(ctx)

	digest := util.Keccak256(req.Bytes())

	log.Debug().
		Str("key_id", s.keyID).
		Str("digest", util.BytesToHex(digest)).
		Msg("Signing digest with KMS")

	out, err := s.client.Sign(ctx, &kms.SignInput{
		KeyId:            aws.String(s.keyID),
		Message:          digest,
		MessageType:      MessageType,
		SigningAlgorithm: SigningAlgorithm,
	})
	if err != nil {
		return nil, signer.NewBackendError(signer.ErrBackendUnavailable, err, "kms sign")
	}
	if out == nil || len(out.Signature) == 0 {
		return nil, errors.Wrap(signer.ErrSignatureMissing, "kms sign response")
	}

	raw, err := signature.DERToRaw(out.Signature)
	if err != nil {
		return nil, errors.Wrap(err, "failed to convert kms signature")
	}

	return raw, nil
}

package dfns_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet/signature"
	"github/chapool/custody-signer/internal/wallet/signer"
	"github/chapool/custody-signer/internal/wallet/signer/dfns"
)

const (
	walletID        = "wa-5pfuu-9euek-8ufom0gg7usgjlh7"
	signatureID     = "sig-1"
	ed25519PubKey   = "0x3c1a5b0e6ac1b0b1fce6bc4c2c2af0b3c67a3b47b3b1c2e0a33e4d5f6a7b8c9d"
	secp256k1PubKey = "02f2b3b1a4e6ed3a2c7c6a7c1a9f3fb4c8e3dcf5b9b3e6d1c6a5e0f8d9c7b6a5e4"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) GenerateSignature(ctx context.Context, walletID string, body *dfns.GenerateSignatureRequest) (*dfns.SignatureRequest, error) {
	args := m.Called(ctx, walletID, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dfns.SignatureRequest), args.Error(1)
}

func (m *MockAPI) GetSignature(ctx context.Context, walletID string, signatureID string) (*dfns.SignatureRequest, error) {
	args := m.Called(ctx, walletID, signatureID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dfns.SignatureRequest), args.Error(1)
}

type sleepRecorder struct {
	calls []time.Duration
}

func (r *sleepRecorder) Sleep(_ context.Context, d time.Duration) error {
	r.calls = append(r.calls, d)
	return nil
}

func newStrategy(t *testing.T, client dfns.API, publicKey string, sleeps *sleepRecorder) *dfns.Strategy {
	t.Helper()

	strategy, err := dfns.NewStrategyWithClient(client, walletID, publicKey, dfns.WithPollPolicy(signer.PollPolicy{
		MaxAttempts: dfns.DefaultMaxRetries,
		Interval:    dfns.DefaultRetryInterval,
		Sleep:       sleeps.Sleep,
	}))
	require.NoError(t, err)

	return strategy
}

func signed(r string, s string) *dfns.SignatureRequest {
	return &dfns.SignatureRequest{
		ID:        signatureID,
		Status:    dfns.SignatureStatusSigned,
		Signature: &dfns.Signature{R: r, S: s},
	}
}

func TestSignEdDSAUsesMessageKind(t *testing.T) {
	client := new(MockAPI)
	message := []byte{1, 2, 3}

	client.On("GenerateSignature", mock.Anything, walletID, &dfns.GenerateSignatureRequest{
		Kind:    dfns.SignatureKindMessage,
		Message: "0x010203",
	}).Return(&dfns.SignatureRequest{ID: signatureID, Status: dfns.SignatureStatusPending}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(signed("0x0a0b", "0x0c0d"), nil).Once()

	sleeps := &sleepRecorder{}
	raw, err := newStrategy(t, client, ed25519PubKey, sleeps).Sign(t.Context(), signer.NewRequest(message))
	require.NoError(t, err)

	assert.Equal(t, []byte{0x0a, 0x0b, 0x0c, 0x0d}, raw)
	assert.Empty(t, sleeps.calls)
	client.AssertExpectations(t)
}

func TestSignECDSAUsesHashKind(t *testing.T) {
	client := new(MockAPI)
	message := []byte{1, 2, 3}
	digest := util.BytesToHex(util.Keccak256(message))

	client.On("GenerateSignature", mock.Anything, walletID, mock.MatchedBy(func(body *dfns.GenerateSignatureRequest) bool {
		return body.Kind == dfns.SignatureKindHash &&
			body.Hash == digest &&
			body.Message == "" &&
			!strings.HasPrefix(body.Hash, "0x")
	})).Return(&dfns.SignatureRequest{ID: signatureID}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(&dfns.SignatureRequest{ID: signatureID, Status: dfns.SignatureStatusExecuting}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(signed("0x"+strings.Repeat("11", 32), "0x"+strings.Repeat("22", 32)), nil).Once()

	sleeps := &sleepRecorder{}
	raw, err := newStrategy(t, client, secp256k1PubKey, sleeps).Sign(t.Context(), signer.NewRequest(message))
	require.NoError(t, err)

	require.Len(t, raw, 64)
	assert.Equal(t, byte(0x11), raw[0])
	assert.Equal(t, byte(0x22), raw[63])
	assert.Equal(t, []time.Duration{time.Second}, sleeps.calls)
	client.AssertExpectations(t)
}

func TestSignFailedStopsPolling(t *testing.T) {
	for _, status := range []dfns.SignatureStatus{dfns.SignatureStatusFailed, dfns.SignatureStatusRejected} {
		t.Run(string(status), func(t *testing.T) {
			client := new(MockAPI)
			client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
				Return(&dfns.SignatureRequest{ID: signatureID}, nil).Once()
			client.On("GetSignature", mock.Anything, walletID, signatureID).
				Return(&dfns.SignatureRequest{ID: signatureID, Status: status, Reason: "policy"}, nil).Once()

			sleeps := &sleepRecorder{}
			_, err := newStrategy(t, client, secp256k1PubKey, sleeps).Sign(t.Context(), signer.NewRequest([]byte{1}))
			require.Error(t, err)

			assert.True(t, errors.Is(err, signer.ErrSigningFailed))
			assert.Contains(t, err.Error(), signatureID)
			assert.Empty(t, sleeps.calls)
			client.AssertNumberOfCalls(t, "GetSignature", 1)
		})
	}
}

func TestSignTimeout(t *testing.T) {
	client := new(MockAPI)
	client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
		Return(&dfns.SignatureRequest{ID: signatureID}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(&dfns.SignatureRequest{ID: signatureID, Status: dfns.SignatureStatusPending}, nil)

	sleeps := &sleepRecorder{}
	_, err := newStrategy(t, client, ed25519PubKey, sleeps).Sign(t.Context(), signer.NewRequest([]byte{1}))
	require.Error(t, err)

	assert.True(t, errors.Is(err, signer.ErrSigningTimeout))
	assert.Contains(t, err.Error(), signatureID)
	client.AssertNumberOfCalls(t, "GetSignature", dfns.DefaultMaxRetries)
	assert.Len(t, sleeps.calls, dfns.DefaultMaxRetries-1)
}

func TestSignSignedWithoutSignatureKeepsPolling(t *testing.T) {
	client := new(MockAPI)
	client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
		Return(&dfns.SignatureRequest{ID: signatureID}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(&dfns.SignatureRequest{ID: signatureID, Status: dfns.SignatureStatusSigned}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(signed("0xaa", "0xbb"), nil).Once()

	raw, err := newStrategy(t, client, ed25519PubKey, &sleepRecorder{}).Sign(t.Context(), signer.NewRequest([]byte{1}))
	require.NoError(t, err)
	assert.Equal(t, []byte{0xaa, 0xbb}, raw)
}

func TestSignBackendErrors(t *testing.T) {
	t.Run("generate", func(t *testing.T) {
		client := new(MockAPI)
		client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
			Return(nil, errors.New("401 unauthorized"))

		_, err := newStrategy(t, client, ed25519PubKey, &sleepRecorder{}).Sign(t.Context(), signer.NewRequest([]byte{1}))
		assert.True(t, errors.Is(err, signer.ErrBackendUnavailable))
		client.AssertNotCalled(t, "GetSignature", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("missing id", func(t *testing.T) {
		client := new(MockAPI)
		client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
			Return(&dfns.SignatureRequest{}, nil)

		_, err := newStrategy(t, client, ed25519PubKey, &sleepRecorder{}).Sign(t.Context(), signer.NewRequest([]byte{1}))
		assert.True(t, errors.Is(err, signer.ErrSigning))
	})

	t.Run("poll", func(t *testing.T) {
		client := new(MockAPI)
		client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
			Return(&dfns.SignatureRequest{ID: signatureID}, nil)
		client.On("GetSignature", mock.Anything, walletID, signatureID).
			Return(nil, errors.New("connection reset")).Once()

		_, err := newStrategy(t, client, ed25519PubKey, &sleepRecorder{}).Sign(t.Context(), signer.NewRequest([]byte{1}))
		assert.True(t, errors.Is(err, signer.ErrBackendUnavailable))
		client.AssertNumberOfCalls(t, "GetSignature", 1)
	})
}

func TestNewStrategyWithClientInvalidPublicKey(t *testing.T) {
	_, err := dfns.NewStrategyWithClient(new(MockAPI), walletID, "not-hex")
	assert.Error(t, err)
}

func TestSignMalformedSignatureHex(t *testing.T) {
	client := new(MockAPI)
	client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
		Return(&dfns.SignatureRequest{ID: signatureID}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(signed("0xabc", "0xzz"), nil).Once()

	_, err := newStrategy(t, client, ed25519PubKey, &sleepRecorder{}).Sign(t.Context(), signer.NewRequest([]byte{1}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, signature.ErrMalformedSignature))
	assert.Contains(t, err.Error(), signatureID)
}

func TestSignBackendErrorKeepsCause(t *testing.T) {
	client := new(MockAPI)
	client.On("GenerateSignature", mock.Anything, walletID, mock.Anything).
		Return(&dfns.SignatureRequest{ID: signatureID}, nil).Once()
	client.On("GetSignature", mock.Anything, walletID, signatureID).
		Return(nil, context.Canceled).Once()

	_, err := newStrategy(t, client, ed25519PubKey, &sleepRecorder{}).Sign(t.Context(), signer.NewRequest([]byte{1}))
	assert.True(t, errors.Is(err, signer.ErrBackendUnavailable))
	assert.True(t, errors.Is(err, context.Canceled))
}

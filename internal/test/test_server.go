package test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"github/chapool/custody-signer/internal/api"
	"github/chapool/custody-signer/internal/api/router"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/metrics"
	"github/chapool/custody-signer/internal/wallet"
	"github/chapool/custody-signer/internal/wallet/signer"
)

// WithTestServer starts a Server whose wallet service is backed by strategy and
// runs closure against it. The server is shut down afterwards.
func WithTestServer(t *testing.T, strategy signer.Strategy, closure func(s *api.Server)) {
	t.Helper()

	s := NewTestServer(t, strategy)
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()

		for _, err := range s.Shutdown(ctx) {
			t.Logf("shutdown: %v", err)
		}
	}()

	closure(s)
}

func NewTestServer(t *testing.T, strategy signer.Strategy) *api.Server {
	t.Helper()

	cfg := config.DefaultServiceConfigFromEnv()
	m := metrics.NewService(nil)

	w, err := wallet.NewService(KMSConfig(), m, time2.NewMockClock(time.Now()),
		wallet.WithStrategyFactory(StaticFactory(strategy)))
	require.NoError(t, err)

	s, err := api.InitNewServerWithWallet(cfg, m, w, t)
	require.NoError(t, err)

	router.Init(s)

	return s
}

// StaticFactory returns a StrategyFactory that validates cfg and always yields strategy.
func StaticFactory(strategy signer.Strategy) wallet.StrategyFactory {
	return func(cfg config.StrategyConfig) (signer.Strategy, error) {
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return strategy, nil
	}
}

func KMSConfig() *config.KMSConfig {
	return &config.KMSConfig{
		AccessKeyID:     "mockedAwsAccessKeyId",
		SecretAccessKey: "mockedAwsSecretAccessKey",
		Region:          "eu-north-1",
		KeyID:           "mockedKeyId",
	}
}

// PerformRequest runs method path against the server's echo instance. body is JSON encoded
// unless it is nil.
func PerformRequest(t *testing.T, s *api.Server, method string, path string, body interface{}, headers http.Header) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}

	req := httptest.NewRequest(method, path, reader)
	for k, v := range headers {
		req.Header[k] = v
	}
	if body != nil && req.Header.Get(echo.HeaderContentType) == "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	res := httptest.NewRecorder()
	s.Echo.ServeHTTP(res, req)

	return res
}

// ParseResponseAndValidate decodes a JSON response body into v.
func ParseResponseAndValidate(t *testing.T, res *httptest.ResponseRecorder, v interface{}) {
	t.Helper()

	require.NoError(t, json.NewDecoder(res.Body).Decode(v))
}

package api

import (
	"context"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/prometheus/client_golang/prometheus"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/metrics"
	"github/chapool/custody-signer/internal/wallet"
)

// PROVIDERS - define here only providers that for various reasons (e.g. cyclic dependency) can't live in their corresponding packages
// or for wrapping providers that only accept sub-configs to prevent the requirements for defining providers for sub-configs.
// https://github.com/google/wire/blob/main/docs/guide.md#defining-providers

func NewClock(t ...*testing.T) time2.Clock {
	var clock time2.Clock

	useMock := len(t) > 0 && t[0] != nil

	if useMock {
		clock = time2.NewMockClock(time.Now())
	} else {
		clock = time2.DefaultClock
	}

	return clock
}

func NewMetrics() *metrics.Service {
	return metrics.NewService(prometheus.NewRegistry())
}

//nolint:ireturn
func NewWallet(cfg config.Server, metrics *metrics.Service, clock time2.Clock) (wallet.Service, error) {
	return wallet.Initialize(context.Background(), cfg.Signer, metrics, clock)
}

func NoTest() []*testing.T {
	return nil
}

package wallet

import (
	"context"
	"io"
	"sync/atomic"

	"github.com/dropbox/godropbox/time2"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/metrics"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet/signer"
)

// ErrServiceClosed is returned by Sign and SetConfig after Close.
var ErrServiceClosed = errors.New("wallet service closed")

// Service is the custodial signing facade. It holds one active config and the
// strategy built from it.
type Service interface {
	// Sign signs message with the active strategy.
	Sign(ctx context.Context, message []byte) ([]byte, error)

	// SignTransaction delegates req to the active strategy.
	SignTransaction(ctx context.Context, req *signer.Request) ([]byte, error)

	// GetConfig returns the active config.
	GetConfig() config.StrategyConfig

	// SetConfig builds a strategy for cfg and replaces the active pair. On error
	// the previous pair stays active.
	SetConfig(cfg config.StrategyConfig) error

	// Close releases the active strategy.
	Close() error
}

type service struct {
	current atomic.Pointer[active]
	factory StrategyFactory
	metrics *metrics.Service
	clock   time2.Clock
}

type Option func(*service)

// WithStrategyFactory replaces NewStrategy.
func WithStrategyFactory(factory StrategyFactory) Option {
	return func(s *service) {
		s.factory = factory
	}
}

// NewService creates a new wallet Service with cfg as the active config.
//
//nolint:ireturn // Returning interface is intentional for dependency injection
func NewService(cfg config.StrategyConfig, metrics *metrics.Service, clock time2.Clock, opts ...Option) (Service, error) {
	s := &service{
		factory: NewStrategy,
		metrics: metrics,
		clock:   clock,
	}

	for _, opt := range opts {
		opt(s)
	}

	pair, err := s.build(cfg)
	if err != nil {
		return nil, err
	}
	s.current.Store(pair)

	return s, nil
}

func (s *service) Sign(ctx context.Context, message []byte) ([]byte, error) {
	return s.SignTransaction(ctx, signer.NewRequest(message))
}

func (s *service) SignTransaction(ctx context.Context, req *signer.Request) ([]byte, error) {
	pair := s.current.Load()
	if pair == nil {
		return nil, ErrServiceClosed
	}

	log := util.LogFromContext(ctx).With().
		Str("backend", pair.backend()).
		Int("message_len", req.Len()).
		Logger()

	start := s.clock.Now()
	sig, err := pair.strategy.Sign(ctx, req)
	took := s.clock.Now().Sub(start)

	s.metrics.ObserveSign(pair.backend(), took, err)

	if err != nil {
		log.Error().Err(err).Dur("took", took).Msg("Failed to sign")
		return nil, err
	}

	log.Debug().Dur("took", took).Int("signature_len", len(sig)).Msg("Signed")

	return sig, nil
}

//nolint:ireturn
func (s *service) GetConfig() config.StrategyConfig {
	pair := s.current.Load()
	if pair == nil {
		return nil
	}

	return pair.config
}

func (s *service) SetConfig(cfg config.StrategyConfig) error {
	if s.current.Load() == nil {
		return ErrServiceClosed
	}

	pair, err := s.build(cfg)
	if err != nil {
		return err
	}

	// Close may land while the strategy is being built.
	var old *active
	for {
		old = s.current.Load()
		if old == nil {
			if err := release(pair); err != nil {
				log.Warn().Err(err).Msg("Failed to release strategy built after close")
			}
			return ErrServiceClosed
		}

		if s.current.CompareAndSwap(old, pair) {
			break
		}
	}

	s.metrics.ConfigSwaps.Inc()

	log.Info().
		Str("backend", pair.backend()).
		Str("previous_backend", old.backend()).
		Msg("Replaced signing strategy")

	return release(old)
}

func (s *service) Close() error {
	return release(s.current.Swap(nil))
}

func (s *service) build(cfg config.StrategyConfig) (*active, error) {
	strategy, err := s.factory(cfg)
	if err != nil {
		return nil, errors.Wrap(err, "failed to build signing strategy")
	}

	return &active{
		config:   cfg,
		strategy: strategy,
	}, nil
}

// release closes strategies that own resources. In-flight signs on the
// released strategy are not waited for.
func release(pair *active) error {
	if pair == nil {
		return nil
	}

	if closer, ok := pair.strategy.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			return errors.Wrapf(err, "failed to close %s strategy", pair.backend())
		}
	}

	return nil
}

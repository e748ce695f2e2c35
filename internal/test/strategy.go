package test

import (
	"context"
	"sync"

	"github/chapool/custody-signer/internal/wallet/signer"
)

// FakeStrategy records every signed message and returns a fixed signature or error.
type FakeStrategy struct {
	Signature []byte
	Err       error

	mu       sync.Mutex
	messages [][]byte
}

func (f *FakeStrategy) Sign(_ context.Context, req *signer.Request) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.messages = append(f.messages, req.Bytes())
	if f.Err != nil {
		return nil, f.Err
	}

	return f.Signature, nil
}

func (f *FakeStrategy) Messages() [][]byte {
	f.mu.Lock()
	defer f.mu.Unlock()

	return append([][]byte(nil), f.messages...)
}

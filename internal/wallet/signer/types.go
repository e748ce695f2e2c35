package signer

import "context"

// Strategy signs message bytes through one custodial backend and returns
// the backend signature normalized to raw bytes.
type Strategy interface {
	Sign(ctx context.Context, req *Request) ([]byte, error)
}

// Request wraps the bytes to be signed. It is read-only after construction.
type Request struct {
	message []byte
}

// NewRequest copies message so later caller mutations do not leak into the request.
func NewRequest(message []byte) *Request {
	msg := make([]byte, len(message))
	copy(msg, message)

	return &Request{message: msg}
}

// Bytes returns a copy of the message bytes.
func (r *Request) Bytes() []byte {
	msg := make([]byte, len(r.message))
	copy(msg, r.message)
	return msg
}

// Len returns the message length.
func (r *Request) Len() int {
	return len(r.message)
}

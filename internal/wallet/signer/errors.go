package signer

import "github.com/pkg/errors"

var (
	// ErrBackendUnavailable covers transport and auth failures calling the remote service.
	ErrBackendUnavailable = errors.New("signing backend unavailable")
	// ErrSignatureMissing is returned when a backend reached success but carried no signature.
	ErrSignatureMissing = errors.New("signature missing from backend response")
	// ErrSigning is returned when a backend response is structurally incomplete.
	ErrSigning = errors.New("signing error")
	// ErrSigningFailed is returned when the backend explicitly reports failure.
	ErrSigningFailed = errors.New("backend reported signing failure")
	// ErrSigningTimeout is returned when the retry budget is exhausted while still pending.
	// The backend operation is not cancelled.
	ErrSigningTimeout = errors.New("signing operation did not complete within retry budget")
)

// BackendError pairs a taxonomy sentinel with the underlying cause. errors.Is
// matches both, so callers can still detect context.Canceled and friends.
type BackendError struct {
	Kind  error
	Op    string
	Cause error
}

// NewBackendError returns cause tagged with kind. A nil cause returns kind wrapped with op.
func NewBackendError(kind error, cause error, op string) error {
	if cause == nil {
		return errors.Wrap(kind, op)
	}

	return &BackendError{Kind: kind, Op: op, Cause: cause}
}

func (e *BackendError) Error() string {
	return e.Op + ": " + e.Kind.Error() + ": " + e.Cause.Error()
}

func (e *BackendError) Unwrap() []error {
	return []error{e.Kind, e.Cause}
}

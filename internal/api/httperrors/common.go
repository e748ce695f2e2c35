package httperrors

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/types"
	"github/chapool/custody-signer/internal/util"
	"github/chapool/custody-signer/internal/wallet"
	"github/chapool/custody-signer/internal/wallet/signature"
	"github/chapool/custody-signer/internal/wallet/signer"
)

var (
	ErrBackendUnavailable = NewHTTPError(http.StatusBadGateway, types.PublicHTTPErrorTypeBACKENDUNAVAILABLE, "The signing backend could not be reached.")
	ErrSigningFailed      = NewHTTPError(http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeSIGNINGFAILED, "The signing backend rejected the request.")
	ErrSigningTimeout     = NewHTTPError(http.StatusGatewayTimeout, types.PublicHTTPErrorTypeSIGNINGTIMEOUT, "The signing backend did not complete in time.")
	ErrSigning            = NewHTTPError(http.StatusBadGateway, types.PublicHTTPErrorTypeSIGNINGERROR, "The signing backend returned an incomplete signature.")
	ErrServiceClosed      = NewHTTPError(http.StatusServiceUnavailable, types.PublicHTTPErrorTypeSERVICECLOSED, "The signing service is shutting down.")
)

type HTTPError struct {
	types.PublicHTTPError
	Internal error `json:"-"`
}

func NewHTTPError(code int, errorType types.PublicHTTPErrorType, title string) *HTTPError {
	return &HTTPError{
		PublicHTTPError: types.PublicHTTPError{
			Code:  int64(code),
			Type:  errorType,
			Title: title,
		},
	}
}

func (e *HTTPError) Error() string {
	var b string
	if len(e.Type) > 0 {
		b = fmt.Sprintf("HTTPError %d (%s): %s", e.Code, e.Type, e.Title)
	} else {
		b = fmt.Sprintf("HTTPError %d: %s", e.Code, e.Title)
	}

	if e.Internal != nil {
		b = fmt.Sprintf("%s, %v", b, e.Internal)
	}

	return b
}

// WithInternal returns a copy of e carrying err for logging. err is never sent to clients.
func (e *HTTPError) WithInternal(err error) *HTTPError {
	c := *e
	c.Internal = err
	return &c
}

// FromSigningError maps the signing error taxonomy to public HTTP errors.
// Unknown errors are returned unchanged and end up as 500.
func FromSigningError(err error) error {
	var mapped *HTTPError

	switch {
	case errors.Is(err, wallet.ErrServiceClosed):
		mapped = ErrServiceClosed
	case errors.Is(err, signer.ErrSigningFailed):
		mapped = ErrSigningFailed
	case errors.Is(err, signer.ErrSigningTimeout):
		mapped = ErrSigningTimeout
	case errors.Is(err, signer.ErrBackendUnavailable):
		mapped = ErrBackendUnavailable
	case errors.Is(err, signer.ErrSigning),
		errors.Is(err, signer.ErrSignatureMissing),
		errors.Is(err, signature.ErrMalformedSignature):
		mapped = ErrSigning
	default:
		return err
	}

	return mapped.WithInternal(err)
}

// HTTPErrorHandler writes *HTTPError and *echo.HTTPError as PublicHTTPError JSON.
func HTTPErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	log := util.LogFromEchoContext(c)

	var body types.PublicHTTPError
	var httpErr *HTTPError
	var echoErr *echo.HTTPError

	switch {
	case errors.As(err, &httpErr):
		body = httpErr.PublicHTTPError
	case errors.As(err, &echoErr):
		body = types.PublicHTTPError{
			Code:  int64(echoErr.Code),
			Type:  types.PublicHTTPErrorTypeGeneric,
			Title: http.StatusText(echoErr.Code),
		}
		if msg, ok := echoErr.Message.(string); ok {
			body.Title = msg
		}
	default:
		body = types.PublicHTTPError{
			Code:  http.StatusInternalServerError,
			Type:  types.PublicHTTPErrorTypeGeneric,
			Title: http.StatusText(http.StatusInternalServerError),
		}
	}

	if body.Code >= http.StatusInternalServerError {
		log.Error().Err(err).Int64("status", body.Code).Msg("Request failed")
	} else {
		log.Debug().Err(err).Int64("status", body.Code).Msg("Request failed")
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(int(body.Code))
	} else {
		err = c.JSON(int(body.Code), body)
	}
	if err != nil {
		log.Error().Err(err).Msg("Failed to write error response")
	}
}

package signer_test

import (
	"net/http"
	"testing"

	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/custody-signer/internal/api"
	"github/chapool/custody-signer/internal/test"
	"github/chapool/custody-signer/internal/types"
	"github/chapool/custody-signer/internal/wallet/signer"
)

func TestPostSign(t *testing.T) {
	strategy := &test.FakeStrategy{Signature: []byte{0xde, 0xad, 0xbe, 0xef}}

	test.WithTestServer(t, strategy, func(s *api.Server) {
		payload := map[string]interface{}{"message": "0x010203"}

		res := test.PerformRequest(t, s, "POST", "/api/v1/sign", payload, nil)
		require.Equal(t, http.StatusOK, res.Result().StatusCode)

		var response types.SignResponse
		test.ParseResponseAndValidate(t, res, &response)

		assert.Equal(t, "0xdeadbeef", swag.StringValue(response.Signature))
		assert.Equal(t, "kms", swag.StringValue(response.Backend))
		assert.Equal(t, [][]byte{{1, 2, 3}}, strategy.Messages())
	})
}

func TestPostSignInvalidPayload(t *testing.T) {
	strategy := &test.FakeStrategy{Signature: []byte{1}}

	test.WithTestServer(t, strategy, func(s *api.Server) {
		res := test.PerformRequest(t, s, "POST", "/api/v1/sign", map[string]interface{}{}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		res = test.PerformRequest(t, s, "POST", "/api/v1/sign", map[string]interface{}{"message": "0xnothex"}, nil)
		assert.Equal(t, http.StatusBadRequest, res.Result().StatusCode)

		assert.Empty(t, strategy.Messages())
	})
}

func TestPostSignBackendErrors(t *testing.T) {
	tests := []struct {
		err       error
		code      int
		errorType types.PublicHTTPErrorType
	}{
		{errors.Wrap(signer.ErrBackendUnavailable, "kms sign"), http.StatusBadGateway, types.PublicHTTPErrorTypeBACKENDUNAVAILABLE},
		{errors.Wrap(signer.ErrSigningFailed, "dfns"), http.StatusUnprocessableEntity, types.PublicHTTPErrorTypeSIGNINGFAILED},
		{errors.Wrap(signer.ErrSigningTimeout, "fireblocks"), http.StatusGatewayTimeout, types.PublicHTTPErrorTypeSIGNINGTIMEOUT},
	}

	for _, tt := range tests {
		t.Run(string(tt.errorType), func(t *testing.T) {
			test.WithTestServer(t, &test.FakeStrategy{Err: tt.err}, func(s *api.Server) {
				res := test.PerformRequest(t, s, "POST", "/api/v1/sign", map[string]interface{}{"message": "01"}, nil)
				require.Equal(t, tt.code, res.Result().StatusCode)

				var response types.PublicHTTPError
				test.ParseResponseAndValidate(t, res, &response)
				assert.Equal(t, tt.errorType, response.Type)
				assert.Equal(t, int64(tt.code), response.Code)
				assert.NotContains(t, response.Title, "kms sign")
			})
		})
	}
}

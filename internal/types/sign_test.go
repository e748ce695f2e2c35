package types_test

import (
	"testing"

	"github.com/go-openapi/swag"
	"github.com/stretchr/testify/assert"
	"github/chapool/custody-signer/internal/types"
)

func TestPostSignPayloadValidate(t *testing.T) {
	assert.Error(t, (&types.PostSignPayload{}).Validate())
	assert.Error(t, (&types.PostSignPayload{Message: swag.String("0xzz")}).Validate())

	payload := &types.PostSignPayload{Message: swag.String("0x010203")}
	assert.NoError(t, payload.Validate())
	assert.Equal(t, []byte{1, 2, 3}, payload.MessageBytes())

	payload = &types.PostSignPayload{Message: swag.String("")}
	assert.NoError(t, payload.Validate())
	assert.Empty(t, payload.MessageBytes())
}

func TestSignResponseValidate(t *testing.T) {
	assert.Error(t, (&types.SignResponse{Backend: swag.String("kms")}).Validate())
	assert.NoError(t, (&types.SignResponse{Signature: swag.String("0x01"), Backend: swag.String("kms")}).Validate())
	assert.Error(t, (&types.GetConfigResponse{}).Validate())
}

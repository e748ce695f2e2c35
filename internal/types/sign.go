package types

import (
	"github.com/go-openapi/swag"
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/util"
)

// PostSignPayload is the body of POST /api/v1/sign.
type PostSignPayload struct {
	// Message is the hex encoded message, with or without 0x prefix.
	Message *string `json:"message"`
}

func (m *PostSignPayload) Validate() error {
	if m.Message == nil {
		return errors.New("message is required")
	}
	if _, err := util.HexToBytes(*m.Message); err != nil {
		return errors.Wrap(err, "message must be hex encoded")
	}

	return nil
}

// MessageBytes returns the decoded message. Validate must have succeeded.
func (m *PostSignPayload) MessageBytes() []byte {
	b, _ := util.HexToBytes(swag.StringValue(m.Message))
	return b
}

type SignResponse struct {
	// Signature is the 0x prefixed hex encoded raw signature.
	Signature *string `json:"signature"`
	Backend   *string `json:"backend"`
}

func (m *SignResponse) Validate() error {
	if swag.StringValue(m.Signature) == "" {
		return errors.New("signature is required")
	}
	if swag.StringValue(m.Backend) == "" {
		return errors.New("backend is required")
	}

	return nil
}

type GetConfigResponse struct {
	Backend *string `json:"backend"`
}

func (m *GetConfigResponse) Validate() error {
	if swag.StringValue(m.Backend) == "" {
		return errors.New("backend is required")
	}

	return nil
}

package dfns

import "context"

type SignatureKind string

const (
	SignatureKindHash    SignatureKind = "Hash"
	SignatureKindMessage SignatureKind = "Message"
)

type SignatureStatus string

const (
	SignatureStatusPending   SignatureStatus = "Pending"
	SignatureStatusExecuting SignatureStatus = "Executing"
	SignatureStatusSigned    SignatureStatus = "Signed"
	SignatureStatusConfirmed SignatureStatus = "Confirmed"
	SignatureStatusFailed    SignatureStatus = "Failed"
	SignatureStatusRejected  SignatureStatus = "Rejected"
)

// GenerateSignatureRequest is the body of POST /wallets/{walletId}/signatures.
// Hash is set for SignatureKindHash, Message for SignatureKindMessage.
type GenerateSignatureRequest struct {
	Kind    SignatureKind `json:"kind"`
	Hash    string        `json:"hash,omitempty"`
	Message string        `json:"message,omitempty"`
}

type Signature struct {
	R       string `json:"r"`
	S       string `json:"s"`
	Recid   int    `json:"recid,omitempty"`
	Encoded string `json:"encoded,omitempty"`
}

type SignatureRequest struct {
	ID            string                    `json:"id"`
	WalletID      string                    `json:"walletId"`
	Status        SignatureStatus           `json:"status"`
	RequestBody   *GenerateSignatureRequest `json:"requestBody,omitempty"`
	Signature     *Signature                `json:"signature,omitempty"`
	Reason        string                    `json:"reason,omitempty"`
	DateRequested string                    `json:"dateRequested,omitempty"`
}

// API is the part of the DFNS wallets API used by the strategy.
type API interface {
	GenerateSignature(ctx context.Context, walletID string, body *GenerateSignatureRequest) (*SignatureRequest, error)
	GetSignature(ctx context.Context, walletID string, signatureID string) (*SignatureRequest, error)
}

type userActionInitRequest struct {
	UserActionPayload    string `json:"userActionPayload"`
	UserActionHTTPMethod string `json:"userActionHttpMethod"`
	UserActionHTTPPath   string `json:"userActionHttpPath"`
	UserActionServerKind string `json:"userActionServerKind"`
}

type userActionChallenge struct {
	Challenge           string `json:"challenge"`
	ChallengeIdentifier string `json:"challengeIdentifier"`
}

type clientData struct {
	Type        string `json:"type"`
	Challenge   string `json:"challenge"`
	Origin      string `json:"origin"`
	CrossOrigin bool   `json:"crossOrigin"`
}

type credentialAssertion struct {
	CredID     string `json:"credId"`
	ClientData string `json:"clientData"`
	Signature  string `json:"signature"`
}

type firstFactor struct {
	Kind                string              `json:"kind"`
	CredentialAssertion credentialAssertion `json:"credentialAssertion"`
}

type userActionRequest struct {
	ChallengeIdentifier string      `json:"challengeIdentifier"`
	FirstFactor         firstFactor `json:"firstFactor"`
}

type userActionResponse struct {
	UserAction string `json:"userAction"`
}

type nonce struct {
	UUID string `json:"uuid"`
	Date string `json:"date"`
}

package fireblocks

import "context"

type TransactionStatus string

const (
	TransactionStatusSubmitted            TransactionStatus = "SUBMITTED"
	TransactionStatusPendingAuthorization TransactionStatus = "PENDING_AUTHORIZATION"
	TransactionStatusPendingSignature     TransactionStatus = "PENDING_SIGNATURE"
	TransactionStatusQueued               TransactionStatus = "QUEUED"
	TransactionStatusBroadcasting         TransactionStatus = "BROADCASTING"
	TransactionStatusCompleted            TransactionStatus = "COMPLETED"
	TransactionStatusFailed               TransactionStatus = "FAILED"
	TransactionStatusCancelled            TransactionStatus = "CANCELLED"
	TransactionStatusRejected             TransactionStatus = "REJECTED"
	TransactionStatusBlocked              TransactionStatus = "BLOCKED"
)

// Failed reports whether the status is a terminal non-success state.
func (s TransactionStatus) Failed() bool {
	switch s {
	case TransactionStatusFailed, TransactionStatusCancelled, TransactionStatusRejected, TransactionStatusBlocked:
		return true
	default:
		return false
	}
}

const (
	OperationRaw         = "RAW"
	PeerTypeVaultAccount = "VAULT_ACCOUNT"
)

type TransferPeerPath struct {
	Type string `json:"type"`
	ID   string `json:"id"`
}

type RawMessage struct {
	Content string `json:"content"`
}

type RawMessageData struct {
	Messages []RawMessage `json:"messages"`
}

type ExtraParameters struct {
	RawMessageData RawMessageData `json:"rawMessageData"`
}

// CreateTransactionRequest is the body of POST /v1/transactions.
type CreateTransactionRequest struct {
	Operation       string           `json:"operation"`
	AssetID         string           `json:"assetId"`
	Source          TransferPeerPath `json:"source"`
	ExternalTxID    string           `json:"externalTxId,omitempty"`
	Note            string           `json:"note,omitempty"`
	ExtraParameters ExtraParameters  `json:"extraParameters"`
}

type CreateTransactionResponse struct {
	ID     string            `json:"id"`
	Status TransactionStatus `json:"status"`
}

type MessageSignature struct {
	FullSig string `json:"fullSig"`
	R       string `json:"r,omitempty"`
	S       string `json:"s,omitempty"`
	V       int    `json:"v,omitempty"`
}

type SignedMessage struct {
	Content        string            `json:"content"`
	Algorithm      string            `json:"algorithm,omitempty"`
	DerivationPath []int             `json:"derivationPath,omitempty"`
	PublicKey      string            `json:"publicKey,omitempty"`
	Signature      *MessageSignature `json:"signature,omitempty"`
}

type TransactionResponse struct {
	ID             string            `json:"id"`
	ExternalTxID   string            `json:"externalTxId,omitempty"`
	Status         TransactionStatus `json:"status"`
	SubStatus      string            `json:"subStatus,omitempty"`
	SignedMessages []SignedMessage   `json:"signedMessages,omitempty"`
}

// API is the part of the Fireblocks transactions API used by the strategy.
type API interface {
	CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResponse, error)
	GetTransaction(ctx context.Context, txID string) (*TransactionResponse, error)
}

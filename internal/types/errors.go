package types

type PublicHTTPErrorType string

const (
	PublicHTTPErrorTypeGeneric            PublicHTTPErrorType = "generic"
	PublicHTTPErrorTypeBACKENDUNAVAILABLE PublicHTTPErrorType = "BACKEND_UNAVAILABLE"
	PublicHTTPErrorTypeSIGNINGFAILED      PublicHTTPErrorType = "SIGNING_FAILED"
	PublicHTTPErrorTypeSIGNINGTIMEOUT     PublicHTTPErrorType = "SIGNING_TIMEOUT"
	PublicHTTPErrorTypeSIGNINGERROR       PublicHTTPErrorType = "SIGNING_ERROR"
	PublicHTTPErrorTypeSERVICECLOSED      PublicHTTPErrorType = "SERVICE_CLOSED"
)

// PublicHTTPError is the JSON body of every error response.
type PublicHTTPError struct {
	Code   int64               `json:"status"`
	Title  string              `json:"title"`
	Type   PublicHTTPErrorType `json:"type"`
	Detail string              `json:"detail,omitempty"`
}

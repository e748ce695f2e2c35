package dfns

import (
	"bytes"
	"context"
	"crypto"
	"crypto/ed25519"
	"crypto/rand"
	"crypto/sha256"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/config"
)

const (
	headerAppID      = "X-DFNS-APPID"
	headerNonce      = "X-DFNS-NONCE"
	headerUserAction = "X-DFNS-USERACTION"

	defaultHTTPTimeout = 30 * time.Second
)

var _ API = (*Client)(nil)

// Client talks to the DFNS REST API as a service account. Mutating requests are
// authorized with a user action signed by the service account key.
type Client struct {
	baseURL    string
	appID      string
	appOrigin  string
	authToken  string
	credID     string
	key        crypto.Signer
	httpClient *http.Client
	clock      time2.Clock
}

type ClientOption func(*Client)

func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

func WithClock(clock time2.Clock) ClientOption {
	return func(c *Client) {
		c.clock = clock
	}
}

func NewClient(cfg *config.DFNSConfig, opts ...ClientOption) (*Client, error) {
	key, err := ParsePrivateKey(cfg.ServiceAccountPrivateKey)
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse dfns service account private key")
	}

	c := &Client{
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		appID:      cfg.AppID,
		appOrigin:  cfg.AppOrigin,
		authToken:  cfg.ServiceAccountAuthToken,
		credID:     cfg.ServiceAccountCredentialID,
		key:        key,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		clock:      time2.DefaultClock,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// ParsePrivateKey accepts a PKCS#8, SEC1 or PKCS#1 PEM block.
func ParsePrivateKey(pemKey string) (crypto.Signer, error) {
	block, _ := pem.Decode([]byte(pemKey))
	if block == nil {
		return nil, errors.New("no PEM block found")
	}

	if key, err := x509.ParsePKCS8PrivateKey(block.Bytes); err == nil {
		signer, ok := key.(crypto.Signer)
		if !ok {
			return nil, errors.Errorf("unsupported private key type %T", key)
		}
		return signer, nil
	}
	if key, err := x509.ParseECPrivateKey(block.Bytes); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS1PrivateKey(block.Bytes); err == nil {
		return key, nil
	}

	return nil, errors.Errorf("unsupported PEM block %q", block.Type)
}

func (c *Client) GenerateSignature(ctx context.Context, walletID string, body *GenerateSignatureRequest) (*SignatureRequest, error) {
	path := fmt.Sprintf("/wallets/%s/signatures", url.PathEscape(walletID))

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal signature request")
	}

	userAction, err := c.userAction(ctx, http.MethodPost, path, payload)
	if err != nil {
		return nil, err
	}

	var res SignatureRequest
	if err := c.do(ctx, http.MethodPost, path, payload, userAction, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *Client) GetSignature(ctx context.Context, walletID string, signatureID string) (*SignatureRequest, error) {
	path := fmt.Sprintf("/wallets/%s/signatures/%s", url.PathEscape(walletID), url.PathEscape(signatureID))

	var res SignatureRequest
	if err := c.do(ctx, http.MethodGet, path, nil, "", &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *Client) userAction(ctx context.Context, method string, path string, payload []byte) (string, error) {
	initBody, err := json.Marshal(userActionInitRequest{
		UserActionPayload:    string(payload),
		UserActionHTTPMethod: method,
		UserActionHTTPPath:   path,
		UserActionServerKind: "Api",
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal user action init")
	}

	var challenge userActionChallenge
	if err := c.do(ctx, http.MethodPost, "/auth/action/init", initBody, "", &challenge); err != nil {
		return "", errors.Wrap(err, "failed to init user action")
	}

	data, err := json.Marshal(clientData{
		Type:        "key.get",
		Challenge:   challenge.Challenge,
		Origin:      c.appOrigin,
		CrossOrigin: false,
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal client data")
	}

	sig, err := c.sign(data)
	if err != nil {
		return "", errors.Wrap(err, "failed to sign user action challenge")
	}

	actionBody, err := json.Marshal(userActionRequest{
		ChallengeIdentifier: challenge.ChallengeIdentifier,
		FirstFactor: firstFactor{
			Kind: "Key",
			CredentialAssertion: credentialAssertion{
				CredID:     c.credID,
				ClientData: base64.RawURLEncoding.EncodeToString(data),
				Signature:  base64.RawURLEncoding.EncodeToString(sig),
			},
		},
	})
	if err != nil {
		return "", errors.Wrap(err, "failed to marshal user action")
	}

	var res userActionResponse
	if err := c.do(ctx, http.MethodPost, "/auth/action", actionBody, "", &res); err != nil {
		return "", errors.Wrap(err, "failed to complete user action")
	}
	if res.UserAction == "" {
		return "", errors.New("dfns returned an empty user action token")
	}

	return res.UserAction, nil
}

// sign signs data with the service account key. Ed25519 signs the message
// itself, every other key type signs its sha256 digest.
func (c *Client) sign(data []byte) ([]byte, error) {
	if _, ok := c.key.(ed25519.PrivateKey); ok {
		return c.key.Sign(rand.Reader, data, crypto.Hash(0))
	}

	digest := sha256.Sum256(data)
	return c.key.Sign(rand.Reader, digest[:], crypto.SHA256)
}

func (c *Client) nonce() (string, error) {
	b, err := json.Marshal(nonce{
		UUID: uuid.NewString(),
		Date: c.clock.Now().UTC().Format(time.RFC3339Nano),
	})
	if err != nil {
		return "", err
	}

	return base64.RawURLEncoding.EncodeToString(b), nil
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte, userAction string, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build dfns request %s %s", method, path)
	}

	n, err := c.nonce()
	if err != nil {
		return errors.Wrap(err, "failed to build dfns nonce")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.authToken)
	req.Header.Set(headerAppID, c.appID)
	req.Header.Set(headerNonce, n)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if userAction != "" {
		req.Header.Set(headerUserAction, userAction)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "dfns %s %s", method, path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read dfns response %s %s", method, path)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errors.Errorf("dfns %s %s: unexpected status %d: %s", method, path, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode dfns response %s %s", method, path)
	}

	return nil
}

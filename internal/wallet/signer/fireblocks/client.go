package fireblocks

import (
	"bytes"
	"context"
	"crypto/rsa"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github/chapool/custody-signer/internal/config"
)

const (
	headerAPIKey = "X-API-Key"

	tokenLifetime      = 55 * time.Second
	defaultHTTPTimeout = 30 * time.Second
)

// Claims is the per-request JWT payload expected by the Fireblocks API.
type Claims struct {
	jwt.RegisteredClaims
	URI      string `json:"uri"`
	Nonce    string `json:"nonce"`
	BodyHash string `json:"bodyHash"`
}

var _ API = (*Client)(nil)

// Client calls the Fireblocks REST API. Every request carries a fresh RS256 JWT
// signed with the api secret key.
type Client struct {
	baseURL    *url.URL
	apiKey     string
	secretKey  *rsa.PrivateKey
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

func NewClient(cfg *config.FireblocksConfig, opts ...ClientOption) (*Client, error) {
	secretKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(cfg.APISecretKey))
	if err != nil {
		return nil, errors.Wrap(err, "failed to parse fireblocks api secret key")
	}

	baseURL, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, errors.Wrapf(err, "invalid fireblocks base url %q", cfg.BaseURL)
	}

	c := &Client{
		baseURL:    baseURL,
		apiKey:     cfg.APIKey,
		secretKey:  secretKey,
		httpClient: &http.Client{Timeout: defaultHTTPTimeout},
		clock:      time2.DefaultClock,
	}

	for _, opt := range opts {
		opt(c)
	}

	return c, nil
}

// CreateTransaction fills in a uuid externalTxId when the caller left it empty.
func (c *Client) CreateTransaction(ctx context.Context, req *CreateTransactionRequest) (*CreateTransactionResponse, error) {
	payload := *req
	if payload.ExternalTxID == "" {
		payload.ExternalTxID = uuid.NewString()
	}

	body, err := json.Marshal(&payload)
	if err != nil {
		return nil, errors.Wrap(err, "failed to marshal fireblocks transaction")
	}

	var res CreateTransactionResponse
	if err := c.do(ctx, http.MethodPost, "/transactions", body, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *Client) GetTransaction(ctx context.Context, txID string) (*TransactionResponse, error) {
	var res TransactionResponse
	if err := c.do(ctx, http.MethodGet, "/transactions/"+url.PathEscape(txID), nil, &res); err != nil {
		return nil, err
	}

	return &res, nil
}

func (c *Client) token(uri string, body []byte) (string, error) {
	now := c.clock.Now()
	bodyHash := sha256.Sum256(body)

	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   c.apiKey,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tokenLifetime)),
		},
		URI:      uri,
		Nonce:    uuid.NewString(),
		BodyHash: hex.EncodeToString(bodyHash[:]),
	}

	return jwt.NewWithClaims(jwt.SigningMethodRS256, claims).SignedString(c.secretKey)
}

func (c *Client) do(ctx context.Context, method string, path string, body []byte, out any) error {
	u := c.baseURL.JoinPath(path)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return errors.Wrapf(err, "failed to build fireblocks request %s %s", method, path)
	}

	token, err := c.token(u.RequestURI(), body)
	if err != nil {
		return errors.Wrap(err, "failed to sign fireblocks request token")
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set(headerAPIKey, c.apiKey)
	req.Header.Set("Authorization", "Bearer "+token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrapf(err, "fireblocks %s %s", method, path)
	}
	defer res.Body.Close()

	raw, err := io.ReadAll(res.Body)
	if err != nil {
		return errors.Wrapf(err, "failed to read fireblocks response %s %s", method, path)
	}

	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return errors.Errorf("fireblocks %s %s: unexpected status %d: %s", method, path, res.StatusCode, strings.TrimSpace(string(raw)))
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrapf(err, "failed to decode fireblocks response %s %s", method, path)
	}

	return nil
}

package dfns_test

import (
	"crypto/ed25519"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"encoding/pem"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/dropbox/godropbox/time2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github/chapool/custody-signer/internal/config"
	"github/chapool/custody-signer/internal/wallet/signer/dfns"
)

type fakeDFNS struct {
	t   *testing.T
	pub ed25519.PublicKey

	mu       sync.Mutex
	requests []*http.Request
	bodies   map[string][]byte
}

func (f *fakeDFNS) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	assert.NoError(f.t, err)

	f.mu.Lock()
	f.requests = append(f.requests, r)
	f.bodies[r.Method+" "+r.URL.Path] = body
	f.mu.Unlock()

	assert.Equal(f.t, "Bearer auth-token", r.Header.Get("Authorization"))
	assert.Equal(f.t, "ap-123", r.Header.Get("X-DFNS-APPID"))
	assert.NotEmpty(f.t, r.Header.Get("X-DFNS-NONCE"))

	w.Header().Set("Content-Type", "application/json")

	switch r.Method + " " + r.URL.Path {
	case "POST /auth/action/init":
		_, _ = w.Write([]byte(`{"challenge":"chal-1","challengeIdentifier":"chal-id-1"}`))
	case "POST /auth/action":
		var req struct {
			ChallengeIdentifier string `json:"challengeIdentifier"`
			FirstFactor         struct {
				Kind                string `json:"kind"`
				CredentialAssertion struct {
					CredID     string `json:"credId"`
					ClientData string `json:"clientData"`
					Signature  string `json:"signature"`
				} `json:"credentialAssertion"`
			} `json:"firstFactor"`
		}
		assert.NoError(f.t, json.Unmarshal(body, &req))
		assert.Equal(f.t, "chal-id-1", req.ChallengeIdentifier)
		assert.Equal(f.t, "Key", req.FirstFactor.Kind)
		assert.Equal(f.t, "cr-1", req.FirstFactor.CredentialAssertion.CredID)

		clientData, err := base64.RawURLEncoding.DecodeString(req.FirstFactor.CredentialAssertion.ClientData)
		assert.NoError(f.t, err)
		sig, err := base64.RawURLEncoding.DecodeString(req.FirstFactor.CredentialAssertion.Signature)
		assert.NoError(f.t, err)
		assert.True(f.t, ed25519.Verify(f.pub, clientData, sig))
		assert.JSONEq(f.t, `{"type":"key.get","challenge":"chal-1","origin":"http://localhost:3000","crossOrigin":false}`, string(clientData))

		_, _ = w.Write([]byte(`{"userAction":"ua-token"}`))
	case "POST /wallets/wa-1/signatures":
		assert.Equal(f.t, "ua-token", r.Header.Get("X-DFNS-USERACTION"))
		_, _ = w.Write([]byte(`{"id":"sig-1","walletId":"wa-1","status":"Pending"}`))
	case "GET /wallets/wa-1/signatures/sig-1":
		assert.Empty(f.t, r.Header.Get("X-DFNS-USERACTION"))
		_, _ = w.Write([]byte(`{"id":"sig-1","walletId":"wa-1","status":"Signed","signature":{"r":"0x01","s":"0x02"}}`))
	default:
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"error":{"message":"not found"}}`))
	}
}

func newTestClient(t *testing.T) (*dfns.Client, *fakeDFNS) {
	t.Helper()

	pub, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})

	fake := &fakeDFNS{t: t, pub: pub, bodies: map[string][]byte{}}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	client, err := dfns.NewClient(&config.DFNSConfig{
		ServiceAccountPrivateKey:   string(keyPEM),
		ServiceAccountCredentialID: "cr-1",
		ServiceAccountAuthToken:    "auth-token",
		AppOrigin:                  "http://localhost:3000",
		AppID:                      "ap-123",
		BaseURL:                    srv.URL + "/",
		WalletID:                   "wa-1",
		PublicKey:                  "00",
	}, dfns.WithHTTPClient(srv.Client()), dfns.WithClock(time2.NewMockClock(time.Now())))
	require.NoError(t, err)

	return client, fake
}

func TestClientGenerateSignature(t *testing.T) {
	client, fake := newTestClient(t)

	res, err := client.GenerateSignature(t.Context(), "wa-1", &dfns.GenerateSignatureRequest{
		Kind: dfns.SignatureKindHash,
		Hash: "abcd",
	})
	require.NoError(t, err)

	assert.Equal(t, "sig-1", res.ID)
	assert.Equal(t, dfns.SignatureStatusPending, res.Status)

	require.Len(t, fake.requests, 3)
	assert.Equal(t, "/auth/action/init", fake.requests[0].URL.Path)
	assert.Equal(t, "/auth/action", fake.requests[1].URL.Path)
	assert.Equal(t, "/wallets/wa-1/signatures", fake.requests[2].URL.Path)

	assert.JSONEq(t, `{"kind":"Hash","hash":"abcd"}`, string(fake.bodies["POST /wallets/wa-1/signatures"]))

	var init map[string]any
	require.NoError(t, json.Unmarshal(fake.bodies["POST /auth/action/init"], &init))
	assert.Equal(t, "POST", init["userActionHttpMethod"])
	assert.Equal(t, "/wallets/wa-1/signatures", init["userActionHttpPath"])
	assert.Equal(t, "Api", init["userActionServerKind"])
	assert.JSONEq(t, `{"kind":"Hash","hash":"abcd"}`, init["userActionPayload"].(string))
}

func TestClientGetSignature(t *testing.T) {
	client, fake := newTestClient(t)

	res, err := client.GetSignature(t.Context(), "wa-1", "sig-1")
	require.NoError(t, err)

	assert.Equal(t, dfns.SignatureStatusSigned, res.Status)
	require.NotNil(t, res.Signature)
	assert.Equal(t, "0x01", res.Signature.R)
	assert.Equal(t, "0x02", res.Signature.S)
	assert.Len(t, fake.requests, 1)
}

func TestClientUnexpectedStatus(t *testing.T) {
	client, _ := newTestClient(t)

	_, err := client.GetSignature(t.Context(), "wa-1", "unknown")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 404")
}

func TestNewClientInvalidKey(t *testing.T) {
	_, err := dfns.NewClient(&config.DFNSConfig{ServiceAccountPrivateKey: "not a pem"})
	assert.Error(t, err)
}

func TestParsePrivateKey(t *testing.T) {
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)
	der, err := x509.MarshalPKCS8PrivateKey(priv)
	require.NoError(t, err)

	key, err := dfns.ParsePrivateKey(string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: der})))
	require.NoError(t, err)
	assert.IsType(t, ed25519.PrivateKey{}, key)

	_, err = dfns.ParsePrivateKey(string(pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{1, 2, 3}})))
	assert.Error(t, err)
}

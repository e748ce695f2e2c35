package config

import (
	"maps"
	"slices"

	"github.com/pkg/errors"
)

// ErrInvalidConfig is returned when a strategy configuration misses a required field.
var ErrInvalidConfig = errors.New("invalid strategy config")

// Backend names a custodial signing backend.
type Backend string

const (
	BackendKMS        Backend = "kms"
	BackendDFNS       Backend = "dfns"
	BackendFireblocks Backend = "fireblocks"
)

func (b Backend) String() string {
	return string(b)
}

// StrategyConfig is implemented by *KMSConfig, *DFNSConfig and *FireblocksConfig.
// Each variant carries only what is needed to construct its strategy.
type StrategyConfig interface {
	Backend() Backend
	Validate() error
}

// KMSConfig configures the AWS KMS strategy.
type KMSConfig struct {
	AccessKeyID     string `toml:"access_key_id"`
	SecretAccessKey string `toml:"secret_access_key"`
	Region          string `toml:"region"`
	KeyID           string `toml:"key_id"`
	PublicKey       string `toml:"public_key"` // optional, informational
}

func (c *KMSConfig) Backend() Backend { return BackendKMS }

func (c *KMSConfig) Validate() error {
	return requireFields(BackendKMS, map[string]string{
		"access key id":     c.AccessKeyID,
		"secret access key": c.SecretAccessKey,
		"region":            c.Region,
		"key id":            c.KeyID,
	})
}

// DFNSConfig configures the DFNS asynchronous wallet strategy.
type DFNSConfig struct {
	ServiceAccountPrivateKey   string `toml:"service_account_private_key"`
	ServiceAccountCredentialID string `toml:"service_account_credential_id"`
	ServiceAccountAuthToken    string `toml:"service_account_auth_token"`
	AppOrigin                  string `toml:"app_origin"`
	AppID                      string `toml:"app_id"`
	BaseURL                    string `toml:"base_url"`
	WalletID                   string `toml:"wallet_id"`
	// PublicKey is the hex encoded wallet public key. Its byte length selects EdDSA or ECDSA signing.
	PublicKey string `toml:"public_key"`
}

func (c *DFNSConfig) Backend() Backend { return BackendDFNS }

func (c *DFNSConfig) Validate() error {
	return requireFields(BackendDFNS, map[string]string{
		"service account private key":   c.ServiceAccountPrivateKey,
		"service account credential id": c.ServiceAccountCredentialID,
		"service account auth token":    c.ServiceAccountAuthToken,
		"app origin":                    c.AppOrigin,
		"app id":                        c.AppID,
		"base url":                      c.BaseURL,
		"wallet id":                     c.WalletID,
		"public key":                    c.PublicKey,
	})
}

// FireblocksConfig configures the Fireblocks raw-signing strategy.
type FireblocksConfig struct {
	APIKey         string `toml:"api_key"`
	APISecretKey   string `toml:"api_secret_key"`
	BaseURL        string `toml:"base_url"`
	VaultAccountID string `toml:"vault_account_id"`
	AssetID        string `toml:"asset_id"`
}

func (c *FireblocksConfig) Backend() Backend { return BackendFireblocks }

func (c *FireblocksConfig) Validate() error {
	return requireFields(BackendFireblocks, map[string]string{
		"api key":          c.APIKey,
		"api secret key":   c.APISecretKey,
		"base url":         c.BaseURL,
		"vault account id": c.VaultAccountID,
		"asset id":         c.AssetID,
	})
}

func requireFields(backend Backend, fields map[string]string) error {
	// deterministic order for error messages
	for _, name := range slices.Sorted(maps.Keys(fields)) {
		if fields[name] == "" {
			return errors.Wrapf(ErrInvalidConfig, "%s %s is not set", backend, name)
		}
	}
	return nil
}

package config

import (
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const ModuleName = "custody-signer"

// matches absolute unix or windows style paths, e.g. /run/secrets/dfns.pem
var secretPathRegex = regexp.MustCompile(`^(/[^/]+|\\[^\\]+)+$`)

type EchoServer struct {
	ListenAddress string `json:"listen_address"`
	Debug         bool   `json:"debug"`
}

type LoggerServer struct {
	Level              zerolog.Level `json:"level"`
	PrettyPrintConsole bool          `json:"pretty_print_console"`
}

// SignerServer selects the active backend and carries the settings of every variant.
// Only the selected variant is turned into a StrategyConfig.
type SignerServer struct {
	Backend      Backend          `json:"backend"`
	StrategyFile string           `json:"strategy_file"`
	KMS          KMSConfig        `json:"-"`
	DFNS         DFNSConfig       `json:"-"`
	Fireblocks   FireblocksConfig `json:"-"`
}

type Server struct {
	Echo   EchoServer   `json:"echo"`
	Logger LoggerServer `json:"logger"`
	Signer SignerServer `json:"signer"`
}

// DefaultServiceConfigFromEnv returns the server config as parsed from environment variables
// and their respective defaults defined below.
// A .env file in the working directory is loaded first without overriding the environment.
func DefaultServiceConfigFromEnv() Server {
	if err := gotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Warn().Err(err).Msg("Failed to load .env file")
	}

	v := viper.New()
	v.AutomaticEnv()
	v.SetDefault("SERVER_ECHO_LISTEN_ADDRESS", ":8080")
	v.SetDefault("SERVER_LOGGER_LEVEL", zerolog.InfoLevel.String())
	v.SetDefault("SERVER_LOGGER_PRETTY_PRINT_CONSOLE", false)

	level, err := zerolog.ParseLevel(v.GetString("SERVER_LOGGER_LEVEL"))
	if err != nil {
		log.Warn().Err(err).Msg("Invalid SERVER_LOGGER_LEVEL, falling back to info")
		level = zerolog.InfoLevel
	}

	return Server{
		Echo: EchoServer{
			ListenAddress: v.GetString("SERVER_ECHO_LISTEN_ADDRESS"),
			Debug:         v.GetBool("SERVER_ECHO_DEBUG"),
		},
		Logger: LoggerServer{
			Level:              level,
			PrettyPrintConsole: v.GetBool("SERVER_LOGGER_PRETTY_PRINT_CONSOLE"),
		},
		Signer: SignerServer{
			Backend:      Backend(strings.ToLower(v.GetString("SIGNER_BACKEND"))),
			StrategyFile: v.GetString("SIGNER_STRATEGY_FILE"),
			KMS: KMSConfig{
				AccessKeyID:     v.GetString("AWS_ACCESS_KEY_ID"),
				SecretAccessKey: v.GetString("AWS_SECRET_ACCESS_KEY"),
				Region:          v.GetString("AWS_REGION"),
				KeyID:           v.GetString("AWS_KMS_KEY_ID"),
				PublicKey:       v.GetString("AWS_KMS_PUBLIC_KEY"),
			},
			DFNS: DFNSConfig{
				ServiceAccountPrivateKey:   v.GetString("DFNS_SERVICE_ACCOUNT_PRIVATE_KEY"),
				ServiceAccountCredentialID: v.GetString("DFNS_SERVICE_ACCOUNT_CREDENTIAL_ID"),
				ServiceAccountAuthToken:    v.GetString("DFNS_SERVICE_ACCOUNT_AUTHORIZATION_TOKEN"),
				AppOrigin:                  v.GetString("DFNS_APP_ORIGIN"),
				AppID:                      v.GetString("DFNS_APP_ID"),
				BaseURL:                    v.GetString("DFNS_BASE_URL"),
				WalletID:                   v.GetString("DFNS_WALLET_ID"),
				PublicKey:                  v.GetString("DFNS_WALLET_PUBLIC_KEY"),
			},
			Fireblocks: FireblocksConfig{
				APIKey:         v.GetString("FIREBLOCKS_API_KEY"),
				APISecretKey:   v.GetString("FIREBLOCKS_API_SECRET_KEY"),
				BaseURL:        v.GetString("FIREBLOCKS_BASE_URL"),
				VaultAccountID: v.GetString("FIREBLOCKS_VAULT_ACCOUNT_ID"),
				AssetID:        v.GetString("FIREBLOCKS_ASSET_ID"),
			},
		},
	}
}

// StrategyConfig resolves the selected backend into a validated StrategyConfig.
// If StrategyFile is set it takes precedence over the environment.
// Private key values that look like file paths are replaced by the file contents.
func (s SignerServer) StrategyConfig() (StrategyConfig, error) {
	if s.StrategyFile != "" {
		return LoadStrategyFile(s.StrategyFile)
	}

	var cfg StrategyConfig
	switch s.Backend {
	case BackendKMS:
		c := s.KMS
		cfg = &c
	case BackendDFNS:
		c := s.DFNS
		key, err := resolveSecret(c.ServiceAccountPrivateKey)
		if err != nil {
			return nil, err
		}
		c.ServiceAccountPrivateKey = key
		cfg = &c
	case BackendFireblocks:
		c := s.Fireblocks
		key, err := resolveSecret(c.APISecretKey)
		if err != nil {
			return nil, err
		}
		c.APISecretKey = key
		cfg = &c
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown signer backend %q", s.Backend)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

type strategyFile struct {
	Backend    Backend           `toml:"backend"`
	KMS        *KMSConfig        `toml:"kms"`
	DFNS       *DFNSConfig       `toml:"dfns"`
	Fireblocks *FireblocksConfig `toml:"fireblocks"`
}

// LoadStrategyFile reads a TOML file of the form
//
//	backend = "fireblocks"
//	[fireblocks]
//	api_key = "..."
//
// and returns the validated config of the selected backend.
func LoadStrategyFile(path string) (StrategyConfig, error) {
	var file strategyFile
	if _, err := toml.DecodeFile(path, &file); err != nil {
		return nil, errors.Wrapf(err, "failed to decode strategy file %s", path)
	}

	var cfg StrategyConfig
	switch file.Backend {
	case BackendKMS:
		if file.KMS == nil {
			return nil, errors.Wrap(ErrInvalidConfig, "missing [kms] table")
		}
		cfg = file.KMS
	case BackendDFNS:
		if file.DFNS == nil {
			return nil, errors.Wrap(ErrInvalidConfig, "missing [dfns] table")
		}
		key, err := resolveSecret(file.DFNS.ServiceAccountPrivateKey)
		if err != nil {
			return nil, err
		}
		file.DFNS.ServiceAccountPrivateKey = key
		cfg = file.DFNS
	case BackendFireblocks:
		if file.Fireblocks == nil {
			return nil, errors.Wrap(ErrInvalidConfig, "missing [fireblocks] table")
		}
		key, err := resolveSecret(file.Fireblocks.APISecretKey)
		if err != nil {
			return nil, err
		}
		file.Fireblocks.APISecretKey = key
		cfg = file.Fireblocks
	default:
		return nil, errors.Wrapf(ErrInvalidConfig, "unknown signer backend %q", file.Backend)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func resolveSecret(value string) (string, error) {
	if !secretPathRegex.MatchString(value) {
		return value, nil
	}

	content, err := os.ReadFile(filepath.Clean(value))
	if err != nil {
		return "", errors.Wrapf(err, "failed to read secret file %s", value)
	}
	return string(content), nil
}

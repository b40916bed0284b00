package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

// OAuth holds the credentials for the authorization-code flow.
type OAuth struct {
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Config is the immutable runtime configuration. It is built once at process
// start and passed to constructors; nothing reads it as ambient state.
type Config struct {
	// API key material for the JWT and HMAC schemes.
	KeyName   string
	KeySecret string

	OAuth OAuth

	// AuthScheme selects the fetcher authentication: jwt, hmac or oauth.
	AuthScheme string

	APIHost    string
	APIVersion string

	// DataFolder is where snapshot files are written and read.
	DataFolder string

	// OutputPath is where the processor writes converted ledger files.
	// Empty means alongside the input file.
	OutputPath string
}

// Build loads configuration from .env, an optional YAML config file,
// COINBASE_-prefixed environment variables and flag overrides, in increasing
// order of precedence.
func Build(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	_ = gotenv.Load()

	v := viper.New()
	v.SetDefault("api_host", "api.coinbase.com")
	v.SetDefault("api_version", "v2")
	v.SetDefault("auth_scheme", "jwt")
	v.SetDefault("data_folder", ".")

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("coinbase")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if flags != nil {
		if err := v.BindPFlags(flags); err != nil {
			return nil, fmt.Errorf("binding flags: %w", err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	cfg := &Config{
		KeyName:   v.GetString("api_key_name"),
		KeySecret: v.GetString("api_key_secret"),
		OAuth: OAuth{
			ClientID:     v.GetString("oauth_client_id"),
			ClientSecret: v.GetString("oauth_client_secret"),
			RedirectURI:  v.GetString("oauth_redirect_uri"),
		},
		AuthScheme: v.GetString("auth_scheme"),
		APIHost:    v.GetString("api_host"),
		APIVersion: v.GetString("api_version"),
		DataFolder: v.GetString("data_folder"),
		OutputPath: v.GetString("output_path"),
	}
	return cfg, nil
}

// ValidateFetch checks that the selected auth scheme has its credentials.
func (c *Config) ValidateFetch() error {
	switch c.AuthScheme {
	case "jwt", "hmac":
		if c.KeyName == "" || c.KeySecret == "" {
			return fmt.Errorf("auth scheme %s requires api_key_name and api_key_secret", c.AuthScheme)
		}
	case "oauth":
		if c.OAuth.ClientID == "" || c.OAuth.ClientSecret == "" || c.OAuth.RedirectURI == "" {
			return fmt.Errorf("auth scheme oauth requires oauth_client_id, oauth_client_secret and oauth_redirect_uri")
		}
	default:
		return fmt.Errorf("unknown auth scheme %q", c.AuthScheme)
	}
	return nil
}

package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

// OAuthProvider holds the client configuration for one federated sign-in provider.
type OAuthProvider struct {
	ClientID     string `envconfig:"CLIENT_ID" yaml:"clientId"`
	ClientSecret string `envconfig:"CLIENT_SECRET" yaml:"clientSecret"`
	AuthURL      string `envconfig:"AUTH_URL" yaml:"authUrl"`
	TokenURL     string `envconfig:"TOKEN_URL" yaml:"tokenUrl"`
}

// Config holds application configuration. Environment variables (prefix
// FORUMX_) take precedence over the optional YAML config file, which in turn
// takes precedence over the built-in defaults.
type Config struct {
	APIBaseURL      string        `envconfig:"API_BASE_URL" yaml:"apiBaseUrl"`
	IdentityBaseURL string        `envconfig:"IDENTITY_BASE_URL" yaml:"identityBaseUrl"`
	IdentityAPIKey  string        `envconfig:"IDENTITY_API_KEY" yaml:"identityApiKey"`
	LogLevel        string        `envconfig:"LOG_LEVEL" yaml:"logLevel"`
	HTTPTimeout     time.Duration `envconfig:"HTTP_TIMEOUT" yaml:"httpTimeout"`
	RoleCacheTTL    time.Duration `envconfig:"ROLE_CACHE_TTL" yaml:"roleCacheTtl"`
	SessionFile     string        `envconfig:"SESSION_FILE" yaml:"sessionFile"`
	CallbackPort    int           `envconfig:"CALLBACK_PORT" yaml:"callbackPort"`

	PaymentBaseURL        string `envconfig:"PAYMENT_BASE_URL" yaml:"paymentBaseUrl"`
	PaymentPublishableKey string `envconfig:"PAYMENT_PUBLISHABLE_KEY" yaml:"paymentPublishableKey"`

	UploadURL    string `envconfig:"UPLOAD_URL" yaml:"uploadUrl"`
	UploadPreset string `envconfig:"UPLOAD_PRESET" yaml:"uploadPreset"`

	Google OAuthProvider `envconfig:"GOOGLE" yaml:"google"`
	Github OAuthProvider `envconfig:"GITHUB" yaml:"github"`
}

func defaults() Config {
	return Config{
		APIBaseURL:      "http://localhost:3000",
		IdentityBaseURL: "https://identity.forumx.app",
		LogLevel:        "info",
		HTTPTimeout:     30 * time.Second,
		RoleCacheTTL:    5 * time.Minute,
		CallbackPort:    8765,
		PaymentBaseURL:  "https://api.stripe.com",
	}
}

// Load reads configuration from the optional config file, then overlays
// environment variables on top of it.
func Load() (*Config, error) {
	cfg := defaults()

	path, err := filePath()
	if err == nil {
		if data, readErr := os.ReadFile(path); readErr == nil {
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return nil, fmt.Errorf("parsing config file %s: %w", path, err)
			}
		}
	}

	if err := envconfig.Process("FORUMX", &cfg); err != nil {
		return nil, err
	}

	if cfg.SessionFile == "" {
		cfg.SessionFile = defaultSessionFile()
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	if c.APIBaseURL == "" {
		return fmt.Errorf("apiBaseUrl must be set")
	}
	if c.IdentityBaseURL == "" {
		return fmt.Errorf("identityBaseUrl must be set")
	}
	if c.HTTPTimeout <= 0 {
		return fmt.Errorf("httpTimeout must be positive, got %s", c.HTTPTimeout)
	}
	if c.RoleCacheTTL <= 0 {
		return fmt.Errorf("roleCacheTtl must be positive, got %s", c.RoleCacheTTL)
	}
	return nil
}

// filePath returns the location of the optional YAML config file.
func filePath() (string, error) {
	if p := os.Getenv("FORUMX_CONFIG"); p != "" {
		return p, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", "forumx", "config.yaml"), nil
}

func defaultSessionFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".forumx-session.json"
	}
	return filepath.Join(home, ".config", "forumx", "session.json")
}

package config

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"golang.org/x/term"
)

// Config contains all configuration parameters for the application.
// Cryptographic parameters are not configurable; see internal/crypto.
type Config struct {
	Host         string        `envconfig:"HOST" default:"127.0.0.1"`
	Port         string        `envconfig:"PORT" default:"8080"`
	DBPath       string        `envconfig:"WALLET_DB_PATH" default:"wartwallet.db"`
	PeerURL      string        `envconfig:"PEER_URL" default:"http://localhost:3000"`
	CoinGeckoURL string        `envconfig:"COINGECKO_URL" default:"https://api.coingecko.com/api/v3"`
	WartscanURL  string        `envconfig:"WARTSCAN_URL" default:"https://wartscan.io/api/v1"`
	HTTPTimeout  time.Duration `envconfig:"HTTP_TIMEOUT" default:"15s"`
	LogLevel     string        `envconfig:"LOG_LEVEL" default:"info"`
}

// cfg is the global configuration instance
var cfg *Config

// Init loads configuration from environment variables.
func Init() error {
	c := &Config{}
	if err := envconfig.Process("", c); err != nil {
		return fmt.Errorf("failed to process config: %w", err)
	}
	if c.HTTPTimeout <= 0 {
		return errors.New("HTTP_TIMEOUT must be positive")
	}
	cfg = c
	return nil
}

// Get returns the global configuration instance.
// Panics if Init() was not called.
func Get() *Config {
	if cfg == nil {
		panic("config not initialized, call Init() first")
	}
	return cfg
}

// GetListenAddr returns host:port for the local API
func GetListenAddr() string {
	return net.JoinHostPort(Get().Host, Get().Port)
}

// GetDBPath returns the wallet database directory
func GetDBPath() string {
	return Get().DBPath
}

// GetPeerURL returns the node URL used when none is stored yet
func GetPeerURL() string {
	return Get().PeerURL
}

// GetCoinGeckoURL returns the CoinGecko API base URL
func GetCoinGeckoURL() string {
	return Get().CoinGeckoURL
}

// GetWartscanURL returns the Wartscan API base URL
func GetWartscanURL() string {
	return Get().WartscanURL
}

// GetHTTPTimeout returns the timeout for outgoing HTTP requests
func GetHTTPTimeout() time.Duration {
	return Get().HTTPTimeout
}

// GetLogLevel returns the configured log level
func GetLogLevel() string {
	return Get().LogLevel
}

// PromptForPassword prompts for a password in the terminal without echoing it.
// Caller must zero the returned slice after use for security.
func PromptForPassword(prompt string) ([]byte, error) {
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return nil, errors.New("stdin is not a terminal: run interactively to enter password")
	}
	fmt.Fprint(os.Stderr, prompt)
	defer fmt.Fprintln(os.Stderr)

	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	if err != nil {
		return nil, fmt.Errorf("failed to read password: %w", err)
	}
	if len(raw) == 0 {
		return nil, errors.New("password cannot be empty")
	}

	password := make([]byte, len(raw))
	copy(password, raw)
	clear(raw)
	return password, nil
}

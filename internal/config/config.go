// Package config loads the donor client configuration from environment
// variables and an optional .env file.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// DefaultBaseURL is the production API root.
const DefaultBaseURL = "http://be.donation.matrixvert.com/api"

// Config holds the donor client configuration.
type Config struct {
	API   APIConfig
	Vault VaultConfig
	Log   LogConfig
}

// APIConfig configures the REST client.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

// VaultConfig configures the encrypted credential store.
type VaultConfig struct {
	Path       string
	Passphrase string
}

// LogConfig configures logging.
type LogConfig struct {
	Level string
}

// Load reads configuration from the environment. A .env file in the working
// directory is honoured when present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetEnvPrefix("DONOR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("api.base_url", DefaultBaseURL)
	v.SetDefault("api.timeout", 30*time.Second)
	v.SetDefault("vault.path", defaultVaultPath())
	v.SetDefault("vault.passphrase", "")
	v.SetDefault("log.level", "info")

	cfg := &Config{
		API: APIConfig{
			BaseURL: strings.TrimRight(v.GetString("api.base_url"), "/"),
			Timeout: v.GetDuration("api.timeout"),
		},
		Vault: VaultConfig{
			Path:       v.GetString("vault.path"),
			Passphrase: v.GetString("vault.passphrase"),
		},
		Log: LogConfig{
			Level: v.GetString("log.level"),
		},
	}

	if cfg.API.BaseURL == "" {
		return nil, fmt.Errorf("[config.Load] api base URL must not be empty")
	}
	if cfg.Vault.Passphrase == "" {
		// Machine-scoped fallback so the vault works out of the box; a real
		// secret via DONOR_VAULT_PASSPHRASE is preferred.
		cfg.Vault.Passphrase = machinePassphrase()
	}
	return cfg, nil
}

func defaultVaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", ".donorcli", "credentials.vault")
	}
	return filepath.Join(home, ".donorcli", "credentials.vault")
}

func machinePassphrase() string {
	hostname, _ := os.Hostname()
	return fmt.Sprintf("donorcli:%s:%d", hostname, os.Getuid())
}

package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config holds the reference receiver's configuration
type Config struct {
	// BindAddr is the local address to bind to; empty means all interfaces
	BindAddr string `yaml:"bind_addr"`

	// ListenPort is the TCP port to listen on
	ListenPort int `yaml:"listen_port"`

	// SecretEnv names the environment variable holding the channel's shared
	// secret, keeping the secret itself out of the config file
	SecretEnv string `yaml:"secret_env"`

	// ReplyURL, if set, is a channel endpoint to send a signed acknowledgement to
	// for each verified message
	ReplyURL string `yaml:"reply_url,omitempty"`
}

const (
	defaultListenPort = 5080
	defaultSecretEnv  = "CHANNEL_SECRET"
)

// LoadConfig reads and validates the yaml config file at the given path, applying
// defaults for any omitted fields
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := &Config{
		ListenPort: defaultListenPort,
		SecretEnv:  defaultSecretEnv,
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if cfg.ListenPort <= 0 || cfg.ListenPort > 65535 {
		return nil, fmt.Errorf("invalid listen_port %d", cfg.ListenPort)
	}
	if cfg.SecretEnv == "" {
		return nil, fmt.Errorf("secret_env must not be empty")
	}
	return cfg, nil
}

package config

import (
	"fmt"
	"os"

	"go.yaml.in/yaml/v4"
)

const defaultConfigPath = "config.yaml"

type OIDCProvider struct {
	Id           string   `yaml:"id"`
	Name         string   `yaml:"name"`
	ClientID     string   `yaml:"client_id"`
	ClientSecret string   `yaml:"client_secret"`
	IssuerURL    string   `yaml:"issuer_url"`
	RedirectURL  string   `yaml:"redirect_url"`
	Scopes       []string `yaml:"scopes"`
}

type Config struct {
	ListenAddr string `yaml:"listen_addr"`
	APIBaseURL string `yaml:"api_base_url"`
	DBPath     string `yaml:"db_path"`

	AuthEnabled   bool           `yaml:"auth_enabled"`
	OIDCProviders []OIDCProvider `yaml:"oidc_providers"`

	// MaxReminderNotifications caps one full notification rebuild; zero
	// means the built-in default of 50.
	MaxReminderNotifications int `yaml:"max_reminder_notifications"`

	ResendAPIKey string `yaml:"resend_api_key"`
	NotifyFrom   string `yaml:"notify_from"`
	NotifyEmail  string `yaml:"notify_email"`
}

// Load reads the yaml config from HABITPANDA_CONFIG, falling back to
// ./config.yaml. Unset fields keep their defaults.
func Load() (*Config, error) {
	path := os.Getenv("HABITPANDA_CONFIG")
	if path == "" {
		path = defaultConfigPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	cfg := defaults()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		ListenAddr: ":8080",
		APIBaseURL: "http://localhost:8080",
		DBPath:     "habitpanda.db",
	}
}

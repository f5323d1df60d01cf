package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Overlay is the optional YAML file layered over the environment. Only
// log_level and free_daily_limit are applied again on hot reload.
type Overlay struct {
	LogLevel       *string  `yaml:"log_level"`
	FreeDailyLimit *int     `yaml:"free_daily_limit"`
	AllowedCIDRS   []string `yaml:"allowed_cidrs"`
	AllowedHosts   []string `yaml:"allowed_hosts"`
	OAuthClientID  *string  `yaml:"oauth_client_id"`
	ServerURL      *string  `yaml:"server_url"`
}

// LoadOverlay reads and parses the overlay file. ${VAR} references are
// expanded from the environment before parsing.
func LoadOverlay(path string) (Overlay, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overlay{}, fmt.Errorf("failed to read config file: %w", err)
	}

	var o Overlay
	if err := yaml.Unmarshal([]byte(os.ExpandEnv(string(data))), &o); err != nil {
		return Overlay{}, fmt.Errorf("failed to parse config yaml: %w", err)
	}
	if o.FreeDailyLimit != nil && *o.FreeDailyLimit < 1 {
		return Overlay{}, fmt.Errorf("free_daily_limit must be positive, got %d", *o.FreeDailyLimit)
	}
	return o, nil
}

// Apply copies every field set in o onto c.
func (c *Config) Apply(o Overlay) {
	if o.LogLevel != nil {
		c.LogLevel = *o.LogLevel
	}
	if o.FreeDailyLimit != nil {
		c.FreeDailyLimit = *o.FreeDailyLimit
	}
	if o.AllowedCIDRS != nil {
		c.AllowedCIDRS = o.AllowedCIDRS
	}
	if o.AllowedHosts != nil {
		c.AllowedHosts = o.AllowedHosts
	}
	if o.OAuthClientID != nil {
		c.OAuthClientID = *o.OAuthClientID
	}
	if o.ServerURL != nil {
		c.ServerURL = *o.ServerURL
	}
}

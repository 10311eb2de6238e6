package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// LoadConfig loads configuration from file using viper.
// CLI flags > environment > config file > defaults precedence.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults matching DefaultConfig
	v.SetDefault("imap.addr", "imap.gmail.com:993")
	v.SetDefault("imap.username", "")
	v.SetDefault("imap.mailbox", "INBOX")
	v.SetDefault("fetch.max_emails", 50)
	v.SetDefault("rules.file", "rules.json")

	// Bind environment variables with MK_ prefix
	v.SetEnvPrefix("MK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Load config file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	// Security check: reject secrets in config files
	// Secrets must be environment-only per 12-factor principles
	if err := validateNoSecretsInConfig(v); err != nil {
		return nil, err
	}

	cfg := &Config{
		IMAPAddr:     v.GetString("imap.addr"),
		IMAPUsername: v.GetString("imap.username"),
		Mailbox:      v.GetString("imap.mailbox"),
		MaxEmails:    v.GetInt("fetch.max_emails"),
		RulesFile:    v.GetString("rules.file"),
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validateConfig checks addresses and positive fetch limits.
func validateConfig(cfg *Config) error {
	if cfg.IMAPAddr == "" {
		return fmt.Errorf("imap.addr cannot be empty")
	}
	if cfg.Mailbox == "" {
		return fmt.Errorf("imap.mailbox cannot be empty")
	}
	if cfg.MaxEmails <= 0 {
		return fmt.Errorf("fetch.max_emails must be positive, got %d", cfg.MaxEmails)
	}
	if cfg.RulesFile == "" {
		return fmt.Errorf("rules.file cannot be empty")
	}
	return nil
}

// validateNoSecretsInConfig enforces environment-only secrets (12-factor principle).
func validateNoSecretsInConfig(v *viper.Viper) error {
	if v.IsSet("imap.password") || v.IsSet("imap_password") {
		return fmt.Errorf("IMAP passwords not allowed in config files (use MK_IMAP_PASSWORD environment variable)")
	}
	return nil
}

// Package config provides configuration management for MailKeeper commands.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds settings for fetching and rule runs.
type Config struct {
	IMAPAddr     string
	IMAPUsername string
	Mailbox      string
	MaxEmails    int
	RulesFile    string
}

// DefaultConfig returns configuration with default values.
func DefaultConfig() *Config {
	return &Config{
		IMAPAddr:  "imap.gmail.com:993",
		Mailbox:   "INBOX",
		MaxEmails: 50,
		RulesFile: "rules.json",
	}
}

// IMAPPassword extracts the IMAP password from the environment.
// Environment-only: never read from config files.
func IMAPPassword() (string, error) {
	val := strings.TrimSpace(os.Getenv("MK_IMAP_PASSWORD"))
	if val == "" {
		return "", fmt.Errorf("MK_IMAP_PASSWORD environment variable is not set")
	}
	return val, nil
}

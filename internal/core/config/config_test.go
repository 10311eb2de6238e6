package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestIMAPPassword(t *testing.T) {
	os.Unsetenv("MK_IMAP_PASSWORD")

	t.Run("set", func(t *testing.T) {
		os.Setenv("MK_IMAP_PASSWORD", "app-specific-password")
		defer os.Unsetenv("MK_IMAP_PASSWORD")

		pw, err := IMAPPassword()
		if err != nil {
			t.Fatalf("IMAPPassword failed: %v", err)
		}
		if pw != "app-specific-password" {
			t.Errorf("expected password, got %q", pw)
		}
	})

	t.Run("unset", func(t *testing.T) {
		if _, err := IMAPPassword(); err == nil {
			t.Error("expected error when MK_IMAP_PASSWORD is unset")
		}
	})

	t.Run("whitespace only", func(t *testing.T) {
		os.Setenv("MK_IMAP_PASSWORD", "   ")
		defer os.Unsetenv("MK_IMAP_PASSWORD")

		if _, err := IMAPPassword(); err == nil {
			t.Error("expected error for whitespace-only password")
		}
	})
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	defaults := DefaultConfig()
	if cfg.IMAPAddr != defaults.IMAPAddr {
		t.Errorf("expected addr %q, got %q", defaults.IMAPAddr, cfg.IMAPAddr)
	}
	if cfg.Mailbox != defaults.Mailbox {
		t.Errorf("expected mailbox %q, got %q", defaults.Mailbox, cfg.Mailbox)
	}
	if cfg.MaxEmails != defaults.MaxEmails {
		t.Errorf("expected max_emails %d, got %d", defaults.MaxEmails, cfg.MaxEmails)
	}
	if cfg.RulesFile != defaults.RulesFile {
		t.Errorf("expected rules file %q, got %q", defaults.RulesFile, cfg.RulesFile)
	}
}

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
imap:
  addr: imap.fastmail.com:993
  username: me@fastmail.com
  mailbox: Work
fetch:
  max_emails: 10
rules:
  file: /etc/mailkeeper/rules.json
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.IMAPAddr != "imap.fastmail.com:993" {
		t.Errorf("expected file addr, got %q", cfg.IMAPAddr)
	}
	if cfg.IMAPUsername != "me@fastmail.com" {
		t.Errorf("expected file username, got %q", cfg.IMAPUsername)
	}
	if cfg.Mailbox != "Work" {
		t.Errorf("expected file mailbox, got %q", cfg.Mailbox)
	}
	if cfg.MaxEmails != 10 {
		t.Errorf("expected file max_emails, got %d", cfg.MaxEmails)
	}
	if cfg.RulesFile != "/etc/mailkeeper/rules.json" {
		t.Errorf("expected file rules path, got %q", cfg.RulesFile)
	}
}

func TestLoadConfigEnvOverride(t *testing.T) {
	os.Setenv("MK_IMAP_MAILBOX", "Archive")
	defer os.Unsetenv("MK_IMAP_MAILBOX")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}
	if cfg.Mailbox != "Archive" {
		t.Errorf("expected env mailbox Archive, got %q", cfg.Mailbox)
	}
}

func TestLoadConfigRejectsSecretsInFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
imap:
  addr: imap.example.com:993
  password: hunter2
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for password in config file")
	}
}

func TestLoadConfigValidation(t *testing.T) {
	t.Run("non-positive max_emails", func(t *testing.T) {
		os.Setenv("MK_FETCH_MAX_EMAILS", "0")
		defer os.Unsetenv("MK_FETCH_MAX_EMAILS")

		if _, err := LoadConfig(""); err == nil {
			t.Error("expected error for max_emails 0")
		}
	})

	t.Run("empty mailbox", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		content := "imap:\n  mailbox: \"\"\n"
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("failed to write config file: %v", err)
		}

		if _, err := LoadConfig(path); err == nil {
			t.Error("expected error for empty mailbox")
		}
	})

	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
			t.Error("expected error for missing config file")
		}
	})
}

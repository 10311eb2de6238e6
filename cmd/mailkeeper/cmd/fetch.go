package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhollis/mailkeeper/internal/core/config"
	"github.com/dhollis/mailkeeper/internal/core/db"
	"github.com/dhollis/mailkeeper/internal/mail"
	"github.com/dhollis/mailkeeper/internal/store"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch recent emails from the IMAP provider into the local store",
	RunE:  runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
	fetchCmd.Flags().String("mailbox", "", "mailbox to fetch from (overrides config)")
	fetchCmd.Flags().Int("max-emails", 0, "maximum messages to fetch (overrides config)")
}

func runFetch(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if cmd.Flags().Changed("mailbox") {
		cfg.Mailbox, _ = cmd.Flags().GetString("mailbox")
	}
	if cmd.Flags().Changed("max-emails") {
		cfg.MaxEmails, _ = cmd.Flags().GetInt("max-emails")
	}
	if cfg.IMAPUsername == "" {
		return fmt.Errorf("imap.username required (set MK_IMAP_USERNAME or the config file)")
	}

	password, err := config.IMAPPassword()
	if err != nil {
		return err
	}

	database, err := openDatabase()
	if err != nil {
		return err
	}
	defer database.Close()

	queries, err := db.LoadQueries(database)
	if err != nil {
		return fmt.Errorf("failed to load queries: %w", err)
	}

	st, err := store.New(queries, logger)
	if err != nil {
		return err
	}
	if _, err := st.CountEmails(ctx); err != nil {
		return fmt.Errorf("store not ready (run 'mailkeeper migrate' first): %w", err)
	}

	client, err := mail.Dial(cfg.IMAPAddr, cfg.IMAPUsername, password)
	if err != nil {
		return err
	}
	defer client.Logout()

	fetcher, err := mail.NewFetcher(client, logger)
	if err != nil {
		return err
	}

	records, err := fetcher.Fetch(ctx, cfg.Mailbox, cfg.MaxEmails)
	if err != nil {
		return err
	}

	saved := 0
	for _, rec := range records {
		if err := st.SaveEmail(ctx, rec); err != nil {
			logger.Error("failed to save email", "id", rec.Email.ID, "error", err)
			continue
		}
		saved++
	}

	logger.Info("fetch complete", "mailbox", cfg.Mailbox, "fetched", len(records), "saved", saved)
	return nil
}

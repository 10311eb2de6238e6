package cmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dhollis/mailkeeper/internal/core/config"
	"github.com/dhollis/mailkeeper/internal/core/db"
	"github.com/dhollis/mailkeeper/internal/mail"
	"github.com/dhollis/mailkeeper/internal/processor"
	"github.com/dhollis/mailkeeper/internal/store"
	"github.com/dhollis/mailkeeper/internal/types"
)

var applyCmd = &cobra.Command{
	Use:   "apply",
	Short: "Apply a ruleset to the stored emails",
	RunE:  runApply,
}

func init() {
	rootCmd.AddCommand(applyCmd)
	applyCmd.Flags().String("rules", "", "ruleset file path (overrides config)")
	applyCmd.Flags().Bool("dry-run", false, "evaluate rules without executing actions")
}

func runApply(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger := newLogger()

	cfg, err := config.LoadConfig(configFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	rulesFile := cfg.RulesFile
	if cmd.Flags().Changed("rules") {
		rulesFile, _ = cmd.Flags().GetString("rules")
	}
	dryRun, _ := cmd.Flags().GetBool("dry-run")

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

	var executor processor.ActionExecutor
	if dryRun {
		executor = &dryRunExecutor{logger: logger}
	} else {
		if cfg.IMAPUsername == "" {
			return fmt.Errorf("imap.username required (set MK_IMAP_USERNAME or the config file)")
		}
		password, err := config.IMAPPassword()
		if err != nil {
			return err
		}
		client, err := mail.Dial(cfg.IMAPAddr, cfg.IMAPUsername, password)
		if err != nil {
			return err
		}
		defer client.Logout()

		executor, err = mail.NewExecutor(client, st, logger)
		if err != nil {
			return err
		}
	}

	p, err := processor.New(st, executor, logger)
	if err != nil {
		return err
	}

	result, err := p.ApplyRules(ctx, rulesFile)
	if err != nil {
		if errors.Is(err, types.ErrUnsupportedAction) {
			return fmt.Errorf("%w (supported: %s)", err, strings.Join(mail.SupportedActions(), ", "))
		}
		return err
	}

	logger.Info("rule run complete",
		"rules", rulesFile,
		"evaluated", result.Evaluated,
		"matched", result.Matched,
		"failed", result.Failed,
		"dry_run", dryRun,
	)
	if result.Failed > 0 {
		return fmt.Errorf("actions failed for %d of %d matched emails", result.Failed, result.Matched)
	}
	return nil
}

// dryRunExecutor validates actions and logs what a real run would do.
type dryRunExecutor struct {
	logger *slog.Logger
}

func (e *dryRunExecutor) ValidateAction(action types.ActionSpec) error {
	return mail.ValidateAction(action)
}

func (e *dryRunExecutor) PerformActions(_ context.Context, id types.EmailID, actions []types.ActionSpec) error {
	e.logger.Info("dry run: would apply actions", "id", id, "actions", actions)
	return nil
}

// Command oncall manages the on-call schedule and reconciles the published
// on-call state against it.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/marcelomgarcia/oncall/internal/application"
	"github.com/marcelomgarcia/oncall/internal/config"
	"github.com/marcelomgarcia/oncall/internal/directory"
	"github.com/marcelomgarcia/oncall/internal/logging"
	"github.com/marcelomgarcia/oncall/internal/paging"
	"github.com/marcelomgarcia/oncall/internal/persistence"
	"github.com/marcelomgarcia/oncall/internal/persistence/flatfile"
	"github.com/marcelomgarcia/oncall/internal/persistence/sqlite"
	"github.com/marcelomgarcia/oncall/internal/statuspage"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	if err := newRootCommand(logger).Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCommand(logger *slog.Logger) *cobra.Command {
	root := &cobra.Command{
		Use:           "oncall",
		Short:         "On-call schedule management",
		Long:          "Track who is on call, resolve the active assignment and reconcile the published state (status page, paging directory) against it.",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.AddCommand(
		newAddCommand(logger),
		newNowCommand(logger),
		newUpdateCommand(logger),
		newHistoryCommand(logger),
	)
	return root
}

// runtime bundles the wired service with the resources to release after the
// command finishes.
type runtime struct {
	service *application.OncallService
	close   func()
}

func newRuntime(ctx context.Context, logger *slog.Logger) (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		return nil, err
	}

	users, err := directory.Load(cfg.UsersFile)
	if err != nil {
		logger.Error("failed to load user directory", "error", err)
		return nil, err
	}

	var publisher application.StatusPublisher
	if cfg.StatusTemplate != "" {
		pagePublisher, err := statuspage.NewPublisherFromFile(cfg.StatusPageFile, cfg.StatusTemplate)
		if err != nil {
			logger.Error("failed to load status page template", "error", err)
			return nil, err
		}
		publisher = &statusPublisherAdapter{publisher: pagePublisher}
	} else {
		publisher = &statusPublisherAdapter{publisher: statuspage.NewPublisher(cfg.StatusPageFile)}
	}

	var pagingDirectory application.PagingDirectory
	if cfg.Paging.Configured() {
		client, err := paging.NewClient(cfg.Paging, nil)
		if err != nil {
			logger.Error("failed to build paging client", "error", err)
			return nil, err
		}
		pagingDirectory = client
	}

	var journal persistence.AuditJournal
	closeJournal := func() {}
	if cfg.AuditDatabase != "" {
		j, err := sqlite.Open(ctx, cfg.AuditDatabase)
		if err != nil {
			logger.Error("failed to open audit journal", "error", err)
			return nil, err
		}
		journal = j
		closeJournal = func() {
			if cerr := j.Close(); cerr != nil {
				logger.Error("failed to close audit journal", "error", cerr)
			}
		}
	}

	service := application.NewOncallServiceWithLogger(
		flatfile.NewScheduleStore(cfg.ScheduleFile),
		flatfile.NewCurrentStateStore(cfg.CurrentStateFile),
		users,
		pagingDirectory,
		publisher,
		journal,
		uuid.NewString,
		time.Now,
		logger,
	)
	return &runtime{service: service, close: closeJournal}, nil
}

func newAddCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "add <user> <start> <end>",
		Short: "Add a new entry to the on-call schedule",
		Long:  "Append an on-call window for a user. Dates use the YYYY-MM-DD format; the window is inclusive on both ends.",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.ContextWithLogger(cmd.Context(), logger)

			start, err := time.Parse(time.DateOnly, args[1])
			if err != nil {
				return fmt.Errorf("invalid start date %q, expected YYYY-MM-DD", args[1])
			}
			end, err := time.Parse(time.DateOnly, args[2])
			if err != nil {
				return fmt.Errorf("invalid end date %q, expected YYYY-MM-DD", args[2])
			}

			rt, err := newRuntime(ctx, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			added, err := rt.service.AddAssignment(ctx, args[0], start, end)
			if err != nil {
				var vErr *application.ValidationError
				if errors.As(err, &vErr) {
					printValidationError(cmd, vErr)
				}
				return err
			}

			cmd.Printf("added schedule entry: %s from %s until %s\n",
				added.UserID,
				added.Start.Format(time.DateOnly),
				added.End.Format(time.DateOnly),
			)
			return nil
		},
	}
}

func newNowCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "now",
		Short: "Print the person currently on call",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.ContextWithLogger(cmd.Context(), logger)

			rt, err := newRuntime(ctx, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			holder, err := rt.service.CurrentHolder(ctx)
			if err != nil {
				if errors.Is(err, persistence.ErrNotInitialized) {
					return fmt.Errorf("no on-call state published yet, run 'oncall update' first")
				}
				return err
			}

			printHolder(cmd, holder)
			return nil
		},
	}
}

func newUpdateCommand(logger *slog.Logger) *cobra.Command {
	return &cobra.Command{
		Use:   "update",
		Short: "Reconcile the published on-call state against the schedule",
		Long:  "Resolve the active assignment for today and, when it differs from the published state, update the current-state record, the status page and the paging directory.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.ContextWithLogger(cmd.Context(), logger)

			rt, err := newRuntime(ctx, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			result, err := rt.service.Reconcile(ctx)
			if err != nil {
				return err
			}

			if !result.Changed {
				cmd.Println("on-call unchanged:")
			} else if result.UserChanged {
				cmd.Println("on-call handed over:")
			} else {
				cmd.Println("on-call window updated:")
			}
			printHolder(cmd, result.Holder)
			return nil
		},
	}
}

func newHistoryCommand(logger *slog.Logger) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent reconciliation cycles from the audit journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := logging.ContextWithLogger(cmd.Context(), logger)

			rt, err := newRuntime(ctx, logger)
			if err != nil {
				return err
			}
			defer rt.close()

			records, err := rt.service.History(ctx, limit)
			if err != nil {
				if errors.Is(err, application.ErrJournalNotConfigured) {
					return fmt.Errorf("audit journal not configured, set oc_audit_db in the configuration file")
				}
				return err
			}
			if len(records) == 0 {
				cmd.Println("no reconciliation cycles recorded")
				return nil
			}

			for _, record := range records {
				line := fmt.Sprintf("%s  %-9s  %s (%s until %s)",
					record.RanAt.Format(time.RFC3339),
					record.Outcome,
					record.UserID,
					record.WindowStart.Format(time.DateOnly),
					record.WindowEnd.Format(time.DateOnly),
				)
				if record.PreviousUserID != "" {
					line += fmt.Sprintf("  previously %s", record.PreviousUserID)
				}
				cmd.Println(line)
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum number of cycles to show")
	return cmd
}

func printHolder(cmd *cobra.Command, holder application.Holder) {
	cmd.Printf("  %s\n", holder.User.Name)
	cmd.Printf("  phone: %s\n", holder.User.Phone)
	cmd.Printf("  email: %s\n", holder.User.Email)
	cmd.Printf("  from %s until %s\n", holder.Start.Format(time.DateOnly), holder.End.Format(time.DateOnly))
}

func printValidationError(cmd *cobra.Command, vErr *application.ValidationError) {
	fields := make([]string, 0, len(vErr.FieldErrors))
	for field := range vErr.FieldErrors {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		cmd.PrintErrf("invalid %s: %s\n", field, vErr.FieldErrors[field])
	}
}

// statusPublisherAdapter bridges the application holder to the status page
// contact record.
type statusPublisherAdapter struct {
	publisher *statuspage.Publisher
}

func (a *statusPublisherAdapter) Publish(ctx context.Context, holder application.Holder) error {
	return a.publisher.Publish(ctx, statuspage.Contact{
		Name:  holder.User.Name,
		Phone: holder.User.Phone,
		Email: holder.User.Email,
		Start: holder.Start,
		End:   holder.End,
	})
}

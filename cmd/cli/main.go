package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/cvoinescu/garda/internal/config"
	"github.com/cvoinescu/garda/pkg/core/engine"
	"github.com/cvoinescu/garda/pkg/core/services"
	"github.com/cvoinescu/garda/pkg/db"
	"github.com/cvoinescu/garda/pkg/postgres"
	"github.com/cvoinescu/garda/pkg/sheetstore"
	"github.com/cvoinescu/garda/pkg/utils/logging"
)

// App holds the application dependencies
type App struct {
	cfg    *config.Config
	store  db.RosterStore
	pg     *postgres.Store // set only on the postgres backend
	logger *zap.Logger
	ctx    context.Context
}

var (
	env string
	app *App
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "garda",
		Short: "Garda CLI - Manage on-call shift schedules",
		Long:  `A CLI tool for generating on-call shift schedules, resolving shift reservations, and managing the staff roster.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if app != nil && app.logger != nil {
				app.logger.Sync()
			}
			if app != nil && app.pg != nil {
				app.pg.Close()
			}
		},
	}

	// Add persistent environment flag
	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	rootCmd.MarkPersistentFlagRequired("env")

	// Add all commands
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(resolveReservationsCmd())
	rootCmd.AddCommand(listStaffCmd())
	rootCmd.AddCommand(addAbsenceCmd())
	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(interactiveCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// initApp sets up logger, config, and the storage backend
func initApp() error {
	var err error
	app = &App{
		ctx: context.Background(),
	}

	// Initialize logger
	app.logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.logger.Info("Starting application", zap.String("environment", env))

	// Load configuration
	app.logger.Info("Loading configuration")
	app.cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.logger.Debug("Configuration loaded successfully")

	// Initialize storage backend
	switch app.cfg.Storage {
	case "postgres":
		app.logger.Info("Connecting to postgres")
		app.pg, err = postgres.NewStore(app.ctx, app.cfg.Postgres.URL)
		if err != nil {
			return fmt.Errorf("failed to connect to postgres: %w", err)
		}
		app.store = app.pg

	case "sheets":
		app.logger.Info("Loading OAuth client configuration")
		oauthCfg, err := config.LoadOAuthClientWithEnv(env)
		if err != nil {
			return fmt.Errorf("failed to load OAuth client config: %w", err)
		}

		app.logger.Info("Connecting to spreadsheet", zap.String("spreadsheet_id", app.cfg.Sheets.SpreadsheetID))
		app.store, err = sheetstore.NewStore(app.ctx, oauthCfg, app.cfg.Sheets.SpreadsheetID)
		if err != nil {
			return fmt.Errorf("failed to create sheets store: %w", err)
		}

	default:
		return fmt.Errorf("unknown storage backend %q", app.cfg.Storage)
	}

	app.logger.Info("Storage initialized successfully", zap.String("backend", app.cfg.Storage))
	return nil
}

// Command definitions

func generateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <start> <end>",
		Short: "Generate the on-call schedule for a date range (inclusive, YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			start, err := time.Parse(engine.DateLayout, args[0])
			if err != nil {
				return fmt.Errorf("start must be YYYY-MM-DD: %w", err)
			}
			end, err := time.Parse(engine.DateLayout, args[1])
			if err != nil {
				return fmt.Errorf("end must be YYYY-MM-DD: %w", err)
			}

			template, _ := cmd.Flags().GetString("template")
			specialty, _ := cmd.Flags().GetString("specialty")
			dryRun, _ := cmd.Flags().GetBool("dry-run")
			seedStr, _ := cmd.Flags().GetString("seed")

			opts := services.GenerateOptions{
				Start:        start,
				End:          end,
				TemplateName: template,
				Specialty:    specialty,
				DryRun:       dryRun,
			}
			if seedStr != "" {
				seed, err := strconv.ParseInt(seedStr, 10, 64)
				if err != nil {
					return fmt.Errorf("seed must be an integer: %w", err)
				}
				opts.Seed = &seed
			}

			result, err := services.GenerateSchedule(app.ctx, app.store, app.cfg, app.logger, opts)
			if err != nil {
				return err
			}

			// Display results
			if dryRun {
				fmt.Printf("\n✓ Schedule computed (dry run, nothing saved)\n\n")
			} else {
				fmt.Printf("\n✓ Schedule generated and saved!\n\n")
			}
			fmt.Printf("Run ID:  %s\n", result.RunID)
			fmt.Printf("Entries: %d\n\n", len(result.Entries))

			for _, entry := range result.Entries {
				fmt.Printf("  %s  %-12s staff %d\n", entry.Date.Format("2006-01-02 (Mon)"), entry.ShiftLabel, entry.StaffID)
			}
			fmt.Println()

			if len(result.Warnings) > 0 {
				fmt.Printf("⚠️  %d warnings:\n", len(result.Warnings))
				for _, w := range result.Warnings {
					date := ""
					if !w.Date.IsZero() {
						date = w.Date.Format(engine.DateLayout) + " "
					}
					fmt.Printf("  ✗ %s[%s] %s\n", date, w.Reason, w.Detail)
				}
				fmt.Println()
			}

			return nil
		},
	}

	cmd.Flags().String("template", "", "Shift template name (defaults to the configured default)")
	cmd.Flags().String("specialty", "", "Restrict the roster to one specialty")
	cmd.Flags().Bool("dry-run", false, "Compute without saving to storage")
	cmd.Flags().String("seed", "", "Seed for random decisions")

	return cmd
}

func resolveReservationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "resolveReservations",
		Short: "Resolve all pending shift reservations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dryRun, _ := cmd.Flags().GetBool("dry-run")

			result, err := services.ResolveReservations(app.ctx, app.store, app.cfg, app.logger, dryRun)
			if err != nil {
				return err
			}

			if dryRun {
				fmt.Printf("\n✓ Reservations resolved (dry run, nothing saved)\n\n")
			} else {
				fmt.Printf("\n✓ Reservations resolved!\n\n")
			}
			fmt.Printf("Approved: %d\n", result.Approved)
			fmt.Printf("Rejected: %d\n\n", result.Rejected)

			return nil
		},
	}

	cmd.Flags().Bool("dry-run", false, "Compute without saving to storage")

	return cmd
}

func listStaffCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "listStaff",
		Short: "List the staff roster",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			specialty, _ := cmd.Flags().GetString("specialty")

			staff, err := services.ListStaff(app.ctx, app.store, app.logger, specialty)
			if err != nil {
				return err
			}

			fmt.Printf("\nFound %d staff members:\n\n", len(staff))
			for _, s := range staff {
				cap := "no cap"
				if s.MaxShiftsPerMonth > 0 {
					cap = fmt.Sprintf("max %d/month", s.MaxShiftsPerMonth)
				}
				fmt.Printf("- %3d  %s (%s) - %s\n", s.ID, s.Name, s.Specialty, cap)
			}
			fmt.Println()

			return nil
		},
	}

	cmd.Flags().String("specialty", "", "Restrict the listing to one specialty")

	return cmd
}

func addAbsenceCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "addAbsence <staff_id> <date>",
		Short: "Mark a staff member unavailable on a date (YYYY-MM-DD)",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			staffID, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("staff_id must be a number: %w", err)
			}

			if err := services.AddAbsence(app.ctx, app.store, app.logger, staffID, args[1]); err != nil {
				return err
			}

			fmt.Printf("\n✓ Absence recorded for staff %d on %s\n\n", staffID, args[1])
			return nil
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations (postgres backend only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if app.pg == nil {
				return fmt.Errorf("migrate only applies to the postgres backend, configured backend is %q", app.cfg.Storage)
			}

			if err := app.pg.Migrate(app.ctx); err != nil {
				return err
			}

			fmt.Printf("\n✓ Migrations applied\n\n")
			return nil
		},
	}
}

func interactiveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "interactive",
		Short: "Start an interactive session (authenticate once, run multiple commands)",
		Long: `Start an interactive session where you can run multiple commands without re-authenticating.
The session will keep running until you type 'exit' or 'quit'.

Type 'help' to see available commands.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Println("\n🚀 Starting interactive session...")
			fmt.Println("Type 'help' for available commands, 'exit' or 'quit' to leave")

			// Get all sibling commands (excluding interactive itself)
			rootCmd := cmd.Parent()
			commands := make(map[string]*cobra.Command)
			for _, subCmd := range rootCmd.Commands() {
				if subCmd.Name() != "interactive" && subCmd.Name() != "completion" && subCmd.Name() != "help" {
					commands[subCmd.Name()] = subCmd
				}
			}

			scanner := bufio.NewScanner(os.Stdin)

			for {
				fmt.Print("> ")

				if !scanner.Scan() {
					break
				}

				line := strings.TrimSpace(scanner.Text())
				if line == "" {
					continue
				}

				// Parse command (respecting quotes, shift labels contain spaces)
				parts, err := parseCommandLine(line)
				if err != nil {
					fmt.Printf("❌ Error parsing command: %v\n\n", err)
					continue
				}
				if len(parts) == 0 {
					continue
				}
				cmdName := parts[0]
				cmdArgs := parts[1:]

				// Handle exit
				if cmdName == "exit" || cmdName == "quit" {
					fmt.Println("👋 Goodbye!")
					return nil
				}

				// Handle help
				if cmdName == "help" {
					printInteractiveHelp(commands)
					continue
				}

				// Execute command via Cobra
				targetCmd, exists := commands[cmdName]
				if !exists {
					fmt.Printf("❌ Unknown command: %s (type 'help' for available commands)\n\n", cmdName)
					continue
				}

				// Reset command flags and args
				targetCmd.Flags().VisitAll(func(flag *pflag.Flag) {
					flag.Changed = false
					flag.Value.Set(flag.DefValue)
				})

				// Execute the command's RunE directly, bypassing the full Execute() flow
				// This avoids re-running PersistentPreRunE which would call initApp() again
				if err := targetCmd.ParseFlags(cmdArgs); err != nil {
					fmt.Printf("❌ Error parsing flags: %v\n\n", err)
					continue
				}

				// Get non-flag args after parsing flags
				cmdArgs = targetCmd.Flags().Args()

				// Validate args
				if err := targetCmd.Args(targetCmd, cmdArgs); err != nil {
					fmt.Printf("❌ Error: %v\n\n", err)
					continue
				}

				// Execute the RunE function directly
				if targetCmd.RunE != nil {
					if err := targetCmd.RunE(targetCmd, cmdArgs); err != nil {
						fmt.Printf("❌ Error: %v\n\n", err)
					}
				} else if targetCmd.Run != nil {
					targetCmd.Run(targetCmd, cmdArgs)
				}
			}

			if err := scanner.Err(); err != nil {
				return fmt.Errorf("error reading input: %w", err)
			}

			return nil
		},
	}

	return cmd
}

func printInteractiveHelp(commands map[string]*cobra.Command) {
	fmt.Println("\nAvailable commands:")

	// Get command names and sort them
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)

	// Print each command with its short description
	for _, name := range names {
		cmd := commands[name]
		fmt.Printf("  %-30s %s\n", cmd.Use, cmd.Short)
	}

	fmt.Println("\n  help                           Show this help message")
	fmt.Println("  exit, quit                     Exit the interactive session")
}

// parseCommandLine splits a command line into arguments, respecting single
// and double quoted strings so labels like "Weekend 24h" survive as one
// argument.
func parseCommandLine(line string) ([]string, error) {
	var args []string
	var current strings.Builder
	var inQuote rune // 0 if not in quote, '"' or '\'' if in quote

	for _, r := range line {
		switch {
		case inQuote != 0:
			if r == inQuote {
				inQuote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '"' || r == '\'':
			inQuote = r
		case unicode.IsSpace(r):
			if current.Len() > 0 {
				args = append(args, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(r)
		}
	}

	if inQuote != 0 {
		return nil, fmt.Errorf("unclosed quote: %c", inQuote)
	}
	if current.Len() > 0 {
		args = append(args, current.String())
	}

	return args, nil
}

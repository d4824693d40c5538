package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/balkashynov/deepwork/internal/config"
	"github.com/balkashynov/deepwork/internal/db"
	"github.com/balkashynov/deepwork/internal/ledger"
	"github.com/balkashynov/deepwork/internal/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:   "deepwork",
	Short: "A deep work tracker with a Telegram bot",
	Long: `deepwork tracks the time you spend in deep work.
Run the Telegram bot with 'deepwork serve', or start and stop sessions
straight from the terminal. Both share the same database.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// app is everything a command needs once the configuration is loaded.
type app struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *db.Store
	ledger *ledger.Ledger
}

var errNoUser = errors.New("no user given: pass --user or set ADMIN_USER_ID")

// userID returns --user when set, otherwise the configured admin.
func (a *app) userID(cmd *cobra.Command) (int64, error) {
	if f := cmd.Flags().Lookup("user"); f != nil && f.Changed {
		id, err := cmd.Flags().GetInt64("user")
		if err != nil {
			return 0, err
		}
		return id, nil
	}
	if a.cfg.AdminUserID == 0 {
		return 0, errNoUser
	}
	return a.cfg.AdminUserID, nil
}

func loadConfig() (*config.Config, zerolog.Logger, error) {
	if _, err := config.LoadDotEnv(envFiles...); err != nil {
		return nil, zerolog.Nop(), err
	}
	cfg, err := config.Load()
	if err != nil {
		return nil, zerolog.Nop(), err
	}
	return cfg, logging.New(cfg.LogLevel, os.Stderr), nil
}

// withApp loads the configuration, opens the store and builds the ledger
// before running fn. The store is closed when fn returns.
func withApp(fn func(cmd *cobra.Command, args []string, a *app) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig()
		if err != nil {
			return err
		}

		store, err := db.Open(cfg.DB, cfg.LogLevel == "debug")
		if err != nil {
			return err
		}
		defer func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("failed to close database")
			}
		}()
		log.Debug().Str("driver", cfg.DB.Driver).Msg("database opened")

		l := ledger.New(store,
			ledger.WithLocation(cfg.Location),
			ledger.WithLogger(logging.Component(log, "ledger")),
		)
		return fn(cmd, args, &app{cfg: cfg, log: log, store: store, ledger: l})
	}
}

func addUserFlag(cmd *cobra.Command) {
	cmd.Flags().Int64("user", 0, "Telegram user ID (default ADMIN_USER_ID)")
}

// SetVersion sets the version information
func SetVersion(v, c, d string) {
	version = v
	commit = c
	date = d
}

// Execute runs the root command
func Execute() error {
	return rootCmd.ExecuteContext(context.Background())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "deepwork %s (commit %s, built %s)\n", version, commit, date)
	},
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "dotenv files to load (default .env.local, .env)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(birthdayCmd)
	rootCmd.AddCommand(notifyCmd)
	rootCmd.SetHelpCommand(helpCmd)
	rootCmd.AddCommand(versionCmd)
}

package main

import (
	"fmt"
	"os"
	"strconv"

	_ "github.com/joho/godotenv/autoload"
	"github.com/spf13/cobra"

	"cine-insights/config"
	"cine-insights/console"
	"cine-insights/logging"
	"cine-insights/storage"
)

var (
	dataPath   string
	store      *storage.SQLiteStorage
	migrations *storage.MigrationManager
)

var rootCmd = &cobra.Command{
	Use:          "migrate",
	Short:        "Manage the cine-insights SQLite schema",
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if dataPath == "" {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			dataPath = cfg.DBDir
			if dataPath == "" {
				dataPath = cfg.DataDir
			}
		}
		logger, err := logging.New("info", false)
		if err != nil {
			return err
		}
		if err := os.MkdirAll(dataPath, 0755); err != nil {
			return fmt.Errorf("failed to create data directory: %w", err)
		}
		store = storage.NewSQLiteStorage(dataPath, logger)
		if _, err := store.GetDB(); err != nil {
			return err
		}
		migrations, err = store.Migrations()
		return err
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return store.Close()
	},
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply all pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		applied, err := migrations.Up(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Applied %d migration(s), schema at version %d\n", applied, migrations.Latest())
		return nil
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back the latest migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrations.Down(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Migration rolled back successfully")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Print the state of every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		states, err := migrations.Status(cmd.Context())
		if err != nil {
			return err
		}
		rows := make([][]string, len(states))
		for i, st := range states {
			applied := "pending"
			if st.Applied {
				applied = st.AppliedAt.Format("2006-01-02 15:04:05")
			}
			rows[i] = []string{strconv.FormatInt(st.Version, 10), st.Name, applied}
		}
		console.Table(cmd.OutOrStdout(), []string{"Version", "Migration", "Applied"}, rows)
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		version, err := migrations.Version(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database version: %d of %d\n", version, migrations.Latest())
		return nil
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Roll back every migration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := migrations.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Database reset completed successfully")
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&dataPath, "data", "", "database directory (defaults to DB_DIR, then DATA_PATH)")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd, versionCmd, resetCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

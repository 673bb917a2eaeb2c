package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"filedepot/internal/blob"
	"filedepot/internal/config"
	"filedepot/internal/database"
	"filedepot/internal/depot"
	"filedepot/internal/server"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads the config file from the default location.
func loadConfig() (*config.Config, error) {
	defaults, err := config.GetDefaults()
	if err != nil {
		return nil, fmt.Errorf("getting defaults: %w", err)
	}

	cfg, err := config.ReadFromFile(defaults["config_path"])
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return cfg, nil
}

var rootCmd = &cobra.Command{
	Use:   "filedepot",
	Short: "Virtual filesystem server with audit trail",
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := config.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg := config.NewConfig(defaults["base_dir"])

		if err := config.Init(defaults["config_path"], cfg); err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}

		fmt.Printf("Configuration initialized at %s\n", defaults["config_path"])
		fmt.Printf("Base Dir: %s\n", defaults["base_dir"])
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults, err := config.GetDefaults()
		if err != nil {
			return fmt.Errorf("failed to get defaults: %w", err)
		}

		cfg, err := config.ReadFromFile(defaults["config_path"])
		if err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}

		fmt.Printf("Configuration from %s:\n\n", defaults["config_path"])
		fmt.Printf("Listen Addr: %s\n", cfg.ListenAddr)
		fmt.Printf("Base Dir:    %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:     %s\n", cfg.LogDir)
		fmt.Printf("Database:    %s\n", cfg.Database.Type)
		fmt.Printf("Blob store:  %s\n", cfg.Blob.Type)
		fmt.Printf("Encryption:  %s\n", cfg.Encryption.Type)
		return nil
	},
}

// serve command
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is not an error
		_ = godotenv.Load()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		logger, logFile, err := server.NewLogger(cfg.LogDir)
		if err != nil {
			return fmt.Errorf("setting up logging: %w", err)
		}
		defer logFile.Close()

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		store, err := database.NewStoreFromConfig(ctx, &cfg.Database)
		if err != nil {
			return fmt.Errorf("setting up metadata store: %w", err)
		}
		defer store.Close()

		// Refuse to serve on an outdated schema
		if checker, ok := store.(interface{ CheckMigrations() error }); ok {
			if err := checker.CheckMigrations(); err != nil {
				return fmt.Errorf("database schema check failed (run 'filedepot migrate'): %w", err)
			}
		}

		blobs, err := blob.NewStoreFromConfig(ctx, &cfg.Blob, &cfg.Encryption)
		if err != nil {
			return fmt.Errorf("setting up blob store: %w", err)
		}
		if err := blobs.Validate(ctx); err != nil {
			return fmt.Errorf("validating blob store: %w", err)
		}

		service := depot.NewService(store, blobs, server.NewDepotLogger(logger),
			depot.RealClock{}, depot.UUIDGenerator{})

		hub := server.NewAuditHub(logger)
		service.SetNotifier(hub)

		srv := server.New(cfg.ListenAddr, service, hub, logger, cfg.CORSOrigins)
		return srv.Run(ctx)
	},
}

// migrate command
var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run pending database migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		_ = godotenv.Load()

		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if err := database.Migrate(&cfg.Database); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}

		fmt.Printf("Database (%s) is up to date\n", cfg.Database.Type)
		return nil
	},
}

// keygen command
var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Generate an age identity for blob encryption",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		if cfg.Encryption.KeyPath == "" {
			return fmt.Errorf("encryption key_path is not configured")
		}

		recipient, err := blob.GenerateKeyFile(cfg.Encryption.KeyPath)
		if err != nil {
			return fmt.Errorf("generating key: %w", err)
		}

		fmt.Printf("Identity written to %s\n", cfg.Encryption.KeyPath)
		fmt.Printf("Public key: %s\n", recipient)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)

	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(keygenCmd)
}

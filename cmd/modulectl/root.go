package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/config"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

var rootArgs struct {
	EnvFile string
}

func newRootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           "modulectl",
		Short:         "Administer the module store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&rootArgs.EnvFile, "env-file", ".env", "the .env file to read before the environment")

	root.AddCommand(
		newSchemaCommand(),
		newMigratePlatformsCommand(),
		newAuditKeysCommand(),
		newTokenCommand(),
	)
	return root
}

// loadConfig reads configuration and applies logging and the JWT secret
func loadConfig() (*config.Config, io.Closer, error) {
	cfg, err := config.Load(rootArgs.EnvFile)
	if err != nil {
		return nil, nil, err
	}
	closer, err := logging.Init(cfg.Log.Logging())
	if err != nil {
		return nil, nil, err
	}
	if cfg.Log.File == "" {
		// stdout carries command output
		logrus.SetOutput(os.Stderr)
	}
	auth.SetSecret(cfg.JWTSecret)
	return cfg, closer, nil
}

// withConnection opens the configured database for the duration of fn
func withConnection(ctx context.Context, fn func(conn *database.Connection) error) error {
	cfg, closer, err := loadConfig()
	if err != nil {
		return err
	}
	defer closer.Close()

	conn, err := database.Open(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer conn.Close()
	return fn(conn)
}

// withServices is withConnection plus the wired service layer
func withServices(ctx context.Context, fn func(sm *services.ServiceManager) error) error {
	return withConnection(ctx, func(conn *database.Connection) error {
		return fn(services.NewServiceManager(conn))
	})
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

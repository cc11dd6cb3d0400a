package main

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/application/services"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/bootstrap"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/auth"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

func newSchemaCommand() *cobra.Command {
	schema := &cobra.Command{
		Use:   "schema",
		Short: "Create or drop the store's tables",
	}

	schema.AddCommand(&cobra.Command{
		Use:   "init",
		Short: "Create every missing table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withConnection(cmd.Context(), func(conn *database.Connection) error {
				return bootstrap.InitializeSchema(cmd.Context(), conn)
			})
		},
	})

	schema.AddCommand(&cobra.Command{
		Use:   "ddl",
		Short: "Print the CREATE statements for the configured database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			defs, err := bootstrap.GetTableDefinitions()
			if err != nil {
				return err
			}
			return withConnection(cmd.Context(), func(conn *database.Connection) error {
				repo := persistence.NewSchemaRepository(conn)
				for _, def := range defs {
					statements, err := repo.BuildCreateTableDDL(def)
					if err != nil {
						return err
					}
					for _, stmt := range statements {
						if _, err := fmt.Fprintf(cmd.OutOrStdout(), "%s;\n", stmt); err != nil {
							return err
						}
					}
				}
				return nil
			})
		},
	})

	var confirmed bool
	drop := &cobra.Command{
		Use:   "drop",
		Short: "Drop every table of the store, deleting all data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !confirmed {
				return errors.New("refusing to drop tables without --yes")
			}
			return withConnection(cmd.Context(), func(conn *database.Connection) error {
				return bootstrap.DropSchema(cmd.Context(), conn)
			})
		},
	}
	drop.Flags().BoolVar(&confirmed, "yes", false, "confirm that all data is deleted")
	schema.AddCommand(drop)

	return schema
}

var migrateArgs struct {
	Owner               string
	IncludeCustomFields bool
}

func newMigratePlatformsCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "migrate-platforms",
		Short: "Copy an owner's legacy platforms into the Platforms module. Safe to repeat.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(sm *services.ServiceManager) error {
				result, err := sm.Migration.MigratePlatforms(cmd.Context(), migrateArgs.Owner, models.MigrationOptions{
					IncludeCustomFields: migrateArgs.IncludeCustomFields,
				})
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), result)
			})
		},
	}
	command.Flags().StringVar(&migrateArgs.Owner, "owner", "", "the user id whose platforms are migrated")
	command.Flags().BoolVar(&migrateArgs.IncludeCustomFields, "include-custom-fields", false, "fold the owner's custom fields and values into the module")
	_ = command.MarkFlagRequired("owner")
	return command
}

var auditArgs struct {
	Owner  string
	Module string
}

func newAuditKeysCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "audit-keys",
		Short: "Report record data keys that have no field definition",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withServices(cmd.Context(), func(sm *services.ServiceManager) error {
				report, err := sm.Records.AuditKeys(cmd.Context(), auditArgs.Owner, auditArgs.Module)
				if err != nil {
					return err
				}
				return printJSON(cmd.OutOrStdout(), report)
			})
		},
	}
	command.Flags().StringVar(&auditArgs.Owner, "owner", "", "the user id owning the module")
	command.Flags().StringVar(&auditArgs.Module, "module", "", "the module id to audit")
	_ = command.MarkFlagRequired("owner")
	_ = command.MarkFlagRequired("module")
	return command
}

var tokenArgs struct {
	User  string
	Name  string
	Email string
	TTL   time.Duration
}

func newTokenCommand() *cobra.Command {
	command := &cobra.Command{
		Use:   "token",
		Short: "Issue a bearer token for a user id (development only)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, closer, err := loadConfig()
			if err != nil {
				return err
			}
			defer closer.Close()

			token, err := auth.GenerateToken(auth.UserSession{
				ID:    tokenArgs.User,
				Name:  tokenArgs.Name,
				Email: tokenArgs.Email,
			}, tokenArgs.TTL)
			if err != nil {
				return err
			}
			logging.Component("modulectl").WithField("user", tokenArgs.User).Info("🔐 Token issued")
			_, err = cmd.OutOrStdout().Write([]byte(token + "\n"))
			return err
		},
	}
	command.Flags().StringVar(&tokenArgs.User, "user", "", "the user id the token authenticates")
	command.Flags().StringVar(&tokenArgs.Name, "name", "", "display name carried in the token")
	command.Flags().StringVar(&tokenArgs.Email, "email", "", "email carried in the token")
	command.Flags().DurationVar(&tokenArgs.TTL, "ttl", 24*time.Hour, "token lifetime")
	_ = command.MarkFlagRequired("user")
	return command
}

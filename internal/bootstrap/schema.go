package bootstrap

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
)

// InitializeSchema creates every table that does not exist yet. It is safe to
// run on each start.
func InitializeSchema(ctx context.Context, conn *database.Connection) error {
	log := logrus.WithField("component", "bootstrap")
	log.WithField("dialect", conn.Dialect()).Info("🔧 Initializing schema...")

	defs, err := GetTableDefinitions()
	if err != nil {
		return err
	}

	repo := persistence.NewSchemaRepository(conn)
	for _, def := range defs {
		if err := repo.CreateTable(ctx, def); err != nil {
			return fmt.Errorf("schema initialisation stopped at %s: %w", def.TableName, err)
		}
	}

	log.WithField("tables", len(defs)).Info("✅ Schema initialized")
	return nil
}

// DropSchema drops every table in reverse creation order. All data is lost.
func DropSchema(ctx context.Context, conn *database.Connection) error {
	log := logrus.WithField("component", "bootstrap")

	defs, err := GetTableDefinitions()
	if err != nil {
		return err
	}

	repo := persistence.NewSchemaRepository(conn)
	for i := len(defs) - 1; i >= 0; i-- {
		log.WithField("table", defs[i].TableName).Warn("🔥 Dropping table")
		if err := repo.DropTable(ctx, defs[i].TableName); err != nil {
			return fmt.Errorf("failed to drop %s: %w", defs[i].TableName, err)
		}
	}
	return nil
}

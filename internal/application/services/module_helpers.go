package services

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
)

// Field keys are identifiers: they become JSON keys of record data and
// variables of stats predicates.
var fieldKeyPattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

const maxFieldKeyLength = 100

func checkFieldKey(verrs *apperrors.ValidationErrors, field, key string) {
	switch {
	case key == "":
		verrs.Add(field, "is required")
	case len(key) > maxFieldKeyLength:
		verrs.Add(field, fmt.Sprintf("must be at most %d characters", maxFieldKeyLength))
	case !fieldKeyPattern.MatchString(key):
		verrs.Add(field, "must start with a letter or underscore and contain only letters, digits and underscores")
	}
}

func checkRequired(verrs *apperrors.ValidationErrors, field, value string) {
	if strings.TrimSpace(value) == "" {
		verrs.Add(field, "is required")
	}
}

// loadOwnedModule returns the module if it exists and belongs to ownerID.
// A module of another owner is reported as not found.
func loadOwnedModule(ctx context.Context, repo *persistence.ModuleRepository, tx *sql.Tx, ownerID, moduleID string) (*models.Module, error) {
	m, err := repo.FindByID(ctx, tx, moduleID)
	if err != nil {
		return nil, err
	}
	if m == nil || m.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("Module", moduleID)
	}
	return m, nil
}

func nowUTC() time.Time {
	return time.Now().UTC().Truncate(time.Microsecond)
}

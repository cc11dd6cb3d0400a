package services

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// ModuleService manages module definitions and their cascading deletion
type ModuleService struct {
	tx       *persistence.TransactionManager
	modules  *persistence.ModuleRepository
	fields   *persistence.FieldRepository
	sections *persistence.SectionRepository
	records  *persistence.RecordRepository
	stats    *StatsService
	events   *EventBus
	log      *logrus.Entry
}

// NewModuleService creates a new ModuleService
func NewModuleService(
	tx *persistence.TransactionManager,
	modules *persistence.ModuleRepository,
	fields *persistence.FieldRepository,
	sections *persistence.SectionRepository,
	records *persistence.RecordRepository,
	stats *StatsService,
	bus *EventBus,
) *ModuleService {
	return &ModuleService{
		tx:       tx,
		modules:  modules,
		fields:   fields,
		sections: sections,
		records:  records,
		stats:    stats,
		events:   bus,
		log:      logging.Component("module_service"),
	}
}

// Create adds a user module. Blank names are rejected and a duplicate name
// for the owner is a ConflictError.
func (s *ModuleService) Create(ctx context.Context, ownerID string, in models.ModuleInput) (*models.Module, error) {
	m := &models.Module{
		ID:           utils.GenerateID(),
		OwnerID:      ownerID,
		Name:         strings.TrimSpace(in.Name),
		SingularName: strings.TrimSpace(in.SingularName),
		PluralName:   strings.TrimSpace(in.PluralName),
		Icon:         in.Icon,
		Description:  in.Description,
		StatsPolicy:  in.StatsPolicy,
	}
	if err := s.validate(m); err != nil {
		return nil, err
	}
	m.CreatedAt = nowUTC()
	m.UpdatedAt = m.CreatedAt

	if err := s.modules.Insert(ctx, nil, m); err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"module_id": m.ID, "owner_id": ownerID, "name": m.Name}).Info("✅ Module created")
	s.events.notify(ctx, events.ModuleCreated, SchemaEventPayload{ModuleID: m.ID, OwnerID: ownerID})
	return m, nil
}

func (s *ModuleService) validate(m *models.Module) error {
	var verrs apperrors.ValidationErrors
	checkRequired(&verrs, "name", m.Name)
	checkRequired(&verrs, "singularName", m.SingularName)
	checkRequired(&verrs, "pluralName", m.PluralName)
	if m.StatsPolicy.IsZero() {
		m.StatsPolicy = nil
	} else if err := verrs.Append("statsPolicy", s.stats.ValidatePolicy(m.StatsPolicy)); err != nil {
		return err
	}
	return verrs.ErrOrNil()
}

// Get returns a module of the owner or NotFound
func (s *ModuleService) Get(ctx context.Context, ownerID, moduleID string) (*models.Module, error) {
	return loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID)
}

// List returns the owner's modules ordered by name
func (s *ModuleService) List(ctx context.Context, ownerID string) ([]*models.Module, error) {
	return s.modules.ListByOwner(ctx, ownerID)
}

// Update applies a partial patch. The id and the system flag never change.
func (s *ModuleService) Update(ctx context.Context, ownerID, moduleID string, patch models.ModulePatch) (*models.Module, error) {
	m, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID)
	if err != nil {
		return nil, err
	}
	if patch.IsEmpty() {
		return m, nil
	}

	if patch.Name != nil {
		m.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.SingularName != nil {
		m.SingularName = strings.TrimSpace(*patch.SingularName)
	}
	if patch.PluralName != nil {
		m.PluralName = strings.TrimSpace(*patch.PluralName)
	}
	if patch.Icon != nil {
		m.Icon = patch.Icon
	}
	if patch.Description != nil {
		m.Description = patch.Description
	}
	if patch.StatsPolicy != nil {
		m.StatsPolicy = patch.StatsPolicy
	}
	if err := s.validate(m); err != nil {
		return nil, err
	}

	updates, err := persistence.ModuleColumnValues(m)
	if err != nil {
		return nil, err
	}
	if err := s.modules.Update(ctx, nil, m.ID, updates); err != nil {
		return nil, err
	}
	s.log.WithField("module_id", m.ID).Info("✏️  Module updated")
	return s.modules.FindByID(ctx, nil, m.ID)
}

// Delete removes a non-system module together with its records, fields and
// sections in one transaction.
func (s *ModuleService) Delete(ctx context.Context, ownerID, moduleID string) error {
	var removed int64
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		m, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID)
		if err != nil {
			return err
		}
		if m.IsSystem {
			return apperrors.NewInvalidOperationError("delete module", fmt.Sprintf("'%s' is a system module", m.Name))
		}

		records, err := s.records.DeleteByModule(ctx, tx, m.ID)
		if err != nil {
			return fmt.Errorf("failed to delete records: %w", err)
		}
		fields, err := s.fields.DeleteByModule(ctx, tx, m.ID)
		if err != nil {
			return fmt.Errorf("failed to delete fields: %w", err)
		}
		sections, err := s.sections.DeleteByModule(ctx, tx, m.ID)
		if err != nil {
			return fmt.Errorf("failed to delete sections: %w", err)
		}
		if _, err := s.modules.Delete(ctx, tx, m.ID); err != nil {
			return fmt.Errorf("failed to delete module: %w", err)
		}

		removed = records
		s.log.WithFields(logrus.Fields{
			"module_id": m.ID,
			"records":   records,
			"fields":    fields,
			"sections":  sections,
		}).Info("🗑️  Module deleted")
		return nil
	})
	if err != nil {
		return err
	}
	s.events.notify(ctx, events.ModuleDeleted, SchemaEventPayload{ModuleID: moduleID, OwnerID: ownerID, Affected: removed})
	return nil
}

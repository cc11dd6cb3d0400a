package services

import (
	"context"
	"database/sql"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/constants"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// SectionService manages form sections. Sections only group fields; removing
// one never removes a field.
type SectionService struct {
	tx       *persistence.TransactionManager
	modules  *persistence.ModuleRepository
	sections *persistence.SectionRepository
	fields   *persistence.FieldRepository
	log      *logrus.Entry
}

func NewSectionService(
	tx *persistence.TransactionManager,
	modules *persistence.ModuleRepository,
	sections *persistence.SectionRepository,
	fields *persistence.FieldRepository,
) *SectionService {
	return &SectionService{
		tx:       tx,
		modules:  modules,
		sections: sections,
		fields:   fields,
		log:      logging.Component("section_service"),
	}
}

func (s *SectionService) List(ctx context.Context, ownerID, moduleID string) ([]*models.ModuleSection, error) {
	m, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID)
	if err != nil {
		return nil, err
	}
	return s.sections.ListByModule(ctx, m.ID)
}

// Create appends a section unless an explicit display order is given
func (s *SectionService) Create(ctx context.Context, ownerID, moduleID string, in models.SectionInput) (*models.ModuleSection, error) {
	sec := &models.ModuleSection{
		ID:                   utils.GenerateID(),
		ModuleID:             moduleID,
		Title:                strings.TrimSpace(in.Title),
		Description:          in.Description,
		IsCollapsible:        in.IsCollapsible,
		IsCollapsedByDefault: in.IsCollapsedByDefault,
	}
	var verrs apperrors.ValidationErrors
	checkRequired(&verrs, "title", sec.Title)
	if in.DisplayOrder != nil && *in.DisplayOrder < 0 {
		verrs.Add("displayOrder", "must not be negative")
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}

	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		if in.DisplayOrder != nil {
			sec.DisplayOrder = *in.DisplayOrder
		} else {
			next, err := s.sections.NextDisplayOrder(ctx, tx, moduleID)
			if err != nil {
				return err
			}
			sec.DisplayOrder = next
		}
		sec.CreatedAt = nowUTC()
		sec.UpdatedAt = sec.CreatedAt
		return s.sections.Insert(ctx, tx, sec)
	})
	if err != nil {
		return nil, err
	}
	s.log.WithFields(logrus.Fields{"module_id": moduleID, "section_id": sec.ID}).Info("✅ Section created")
	return sec, nil
}

func (s *SectionService) loadSection(ctx context.Context, tx *sql.Tx, moduleID, sectionID string) (*models.ModuleSection, error) {
	sec, err := s.sections.FindByID(ctx, tx, sectionID)
	if err != nil {
		return nil, err
	}
	if sec == nil || sec.ModuleID != moduleID {
		return nil, apperrors.NewNotFoundError("Section", sectionID)
	}
	return sec, nil
}

// Update applies a partial patch
func (s *SectionService) Update(ctx context.Context, ownerID, moduleID, sectionID string, patch models.SectionPatch) (*models.ModuleSection, error) {
	if _, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID); err != nil {
		return nil, err
	}
	sec, err := s.loadSection(ctx, nil, moduleID, sectionID)
	if err != nil {
		return nil, err
	}

	var verrs apperrors.ValidationErrors
	updates := map[string]interface{}{}
	if patch.Title != nil {
		title := strings.TrimSpace(*patch.Title)
		checkRequired(&verrs, "title", title)
		updates[constants.FieldTitle] = title
	}
	if patch.Description != nil {
		updates[constants.FieldDescription] = emptyToNilValue(patch.Description)
	}
	if patch.DisplayOrder != nil {
		if *patch.DisplayOrder < 0 {
			verrs.Add("displayOrder", "must not be negative")
		}
		updates[constants.FieldDisplayOrder] = *patch.DisplayOrder
	}
	if patch.IsCollapsible != nil {
		updates[constants.FieldIsCollapsible] = *patch.IsCollapsible
	}
	if patch.IsCollapsedByDefault != nil {
		updates[constants.FieldIsCollapsedByDefault] = *patch.IsCollapsedByDefault
	}
	if err := verrs.ErrOrNil(); err != nil {
		return nil, err
	}
	if len(updates) == 0 {
		return sec, nil
	}

	if err := s.sections.Update(ctx, nil, sec.ID, updates); err != nil {
		return nil, err
	}
	return s.sections.FindByID(ctx, nil, sec.ID)
}

func emptyToNilValue(s *string) interface{} {
	if p := emptyToNil(s); p != nil {
		return *p
	}
	return nil
}

// Delete detaches the section's fields and removes the section in one transaction
func (s *SectionService) Delete(ctx context.Context, ownerID, moduleID, sectionID string) error {
	var detached int64
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		sec, err := s.loadSection(ctx, tx, moduleID, sectionID)
		if err != nil {
			return err
		}
		if detached, err = s.fields.ClearSection(ctx, tx, sec.ID); err != nil {
			return err
		}
		_, err = s.sections.Delete(ctx, tx, sec.ID)
		return err
	})
	if err != nil {
		return err
	}
	s.log.WithFields(logrus.Fields{"module_id": moduleID, "section_id": sectionID, "detached_fields": detached}).Info("🗑️  Section deleted")
	return nil
}

package services

import (
	"context"
	"database/sql"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/models"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	apperrors "github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/errors"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/utils"
)

// RecordService validates and stores record data against the module's
// current field definitions
type RecordService struct {
	tx      *persistence.TransactionManager
	modules *persistence.ModuleRepository
	fields  *persistence.FieldRepository
	records *persistence.RecordRepository
	events  *EventBus
	log     *logrus.Entry
}

func NewRecordService(
	tx *persistence.TransactionManager,
	modules *persistence.ModuleRepository,
	fields *persistence.FieldRepository,
	records *persistence.RecordRepository,
	bus *EventBus,
) *RecordService {
	return &RecordService{
		tx:      tx,
		modules: modules,
		fields:  fields,
		records: records,
		events:  bus,
		log:     logging.Component("record_service"),
	}
}

// Create validates data, fills defaults of absent fields and stores the
// canonical result. Every violation is reported in one ValidationErrors.
func (s *RecordService) Create(ctx context.Context, ownerID, moduleID string, data models.RecordData, createdBy string) (*models.ModuleRecord, error) {
	if createdBy == "" {
		createdBy = ownerID
	}
	var rec *models.ModuleRecord
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		fields, err := s.fields.ListByModule(ctx, tx, moduleID)
		if err != nil {
			return err
		}
		prepared, orphans, err := prepareData(fields, data, true)
		if err != nil {
			return err
		}
		if err := s.checkUnique(ctx, tx, moduleID, fields, prepared, ""); err != nil {
			return err
		}
		s.logOrphans(moduleID, orphans)

		now := nowUTC()
		rec = &models.ModuleRecord{
			ID:        utils.GenerateID(),
			ModuleID:  moduleID,
			OwnerID:   ownerID,
			Data:      prepared,
			CreatedBy: createdBy,
			UpdatedBy: createdBy,
			CreatedAt: now,
			UpdatedAt: now,
		}
		return s.records.Insert(ctx, tx, rec)
	})
	if err != nil {
		return nil, err
	}

	s.log.WithFields(logrus.Fields{"module_id": moduleID, "record_id": rec.ID}).Debug("Record created")
	s.events.notify(ctx, events.RecordCreated, RecordEventPayload{ModuleID: moduleID, Record: rec, ActorID: createdBy})
	return rec, nil
}

func (s *RecordService) checkUnique(ctx context.Context, tx *sql.Tx, moduleID string, fields []*models.ModuleField, data models.RecordData, selfID string) error {
	hasUnique := false
	for _, f := range fields {
		hasUnique = hasUnique || f.IsUnique
	}
	if !hasUnique {
		return nil
	}
	others, err := s.records.ListByModule(ctx, tx, moduleID)
	if err != nil {
		return err
	}
	return uniqueViolations(fields, data, others, selfID)
}

func (s *RecordService) logOrphans(moduleID string, orphans []string) {
	if len(orphans) == 0 {
		return
	}
	sort.Strings(orphans)
	s.log.WithFields(logrus.Fields{"module_id": moduleID, "keys": orphans}).Warn("⚠️  Record data holds keys without a field definition")
}

// loadRecord returns the record if it belongs to the module and the owner
func (s *RecordService) loadRecord(ctx context.Context, tx *sql.Tx, ownerID, moduleID, recordID string) (*models.ModuleRecord, error) {
	rec, err := s.records.FindByID(ctx, tx, recordID)
	if err != nil {
		return nil, err
	}
	if rec == nil || rec.ModuleID != moduleID || rec.OwnerID != ownerID {
		return nil, apperrors.NewNotFoundError("Record", recordID)
	}
	return rec, nil
}

// Get returns one record with values of defined fields in canonical form
func (s *RecordService) Get(ctx context.Context, ownerID, moduleID, recordID string) (*models.ModuleRecord, error) {
	if _, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID); err != nil {
		return nil, err
	}
	rec, err := s.loadRecord(ctx, nil, ownerID, moduleID, recordID)
	if err != nil {
		return nil, err
	}
	fields, err := s.fields.ListByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	rec.Data = normalizeData(fields, rec.Data)
	return rec, nil
}

// List returns the owner's records of a module, newest first
func (s *RecordService) List(ctx context.Context, ownerID, moduleID string) ([]*models.ModuleRecord, error) {
	if _, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID); err != nil {
		return nil, err
	}
	fields, err := s.fields.ListByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListByOwner(ctx, nil, moduleID, ownerID)
	if err != nil {
		return nil, err
	}
	for _, rec := range records {
		rec.Data = normalizeData(fields, rec.Data)
	}
	return records, nil
}

// Update merges patch into the stored data: present keys overwrite, nil
// values remove the key. The merged data is validated like a new record.
func (s *RecordService) Update(ctx context.Context, ownerID, moduleID, recordID string, patch models.RecordData, updatedBy string) (*models.ModuleRecord, error) {
	if updatedBy == "" {
		updatedBy = ownerID
	}
	var rec *models.ModuleRecord
	err := s.tx.WithTransaction(ctx, func(tx *sql.Tx) error {
		if _, err := loadOwnedModule(ctx, s.modules, tx, ownerID, moduleID); err != nil {
			return err
		}
		var err error
		if rec, err = s.loadRecord(ctx, tx, ownerID, moduleID, recordID); err != nil {
			return err
		}
		fields, err := s.fields.ListByModule(ctx, tx, moduleID)
		if err != nil {
			return err
		}

		merged := normalizeData(fields, rec.Data)
		if merged == nil {
			merged = models.RecordData{}
		}
		for key, value := range patch {
			if value == nil {
				delete(merged, key)
				continue
			}
			merged[key] = value
		}

		prepared, orphans, err := prepareData(fields, merged, false)
		if err != nil {
			return err
		}
		if err := s.checkUnique(ctx, tx, moduleID, fields, prepared, rec.ID); err != nil {
			return err
		}
		s.logOrphans(moduleID, orphans)

		if err := s.records.UpdateData(ctx, tx, rec.ID, prepared, updatedBy); err != nil {
			return err
		}
		rec.Data = prepared
		rec.UpdatedBy = updatedBy
		rec.UpdatedAt = nowUTC()
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.events.notify(ctx, events.RecordUpdated, RecordEventPayload{ModuleID: moduleID, Record: rec, ActorID: updatedBy})
	return rec, nil
}

func (s *RecordService) Delete(ctx context.Context, ownerID, moduleID, recordID string) error {
	if _, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID); err != nil {
		return err
	}
	rec, err := s.loadRecord(ctx, nil, ownerID, moduleID, recordID)
	if err != nil {
		return err
	}
	if _, err := s.records.Delete(ctx, nil, rec.ID); err != nil {
		return err
	}
	s.events.notify(ctx, events.RecordDeleted, RecordEventPayload{ModuleID: moduleID, Record: rec, ActorID: ownerID})
	return nil
}

// AuditKeys counts, across the module's records, the data keys that have no
// field definition. Keys are ordered by record count, then name.
func (s *RecordService) AuditKeys(ctx context.Context, ownerID, moduleID string) (*models.OrphanKeyReport, error) {
	if _, err := loadOwnedModule(ctx, s.modules, nil, ownerID, moduleID); err != nil {
		return nil, err
	}
	fields, err := s.fields.ListByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}
	records, err := s.records.ListByModule(ctx, nil, moduleID)
	if err != nil {
		return nil, err
	}

	defined := make(map[string]bool, len(fields))
	for _, f := range fields {
		defined[f.FieldKey] = true
	}
	counts := map[string]int{}
	for _, rec := range records {
		for key := range rec.Data {
			if !defined[key] {
				counts[key]++
			}
		}
	}

	report := &models.OrphanKeyReport{
		ModuleID:     moduleID,
		RecordsTotal: len(records),
		Keys:         make([]models.OrphanKey, 0, len(counts)),
	}
	for key, n := range counts {
		report.Keys = append(report.Keys, models.OrphanKey{Key: key, RecordCount: n})
	}
	sort.Slice(report.Keys, func(i, j int) bool {
		if report.Keys[i].RecordCount != report.Keys[j].RecordCount {
			return report.Keys[i].RecordCount > report.Keys[j].RecordCount
		}
		return report.Keys[i].Key < report.Keys[j].Key
	})
	return report, nil
}

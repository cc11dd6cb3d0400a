package services

import (
	"context"

	"github.com/sirupsen/logrus"

	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/domain/events"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/database"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/internal/infrastructure/persistence"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/expression"
	"github.com/wbaguley/GTM-Systems-AI-Planner-sub000/pkg/logging"
)

// ServiceManager orchestrates all services with dependency injection
type ServiceManager struct {
	db *database.Connection

	TxManager    *persistence.TransactionManager
	EventBus     *EventBus
	Modules      *ModuleService
	Fields       *FieldService
	Sections     *SectionService
	Records      *RecordService
	Stats        *StatsService
	Migration    *MigrationService
	CustomFields *CustomFieldService
}

// NewServiceManager creates a new service manager with all dependencies wired
func NewServiceManager(db *database.Connection) *ServiceManager {
	sm := &ServiceManager{db: db}

	modules := persistence.NewModuleRepository(db)
	fields := persistence.NewFieldRepository(db)
	sections := persistence.NewSectionRepository(db)
	records := persistence.NewRecordRepository(db)
	platforms := persistence.NewPlatformRepository(db)
	customFields := persistence.NewCustomFieldRepository(db)

	// Initialize services in dependency order
	sm.TxManager = persistence.NewTransactionManager(db)
	sm.EventBus = NewEventBus()
	sm.Stats = NewStatsService(modules, records, expression.NewEngine())
	sm.Modules = NewModuleService(sm.TxManager, modules, fields, sections, records, sm.Stats, sm.EventBus)
	sm.Fields = NewFieldService(sm.TxManager, modules, fields, sections, records, sm.EventBus)
	sm.Sections = NewSectionService(sm.TxManager, modules, sections, fields)
	sm.Records = NewRecordService(sm.TxManager, modules, fields, records, sm.EventBus)
	sm.Migration = NewMigrationService(sm.TxManager, modules, fields, records, platforms, customFields, sm.EventBus)
	sm.CustomFields = NewCustomFieldService(sm.TxManager, customFields, platforms)

	sm.registerAuditTrail()
	return sm
}

// DB returns the underlying connection
func (sm *ServiceManager) DB() *database.Connection {
	return sm.db
}

// registerAuditTrail logs every record mutation at info level
func (sm *ServiceManager) registerAuditTrail() {
	audit := logging.Component("audit")
	for _, eventType := range []EventType{events.RecordCreated, events.RecordUpdated, events.RecordDeleted} {
		eventType := eventType
		sm.EventBus.Subscribe(eventType, func(_ context.Context, payload interface{}) error {
			p, ok := payload.(RecordEventPayload)
			if !ok || p.Record == nil {
				return nil
			}
			audit.WithFields(logrus.Fields{
				"event":     eventType.String(),
				"module_id": p.ModuleID,
				"record_id": p.Record.ID,
				"actor_id":  p.ActorID,
			}).Info("📝 Record changed")
			return nil
		})
	}
}

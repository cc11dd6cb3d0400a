// Package services provides the business logic layer of the module engine.
//
// This package contains the service implementations that handle:
//   - Module definitions and their cascading deletion (ModuleService)
//   - Field definitions, ordering and key scrubbing (FieldService)
//   - Form sections (SectionService)
//   - Record validation against field definitions (RecordService)
//   - Per-module aggregation under a stats policy (StatsService)
//   - Backfill from the legacy platforms table (MigrationService)
//   - The legacy per-user custom field overlay (CustomFieldService)
//
// Multi-row mutations run inside persistence.TransactionManager and publish a
// lifecycle event on the EventBus after commit.
package services

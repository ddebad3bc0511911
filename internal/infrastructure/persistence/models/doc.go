// Package models contains GORM-specific persistence models that map to database tables.
// These models are separate from domain entities to keep the domain layer free
// from ORM concerns.
//
// Each model provides:
//   - TableName, matching migrations/000001_init_schema.up.sql
//   - ToDomain, rebuilding the aggregate
//   - XModelFromDomain, building the row from the aggregate
//
// Structure:
//   - base.go: BaseModel, AggregateModel, TenantAggregateModel
//   - identity.go: users
//   - school.go: schools and their settings
//   - people.go: students, teachers
//   - academic.go: classes, subjects, class_subjects
//   - attendance.go: attendance_records
//   - exams.go: exams, exam_results
//   - finance.go: fee_structures, invoices, invoice_items, payments
//   - inventory.go: inventory_items, inventory_movements
//   - communication.go: announcements, messages
package models

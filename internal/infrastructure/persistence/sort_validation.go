package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// withCommon returns the common fields plus the given ones
func withCommon(fields ...string) map[string]bool {
	m := make(map[string]bool, len(CommonSortFields)+len(fields))
	for k := range CommonSortFields {
		m[k] = true
	}
	for _, f := range fields {
		m[f] = true
	}
	return m
}

// UserSortFields contains allowed sort fields for users
var UserSortFields = withCommon("username", "email", "display_name", "role", "status", "last_login_at")

// SchoolSortFields contains allowed sort fields for schools
var SchoolSortFields = withCommon("code", "name", "status")

// StudentSortFields contains allowed sort fields for students
var StudentSortFields = withCommon("admission_number", "first_name", "last_name", "gender", "date_of_birth", "enrollment_date", "status")

// TeacherSortFields contains allowed sort fields for teachers
var TeacherSortFields = withCommon("employee_number", "first_name", "last_name", "hire_date", "status")

// ClassSortFields contains allowed sort fields for classes
var ClassSortFields = withCommon("name", "grade_level", "section", "academic_year", "capacity")

// SubjectSortFields contains allowed sort fields for subjects
var SubjectSortFields = withCommon("code", "name")

// AttendanceSortFields contains allowed sort fields for attendance records
var AttendanceSortFields = withCommon("date", "status", "student_id", "class_id")

// ExamSortFields contains allowed sort fields for exams
var ExamSortFields = withCommon("name", "exam_date", "type", "status", "term")

// FeeStructureSortFields contains allowed sort fields for fee structures
var FeeStructureSortFields = withCommon("name", "amount", "frequency", "academic_year", "term")

// InvoiceSortFields contains allowed sort fields for invoices
var InvoiceSortFields = withCommon("invoice_number", "issue_date", "due_date", "total_amount", "paid_amount", "status")

// InventoryItemSortFields contains allowed sort fields for inventory items
var InventoryItemSortFields = withCommon("code", "name", "category", "quantity", "reorder_level", "unit_cost")

// AnnouncementSortFields contains allowed sort fields for announcements
var AnnouncementSortFields = withCommon("title", "priority", "status", "published_at", "expires_at")

// MessageSortFields contains allowed sort fields for messages
var MessageSortFields = withCommon("subject", "read_at")

package identity

import (
	"strings"

	"github.com/schoolhub/backend/internal/domain/shared"
)

// Role is the single role a user holds inside a school
type Role string

const (
	RoleSuperAdmin  Role = "super_admin"
	RoleSchoolAdmin Role = "school_admin"
	RoleTeacher     Role = "teacher"
	RoleStudent     Role = "student"
	RoleParent      Role = "parent"
)

// AllRoles lists the roles in descending privilege order
var AllRoles = []Role{RoleSuperAdmin, RoleSchoolAdmin, RoleTeacher, RoleStudent, RoleParent}

// Permission actions
const (
	ActionRead   = "read"
	ActionCreate = "create"
	ActionUpdate = "update"
	ActionDelete = "delete"
)

// Resources guarded by the permission middleware
const (
	ResourceUsers         = "users"
	ResourceSchools       = "schools"
	ResourceSettings      = "settings"
	ResourceStudents      = "students"
	ResourceTeachers      = "teachers"
	ResourceClasses       = "classes"
	ResourceSubjects      = "subjects"
	ResourceAttendance    = "attendance"
	ResourceExams         = "exams"
	ResourceFeeStructures = "fee_structures"
	ResourceInvoices      = "invoices"
	ResourceInventory     = "inventory"
	ResourceAnnouncements = "announcements"
	ResourceMessages      = "messages"
	ResourceStatistics    = "statistics"
	ResourceDashboard     = "dashboard"
	ResourceReports       = "reports"
	ResourceSelf          = "self"
)

// Explicit permissions that do not follow the method-derived action
const (
	PermAttendanceMark  = "attendance:mark"
	PermExamsGrade      = "exams:grade"
	PermInvoicesPay     = "invoices:pay"
	PermInvoicesIssue   = "invoices:issue"
	PermReportsExport   = "reports:export"
	PermStudentsImport  = "students:import"
	PermUsersResetPass  = "users:reset_password"
	PermSelfRead        = "self:read"
	PermAllPermissions  = "*"
	permissionSeparator = ":"
)

var schoolResources = []string{
	ResourceUsers, ResourceSettings, ResourceStudents, ResourceTeachers, ResourceClasses,
	ResourceSubjects, ResourceAttendance, ResourceExams, ResourceFeeStructures, ResourceInvoices,
	ResourceInventory, ResourceAnnouncements, ResourceMessages, ResourceStatistics,
	ResourceDashboard, ResourceReports,
}

var rolePermissions = map[Role][]string{
	RoleSuperAdmin: {PermAllPermissions},
	RoleSchoolAdmin: append(crud(schoolResources...),
		PermAttendanceMark, PermExamsGrade, PermInvoicesPay, PermInvoicesIssue,
		PermReportsExport, PermStudentsImport, PermUsersResetPass, PermSelfRead,
	),
	RoleTeacher: append(read(
		ResourceStudents, ResourceTeachers, ResourceClasses, ResourceSubjects, ResourceAttendance,
		ResourceExams, ResourceAnnouncements, ResourceStatistics, ResourceDashboard,
	),
		"attendance:create", "attendance:update", "attendance:delete", PermAttendanceMark,
		"exams:create", "exams:update", PermExamsGrade,
		"announcements:create", "announcements:update",
		"messages:read", "messages:create", "messages:update", "messages:delete",
		PermSelfRead,
	),
	RoleStudent: {
		"announcements:read", "dashboard:read",
		"messages:read", "messages:create", "messages:update", "messages:delete",
		PermSelfRead,
	},
	RoleParent: {
		"announcements:read", "dashboard:read",
		"messages:read", "messages:create", "messages:update", "messages:delete",
		PermSelfRead,
	},
}

func crud(resources ...string) []string {
	perms := make([]string, 0, len(resources)*4)
	for _, r := range resources {
		perms = append(perms,
			r+permissionSeparator+ActionRead,
			r+permissionSeparator+ActionCreate,
			r+permissionSeparator+ActionUpdate,
			r+permissionSeparator+ActionDelete,
		)
	}
	return perms
}

func read(resources ...string) []string {
	perms := make([]string, 0, len(resources))
	for _, r := range resources {
		perms = append(perms, r+permissionSeparator+ActionRead)
	}
	return perms
}

// ParseRole validates and normalizes a role name
func ParseRole(s string) (Role, error) {
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	if !r.IsValid() {
		return "", shared.NewDomainError("INVALID_ROLE", "Role must be one of super_admin, school_admin, teacher, student, parent")
	}
	return r, nil
}

// IsValid reports whether r is a known role
func (r Role) IsValid() bool {
	_, ok := rolePermissions[r]
	return ok
}

// Permissions returns a copy of the role's permission codes
func (r Role) Permissions() []string {
	perms := rolePermissions[r]
	out := make([]string, len(perms))
	copy(out, perms)
	return out
}

// HasPermission checks a permission code against the role's static set.
// "*" grants everything and "resource:*" grants every action on a resource.
func (r Role) HasPermission(code string) bool {
	return MatchPermission(rolePermissions[r], code)
}

// MatchPermission checks code against a granted list, honoring wildcards
func MatchPermission(granted []string, code string) bool {
	resource := code
	if idx := strings.Index(code, permissionSeparator); idx >= 0 {
		resource = code[:idx]
	}
	for _, p := range granted {
		if p == PermAllPermissions || p == code || p == resource+":*" {
			return true
		}
	}
	return false
}

// IsStaff reports whether the role belongs to school staff
func (r Role) IsStaff() bool {
	return r == RoleSuperAdmin || r == RoleSchoolAdmin || r == RoleTeacher
}

// CanManage reports whether a user with role r may create or edit users with role target
func (r Role) CanManage(target Role) bool {
	switch r {
	case RoleSuperAdmin:
		return true
	case RoleSchoolAdmin:
		return target != RoleSuperAdmin
	default:
		return false
	}
}

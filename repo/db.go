package repo

import (
	"github.com/tutordesk/local-engine/memdb"
)

const (
	// PK is the alias for "id". Index "id" is required by all tables.
	PK = "id"

	SpaceForeignPK        = "space_uuid"
	UserForeignPK         = "user_uuid"
	StudentForeignPK      = "student_uuid"
	AcademicYearForeignPK = "academic_year_uuid"
	CourseForeignPK       = "course_uuid"
	GroupForeignPK        = "default_group_uuid"

	PhoneNumberIndex = "phone_number"
	SearchNameIndex  = "search_name"
	CreatedAtIndex   = "created_at"
	PushedIndex      = "pushed"
)

// GetSchema assembles the whole declarative definition the store is built
// from: table indexes, mandatory foreign keys, cascade deletes and unique
// constraints of every entity
func GetSchema() (*memdb.DBSchema, error) {
	return memdb.MergeDBSchemas(
		SpaceSchema(),
		UserSchema(),
		ScopeSchema(),
		AcademicYearSchema(),
		AcademicYearCourseSchema(),
		GroupSchema(),
		StudentSchema(),
		EnrollmentSchema(),
		SyncRecordSchema(),
	)
}

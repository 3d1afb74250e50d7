package model

import "encoding/json"

const EnrollmentType = "enrollment" // also, memdb schema name

// Enrollment binds a student to a course for one academic year. Name and
// SearchName are cached copies of the owning student's fields, kept in sync
// on student rename.
type Enrollment struct {
	UUID      EnrollmentUUID `json:"uuid"` // PK
	SpaceUUID SpaceUUID      `json:"space_uuid"`

	StudentUUID StudentUUID `json:"student_uuid"`
	Name        string      `json:"name"`
	SearchName  string      `json:"_name"`

	AcademicYearUUID AcademicYearUUID       `json:"academic_year_uuid"`
	CourseUUID       AcademicYearCourseUUID `json:"course_uuid"`
	DefaultGroupUUID GroupUUID              `json:"default_group_uuid"`
}

func (e *Enrollment) ObjType() string {
	return EnrollmentType
}

func (e *Enrollment) ObjId() string {
	return e.UUID
}

func (e *Enrollment) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(e)
}

package model

import "encoding/json"

const ScopeType = "scope" // also, memdb schema name

type ScopeName string

const (
	ManageCenter              ScopeName = "manage_center"
	ManageSpace               ScopeName = "manage_space"
	ManageStudents            ScopeName = "manage_students"
	ManageGroups              ScopeName = "manage_groups"
	ManageAcademicYears       ScopeName = "manage_academic_years"
	ManageAcademicYearCourses ScopeName = "manage_academic_year_courses"
)

// Scope is a capability grant: the user holds ScopeName, optionally
// restricted to one space. ManageCenter is the only grant that carries no
// space.
type Scope struct {
	UUID      ScopeUUID `json:"uuid"` // PK
	UserUUID  UserUUID  `json:"user_uuid"`
	SpaceUUID SpaceUUID `json:"space_uuid,omitempty"` // empty for center-wide grants
	Name      ScopeName `json:"scope_name"`
}

func (s *Scope) ObjType() string {
	return ScopeType
}

func (s *Scope) ObjId() string {
	return s.UUID
}

func (s *Scope) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(s)
}

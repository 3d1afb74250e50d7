package model

import "encoding/json"

const AcademicYearCourseType = "academic_year_course" // also, memdb schema name

type AcademicYearCourse struct {
	UUID             AcademicYearCourseUUID `json:"uuid"` // PK
	SpaceUUID        SpaceUUID              `json:"space_uuid"`
	AcademicYearUUID AcademicYearUUID       `json:"academic_year_uuid"`
	Grade            string                 `json:"grade"`
	Subjects         []string               `json:"subjects"`
}

func (c *AcademicYearCourse) ObjType() string {
	return AcademicYearCourseType
}

func (c *AcademicYearCourse) ObjId() string {
	return c.UUID
}

func (c *AcademicYearCourse) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(c)
}

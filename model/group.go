package model

import "encoding/json"

const GroupType = "group" // also, memdb schema name

type ScheduleSlot struct {
	Day         string `json:"day"`
	StartMinute int    `json:"start_minute"`
	EndMinute   int    `json:"end_minute"`
}

type Group struct {
	UUID             GroupUUID              `json:"uuid"` // PK
	SpaceUUID        SpaceUUID              `json:"space_uuid"`
	AcademicYearUUID AcademicYearUUID       `json:"academic_year_uuid"`
	CourseUUID       AcademicYearCourseUUID `json:"course_uuid"`
	Schedule         []ScheduleSlot         `json:"schedule"`
}

func (g *Group) ObjType() string {
	return GroupType
}

func (g *Group) ObjId() string {
	return g.UUID
}

func (g *Group) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(g)
}

package model

import "encoding/json"

const AcademicYearType = "academic_year" // also, memdb schema name

type AcademicYear struct {
	UUID      AcademicYearUUID `json:"uuid"` // PK
	SpaceUUID SpaceUUID        `json:"space_uuid"`
	Year      int              `json:"year"`
}

func (y *AcademicYear) ObjType() string {
	return AcademicYearType
}

func (y *AcademicYear) ObjId() string {
	return y.UUID
}

func (y *AcademicYear) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(y)
}

package model

import "encoding/json"

const StudentType = "student" // also, memdb schema name

type StudentPhoneNumberUse string

const (
	PhoneUseParent  StudentPhoneNumberUse = "parent"
	PhoneUseStudent StudentPhoneNumberUse = "student"
	PhoneUseHome    StudentPhoneNumberUse = "home"
	PhoneUseOther   StudentPhoneNumberUse = "other"
)

type StudentPhoneNumber struct {
	Number string                `json:"number"`
	Use    StudentPhoneNumberUse `json:"use"`
}

type Student struct {
	UUID      StudentUUID `json:"uuid"` // PK
	SpaceUUID SpaceUUID   `json:"space_uuid"`

	Name string `json:"name"`
	// SearchName is the canonical search key, derived from Name and never
	// entered directly
	SearchName string `json:"_name"`

	PhoneNumbers []StudentPhoneNumber `json:"phone_numbers"`
}

func (s *Student) ObjType() string {
	return StudentType
}

func (s *Student) ObjId() string {
	return s.UUID
}

func (s *Student) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(s)
}

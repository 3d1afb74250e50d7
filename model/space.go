package model

import "encoding/json"

const SpaceType = "space" // also, memdb schema name

// Space is the tenancy boundary: every scoped resource belongs to exactly
// one space.
type Space struct {
	UUID SpaceUUID `json:"uuid"` // PK
	Name string    `json:"name"`
}

func (s *Space) ObjType() string {
	return SpaceType
}

func (s *Space) ObjId() string {
	return s.UUID
}

func (s *Space) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(s)
}

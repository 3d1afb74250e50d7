package model

import "github.com/tutordesk/local-engine/memdb"

type (
	UserUUID               = string
	SpaceUUID              = string
	ScopeUUID              = string
	AcademicYearUUID       = string
	AcademicYearCourseUUID = string
	GroupUUID              = string
	StudentUUID            = string
	EnrollmentUUID         = string
	SyncRecordUUID         = string

	UnixTime = memdb.UnixTime
)

// Tables replicated to the central store. Every committed mutation of one of
// these produces exactly one sync record.
func TrackedTables() map[string]struct{} {
	return map[string]struct{}{
		UserType:               {},
		ScopeType:              {},
		SpaceType:              {},
		AcademicYearType:       {},
		AcademicYearCourseType: {},
		GroupType:              {},
		StudentType:            {},
		EnrollmentType:         {},
	}
}

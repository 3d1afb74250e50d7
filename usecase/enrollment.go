package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type EnrollmentService struct {
	op       *Operator
	repo     *repo.EnrollmentRepository
	students *repo.StudentRepository
}

// Create copies the student's name and search key into the enrollment. The
// copies are cache fields, the rename hook keeps them current afterwards.
func (s *EnrollmentService) Create(spaceUUID model.SpaceUUID, studentUUID model.StudentUUID,
	yearUUID model.AcademicYearUUID, courseUUID model.AcademicYearCourseUUID,
	groupUUID model.GroupUUID) (*model.Enrollment, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.EnrollmentType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	student, err := s.students.GetByID(studentUUID)
	if err != nil {
		return nil, err
	}
	enrollment := &model.Enrollment{
		UUID:             uuid.New(),
		SpaceUUID:        spaceUUID,
		StudentUUID:      studentUUID,
		Name:             student.Name,
		SearchName:       student.SearchName,
		AcademicYearUUID: yearUUID,
		CourseUUID:       courseUUID,
		DefaultGroupUUID: groupUUID,
	}
	if err := s.repo.Create(enrollment); err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) GetByID(id model.EnrollmentUUID) (*model.Enrollment, error) {
	enrollment, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.EnrollmentType, SpaceUUID: enrollment.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	return enrollment, nil
}

func (s *EnrollmentService) ChangeDefaultGroup(id model.EnrollmentUUID, groupUUID model.GroupUUID) (*model.Enrollment, error) {
	enrollment, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.EnrollmentType, SpaceUUID: enrollment.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	updated := *enrollment
	updated.DefaultGroupUUID = groupUUID
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *EnrollmentService) Delete(id model.EnrollmentUUID) error {
	enrollment, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	err = s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.EnrollmentType, SpaceUUID: enrollment.SpaceUUID, ObjID: id})
	if err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *EnrollmentService) List(spaceUUID model.SpaceUUID) ([]*model.Enrollment, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.EnrollmentType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.List(spaceUUID)
}

func (s *EnrollmentService) ListByStudent(studentUUID model.StudentUUID) ([]*model.Enrollment, error) {
	student, err := s.students.GetByID(studentUUID)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.EnrollmentType, SpaceUUID: student.SpaceUUID})
	if err != nil {
		return nil, err
	}
	return s.repo.ListByStudent(studentUUID)
}

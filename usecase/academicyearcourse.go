package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type AcademicYearCourseService struct {
	op   *Operator
	repo *repo.AcademicYearCourseRepository
}

func (s *AcademicYearCourseService) Create(spaceUUID model.SpaceUUID, yearUUID model.AcademicYearUUID,
	grade string, subjects []string) (*model.AcademicYearCourse, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.AcademicYearCourseType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	course := &model.AcademicYearCourse{
		UUID:             uuid.New(),
		SpaceUUID:        spaceUUID,
		AcademicYearUUID: yearUUID,
		Grade:            grade,
		Subjects:         subjects,
	}
	if err := s.repo.Create(course); err != nil {
		return nil, err
	}
	return course, nil
}

func (s *AcademicYearCourseService) GetByID(id model.AcademicYearCourseUUID) (*model.AcademicYearCourse, error) {
	course, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.AcademicYearCourseType, SpaceUUID: course.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	return course, nil
}

func (s *AcademicYearCourseService) Update(id model.AcademicYearCourseUUID, grade string, subjects []string) (*model.AcademicYearCourse, error) {
	course, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.AcademicYearCourseType, SpaceUUID: course.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	updated := *course
	updated.Grade = grade
	updated.Subjects = subjects
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *AcademicYearCourseService) Delete(id model.AcademicYearCourseUUID) error {
	course, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	err = s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.AcademicYearCourseType, SpaceUUID: course.SpaceUUID, ObjID: id})
	if err != nil {
		return err
	}
	return s.repo.CascadeDelete(id)
}

func (s *AcademicYearCourseService) List(spaceUUID model.SpaceUUID) ([]*model.AcademicYearCourse, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.AcademicYearCourseType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.List(spaceUUID)
}

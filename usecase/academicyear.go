package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type AcademicYearService struct {
	op   *Operator
	repo *repo.AcademicYearRepository
}

func (s *AcademicYearService) Create(spaceUUID model.SpaceUUID, year int) (*model.AcademicYear, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.AcademicYearType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	ay := &model.AcademicYear{
		UUID:      uuid.New(),
		SpaceUUID: spaceUUID,
		Year:      year,
	}
	if err := s.repo.Create(ay); err != nil {
		return nil, err
	}
	return ay, nil
}

func (s *AcademicYearService) GetByID(id model.AcademicYearUUID) (*model.AcademicYear, error) {
	ay, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.AcademicYearType, SpaceUUID: ay.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	return ay, nil
}

// Delete takes the year's courses, groups and enrollments with it.
func (s *AcademicYearService) Delete(id model.AcademicYearUUID) error {
	ay, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	err = s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.AcademicYearType, SpaceUUID: ay.SpaceUUID, ObjID: id})
	if err != nil {
		return err
	}
	return s.repo.CascadeDelete(id)
}

func (s *AcademicYearService) List(spaceUUID model.SpaceUUID) ([]*model.AcademicYear, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.AcademicYearType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.List(spaceUUID)
}

package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type GroupService struct {
	op   *Operator
	repo *repo.GroupRepository
}

func (s *GroupService) Create(spaceUUID model.SpaceUUID, yearUUID model.AcademicYearUUID,
	courseUUID model.AcademicYearCourseUUID, schedule []model.ScheduleSlot) (*model.Group, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.GroupType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	group := &model.Group{
		UUID:             uuid.New(),
		SpaceUUID:        spaceUUID,
		AcademicYearUUID: yearUUID,
		CourseUUID:       courseUUID,
		Schedule:         schedule,
	}
	if err := s.repo.Create(group); err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) GetByID(id model.GroupUUID) (*model.Group, error) {
	group, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.GroupType, SpaceUUID: group.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	return group, nil
}

func (s *GroupService) UpdateSchedule(id model.GroupUUID, schedule []model.ScheduleSlot) (*model.Group, error) {
	group, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.GroupType, SpaceUUID: group.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	updated := *group
	updated.Schedule = schedule
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *GroupService) Delete(id model.GroupUUID) error {
	group, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	err = s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.GroupType, SpaceUUID: group.SpaceUUID, ObjID: id})
	if err != nil {
		return err
	}
	return s.repo.CascadeDelete(id)
}

func (s *GroupService) List(spaceUUID model.SpaceUUID) ([]*model.Group, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.GroupType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.List(spaceUUID)
}

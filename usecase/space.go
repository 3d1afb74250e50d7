package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type SpaceService struct {
	op   *Operator
	repo *repo.SpaceRepository
}

func (s *SpaceService) Create(name string) (*model.Space, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.SpaceType}); err != nil {
		return nil, err
	}
	space := &model.Space{
		UUID: uuid.New(),
		Name: name,
	}
	if err := s.repo.Create(space); err != nil {
		return nil, err
	}
	return space, nil
}

func (s *SpaceService) GetByID(id model.SpaceUUID) (*model.Space, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.SpaceType, ObjID: id}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(id)
}

func (s *SpaceService) Rename(id model.SpaceUUID, name string) (*model.Space, error) {
	if err := s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.SpaceType, ObjID: id}); err != nil {
		return nil, err
	}
	space, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	updated := *space
	updated.Name = name
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the space and everything scoped to it: grants, academic
// years, courses, groups, students, enrollments.
func (s *SpaceService) Delete(id model.SpaceUUID) error {
	if err := s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.SpaceType, ObjID: id}); err != nil {
		return err
	}
	return s.repo.CascadeDelete(id)
}

func (s *SpaceService) List() ([]*model.Space, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.SpaceType}); err != nil {
		return nil, err
	}
	return s.repo.List()
}

package usecase

import (
	"fmt"

	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type ScopeService struct {
	op   *Operator
	repo *repo.ScopeRepository
}

// Grant gives the user a capability. ManageCenter is the only grant without
// a space, everything else must be bound to one.
func (s *ScopeService) Grant(userUUID model.UserUUID, name model.ScopeName, spaceUUID model.SpaceUUID) (*model.Scope, error) {
	if name == model.ManageCenter && spaceUUID != "" {
		return nil, fmt.Errorf("%w: %s is a center-wide grant, it carries no space", consts.ErrInvalidArg, name)
	}
	if name != model.ManageCenter && spaceUUID == "" {
		return nil, fmt.Errorf("%w: %s must be bound to a space", consts.ErrInvalidArg, name)
	}
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.ScopeType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}

	// identical grants are idempotent in effect, don't duplicate them
	held, err := s.repo.ListByUser(userUUID)
	if err != nil {
		return nil, err
	}
	for _, g := range held {
		if g.Name == name && g.SpaceUUID == spaceUUID {
			return g, nil
		}
	}

	scope := &model.Scope{
		UUID:      uuid.New(),
		UserUUID:  userUUID,
		SpaceUUID: spaceUUID,
		Name:      name,
	}
	if err := s.repo.Create(scope); err != nil {
		return nil, err
	}
	return scope, nil
}

// Revoke deletes the grant. The capability is gone on the next
// authorization check, nothing is cached.
func (s *ScopeService) Revoke(id model.ScopeUUID) error {
	scope, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	err = s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.ScopeType, SpaceUUID: scope.SpaceUUID, ObjID: id})
	if err != nil {
		return err
	}
	return s.repo.Delete(id)
}

func (s *ScopeService) ListByUser(userUUID model.UserUUID) ([]*model.Scope, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.ScopeType}); err != nil {
		return nil, err
	}
	return s.repo.ListByUser(userUUID)
}

func (s *ScopeService) ListBySpace(spaceUUID model.SpaceUUID) ([]*model.Scope, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.ScopeType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.ListBySpace(spaceUUID)
}

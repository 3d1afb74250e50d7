package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type UserService struct {
	op   *Operator
	repo *repo.UserRepository
}

// Create validates the phone number and stores the password as an argon2id
// hash. Phone number uniqueness is enforced by the schema.
func (s *UserService) Create(name, phoneNumber, password string) (*model.User, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.UserType}); err != nil {
		return nil, err
	}
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}
	encoded, err := EncodePassword(password)
	if err != nil {
		return nil, err
	}
	user := &model.User{
		UUID:        uuid.New(),
		Name:        name,
		PhoneNumber: phoneNumber,
		Password:    encoded,
	}
	if err := s.repo.Create(user); err != nil {
		return nil, err
	}
	return user.OmitSensitive(), nil
}

func (s *UserService) GetByID(id model.UserUUID) (*model.User, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.UserType, ObjID: id}); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	return user.OmitSensitive(), nil
}

// Update changes name and phone number. The password never travels through
// here, ChangePassword does that.
func (s *UserService) Update(id model.UserUUID, name, phoneNumber string) (*model.User, error) {
	if err := s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.UserType, ObjID: id}); err != nil {
		return nil, err
	}
	if err := validatePhoneNumber(phoneNumber); err != nil {
		return nil, err
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	updated := *user
	updated.Name = name
	updated.PhoneNumber = phoneNumber
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return updated.OmitSensitive(), nil
}

func (s *UserService) ChangePassword(id model.UserUUID, password string) error {
	if err := s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.UserType, ObjID: id}); err != nil {
		return err
	}
	user, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	encoded, err := EncodePassword(password)
	if err != nil {
		return err
	}
	updated := *user
	updated.Password = encoded
	return s.repo.Update(&updated)
}

// Delete removes the user and every grant they hold.
func (s *UserService) Delete(id model.UserUUID) error {
	if err := s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.UserType, ObjID: id}); err != nil {
		return err
	}
	return s.repo.CascadeDelete(id)
}

// List returns every account with the password hash omitted. The hash is
// write-only outside the store, same as the column's select permissions in
// the central schema.
func (s *UserService) List() ([]*model.User, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.UserType}); err != nil {
		return nil, err
	}
	users, err := s.repo.List()
	if err != nil {
		return nil, err
	}
	public := make([]*model.User, 0, len(users))
	for _, user := range users {
		public = append(public, user.OmitSensitive())
	}
	return public, nil
}

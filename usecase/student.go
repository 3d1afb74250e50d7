package usecase

import (
	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/names"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

type StudentService struct {
	op   *Operator
	repo *repo.StudentRepository
}

// Create stores the student with the canonical search key derived from the
// display name. SearchName is never accepted from the caller.
func (s *StudentService) Create(spaceUUID model.SpaceUUID, name string,
	phoneNumbers []model.StudentPhoneNumber) (*model.Student, error) {
	if err := s.op.authorize(authz.ActionCreate, authz.Resource{Table: model.StudentType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	if err := validateStudentPhoneNumbers(phoneNumbers); err != nil {
		return nil, err
	}
	student := &model.Student{
		UUID:         uuid.New(),
		SpaceUUID:    spaceUUID,
		Name:         name,
		SearchName:   names.Normalize(name, true),
		PhoneNumbers: phoneNumbers,
	}
	if err := s.repo.Create(student); err != nil {
		return nil, err
	}
	return student, nil
}

func (s *StudentService) GetByID(id model.StudentUUID) (*model.Student, error) {
	student, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.StudentType, SpaceUUID: student.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	return student, nil
}

// Rename recomputes the search key and saves. Propagation into enrollments
// happens inside the same transaction through the registered rename hook.
func (s *StudentService) Rename(id model.StudentUUID, name string) (*model.Student, error) {
	student, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.StudentType, SpaceUUID: student.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	updated := *student
	updated.Name = name
	updated.SearchName = names.Normalize(name, true)
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (s *StudentService) UpdatePhoneNumbers(id model.StudentUUID, phoneNumbers []model.StudentPhoneNumber) (*model.Student, error) {
	student, err := s.repo.GetByID(id)
	if err != nil {
		return nil, err
	}
	err = s.op.authorize(authz.ActionUpdate, authz.Resource{Table: model.StudentType, SpaceUUID: student.SpaceUUID, ObjID: id})
	if err != nil {
		return nil, err
	}
	if err := validateStudentPhoneNumbers(phoneNumbers); err != nil {
		return nil, err
	}
	updated := *student
	updated.PhoneNumbers = phoneNumbers
	if err := s.repo.Update(&updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// Delete removes the student and their enrollments.
func (s *StudentService) Delete(id model.StudentUUID) error {
	student, err := s.repo.GetByID(id)
	if err != nil {
		return err
	}
	err = s.op.authorize(authz.ActionDelete, authz.Resource{Table: model.StudentType, SpaceUUID: student.SpaceUUID, ObjID: id})
	if err != nil {
		return err
	}
	return s.repo.CascadeDelete(id)
}

func (s *StudentService) List(spaceUUID model.SpaceUUID, offset, limit int) ([]*model.Student, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.StudentType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.List(spaceUUID, offset, limit)
}

// Search does prefix matching over the canonical search key, so the query
// goes through the same normalization as stored names.
func (s *StudentService) Search(spaceUUID model.SpaceUUID, query string, limit int) ([]*model.Student, error) {
	if err := s.op.authorize(authz.ActionSelect, authz.Resource{Table: model.StudentType, SpaceUUID: spaceUUID}); err != nil {
		return nil, err
	}
	return s.repo.SearchByName(spaceUUID, names.Normalize(query, true), limit)
}

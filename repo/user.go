package repo

import (
	"encoding/json"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func UserSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.UserType: {
				Name: model.UserType,
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &hcmemdb.UUIDFieldIndex{
							Field: "UUID",
						},
					},
					PhoneNumberIndex: {
						Name: PhoneNumberIndex,
						Indexer: &hcmemdb.StringFieldIndex{
							Field: "PhoneNumber",
						},
					},
				},
			},
		},
		CascadeDeletes: map[string][]memdb.Relation{
			model.UserType: {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.ScopeType, RelatedDataTypeFieldIndexName: UserForeignPK},
			},
		},
		UniqueConstraints: map[string][]string{
			model.UserType: {PhoneNumberIndex},
		},
	}
}

type UserRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewUserRepository(tx *io.MemoryStoreTxn) *UserRepository {
	return &UserRepository{db: tx}
}

func (r *UserRepository) save(user *model.User) error {
	return r.db.Insert(model.UserType, user)
}

func (r *UserRepository) Create(user *model.User) error {
	return r.save(user)
}

func (r *UserRepository) GetByID(id model.UserUUID) (*model.User, error) {
	raw, err := r.db.First(model.UserType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.User), nil
}

func (r *UserRepository) GetByPhoneNumber(phoneNumber string) (*model.User, error) {
	raw, err := r.db.First(model.UserType, PhoneNumberIndex, phoneNumber)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.User), nil
}

func (r *UserRepository) Update(user *model.User) error {
	_, err := r.GetByID(user.UUID)
	if err != nil {
		return err
	}
	return r.save(user)
}

func (r *UserRepository) CascadeDelete(id model.UserUUID) error {
	user, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.CascadeDelete(model.UserType, user)
}

func (r *UserRepository) List() ([]*model.User, error) {
	list := []*model.User{}
	err := r.Iter(func(user *model.User) (bool, error) {
		list = append(list, user)
		return true, nil
	})
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *UserRepository) IsEmpty() (bool, error) {
	raw, err := r.db.First(model.UserType, PK)
	if err != nil {
		return false, err
	}
	return raw == nil, nil
}

func (r *UserRepository) Iter(action func(*model.User) (bool, error)) error {
	iter, err := r.db.Get(model.UserType, PK)
	if err != nil {
		return err
	}

	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		obj := raw.(*model.User)
		next, err := action(obj)
		if err != nil {
			return err
		}

		if !next {
			break
		}
	}

	return nil
}

func (r *UserRepository) Sync(_ string, data []byte) error {
	user := &model.User{}
	if err := json.Unmarshal(data, user); err != nil {
		return err
	}
	return r.save(user)
}

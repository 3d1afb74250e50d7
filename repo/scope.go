package repo

import (
	"encoding/json"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func ScopeSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.ScopeType: {
				Name: model.ScopeType,
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &hcmemdb.UUIDFieldIndex{
							Field: "UUID",
						},
					},
					UserForeignPK: {
						Name: UserForeignPK,
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "UserUUID",
							Lowercase: true,
						},
					},
					SpaceForeignPK: {
						Name:         SpaceForeignPK,
						AllowMissing: true, // center-wide grants carry no space
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "SpaceUUID",
							Lowercase: true,
						},
					},
				},
			},
		},
		MandatoryForeignKeys: map[string][]memdb.Relation{
			model.ScopeType: {
				{OriginalDataTypeFieldName: "UserUUID", RelatedDataType: model.UserType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "SpaceUUID", RelatedDataType: model.SpaceType, RelatedDataTypeFieldIndexName: PK},
			},
		},
	}
}

type ScopeRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewScopeRepository(tx *io.MemoryStoreTxn) *ScopeRepository {
	return &ScopeRepository{db: tx}
}

func (r *ScopeRepository) save(scope *model.Scope) error {
	return r.db.Insert(model.ScopeType, scope)
}

func (r *ScopeRepository) Create(scope *model.Scope) error {
	return r.save(scope)
}

func (r *ScopeRepository) GetByID(id model.ScopeUUID) (*model.Scope, error) {
	raw, err := r.db.First(model.ScopeType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.Scope), nil
}

func (r *ScopeRepository) Delete(id model.ScopeUUID) error {
	scope, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.Delete(model.ScopeType, scope)
}

// ListByUser returns every grant the user currently holds. Authorization
// reads grants through this on every check, so a revoked grant disappears
// from the very next evaluation.
func (r *ScopeRepository) ListByUser(userUUID model.UserUUID) ([]*model.Scope, error) {
	iter, err := r.db.Get(model.ScopeType, UserForeignPK, userUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.Scope{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.Scope))
	}
	return list, nil
}

func (r *ScopeRepository) ListByName(name model.ScopeName) ([]*model.Scope, error) {
	iter, err := r.db.Get(model.ScopeType, PK)
	if err != nil {
		return nil, err
	}

	list := []*model.Scope{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		scope := raw.(*model.Scope)
		if scope.Name == name {
			list = append(list, scope)
		}
	}
	return list, nil
}

func (r *ScopeRepository) ListBySpace(spaceUUID model.SpaceUUID) ([]*model.Scope, error) {
	iter, err := r.db.Get(model.ScopeType, SpaceForeignPK, spaceUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.Scope{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.Scope))
	}
	return list, nil
}

func (r *ScopeRepository) Sync(_ string, data []byte) error {
	scope := &model.Scope{}
	if err := json.Unmarshal(data, scope); err != nil {
		return err
	}
	return r.save(scope)
}

package repo

import (
	"encoding/json"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func SpaceSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.SpaceType: {
				Name: model.SpaceType,
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &hcmemdb.UUIDFieldIndex{
							Field: "UUID",
						},
					},
				},
			},
		},
		CascadeDeletes: map[string][]memdb.Relation{
			model.SpaceType: {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.ScopeType, RelatedDataTypeFieldIndexName: SpaceForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.AcademicYearType, RelatedDataTypeFieldIndexName: SpaceForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.AcademicYearCourseType, RelatedDataTypeFieldIndexName: SpaceForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.GroupType, RelatedDataTypeFieldIndexName: SpaceForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.StudentType, RelatedDataTypeFieldIndexName: SpaceForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.EnrollmentType, RelatedDataTypeFieldIndexName: SpaceForeignPK},
			},
		},
	}
}

type SpaceRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewSpaceRepository(tx *io.MemoryStoreTxn) *SpaceRepository {
	return &SpaceRepository{db: tx}
}

func (r *SpaceRepository) save(space *model.Space) error {
	return r.db.Insert(model.SpaceType, space)
}

func (r *SpaceRepository) Create(space *model.Space) error {
	return r.save(space)
}

func (r *SpaceRepository) GetByID(id model.SpaceUUID) (*model.Space, error) {
	raw, err := r.db.First(model.SpaceType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.Space), nil
}

func (r *SpaceRepository) Update(space *model.Space) error {
	_, err := r.GetByID(space.UUID)
	if err != nil {
		return err
	}
	return r.save(space)
}

func (r *SpaceRepository) CascadeDelete(id model.SpaceUUID) error {
	space, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.CascadeDelete(model.SpaceType, space)
}

func (r *SpaceRepository) List() ([]*model.Space, error) {
	iter, err := r.db.Get(model.SpaceType, PK)
	if err != nil {
		return nil, err
	}

	list := []*model.Space{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.Space))
	}
	return list, nil
}

func (r *SpaceRepository) Sync(_ string, data []byte) error {
	space := &model.Space{}
	if err := json.Unmarshal(data, space); err != nil {
		return err
	}
	return r.save(space)
}

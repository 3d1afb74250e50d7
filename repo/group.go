package repo

import (
	"encoding/json"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func GroupSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.GroupType: {
				Name: model.GroupType,
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &hcmemdb.UUIDFieldIndex{
							Field: "UUID",
						},
					},
					SpaceForeignPK: {
						Name: SpaceForeignPK,
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "SpaceUUID",
							Lowercase: true,
						},
					},
					AcademicYearForeignPK: {
						Name: AcademicYearForeignPK,
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "AcademicYearUUID",
							Lowercase: true,
						},
					},
					CourseForeignPK: {
						Name: CourseForeignPK,
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "CourseUUID",
							Lowercase: true,
						},
					},
				},
			},
		},
		MandatoryForeignKeys: map[string][]memdb.Relation{
			model.GroupType: {
				{OriginalDataTypeFieldName: "SpaceUUID", RelatedDataType: model.SpaceType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "AcademicYearUUID", RelatedDataType: model.AcademicYearType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "CourseUUID", RelatedDataType: model.AcademicYearCourseType, RelatedDataTypeFieldIndexName: PK},
			},
		},
		CascadeDeletes: map[string][]memdb.Relation{
			model.GroupType: {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.EnrollmentType, RelatedDataTypeFieldIndexName: GroupForeignPK},
			},
		},
	}
}

type GroupRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewGroupRepository(tx *io.MemoryStoreTxn) *GroupRepository {
	return &GroupRepository{db: tx}
}

func (r *GroupRepository) save(group *model.Group) error {
	return r.db.Insert(model.GroupType, group)
}

func (r *GroupRepository) Create(group *model.Group) error {
	return r.save(group)
}

func (r *GroupRepository) GetByID(id model.GroupUUID) (*model.Group, error) {
	raw, err := r.db.First(model.GroupType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.Group), nil
}

func (r *GroupRepository) Update(group *model.Group) error {
	_, err := r.GetByID(group.UUID)
	if err != nil {
		return err
	}
	return r.save(group)
}

func (r *GroupRepository) CascadeDelete(id model.GroupUUID) error {
	group, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.CascadeDelete(model.GroupType, group)
}

func (r *GroupRepository) List(spaceUUID model.SpaceUUID) ([]*model.Group, error) {
	iter, err := r.db.Get(model.GroupType, SpaceForeignPK, spaceUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.Group{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.Group))
	}
	return list, nil
}

func (r *GroupRepository) Sync(_ string, data []byte) error {
	group := &model.Group{}
	if err := json.Unmarshal(data, group); err != nil {
		return err
	}
	return r.save(group)
}

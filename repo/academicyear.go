package repo

import (
	"encoding/json"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func AcademicYearSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.AcademicYearType: {
				Name: model.AcademicYearType,
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
				},
			},
		},
		MandatoryForeignKeys: map[string][]memdb.Relation{
			model.AcademicYearType: {
				{OriginalDataTypeFieldName: "SpaceUUID", RelatedDataType: model.SpaceType, RelatedDataTypeFieldIndexName: PK},
			},
		},
		CascadeDeletes: map[string][]memdb.Relation{
			model.AcademicYearType: {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.AcademicYearCourseType, RelatedDataTypeFieldIndexName: AcademicYearForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.GroupType, RelatedDataTypeFieldIndexName: AcademicYearForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.EnrollmentType, RelatedDataTypeFieldIndexName: AcademicYearForeignPK},
			},
		},
	}
}

type AcademicYearRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewAcademicYearRepository(tx *io.MemoryStoreTxn) *AcademicYearRepository {
	return &AcademicYearRepository{db: tx}
}

func (r *AcademicYearRepository) save(year *model.AcademicYear) error {
	return r.db.Insert(model.AcademicYearType, year)
}

func (r *AcademicYearRepository) Create(year *model.AcademicYear) error {
	return r.save(year)
}

func (r *AcademicYearRepository) GetByID(id model.AcademicYearUUID) (*model.AcademicYear, error) {
	raw, err := r.db.First(model.AcademicYearType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.AcademicYear), nil
}

func (r *AcademicYearRepository) Update(year *model.AcademicYear) error {
	_, err := r.GetByID(year.UUID)
	if err != nil {
		return err
	}
	return r.save(year)
}

func (r *AcademicYearRepository) CascadeDelete(id model.AcademicYearUUID) error {
	year, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.CascadeDelete(model.AcademicYearType, year)
}

func (r *AcademicYearRepository) List(spaceUUID model.SpaceUUID) ([]*model.AcademicYear, error) {
	iter, err := r.db.Get(model.AcademicYearType, SpaceForeignPK, spaceUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.AcademicYear{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.AcademicYear))
	}
	return list, nil
}

func (r *AcademicYearRepository) Sync(_ string, data []byte) error {
	year := &model.AcademicYear{}
	if err := json.Unmarshal(data, year); err != nil {
		return err
	}
	return r.save(year)
}

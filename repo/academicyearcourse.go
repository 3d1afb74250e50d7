package repo

import (
	"encoding/json"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func AcademicYearCourseSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.AcademicYearCourseType: {
				Name: model.AcademicYearCourseType,
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
				},
			},
		},
		MandatoryForeignKeys: map[string][]memdb.Relation{
			model.AcademicYearCourseType: {
				{OriginalDataTypeFieldName: "SpaceUUID", RelatedDataType: model.SpaceType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "AcademicYearUUID", RelatedDataType: model.AcademicYearType, RelatedDataTypeFieldIndexName: PK},
			},
		},
		CascadeDeletes: map[string][]memdb.Relation{
			model.AcademicYearCourseType: {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.GroupType, RelatedDataTypeFieldIndexName: CourseForeignPK},
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.EnrollmentType, RelatedDataTypeFieldIndexName: CourseForeignPK},
			},
		},
	}
}

type AcademicYearCourseRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewAcademicYearCourseRepository(tx *io.MemoryStoreTxn) *AcademicYearCourseRepository {
	return &AcademicYearCourseRepository{db: tx}
}

func (r *AcademicYearCourseRepository) save(course *model.AcademicYearCourse) error {
	return r.db.Insert(model.AcademicYearCourseType, course)
}

func (r *AcademicYearCourseRepository) Create(course *model.AcademicYearCourse) error {
	return r.save(course)
}

func (r *AcademicYearCourseRepository) GetByID(id model.AcademicYearCourseUUID) (*model.AcademicYearCourse, error) {
	raw, err := r.db.First(model.AcademicYearCourseType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.AcademicYearCourse), nil
}

func (r *AcademicYearCourseRepository) Update(course *model.AcademicYearCourse) error {
	_, err := r.GetByID(course.UUID)
	if err != nil {
		return err
	}
	return r.save(course)
}

func (r *AcademicYearCourseRepository) CascadeDelete(id model.AcademicYearCourseUUID) error {
	course, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.CascadeDelete(model.AcademicYearCourseType, course)
}

func (r *AcademicYearCourseRepository) List(spaceUUID model.SpaceUUID) ([]*model.AcademicYearCourse, error) {
	iter, err := r.db.Get(model.AcademicYearCourseType, SpaceForeignPK, spaceUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.AcademicYearCourse{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.AcademicYearCourse))
	}
	return list, nil
}

func (r *AcademicYearCourseRepository) Sync(_ string, data []byte) error {
	course := &model.AcademicYearCourse{}
	if err := json.Unmarshal(data, course); err != nil {
		return err
	}
	return r.save(course)
}

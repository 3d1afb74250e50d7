package repo

import (
	"encoding/json"
	"strings"

	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func EnrollmentSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.EnrollmentType: {
				Name: model.EnrollmentType,
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
					StudentForeignPK: {
						Name: StudentForeignPK,
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "StudentUUID",
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
					GroupForeignPK: {
						Name: GroupForeignPK,
						Indexer: &hcmemdb.StringFieldIndex{
							Field:     "DefaultGroupUUID",
							Lowercase: true,
						},
					},
					SearchNameIndex: {
						Name: SearchNameIndex,
						Indexer: &hcmemdb.StringFieldIndex{
							Field: "SearchName",
						},
					},
				},
			},
		},
		MandatoryForeignKeys: map[string][]memdb.Relation{
			model.EnrollmentType: {
				{OriginalDataTypeFieldName: "SpaceUUID", RelatedDataType: model.SpaceType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "StudentUUID", RelatedDataType: model.StudentType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "AcademicYearUUID", RelatedDataType: model.AcademicYearType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "CourseUUID", RelatedDataType: model.AcademicYearCourseType, RelatedDataTypeFieldIndexName: PK},
				{OriginalDataTypeFieldName: "DefaultGroupUUID", RelatedDataType: model.GroupType, RelatedDataTypeFieldIndexName: PK},
			},
		},
	}
}

type EnrollmentRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewEnrollmentRepository(tx *io.MemoryStoreTxn) *EnrollmentRepository {
	return &EnrollmentRepository{db: tx}
}

func (r *EnrollmentRepository) save(enrollment *model.Enrollment) error {
	return r.db.Insert(model.EnrollmentType, enrollment)
}

func (r *EnrollmentRepository) Create(enrollment *model.Enrollment) error {
	return r.save(enrollment)
}

func (r *EnrollmentRepository) GetByID(id model.EnrollmentUUID) (*model.Enrollment, error) {
	raw, err := r.db.First(model.EnrollmentType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.Enrollment), nil
}

func (r *EnrollmentRepository) Update(enrollment *model.Enrollment) error {
	_, err := r.GetByID(enrollment.UUID)
	if err != nil {
		return err
	}
	return r.save(enrollment)
}

func (r *EnrollmentRepository) Delete(id model.EnrollmentUUID) error {
	enrollment, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.Delete(model.EnrollmentType, enrollment)
}

func (r *EnrollmentRepository) List(spaceUUID model.SpaceUUID) ([]*model.Enrollment, error) {
	iter, err := r.db.Get(model.EnrollmentType, SpaceForeignPK, spaceUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.Enrollment{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.Enrollment))
	}
	return list, nil
}

// ListByStudent returns every enrollment referencing the student. Zero rows
// is a valid outcome.
func (r *EnrollmentRepository) ListByStudent(studentUUID model.StudentUUID) ([]*model.Enrollment, error) {
	iter, err := r.db.Get(model.EnrollmentType, StudentForeignPK, studentUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.Enrollment{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		list = append(list, raw.(*model.Enrollment))
	}
	return list, nil
}

func (r *EnrollmentRepository) SearchByName(spaceUUID model.SpaceUUID, searchKey string, limit int) ([]*model.Enrollment, error) {
	iter, err := r.db.Get(model.EnrollmentType, SearchNameIndex+"_prefix", strings.TrimSpace(searchKey))
	if err != nil {
		return nil, err
	}

	list := []*model.Enrollment{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		obj := raw.(*model.Enrollment)
		if obj.SpaceUUID != spaceUUID {
			continue
		}
		if limit > 0 && len(list) >= limit {
			break
		}
		list = append(list, obj)
	}
	return list, nil
}

func (r *EnrollmentRepository) Sync(_ string, data []byte) error {
	enrollment := &model.Enrollment{}
	if err := json.Unmarshal(data, enrollment); err != nil {
		return err
	}
	return r.save(enrollment)
}

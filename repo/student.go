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

func StudentSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.StudentType: {
				Name: model.StudentType,
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
			model.StudentType: {
				{OriginalDataTypeFieldName: "SpaceUUID", RelatedDataType: model.SpaceType, RelatedDataTypeFieldIndexName: PK},
			},
		},
		CascadeDeletes: map[string][]memdb.Relation{
			model.StudentType: {
				{OriginalDataTypeFieldName: "UUID", RelatedDataType: model.EnrollmentType, RelatedDataTypeFieldIndexName: StudentForeignPK},
			},
		},
	}
}

type StudentRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewStudentRepository(tx *io.MemoryStoreTxn) *StudentRepository {
	return &StudentRepository{db: tx}
}

func (r *StudentRepository) save(student *model.Student) error {
	return r.db.Insert(model.StudentType, student)
}

func (r *StudentRepository) Create(student *model.Student) error {
	return r.save(student)
}

func (r *StudentRepository) GetByID(id model.StudentUUID) (*model.Student, error) {
	raw, err := r.db.First(model.StudentType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.Student), nil
}

func (r *StudentRepository) Update(student *model.Student) error {
	_, err := r.GetByID(student.UUID)
	if err != nil {
		return err
	}
	return r.save(student)
}

func (r *StudentRepository) CascadeDelete(id model.StudentUUID) error {
	student, err := r.GetByID(id)
	if err != nil {
		return err
	}
	return r.db.CascadeDelete(model.StudentType, student)
}

func (r *StudentRepository) List(spaceUUID model.SpaceUUID, offset, limit int) ([]*model.Student, error) {
	iter, err := r.db.Get(model.StudentType, SpaceForeignPK, spaceUUID)
	if err != nil {
		return nil, err
	}

	list := []*model.Student{}
	skipped := 0
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		if skipped < offset {
			skipped++
			continue
		}
		if limit > 0 && len(list) >= limit {
			break
		}
		list = append(list, raw.(*model.Student))
	}
	return list, nil
}

// SearchByName matches students whose canonical search key starts with the
// given key. The key must already be normalized; the search layer trims the
// spaces normalization may insert.
func (r *StudentRepository) SearchByName(spaceUUID model.SpaceUUID, searchKey string, limit int) ([]*model.Student, error) {
	iter, err := r.db.Get(model.StudentType, SearchNameIndex+"_prefix", strings.TrimSpace(searchKey))
	if err != nil {
		return nil, err
	}

	list := []*model.Student{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		obj := raw.(*model.Student)
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

func (r *StudentRepository) Sync(_ string, data []byte) error {
	student := &model.Student{}
	if err := json.Unmarshal(data, student); err != nil {
		return err
	}
	return r.save(student)
}

package repo

import (
	hcmemdb "github.com/hashicorp/go-memdb"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
)

func SyncRecordSchema() *memdb.DBSchema {
	return &memdb.DBSchema{
		Tables: map[string]*hcmemdb.TableSchema{
			model.SyncRecordType: {
				Name: model.SyncRecordType,
				Indexes: map[string]*hcmemdb.IndexSchema{
					PK: {
						Name:   PK,
						Unique: true,
						Indexer: &hcmemdb.UUIDFieldIndex{
							Field: "RecordID",
						},
					},
					CreatedAtIndex: {
						Name: CreatedAtIndex,
						Indexer: &hcmemdb.IntFieldIndex{
							Field: "CreatedAt",
						},
					},
					PushedIndex: {
						Name: PushedIndex,
						Indexer: &hcmemdb.BoolFieldIndex{
							Field: "Pushed",
						},
					},
				},
			},
		},
	}
}

// SyncRepository reads the outbox. Records are written by the commit fan-out
// only; the repository never creates them and never deletes them. The single
// permitted mutation is flipping Pushed to true.
type SyncRepository struct {
	db *io.MemoryStoreTxn // called "db" not to provoke transaction semantics
}

func NewSyncRepository(tx *io.MemoryStoreTxn) *SyncRepository {
	return &SyncRepository{db: tx}
}

func (r *SyncRepository) GetByID(id string) (*model.SyncRecord, error) {
	raw, err := r.db.First(model.SyncRecordType, PK, id)
	if err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, consts.ErrNotFound
	}
	return raw.(*model.SyncRecord), nil
}

// ListUnpushed returns unpushed records ordered by CreatedAt ascending.
// limit<=0 means no limit.
func (r *SyncRepository) ListUnpushed(limit int) ([]*model.SyncRecord, error) {
	iter, err := r.db.Get(model.SyncRecordType, CreatedAtIndex)
	if err != nil {
		return nil, err
	}

	list := []*model.SyncRecord{}
	for {
		raw := iter.Next()
		if raw == nil {
			break
		}
		record := raw.(*model.SyncRecord)
		if record.Pushed {
			continue
		}
		if limit > 0 && len(list) >= limit {
			break
		}
		list = append(list, record)
	}
	return list, nil
}

func (r *SyncRepository) CountUnpushed() (int, error) {
	iter, err := r.db.Get(model.SyncRecordType, PushedIndex, false)
	if err != nil {
		return 0, err
	}
	count := 0
	for raw := iter.Next(); raw != nil; raw = iter.Next() {
		count++
	}
	return count, nil
}

// MarkPushed flips the delivery flag. Every other field is immutable, so the
// stored record is copied rather than trusted from the caller.
func (r *SyncRepository) MarkPushed(id string) error {
	stored, err := r.GetByID(id)
	if err != nil {
		return err
	}
	if stored.Pushed {
		return nil
	}
	updated := *stored
	updated.Pushed = true
	return r.db.Insert(model.SyncRecordType, &updated)
}

package replication

import (
	"encoding/json"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/uuid"
)

func inboundRecord(t *testing.T, event model.SyncEvent, obj io.StorableObject, createdAt model.UnixTime) *model.SyncRecord {
	data, err := obj.Marshal(true)
	require.NoError(t, err)
	content, err := json.Marshal(syncContent{Type: obj.ObjType(), Data: data})
	require.NoError(t, err)
	return &model.SyncRecord{
		RecordID:  uuid.New(),
		Event:     event,
		Content:   content,
		CreatedAt: createdAt,
	}
}

func applyAll(t *testing.T, store *io.MemoryStore, records ...*model.SyncRecord) {
	txn := store.RestoreTxn()
	defer txn.Abort()

	applier := NewApplier(hclog.NewNullLogger())
	for _, record := range records {
		require.NoError(t, applier.Apply(txn, record))
	}
	require.NoError(t, txn.Commit())
}

func Test_ApplierUpsertsSnapshots(t *testing.T) {
	store := testStore(t)

	space := &model.Space{UUID: uuid.New(), Name: "Main branch"}
	student := &model.Student{
		UUID:       uuid.New(),
		SpaceUUID:  space.UUID,
		Name:       "أحمد محمد",
		SearchName: "احمد محمد",
	}

	// space first, the student row points at it
	applyAll(t, store,
		inboundRecord(t, model.SyncEventCreate, space, 1),
		inboundRecord(t, model.SyncEventCreate, student, 2),
	)

	txn := store.Txn(false)
	defer txn.Abort()
	stored, err := repo.NewStudentRepository(txn).GetByID(student.UUID)
	require.NoError(t, err)
	assert.Equal(t, "احمد محمد", stored.SearchName)

	// restored rows do not flow back into the outbox
	assert.Empty(t, unpushed(t, store))
}

func Test_ApplierUpdateOverwrites(t *testing.T) {
	store := testStore(t)

	user := &model.User{UUID: uuid.New(), Name: "Admin", PhoneNumber: "+201096707442", Password: "x"}
	applyAll(t, store, inboundRecord(t, model.SyncEventCreate, user, 1))

	renamed := *user
	renamed.Name = "Renamed"
	applyAll(t, store, inboundRecord(t, model.SyncEventUpdate, &renamed, 2))

	txn := store.Txn(false)
	defer txn.Abort()
	stored, err := repo.NewUserRepository(txn).GetByID(user.UUID)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", stored.Name)
	// the snapshot carries the hash, restore keeps it
	assert.Equal(t, "x", stored.Password)
}

func Test_ApplierDeleteIsIdempotent(t *testing.T) {
	store := testStore(t)

	user := &model.User{UUID: uuid.New(), Name: "Admin", PhoneNumber: "+201096707442"}
	applyAll(t, store,
		inboundRecord(t, model.SyncEventCreate, user, 1),
		inboundRecord(t, model.SyncEventDelete, user, 2),
	)

	txn := store.Txn(false)
	_, err := repo.NewUserRepository(txn).GetByID(user.UUID)
	txn.Abort()
	assert.ErrorIs(t, err, consts.ErrNotFound)

	// replaying the delete finds nothing to do
	applyAll(t, store, inboundRecord(t, model.SyncEventDelete, user, 2))
}

func Test_ApplierRejectsUnknownType(t *testing.T) {
	store := testStore(t)

	record := &model.SyncRecord{
		RecordID:  uuid.New(),
		Event:     model.SyncEventCreate,
		Content:   []byte(`{"type":"tombstone","data":{"uuid":"x"}}`),
		CreatedAt: 1,
	}

	txn := store.RestoreTxn()
	defer txn.Abort()
	err := NewApplier(hclog.NewNullLogger()).Apply(txn, record)
	assert.ErrorIs(t, err, consts.ErrWrongType)
}

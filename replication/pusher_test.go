package replication

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
)

type fakeCentral struct {
	batches [][]*model.SyncRecord
	err     error
}

func (f *fakeCentral) PushBatch(_ context.Context, records []*model.SyncRecord) error {
	if f.err != nil {
		return f.err
	}
	f.batches = append(f.batches, records)
	return nil
}

func testPusher(store *io.MemoryStore, central *fakeCentral, batchSize int) *Pusher {
	return NewPusher(store, central, PusherConfig{BatchSize: batchSize}, hclog.NewNullLogger())
}

func Test_PushOnceMarksRecordsPushed(t *testing.T) {
	store := testStore(t)
	createUser(t, store, "A")
	createUser(t, store, "B")

	central := &fakeCentral{}
	pushed, err := testPusher(store, central, 100).PushOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pushed)
	require.Len(t, central.batches, 1)

	assert.Empty(t, unpushed(t, store))

	// the records survive as pushed, nothing is deleted
	txn := store.Txn(false)
	defer txn.Abort()
	count, err := repo.NewSyncRepository(txn).CountUnpushed()
	require.NoError(t, err)
	assert.Zero(t, count)
	for _, batch := range central.batches {
		for _, record := range batch {
			stored, err := repo.NewSyncRepository(txn).GetByID(record.RecordID)
			require.NoError(t, err)
			assert.True(t, stored.Pushed)
		}
	}
}

func Test_PushOnceRespectsBatchSize(t *testing.T) {
	store := testStore(t)
	for _, name := range []string{"A", "B", "C"} {
		createUser(t, store, name)
	}

	central := &fakeCentral{}
	pusher := testPusher(store, central, 2)

	pushed, err := pusher.PushOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, pushed)
	assert.Len(t, unpushed(t, store), 1)

	pushed, err = pusher.PushOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pushed)
	assert.Empty(t, unpushed(t, store))

	pushed, err = pusher.PushOnce(context.Background())
	require.NoError(t, err)
	assert.Zero(t, pushed)
}

func Test_FailedPushLeavesRecordsUnpushed(t *testing.T) {
	store := testStore(t)
	createUser(t, store, "A")

	central := &fakeCentral{err: errors.New("network down")}
	pusher := testPusher(store, central, 100)

	_, err := pusher.PushOnce(context.Background())
	assert.Error(t, err)
	assert.Len(t, unpushed(t, store), 1)

	// recovery retries the very same record
	central.err = nil
	pushed, err := pusher.PushOnce(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, pushed)
	assert.Empty(t, unpushed(t, store))
}

func Test_PushOnceDeliversOldestFirst(t *testing.T) {
	store := testStore(t)
	createUser(t, store, "A")
	createUser(t, store, "B")

	central := &fakeCentral{}
	_, err := testPusher(store, central, 100).PushOnce(context.Background())
	require.NoError(t, err)

	require.Len(t, central.batches, 1)
	batch := central.batches[0]
	require.Len(t, batch, 2)
	assert.Less(t, batch[0].CreatedAt, batch[1].CreatedAt)
}

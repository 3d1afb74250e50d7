package engine

import (
	"context"
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
)

func Test_EngineEndToEnd(t *testing.T) {
	e, err := New(Config{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)

	admin, err := e.Bootstrap("Admin", "+201096707442", "0000")
	require.NoError(t, err)

	// the admin signs in with their bootstrap credentials
	signinTxn := e.Txn(false)
	_, err = e.Auth(signinTxn).SignIn("+201096707442", "0000")
	signinTxn.Abort()
	require.NoError(t, err)

	txn := e.Txn(true)
	op := e.Operator(txn, admin.UUID)

	space, err := op.Spaces().Create("Main branch")
	require.NoError(t, err)
	student, err := op.Students().Create(space.UUID, "أحمد محمد", nil)
	require.NoError(t, err)
	require.NoError(t, txn.Commit())

	// rename flows into the search key and the outbox
	txn = e.Txn(true)
	op = e.Operator(txn, admin.UUID)
	renamed, err := op.Students().Rename(student.UUID, "أحمد علي")
	require.NoError(t, err)
	require.NoError(t, txn.Commit())
	assert.Equal(t, "احمد على", renamed.SearchName)

	readTxn := e.Txn(false)
	defer readTxn.Abort()
	records, err := repo.NewSyncRepository(readTxn).ListUnpushed(0)
	require.NoError(t, err)
	// bootstrap user + grant, space, student create, student rename
	assert.Len(t, records, 5)
}

func Test_EngineDeniesUnknownActor(t *testing.T) {
	e, err := New(Config{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)

	_, err = e.Bootstrap("Admin", "+201096707442", "0000")
	require.NoError(t, err)

	txn := e.Txn(true)
	defer txn.Abort()
	op := e.Operator(txn, model.UserUUID("00000000-0000-0000-0000-000000000000"))

	_, err = op.Spaces().Create("Not allowed")
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_StartReplicationRequiresCentral(t *testing.T) {
	e, err := New(Config{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)

	err = e.StartReplication(context.Background())
	assert.ErrorIs(t, err, consts.ErrNotConfigured)
}

func Test_EngineRestoreRebuildsState(t *testing.T) {
	source, err := New(Config{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)
	_, err = source.Bootstrap("Admin", "+201096707442", "0000")
	require.NoError(t, err)

	readTxn := source.Txn(false)
	records, err := repo.NewSyncRepository(readTxn).ListUnpushed(0)
	readTxn.Abort()
	require.NoError(t, err)
	require.NotEmpty(t, records)

	restored, err := New(Config{Logger: hclog.NewNullLogger()})
	require.NoError(t, err)
	require.NoError(t, restored.Restore(records))

	// the restored account signs in with its original credentials
	txn := restored.Txn(false)
	defer txn.Abort()
	_, err = restored.Auth(txn).SignIn("+201096707442", "0000")
	require.NoError(t, err)

	// restoring produces no outbound records of its own
	after, err := repo.NewSyncRepository(txn).ListUnpushed(0)
	require.NoError(t, err)
	assert.Empty(t, after)
}

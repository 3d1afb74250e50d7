// Package engine wires the local data engine together: the in-memory store
// with its compiled schema, the sync outbox destination, the student rename
// hook and the replication pusher.
package engine

import (
	"context"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/replication"
	"github.com/tutordesk/local-engine/repo"
	"github.com/tutordesk/local-engine/usecase"
)

type Config struct {
	Logger hclog.Logger
	// Central configures delivery to the central store. Leave BaseURL empty
	// to run without replication, the outbox still accumulates and
	// StartReplication refuses to spawn the pusher.
	Central replication.HTTPCentralClientConfig
	Push    replication.PusherConfig
}

type Engine struct {
	store  *io.MemoryStore
	conf   Config
	logger hclog.Logger
}

func New(conf Config) (*Engine, error) {
	logger := conf.Logger
	if logger == nil {
		logger = hclog.Default()
	}

	schema, err := repo.GetSchema()
	if err != nil {
		return nil, err
	}
	store, err := io.NewMemoryStore(schema, logger)
	if err != nil {
		return nil, err
	}

	store.AddDestination(replication.NewOutboxRecorder(logger))
	store.RegisterHook(usecase.StudentRenameHook(logger))

	return &Engine{store: store, conf: conf, logger: logger}, nil
}

func (e *Engine) Store() *io.MemoryStore {
	return e.store
}

func (e *Engine) Txn(write bool) *io.MemoryStoreTxn {
	return e.store.Txn(write)
}

// Operator returns the typed operations for one authenticated actor bound
// to the given transaction.
func (e *Engine) Operator(txn *io.MemoryStoreTxn, actor model.UserUUID) *usecase.Operator {
	return usecase.NewOperator(txn, actor, e.logger)
}

func (e *Engine) Auth(txn *io.MemoryStoreTxn) *usecase.AuthService {
	return usecase.Auth(txn, e.logger)
}

// Bootstrap creates the first admin account. Single-shot, commits on
// success.
func (e *Engine) Bootstrap(name, phoneNumber, password string) (*model.User, error) {
	txn := e.Txn(true)
	defer txn.Abort()

	admin, err := usecase.Bootstrap(txn, name, phoneNumber, password, e.logger)
	if err != nil {
		return nil, err
	}
	if err := txn.Commit(); err != nil {
		return nil, err
	}
	return admin, nil
}

// Restore applies sync records fetched from the central store, in the order
// given, rebuilding local state on a fresh install or after data loss. The
// transaction bypasses the outbox so restored rows are not pushed back up.
func (e *Engine) Restore(records []*model.SyncRecord) error {
	txn := e.store.RestoreTxn()
	defer txn.Abort()

	applier := replication.NewApplier(e.logger)
	for _, record := range records {
		if err := applier.Apply(txn, record); err != nil {
			return err
		}
	}
	return txn.Commit()
}

// StartReplication spawns the pusher loop and returns immediately. The loop
// stops when the context is cancelled. Without a central base URL there is
// nowhere to push, so the call fails instead of looping against nothing.
func (e *Engine) StartReplication(ctx context.Context) error {
	if e.conf.Central.BaseURL == "" {
		return fmt.Errorf("%w: central base URL is empty", consts.ErrNotConfigured)
	}
	client := replication.NewHTTPCentralClient(e.conf.Central)
	pusher := replication.NewPusher(e.store, client, e.conf.Push, e.logger)
	go pusher.Run(ctx)
	return nil
}

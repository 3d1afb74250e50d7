package io

import (
	"fmt"
	"reflect"
	"sync"

	log "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/memdb"
)

type StorableObject interface {
	ObjType() string
	ObjId() string
	Marshal(includeSensitive bool) ([]byte, error)
}

// Change is one coalesced mutation of a tracked object inside a transaction.
// Before is nil on create, After is nil on delete.
type Change struct {
	Table  string
	Before StorableObject
	After  StorableObject
}

func (c Change) IsCreate() bool { return c.Before == nil && c.After != nil }
func (c Change) IsDelete() bool { return c.After == nil }

// Destination receives every committed change of the tables it tracks,
// inside the committing transaction
type Destination interface {
	Tracks(table string) bool
	ProcessChange(txn *memdb.Txn, change Change) error
}

type MemoryStore struct {
	*memdb.MemDB

	hookMutex sync.RWMutex
	hooks     map[string][]ObjectHook

	destMutex    sync.RWMutex
	destinations []Destination

	logger log.Logger
}

type MemoryStoreTxn struct {
	*memdb.Txn

	memstore *MemoryStore // crosslink
	noFanout bool
}

func NewMemoryStore(schema *memdb.DBSchema, logger log.Logger) (*MemoryStore, error) {
	db, err := memdb.NewMemDB(schema)
	if err != nil {
		return nil, err
	}
	return &MemoryStore{
		MemDB:  db,
		hooks:  map[string][]ObjectHook{},
		logger: logger.Named("MemoryStore"),
	}, nil
}

func (ms *MemoryStore) AddDestination(d Destination) {
	ms.destMutex.Lock()
	ms.destinations = append(ms.destinations, d)
	ms.destMutex.Unlock()
}

func (ms *MemoryStore) Txn(write bool) *MemoryStoreTxn {
	return &MemoryStoreTxn{Txn: ms.MemDB.Txn(write), memstore: ms}
}

// RestoreTxn returns a write transaction whose commit skips destination
// fan-out. Inbound replication applies records the central store already
// holds; recording them in the outbox again would echo them straight back.
func (ms *MemoryStore) RestoreTxn() *MemoryStoreTxn {
	return &MemoryStoreTxn{Txn: ms.MemDB.Txn(true), memstore: ms, noFanout: true}
}

// Insert runs the registered insert hooks synchronously after the write, in
// the same transaction. The previous version of the object, if any, is looked
// up by primary key and handed to the hooks.
func (mst *MemoryStoreTxn) Insert(table string, objPtr interface{}) error {
	obj, ok := objPtr.(StorableObject)
	if !ok {
		return fmt.Errorf("object does not implement StorableObject: %s", reflect.TypeOf(objPtr))
	}
	before, err := mst.Txn.First(table, memdb.PK, obj.ObjId())
	if err != nil {
		return err
	}
	if err := mst.Txn.Insert(table, objPtr); err != nil {
		return err
	}
	return mst.memstore.runHooks(mst, HookEventInsert, table, before, objPtr)
}

func (mst *MemoryStoreTxn) Delete(table string, objPtr interface{}) error {
	if err := mst.Txn.Delete(table, objPtr); err != nil {
		return err
	}
	return mst.memstore.runHooks(mst, HookEventDelete, table, objPtr, nil)
}

func (mst *MemoryStoreTxn) CascadeDelete(table string, objPtr interface{}) error {
	if err := mst.Txn.CascadeDelete(table, objPtr); err != nil {
		return err
	}
	return mst.memstore.runHooks(mst, HookEventDelete, table, objPtr, nil)
}

// commitWithFanout hands every tracked change to every destination before the
// underlying transaction commits, so destination writes (the sync outbox)
// land in the same atomic unit as the originating mutation
func (mst *MemoryStoreTxn) commitWithFanout() error {
	changes := mst.Txn.Changes()

	mst.memstore.destMutex.RLock()
	defer mst.memstore.destMutex.RUnlock()

	for _, change := range changes {
		for _, dest := range mst.memstore.destinations {
			if !dest.Tracks(change.Table) {
				continue
			}
			ch := Change{Table: change.Table}
			var err error
			if change.Before != nil {
				if ch.Before, err = asStorable(change.Before); err != nil {
					return err
				}
			}
			if change.After != nil {
				if ch.After, err = asStorable(change.After); err != nil {
					return err
				}
			}
			if err = dest.ProcessChange(mst.Txn, ch); err != nil {
				return err
			}
		}
	}
	return nil
}

func (mst *MemoryStoreTxn) Commit() error {
	if !mst.noFanout {
		if err := mst.commitWithFanout(); err != nil {
			mst.memstore.logger.Error("transaction aborted", "error", err)
			mst.Txn.Abort()
			return err
		}
	}
	mst.Txn.Commit()
	return nil
}

func (mst *MemoryStoreTxn) Abort() {
	mst.Txn.Abort()
}

func asStorable(raw interface{}) (StorableObject, error) {
	obj, ok := raw.(StorableObject)
	if !ok {
		return nil, fmt.Errorf("object does not implement StorableObject: %s", reflect.TypeOf(raw))
	}
	return obj, nil
}

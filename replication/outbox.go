// Package replication keeps the central store up to date: the outbox
// recorder appends one sync record per committed mutation, the pusher ships
// unpushed records over the network and flips their flag.
package replication

import (
	"encoding/json"
	"sync"
	"time"

	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/memdb"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/uuid"
)

// syncContent is the wire shape of SyncRecord.Content.
type syncContent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// OutboxRecorder is an io.Destination: during commit it turns every tracked
// change into a sync record inserted through the committing transaction, so
// the record and the mutation are one atomic unit.
type OutboxRecorder struct {
	tracked map[string]struct{}

	tsMutex sync.Mutex
	lastTS  model.UnixTime

	logger hclog.Logger
}

func NewOutboxRecorder(parentLogger hclog.Logger) *OutboxRecorder {
	return &OutboxRecorder{
		tracked: model.TrackedTables(),
		logger:  parentLogger.Named("OutboxRecorder"),
	}
}

func (o *OutboxRecorder) Tracks(table string) bool {
	_, ok := o.tracked[table]
	return ok
}

func (o *OutboxRecorder) ProcessChange(txn *memdb.Txn, change io.Change) error {
	var event model.SyncEvent
	var snapshot io.StorableObject

	switch {
	case change.IsCreate():
		event = model.SyncEventCreate
		snapshot = change.After
	case change.IsDelete():
		event = model.SyncEventDelete
		snapshot = change.Before
	default:
		event = model.SyncEventUpdate
		snapshot = change.After
	}

	data, err := snapshot.Marshal(true)
	if err != nil {
		return err
	}
	// the snapshot is tagged with its table so the central store knows
	// where to upsert it
	content, err := json.Marshal(syncContent{Type: snapshot.ObjType(), Data: data})
	if err != nil {
		return err
	}

	record := &model.SyncRecord{
		RecordID:  uuid.New(),
		Event:     event,
		Content:   content,
		CreatedAt: o.nextCreatedAt(),
		Pushed:    false,
	}

	o.logger.Debug("recorded change", "table", change.Table, "event", event, "record_id", record.RecordID)
	return txn.Insert(model.SyncRecordType, record)
}

// nextCreatedAt returns a strictly increasing timestamp so that records keep
// commit order even when the clock reads the same nanosecond twice.
func (o *OutboxRecorder) nextCreatedAt() model.UnixTime {
	o.tsMutex.Lock()
	defer o.tsMutex.Unlock()

	now := time.Now().UnixNano()
	if now <= o.lastTS {
		now = o.lastTS + 1
	}
	o.lastTS = now
	return now
}

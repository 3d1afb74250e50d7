package model

import "encoding/json"

const SyncRecordType = "sync" // also, memdb schema name

type SyncEvent string

const (
	SyncEventCreate SyncEvent = "create"
	SyncEventUpdate SyncEvent = "update"
	SyncEventDelete SyncEvent = "delete"
)

// SyncRecord is one append-only outbox entry: a committed mutation of a
// tracked table awaiting replication. Records are immutable after insert;
// the only permitted transition is Pushed false -> true, performed by the
// replication pusher after confirmed delivery.
type SyncRecord struct {
	RecordID SyncRecordUUID `json:"record_id"` // PK
	Event    SyncEvent      `json:"event"`
	// Content is the post-mutation snapshot, or the pre-mutation snapshot
	// for deletes
	Content   json.RawMessage `json:"content"`
	CreatedAt UnixTime        `json:"created_at"`
	Pushed    bool            `json:"pushed"`
}

func (r *SyncRecord) ObjType() string {
	return SyncRecordType
}

func (r *SyncRecord) ObjId() string {
	return r.RecordID
}

func (r *SyncRecord) Marshal(_ bool) ([]byte, error) {
	return json.Marshal(r)
}

package replication

import (
	"errors"
	"fmt"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/tidwall/gjson"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
)

// Applier is the inbound half of replication: it takes sync records handed
// down from the central store and applies their snapshots to the local
// database. Records must be applied in created_at order so referenced rows
// land before the rows pointing at them. Replays are harmless: upserts
// converge on the same snapshot and deletes of missing rows are skipped.
type Applier struct {
	logger hclog.Logger
}

func NewApplier(parentLogger hclog.Logger) *Applier {
	return &Applier{logger: parentLogger.Named("Applier")}
}

func (a *Applier) Apply(txn *io.MemoryStoreTxn, record *model.SyncRecord) error {
	content := gjson.ParseBytes(record.Content)
	objType := content.Get("type").String()
	data := []byte(content.Get("data").Raw)
	objID := gjson.GetBytes(data, "uuid").String()

	a.logger.Debug("applying sync record", "record", record.RecordID, "type", objType, "event", record.Event)

	if record.Event == model.SyncEventDelete {
		return a.applyDelete(txn, objType, objID)
	}
	return a.applyUpsert(txn, objType, objID, data)
}

func (a *Applier) applyUpsert(txn *io.MemoryStoreTxn, objType, objID string, data []byte) error {
	switch objType {
	case model.SpaceType:
		return repo.NewSpaceRepository(txn).Sync(objID, data)
	case model.UserType:
		return repo.NewUserRepository(txn).Sync(objID, data)
	case model.ScopeType:
		return repo.NewScopeRepository(txn).Sync(objID, data)
	case model.AcademicYearType:
		return repo.NewAcademicYearRepository(txn).Sync(objID, data)
	case model.AcademicYearCourseType:
		return repo.NewAcademicYearCourseRepository(txn).Sync(objID, data)
	case model.GroupType:
		return repo.NewGroupRepository(txn).Sync(objID, data)
	case model.StudentType:
		return repo.NewStudentRepository(txn).Sync(objID, data)
	case model.EnrollmentType:
		return repo.NewEnrollmentRepository(txn).Sync(objID, data)
	}
	return fmt.Errorf("%w: unknown object type %q", consts.ErrWrongType, objType)
}

func (a *Applier) applyDelete(txn *io.MemoryStoreTxn, objType, objID string) error {
	var err error
	switch objType {
	case model.SpaceType:
		err = repo.NewSpaceRepository(txn).CascadeDelete(objID)
	case model.UserType:
		err = repo.NewUserRepository(txn).CascadeDelete(objID)
	case model.ScopeType:
		err = repo.NewScopeRepository(txn).Delete(objID)
	case model.AcademicYearType:
		err = repo.NewAcademicYearRepository(txn).CascadeDelete(objID)
	case model.AcademicYearCourseType:
		err = repo.NewAcademicYearCourseRepository(txn).CascadeDelete(objID)
	case model.GroupType:
		err = repo.NewGroupRepository(txn).CascadeDelete(objID)
	case model.StudentType:
		err = repo.NewStudentRepository(txn).CascadeDelete(objID)
	case model.EnrollmentType:
		err = repo.NewEnrollmentRepository(txn).Delete(objID)
	default:
		return fmt.Errorf("%w: unknown object type %q", consts.ErrWrongType, objType)
	}

	// a cascade on a previous record may have taken the row already
	if errors.Is(err, consts.ErrNotFound) {
		return nil
	}
	return err
}

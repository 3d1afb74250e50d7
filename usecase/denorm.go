package usecase

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
)

// StudentRenameHook propagates a student's new name and search key into
// every enrollment referencing them, inside the renaming transaction. A
// write that does not change the name is a no-op here, so plain updates
// never cascade.
func StudentRenameHook(parentLogger hclog.Logger) io.ObjectHook {
	logger := parentLogger.Named("StudentRenameHook")

	return io.ObjectHook{
		Events:  []io.HookEvent{io.HookEventInsert},
		ObjType: model.StudentType,
		CallbackFn: func(txn *io.MemoryStoreTxn, _ io.HookEvent, before, after interface{}) error {
			if before == nil {
				return nil
			}
			prev, ok := before.(*model.Student)
			if !ok {
				return nil
			}
			next := after.(*model.Student)
			if prev.Name == next.Name {
				return nil
			}

			enrollments := repo.NewEnrollmentRepository(txn)
			list, err := enrollments.ListByStudent(next.UUID)
			if err != nil {
				return err
			}
			// zero referencing enrollments is a valid outcome
			for _, enrollment := range list {
				updated := *enrollment
				updated.Name = next.Name
				updated.SearchName = next.SearchName
				if err := enrollments.Update(&updated); err != nil {
					return err
				}
			}
			logger.Debug("propagated student rename", "student", next.UUID, "enrollments", len(list))
			return nil
		},
	}
}

// Package usecase implements the typed operations exposed to the
// application layer. Every operation authorizes the acting user against
// their current scope grants before touching data; a deny aborts the whole
// transaction with consts.ErrAccessForbidden.
package usecase

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/authz"
	"github.com/tutordesk/local-engine/io"
	"github.com/tutordesk/local-engine/model"
	"github.com/tutordesk/local-engine/repo"
)

// Operator binds an authenticated actor to one transaction. All services
// obtained from the same Operator share that transaction, so a multi-step
// operation commits or aborts as one unit.
type Operator struct {
	db     *io.MemoryStoreTxn
	actor  model.UserUUID
	auth   *authz.Authorizer
	logger hclog.Logger
}

func NewOperator(db *io.MemoryStoreTxn, actor model.UserUUID, logger hclog.Logger) *Operator {
	return &Operator{
		db:     db,
		actor:  actor,
		auth:   authz.NewAuthorizer(repo.NewScopeRepository(db), logger),
		logger: logger,
	}
}

func (o *Operator) authorize(action authz.Action, res authz.Resource) error {
	return o.auth.Authorize(o.actor, action, res)
}

func (o *Operator) Spaces() *SpaceService {
	return &SpaceService{op: o, repo: repo.NewSpaceRepository(o.db)}
}

func (o *Operator) Users() *UserService {
	return &UserService{op: o, repo: repo.NewUserRepository(o.db)}
}

func (o *Operator) Scopes() *ScopeService {
	return &ScopeService{op: o, repo: repo.NewScopeRepository(o.db)}
}

func (o *Operator) AcademicYears() *AcademicYearService {
	return &AcademicYearService{op: o, repo: repo.NewAcademicYearRepository(o.db)}
}

func (o *Operator) Courses() *AcademicYearCourseService {
	return &AcademicYearCourseService{op: o, repo: repo.NewAcademicYearCourseRepository(o.db)}
}

func (o *Operator) Groups() *GroupService {
	return &GroupService{op: o, repo: repo.NewGroupRepository(o.db)}
}

func (o *Operator) Students() *StudentService {
	return &StudentService{op: o, repo: repo.NewStudentRepository(o.db)}
}

func (o *Operator) Enrollments() *EnrollmentService {
	return &EnrollmentService{
		op:       o,
		repo:     repo.NewEnrollmentRepository(o.db),
		students: repo.NewStudentRepository(o.db),
	}
}

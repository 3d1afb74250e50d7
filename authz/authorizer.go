// Package authz resolves scope grants into per-operation allow/deny
// decisions. Rules are an ordered list, first match wins, deny is the
// terminal default.
package authz

import (
	hclog "github.com/hashicorp/go-hclog"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/model"
)

type Action string

const (
	ActionSelect Action = "select"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Resource identifies the target of an action. SpaceUUID is empty for
// center-wide tables, ObjID is the record primary key where one exists.
type Resource struct {
	Table     string
	SpaceUUID model.SpaceUUID
	ObjID     string
}

// ScopeInformer provides the actor's grants. Implemented by
// repo.ScopeRepository.
type ScopeInformer interface {
	ListByUser(model.UserUUID) ([]*model.Scope, error)
}

// featureScopes maps each space-scoped table to the grant that manages it.
// Enrollments are managed together with students.
var featureScopes = map[string]model.ScopeName{
	model.AcademicYearType:       model.ManageAcademicYears,
	model.AcademicYearCourseType: model.ManageAcademicYearCourses,
	model.GroupType:              model.ManageGroups,
	model.StudentType:            model.ManageStudents,
	model.EnrollmentType:         model.ManageStudents,
}

type request struct {
	actor  model.UserUUID
	action Action
	res    Resource
	grants []*model.Scope
}

type rule func(req *request) bool

type Authorizer struct {
	scopes ScopeInformer
	rules  []rule
	logger hclog.Logger
}

func NewAuthorizer(scopes ScopeInformer, parentLogger hclog.Logger) *Authorizer {
	return &Authorizer{
		scopes: scopes,
		rules: []rule{
			centerManagerRule,
			userTableRule,
			scopeTableRule,
			spaceTableRule,
			spaceManagerRule,
			featureScopeRule,
			spaceMemberSelectRule,
		},
		logger: parentLogger.Named("Authorizer"),
	}
}

// Authorize returns nil if some rule allows the action, otherwise
// consts.ErrAccessForbidden. Grants are read fresh on every call so that a
// revoked scope is dead on the very next check.
func (a *Authorizer) Authorize(actor model.UserUUID, action Action, res Resource) error {
	grants, err := a.scopes.ListByUser(actor)
	if err != nil {
		return err
	}
	req := &request{actor: actor, action: action, res: res, grants: grants}
	for _, r := range a.rules {
		if r(req) {
			return nil
		}
	}
	a.logger.Debug("access denied", "actor", actor, "action", action, "table", res.Table)
	return consts.ErrAccessForbidden
}

// A center manager may do anything.
func centerManagerRule(req *request) bool {
	return hasGrant(req.grants, model.ManageCenter, "")
}

// Everyone can read users. A user can always update their own record.
// Creating and deleting users takes a space-manager grant for any space.
func userTableRule(req *request) bool {
	if req.res.Table != model.UserType {
		return false
	}
	switch req.action {
	case ActionSelect:
		return true
	case ActionUpdate:
		return req.res.ObjID == string(req.actor)
	case ActionCreate, ActionDelete:
		return hasScopeName(req.grants, model.ManageSpace)
	}
	return false
}

// Grants are readable by everyone; granting and revoking takes a
// space-manager grant for the space the target grant is bound to.
func scopeTableRule(req *request) bool {
	if req.res.Table != model.ScopeType {
		return false
	}
	if req.action == ActionSelect {
		return true
	}
	return req.res.SpaceUUID != "" &&
		hasGrant(req.grants, model.ManageSpace, req.res.SpaceUUID)
}

// Spaces are readable by everyone and renamable by their managers. Creating
// and deleting spaces stays with the center manager.
func spaceTableRule(req *request) bool {
	if req.res.Table != model.SpaceType {
		return false
	}
	if req.action == ActionSelect {
		return true
	}
	if req.action == ActionUpdate {
		return hasGrant(req.grants, model.ManageSpace, model.SpaceUUID(req.res.ObjID))
	}
	return false
}

// A space manager has full CRUD on every resource scoped to their space.
func spaceManagerRule(req *request) bool {
	if _, scoped := featureScopes[req.res.Table]; !scoped {
		return false
	}
	return req.res.SpaceUUID != "" &&
		hasGrant(req.grants, model.ManageSpace, req.res.SpaceUUID)
}

// A feature grant covers CRUD on its own table within its space.
func featureScopeRule(req *request) bool {
	name, scoped := featureScopes[req.res.Table]
	if !scoped {
		return false
	}
	return req.res.SpaceUUID != "" && hasGrant(req.grants, name, req.res.SpaceUUID)
}

// Holding any grant bound to the space makes its resources readable.
func spaceMemberSelectRule(req *request) bool {
	if _, scoped := featureScopes[req.res.Table]; !scoped {
		return false
	}
	if req.action != ActionSelect || req.res.SpaceUUID == "" {
		return false
	}
	for _, g := range req.grants {
		if g.SpaceUUID == req.res.SpaceUUID {
			return true
		}
	}
	return false
}

func hasGrant(grants []*model.Scope, name model.ScopeName, space model.SpaceUUID) bool {
	for _, g := range grants {
		if g.Name == name && g.SpaceUUID == space {
			return true
		}
	}
	return false
}

func hasScopeName(grants []*model.Scope, name model.ScopeName) bool {
	for _, g := range grants {
		if g.Name == name {
			return true
		}
	}
	return false
}

package authz

import (
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/model"
)

const (
	actorUUID  = "00000001-0000-0000-0000-000000000000"
	otherUUID  = "00000002-0000-0000-0000-000000000000"
	spaceUUID1 = "00000000-0000-0000-0000-000000000001"
	spaceUUID2 = "00000000-0000-0000-0000-000000000002"
)

type fakeScopes struct {
	grants map[model.UserUUID][]*model.Scope
}

func (f *fakeScopes) ListByUser(user model.UserUUID) ([]*model.Scope, error) {
	return f.grants[user], nil
}

func testAuthorizer(grants ...*model.Scope) (*Authorizer, *fakeScopes) {
	scopes := &fakeScopes{grants: map[model.UserUUID][]*model.Scope{
		actorUUID: grants,
	}}
	return NewAuthorizer(scopes, hclog.NewNullLogger()), scopes
}

func grant(name model.ScopeName, space model.SpaceUUID) *model.Scope {
	return &model.Scope{UserUUID: actorUUID, Name: name, SpaceUUID: space}
}

func Test_CenterManagerAllowsEverything(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageCenter, ""))

	for _, table := range []string{
		model.UserType, model.ScopeType, model.SpaceType, model.StudentType,
		model.EnrollmentType, model.GroupType, model.AcademicYearType,
		model.AcademicYearCourseType,
	} {
		for _, action := range []Action{ActionSelect, ActionCreate, ActionUpdate, ActionDelete} {
			err := a.Authorize(actorUUID, action, Resource{Table: table, SpaceUUID: spaceUUID1})
			assert.NoError(t, err, "table=%s action=%s", table, action)
		}
	}
}

func Test_DenyIsTheDefault(t *testing.T) {
	a, _ := testAuthorizer()

	err := a.Authorize(actorUUID, ActionCreate, Resource{Table: model.StudentType, SpaceUUID: spaceUUID1})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_FeatureScopeIsBoundToItsTable(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageStudents, spaceUUID1))

	err := a.Authorize(actorUUID, ActionCreate, Resource{Table: model.GroupType, SpaceUUID: spaceUUID1})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)

	err = a.Authorize(actorUUID, ActionCreate, Resource{Table: model.StudentType, SpaceUUID: spaceUUID1})
	assert.NoError(t, err)
}

func Test_FeatureScopeIsBoundToItsSpace(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageGroups, spaceUUID1))

	err := a.Authorize(actorUUID, ActionUpdate, Resource{Table: model.GroupType, SpaceUUID: spaceUUID2})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)

	err = a.Authorize(actorUUID, ActionUpdate, Resource{Table: model.GroupType, SpaceUUID: spaceUUID1})
	assert.NoError(t, err)
}

func Test_StudentScopeCoversEnrollments(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageStudents, spaceUUID1))

	err := a.Authorize(actorUUID, ActionCreate, Resource{Table: model.EnrollmentType, SpaceUUID: spaceUUID1})
	assert.NoError(t, err)
}

func Test_SpaceManagerHasFullCRUDInOwnSpaceOnly(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageSpace, spaceUUID1))

	for _, table := range []string{
		model.StudentType, model.GroupType, model.AcademicYearType,
		model.AcademicYearCourseType, model.EnrollmentType,
	} {
		err := a.Authorize(actorUUID, ActionCreate, Resource{Table: table, SpaceUUID: spaceUUID1})
		assert.NoError(t, err, "table=%s", table)

		err = a.Authorize(actorUUID, ActionCreate, Resource{Table: table, SpaceUUID: spaceUUID2})
		assert.ErrorIs(t, err, consts.ErrAccessForbidden, "table=%s", table)
	}
}

func Test_AnyGrantMakesSpaceResourcesReadable(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageStudents, spaceUUID1))

	err := a.Authorize(actorUUID, ActionSelect, Resource{Table: model.GroupType, SpaceUUID: spaceUUID1})
	assert.NoError(t, err)

	err = a.Authorize(actorUUID, ActionSelect, Resource{Table: model.GroupType, SpaceUUID: spaceUUID2})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_GloballyReadableTables(t *testing.T) {
	a, _ := testAuthorizer()

	for _, table := range []string{model.UserType, model.SpaceType, model.ScopeType} {
		err := a.Authorize(actorUUID, ActionSelect, Resource{Table: table})
		assert.NoError(t, err, "table=%s", table)
	}
}

func Test_SelfUpdateNeedsNoGrant(t *testing.T) {
	a, _ := testAuthorizer()

	err := a.Authorize(actorUUID, ActionUpdate, Resource{Table: model.UserType, ObjID: actorUUID})
	assert.NoError(t, err)

	err = a.Authorize(actorUUID, ActionUpdate, Resource{Table: model.UserType, ObjID: otherUUID})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_SpaceManagerManagesUsersAndGrants(t *testing.T) {
	a, _ := testAuthorizer(grant(model.ManageSpace, spaceUUID1))

	err := a.Authorize(actorUUID, ActionCreate, Resource{Table: model.UserType})
	assert.NoError(t, err)

	err = a.Authorize(actorUUID, ActionCreate, Resource{Table: model.ScopeType, SpaceUUID: spaceUUID1})
	assert.NoError(t, err)

	err = a.Authorize(actorUUID, ActionCreate, Resource{Table: model.ScopeType, SpaceUUID: spaceUUID2})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)

	err = a.Authorize(actorUUID, ActionUpdate, Resource{Table: model.SpaceType, ObjID: spaceUUID1})
	assert.NoError(t, err)

	err = a.Authorize(actorUUID, ActionDelete, Resource{Table: model.SpaceType, ObjID: spaceUUID1})
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_RevocationTakesEffectOnNextCheck(t *testing.T) {
	a, scopes := testAuthorizer(grant(model.ManageStudents, spaceUUID1))

	res := Resource{Table: model.StudentType, SpaceUUID: spaceUUID1}
	assert.NoError(t, a.Authorize(actorUUID, ActionCreate, res))

	scopes.grants[actorUUID] = nil

	assert.ErrorIs(t, a.Authorize(actorUUID, ActionCreate, res), consts.ErrAccessForbidden)
}

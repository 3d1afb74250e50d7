package usecase

import (
	"testing"

	hclog "github.com/hashicorp/go-hclog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutordesk/local-engine/consts"
	"github.com/tutordesk/local-engine/model"
)

func (e *testEnv) auth() (*AuthService, func()) {
	txn := e.store.Txn(false)
	return Auth(txn, hclog.NewNullLogger()), txn.Abort
}

func Test_SignIn(t *testing.T) {
	env := newTestEnv(t)

	auth, done := env.auth()
	defer done()

	user, err := auth.SignIn(adminPhone, "0000")
	require.NoError(t, err)
	assert.Equal(t, env.admin.UUID, user.UUID)

	_, err = auth.SignIn(adminPhone, "wrong")
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)

	_, err = auth.SignIn(managerPhone, "0000")
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_WhoCanResetPasswordFor(t *testing.T) {
	env := newTestEnv(t)
	space := env.createSpace("Main branch")
	env.createUserWithGrant("Manager", managerPhone, model.ManageSpace, space.UUID)
	member := env.createUserWithGrant("Member", memberPhone, model.ManageStudents, space.UUID)

	auth, done := env.auth()
	defer done()

	helpers, err := auth.WhoCanResetPasswordFor(member.PhoneNumber)
	require.NoError(t, err)

	phones := []string{}
	for _, h := range helpers {
		phones = append(phones, h.PhoneNumber)
		assert.Empty(t, h.Password)
	}
	assert.ElementsMatch(t, []string{adminPhone, managerPhone}, phones)
}

func Test_WhoCanResetPasswordForExcludesSelf(t *testing.T) {
	env := newTestEnv(t)
	space := env.createSpace("Main branch")
	manager := env.createUserWithGrant("Manager", managerPhone, model.ManageSpace, space.UUID)

	auth, done := env.auth()
	defer done()

	// the manager is a member of their own space, they must not offer to
	// reset their own password
	helpers, err := auth.WhoCanResetPasswordFor(manager.PhoneNumber)
	require.NoError(t, err)
	require.Len(t, helpers, 1)
	assert.Equal(t, adminPhone, helpers[0].PhoneNumber)
}

func Test_WhoCanResetPasswordForDeduplicates(t *testing.T) {
	env := newTestEnv(t)
	spaceA := env.createSpace("Branch A")
	spaceB := env.createSpace("Branch B")

	manager := env.createUserWithGrant("Manager", managerPhone, model.ManageSpace, spaceA.UUID)
	err := env.runTxn(env.admin.UUID, func(op *Operator) error {
		_, err := op.Scopes().Grant(manager.UUID, model.ManageSpace, spaceB.UUID)
		return err
	})
	require.NoError(t, err)

	member := env.createUserWithGrant("Member", memberPhone, model.ManageStudents, spaceA.UUID)
	err = env.runTxn(env.admin.UUID, func(op *Operator) error {
		_, err := op.Scopes().Grant(member.UUID, model.ManageStudents, spaceB.UUID)
		return err
	})
	require.NoError(t, err)

	auth, done := env.auth()
	defer done()

	// the manager manages both spaces the member belongs to, they still
	// appear once
	helpers, err := auth.WhoCanResetPasswordFor(member.PhoneNumber)
	require.NoError(t, err)

	count := 0
	for _, h := range helpers {
		if h.UUID == manager.UUID {
			count++
		}
	}
	assert.Equal(t, 1, count)
}

func Test_ResetPassword(t *testing.T) {
	env := newTestEnv(t)
	space := env.createSpace("Main branch")
	member := env.createUserWithGrant("Member", memberPhone, model.ManageStudents, space.UUID)

	txn := env.store.Txn(true)
	auth := Auth(txn, hclog.NewNullLogger())
	tempPassword, err := auth.ResetPassword(env.admin.UUID, member.PhoneNumber)
	require.NoError(t, err)
	require.NotEmpty(t, tempPassword)
	require.NoError(t, txn.Commit())

	signin, done := env.auth()
	defer done()

	user, err := signin.SignIn(member.PhoneNumber, tempPassword)
	require.NoError(t, err)
	assert.Equal(t, member.UUID, user.UUID)

	_, err = signin.SignIn(member.PhoneNumber, "0000")
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

func Test_ResetPasswordDeniedWithoutAuthority(t *testing.T) {
	env := newTestEnv(t)
	spaceA := env.createSpace("Branch A")
	spaceB := env.createSpace("Branch B")
	manager := env.createUserWithGrant("Manager", managerPhone, model.ManageSpace, spaceA.UUID)
	member := env.createUserWithGrant("Member", memberPhone, model.ManageStudents, spaceB.UUID)

	txn := env.store.Txn(true)
	defer txn.Abort()
	auth := Auth(txn, hclog.NewNullLogger())

	// the manager does not manage any space the member belongs to
	_, err := auth.ResetPassword(manager.UUID, member.PhoneNumber)
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)

	// nobody resets their own password through this path
	_, err = auth.ResetPassword(member.UUID, member.PhoneNumber)
	assert.ErrorIs(t, err, consts.ErrAccessForbidden)
}

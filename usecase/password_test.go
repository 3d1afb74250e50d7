package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tutordesk/local-engine/consts"
)

func Test_EncodePassword(t *testing.T) {
	encoded, err := EncodePassword("secret")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(encoded, "$argon2id$"))

	// a fresh salt every time
	other, err := EncodePassword("secret")
	require.NoError(t, err)
	assert.NotEqual(t, encoded, other)
}

func Test_ComparePassword(t *testing.T) {
	encoded, err := EncodePassword("secret")
	require.NoError(t, err)

	ok, err := ComparePassword(encoded, "secret")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = ComparePassword(encoded, "not the secret")
	require.NoError(t, err)
	assert.False(t, ok)
}

func Test_ComparePasswordRejectsGarbage(t *testing.T) {
	_, err := ComparePassword("not-a-hash", "secret")
	assert.ErrorIs(t, err, consts.ErrInvalidArg)
}

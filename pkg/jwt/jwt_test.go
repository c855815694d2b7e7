package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_IssueAndValidate(t *testing.T) {
	m, err := NewManager("s3cret", "skrm", time.Minute)
	require.NoError(t, err)

	token, exp, err := m.IssueAccessToken("user-1", "ada", []string{RoleSystemAdmin})
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Minute), exp, 5*time.Second)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "ada", claims.Username)
	assert.True(t, claims.HasSystemRole())
}

func TestManager_Rejects(t *testing.T) {
	m, err := NewManager("s3cret", "skrm", time.Minute)
	require.NoError(t, err)

	other, err := NewManager("different", "skrm", time.Minute)
	require.NoError(t, err)
	foreign, _, err := other.IssueAccessToken("user-1", "ada", nil)
	require.NoError(t, err)

	_, err = m.ValidateToken(foreign)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = m.ValidateToken("garbage")
	assert.ErrorIs(t, err, ErrInvalidToken)

	expired, err := NewManager("s3cret", "skrm", time.Nanosecond)
	require.NoError(t, err)
	old, _, err := expired.IssueAccessToken("user-1", "ada", nil)
	require.NoError(t, err)
	time.Sleep(1100 * time.Millisecond)
	_, err = m.ValidateToken(old)
	assert.ErrorIs(t, err, ErrExpiredToken)
}

func TestNewManager_RequiresSecret(t *testing.T) {
	_, err := NewManager("", "skrm", time.Minute)
	assert.ErrorIs(t, err, ErrMissingKey)
}

func TestClaims_HasSystemRole(t *testing.T) {
	assert.False(t, (&Claims{Roles: []string{"user"}}).HasSystemRole())
	assert.True(t, (&Claims{Roles: []string{"user", RoleSystem}}).HasSystemRole())
}

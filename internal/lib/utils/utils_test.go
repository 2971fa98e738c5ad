package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPasswordHashing(t *testing.T) {
	hash, err := HashPassword("a123b")
	require.NoError(t, err)
	assert.NotEqual(t, "a123b", hash)
	assert.True(t, CheckPassword(hash, "a123b"))
	assert.False(t, CheckPassword(hash, "a124b"))
	assert.False(t, CheckPassword("not-a-hash", "a123b"))
}

func TestJoinPath(t *testing.T) {
	assert.Equal(t, "/api/v1/users", JoinPath("/api/v1", "users"))
	assert.Equal(t, "/api/v1/users/me", JoinPath("/api/v1/", "/users/", "me"))
	assert.Equal(t, "/users", JoinPath("", "users"))
	assert.Equal(t, "/", JoinPath(""))
}

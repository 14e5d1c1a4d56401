package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestHashAndCheckPassword(t *testing.T) {
	PasswordCost = bcrypt.MinCost
	t.Cleanup(func() { PasswordCost = bcrypt.DefaultCost })

	h, err := HashPassword("newpass123")
	require.NoError(t, err)
	assert.NotEqual(t, "newpass123", h)
	assert.True(t, strings.HasPrefix(h, "$2a$"))

	assert.True(t, CheckPassword("newpass123", h))
	assert.False(t, CheckPassword("newpass124", h))
	assert.False(t, CheckPassword("newpass123", "not-a-hash"))

	h2, err := HashPassword("newpass123")
	require.NoError(t, err)
	assert.NotEqual(t, h, h2, "salted")
}

func TestHashPassword_TooLong(t *testing.T) {
	_, err := HashPassword(strings.Repeat("x", 73))
	assert.Error(t, err)
}

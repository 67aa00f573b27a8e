package invitations

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewInviteToken(t *testing.T) {
	token, err := NewInviteToken()
	assert.NoError(t, err)
	assert.Len(t, token, 64)

	other, err := NewInviteToken()
	assert.NoError(t, err)
	assert.NotEqual(t, token, other)
}

func TestNewInviteCode(t *testing.T) {
	code, err := NewInviteCode()
	assert.NoError(t, err)
	assert.Len(t, code, 8)

	for _, c := range code {
		assert.Contains(t, codeCharset, string(c))
	}
	assert.NotContains(t, code, "0")
	assert.NotContains(t, code, "O")
	assert.NotContains(t, code, "1")
	assert.NotContains(t, code, "I")
}

func TestNormalizeEmail(t *testing.T) {
	assert.Equal(t, "jane@keyhaven.com", NormalizeEmail("  Jane@KeyHaven.com "))
	assert.Equal(t, "", NormalizeEmail("   "))
	assert.False(t, strings.ContainsAny(NormalizeEmail(" a@b.c "), " "))
}

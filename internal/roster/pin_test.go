package roster_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/counterworks/counterlog/internal/roster"
)

func TestHashPIN(t *testing.T) {
	h1 := roster.HashPIN("110023", "salt-a")
	h2 := roster.HashPIN("110023", "salt-a")
	assert.Equal(t, h1, h2)
	assert.Len(t, h1, 64)

	assert.NotEqual(t, h1, roster.HashPIN("110024", "salt-a"))
	assert.NotEqual(t, h1, roster.HashPIN("110023", "salt-b"))

	// Empty salt falls back to the documented default.
	assert.Equal(t, roster.HashPIN("110023", roster.DefaultPINSalt), roster.HashPIN("110023", ""))
}

func TestVerifyPIN(t *testing.T) {
	stored := roster.HashPIN("110023", "salt-a")

	assert.True(t, roster.VerifyPIN("110023", "salt-a", stored))
	assert.False(t, roster.VerifyPIN("110024", "salt-a", stored))
	assert.False(t, roster.VerifyPIN("110023", "salt-b", stored))
	assert.False(t, roster.VerifyPIN("110023", "salt-a", ""))
}

func TestValidatePINFormat(t *testing.T) {
	assert.NoError(t, roster.ValidatePINFormat("110023"))
	assert.Error(t, roster.ValidatePINFormat(""))
	assert.Error(t, roster.ValidatePINFormat("1234"))
	assert.Error(t, roster.ValidatePINFormat("1234567"))
	assert.Error(t, roster.ValidatePINFormat("12a456"))
}

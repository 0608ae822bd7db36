package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashPassword_Format(t *testing.T) {
	hash, err := HashPassword("correct horse battery")
	require.NoError(t, err)

	assert.True(t, strings.HasPrefix(hash, "$argon2id$v=19$m=65536,t=1,p=4$"))
	assert.Len(t, strings.Split(hash, "$"), 6)
}

func TestHashPassword_SaltMakesHashesUnique(t *testing.T) {
	a, err := HashPassword("same-password")
	require.NoError(t, err)
	b, err := HashPassword("same-password")
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
}

func TestVerifyPassword(t *testing.T) {
	hash, err := HashPassword("s3cret-Pässword")
	require.NoError(t, err)

	tests := []struct {
		name     string
		password string
		want     bool
	}{
		{"correct", "s3cret-Pässword", true},
		{"wrong", "s3cret-Password", false},
		{"empty", "", false},
		{"case differs", "S3CRET-PÄSSWORD", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, err := VerifyPassword(tt.password, hash)
			require.NoError(t, err)
			assert.Equal(t, tt.want, ok)
		})
	}
}

func TestVerifyPassword_InvalidHash(t *testing.T) {
	hashes := []string{
		"",
		"plain-text",
		"$argon2id$v=19$m=65536,t=1,p=4$salt",
		"$bcrypt$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=65536,t=1,p=4$!!!$aGFzaA",
	}

	for _, h := range hashes {
		ok, err := VerifyPassword("password", h)
		assert.ErrorIs(t, err, ErrInvalidHash, h)
		assert.False(t, ok)
	}
}

func TestVerifyPassword_IncompatibleVersion(t *testing.T) {
	ok, err := VerifyPassword("password", "$argon2id$v=16$m=65536,t=1,p=4$c2FsdHNhbHRzYWx0c2FsdA$aGFzaA")
	assert.ErrorIs(t, err, ErrIncompatibleVersion)
	assert.False(t, ok)
}

func BenchmarkHashPassword(b *testing.B) {
	for i := 0; i < b.N; i++ {
		_, _ = HashPassword("benchmark-password")
	}
}

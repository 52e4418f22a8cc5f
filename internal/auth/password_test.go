package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
)

// fastPasswordConfig keeps argon2 cheap in tests
func fastPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Memory:      1024,
		Iterations:  1,
		Parallelism: 1,
		SaltLength:  16,
		KeyLength:   32,
	}
}

func TestPasswordHasher_HashAndVerify(t *testing.T) {
	hasher := NewPasswordHasher(fastPasswordConfig())

	hash, salt, err := hasher.HashPassword("correct horse")
	require.NoError(t, err)
	assert.NotEmpty(t, hash)
	assert.NotEmpty(t, salt)
	assert.NotEqual(t, "correct horse", hash)

	ok, err := hasher.VerifyPassword("correct horse", hash, salt)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = hasher.VerifyPassword("wrong horse", hash, salt)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestPasswordHasher_SaltIsPerCall(t *testing.T) {
	hasher := NewPasswordHasher(fastPasswordConfig())

	hash1, salt1, err := hasher.HashPassword("same password")
	require.NoError(t, err)
	hash2, salt2, err := hasher.HashPassword("same password")
	require.NoError(t, err)

	assert.NotEqual(t, salt1, salt2)
	assert.NotEqual(t, hash1, hash2)
}

func TestPasswordHasher_VerifyBadEncoding(t *testing.T) {
	hasher := NewPasswordHasher(fastPasswordConfig())

	_, err := hasher.VerifyPassword("pw", "%%%", "c2FsdA==")
	assert.Error(t, err)

	_, err = hasher.VerifyPassword("pw", "aGFzaA==", "%%%")
	assert.Error(t, err)
}

func TestConfigFromSettings(t *testing.T) {
	cfg := ConfigFromSettings(&config.HashSettings{Memory: 8, Iterations: 2, Parallelism: 3, SaltLength: 4, KeyLength: 5})

	assert.Equal(t, &PasswordConfig{Memory: 8, Iterations: 2, Parallelism: 3, SaltLength: 4, KeyLength: 5}, cfg)
	assert.Equal(t, DefaultPasswordConfig(), NewPasswordHasher(nil).cfg)
}

package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/base64"
	"fmt"

	"golang.org/x/crypto/argon2"

	"github.com/yasinhessnawi1/taskmanager/internal/config"
	"github.com/yasinhessnawi1/taskmanager/internal/constants"
)

// PasswordConfig holds the parameters for the Argon2id password hashing algorithm
type PasswordConfig struct {
	Memory      uint32
	Iterations  uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

// DefaultPasswordConfig returns the default configuration for password hashing
func DefaultPasswordConfig() *PasswordConfig {
	return &PasswordConfig{
		Memory:      constants.DefaultPasswordHashMemory,
		Iterations:  constants.DefaultPasswordHashIterations,
		Parallelism: constants.DefaultPasswordHashParallelism,
		SaltLength:  constants.DefaultPasswordHashSaltLength,
		KeyLength:   constants.DefaultPasswordHashKeyLength,
	}
}

// ConfigFromSettings creates a password config from the hash settings
func ConfigFromSettings(cfg *config.HashSettings) *PasswordConfig {
	return &PasswordConfig{
		Memory:      cfg.Memory,
		Iterations:  cfg.Iterations,
		Parallelism: cfg.Parallelism,
		SaltLength:  cfg.SaltLength,
		KeyLength:   cfg.KeyLength,
	}
}

// PasswordHasher hashes and verifies passwords with salted Argon2id
type PasswordHasher struct {
	cfg *PasswordConfig
}

// NewPasswordHasher creates a PasswordHasher. A nil config selects the defaults.
func NewPasswordHasher(cfg *PasswordConfig) *PasswordHasher {
	if cfg == nil {
		cfg = DefaultPasswordConfig()
	}
	return &PasswordHasher{cfg: cfg}
}

// HashPassword generates a hash of the provided password using a fresh random salt.
//
// Returns:
//   - The base64 encoded hash
//   - The base64 encoded salt
//   - An error if no salt could be generated
func (h *PasswordHasher) HashPassword(password string) (string, string, error) {
	salt, err := GenerateRandomBytes(h.cfg.SaltLength)
	if err != nil {
		return "", "", fmt.Errorf("failed to generate salt: %w", err)
	}

	hash := h.derive(password, salt)

	return base64.StdEncoding.EncodeToString(hash), base64.StdEncoding.EncodeToString(salt), nil
}

// VerifyPassword compares a password with a stored hash and salt
func (h *PasswordHasher) VerifyPassword(password, encodedHash, encodedSalt string) (bool, error) {
	hash, err := base64.StdEncoding.DecodeString(encodedHash)
	if err != nil {
		return false, fmt.Errorf("failed to decode hash: %w", err)
	}

	salt, err := base64.StdEncoding.DecodeString(encodedSalt)
	if err != nil {
		return false, fmt.Errorf("failed to decode salt: %w", err)
	}

	// Constant time so a near match takes as long as a miss
	return subtle.ConstantTimeCompare(hash, h.derive(password, salt)) == 1, nil
}

func (h *PasswordHasher) derive(password string, salt []byte) []byte {
	return argon2.IDKey(
		[]byte(password),
		salt,
		h.cfg.Iterations,
		h.cfg.Memory,
		h.cfg.Parallelism,
		h.cfg.KeyLength,
	)
}

// GenerateRandomBytes generates cryptographically secure random bytes
func GenerateRandomBytes(length uint32) ([]byte, error) {
	b := make([]byte, length)
	if _, err := rand.Read(b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

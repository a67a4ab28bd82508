package auth

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

// Supported password hashing algorithms.
const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// DefaultBcryptCost matches the cost existing deployments hashed with.
const DefaultBcryptCost = 10

// ErrPasswordMismatch is returned by Verify for a wrong password.
var ErrPasswordMismatch = errors.New("password does not match")

// Hasher hashes new passwords with one algorithm and verifies stored hashes
// of either algorithm, so switching algorithms never locks users out.
type Hasher struct {
	algorithm  string
	bcryptCost int
	params     *argon2id.Params
}

// NewHasher returns a Hasher for algorithm. A zero bcryptCost uses
// DefaultBcryptCost.
func NewHasher(algorithm string, bcryptCost int) (*Hasher, error) {
	if bcryptCost == 0 {
		bcryptCost = DefaultBcryptCost
	}
	switch algorithm {
	case "", AlgorithmBcrypt:
		if bcryptCost < bcrypt.MinCost || bcryptCost > bcrypt.MaxCost {
			return nil, fmt.Errorf("bcrypt cost %d out of range [%d, %d]", bcryptCost, bcrypt.MinCost, bcrypt.MaxCost)
		}
		return &Hasher{algorithm: AlgorithmBcrypt, bcryptCost: bcryptCost, params: argon2id.DefaultParams}, nil
	case AlgorithmArgon2id:
		return &Hasher{algorithm: AlgorithmArgon2id, bcryptCost: bcryptCost, params: argon2id.DefaultParams}, nil
	default:
		return nil, fmt.Errorf("unknown password hash algorithm %q", algorithm)
	}
}

// Algorithm returns the algorithm used for new hashes.
func (h *Hasher) Algorithm() string {
	return h.algorithm
}

// Hash returns the encoded hash of password.
func (h *Hasher) Hash(password string) (string, error) {
	if h.algorithm == AlgorithmArgon2id {
		hash, err := argon2id.CreateHash(password, h.params)
		if err != nil {
			return "", fmt.Errorf("hash password: %w", err)
		}
		return hash, nil
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.bcryptCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// Verify checks password against an encoded hash. It returns
// ErrPasswordMismatch for a wrong password and another error for a malformed
// hash.
func (h *Hasher) Verify(password, encoded string) error {
	if strings.HasPrefix(encoded, "$argon2id$") {
		ok, err := argon2id.ComparePasswordAndHash(password, encoded)
		if err != nil {
			return fmt.Errorf("compare argon2id hash: %w", err)
		}
		if !ok {
			return ErrPasswordMismatch
		}
		return nil
	}

	err := bcrypt.CompareHashAndPassword([]byte(encoded), []byte(password))
	if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
		return ErrPasswordMismatch
	}
	if err != nil {
		return fmt.Errorf("compare bcrypt hash: %w", err)
	}
	return nil
}

// HashToken returns the hex SHA-256 digest stored in place of a refresh token.
func HashToken(token string) string {
	sum := sha256.Sum256([]byte(token))
	return hex.EncodeToString(sum[:])
}

package hash

import (
	"github.com/alexedwards/argon2id"

	customErrors "contactbook/internal/domain/errors"
)

var params = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

// Hasher produces and verifies peppered argon2id password hashes. Hashing the
// same plaintext twice yields different strings because of the random salt.
type Hasher struct {
	pepper string
}

func New(pepper string) *Hasher {
	return &Hasher{pepper: pepper}
}

func (h *Hasher) Hash(plain string) (string, error) {
	hashed, err := argon2id.CreateHash(plain+h.pepper, params)
	if err != nil {
		return "", customErrors.WrapInternal(err, "hash password")
	}
	return hashed, nil
}

// Verify reports whether plain matches hashed. Malformed hashes verify as
// false, never as an error.
func (h *Hasher) Verify(plain, hashed string) bool {
	ok, err := argon2id.ComparePasswordAndHash(plain+h.pepper, hashed)
	if err != nil {
		return false
	}
	return ok
}

// Package password hashes and verifies user passwords.
//
// New digests are argon2id in PHC string form. Digests imported from the
// previous portal are bcrypt ($2a$/$2b$/$2y$) and are still accepted by Verify.
package password

import (
	"strings"

	"github.com/alexedwards/argon2id"
	"golang.org/x/crypto/bcrypt"
)

var DefaultParams = &argon2id.Params{
	Memory:      64 * 1024, // 64 MiB
	Iterations:  2,
	Parallelism: 4,
	SaltLength:  16,
	KeyLength:   32,
}

type Hasher struct {
	params *argon2id.Params
	pepper string
}

func NewHasher(pepper string, params *argon2id.Params) *Hasher {
	if params == nil {
		params = DefaultParams
	}
	return &Hasher{params: params, pepper: pepper}
}

// Hash returns a salted digest; hashing the same password twice gives different digests.
func (h *Hasher) Hash(plain string) (string, error) {
	return argon2id.CreateHash(plain+h.pepper, h.params)
}

// Verify reports whether plain matches digest. A malformed digest is a mismatch, not an error.
func (h *Hasher) Verify(plain, digest string) bool {
	switch {
	case strings.HasPrefix(digest, "$argon2id$"):
		if !usableArgon2(digest) {
			return false
		}
		ok, err := argon2id.ComparePasswordAndHash(plain+h.pepper, digest)
		return err == nil && ok
	case isBcrypt(digest):
		return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
	default:
		return false
	}
}

// usableArgon2 rejects digests that decode but carry parameters argon2.IDKey panics on.
func usableArgon2(digest string) bool {
	params, _, key, err := argon2id.DecodeHash(digest)
	if err != nil {
		return false
	}
	return params.Iterations >= 1 && params.Parallelism >= 1 && len(key) > 0
}

func isBcrypt(digest string) bool {
	return strings.HasPrefix(digest, "$2a$") ||
		strings.HasPrefix(digest, "$2b$") ||
		strings.HasPrefix(digest, "$2y$")
}

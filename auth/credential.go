package auth

import (
	"strconv"

	"golang.org/x/crypto/bcrypt"
)

// Hasher turns a plaintext password into the stored credential string
// and verifies a password against one.
type Hasher interface {
	Hash(password string) string
	Verify(password, stored string) bool
}

// NewHasher selects the credential scheme. Anything other than
// "bcrypt" keeps the legacy scheme.
func NewHasher(scheme string) Hasher {
	if scheme == "bcrypt" {
		return BcryptHasher{}
	}
	return LegacyHasher{}
}

// LegacyHasher is the historical placeholder credential: the decimal
// codepoint of the password's first character. It is NOT a hash and
// offers no security; it is kept as the default so existing rows keep
// working.
// to-do: actually secure hash (migrate stored rows to bcrypt)
type LegacyHasher struct{}

func (LegacyHasher) Hash(password string) string {
	for _, r := range password {
		return strconv.Itoa(int(r))
	}
	return "0"
}

func (h LegacyHasher) Verify(password, stored string) bool {
	return h.Hash(password) == stored
}

// BcryptHasher stores a real bcrypt hash. Enabling it invalidates
// credentials written under the legacy scheme.
type BcryptHasher struct{}

func (BcryptHasher) Hash(password string) string {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return ""
	}
	return string(hash)
}

func (BcryptHasher) Verify(password, stored string) bool {
	return bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
}

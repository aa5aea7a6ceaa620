// Package auth provides the credential primitives: one-way password hashing
// and signed bearer session tokens. Both are constructed during bootstrap and
// injected where needed.
package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost is fixed at 12 rounds. Raising it changes only new hashes;
// existing hashes keep the cost they were created with.
const bcryptCost = 12

// HashPassword returns the bcrypt hash of a plaintext password.
// Length policy is the caller's concern, not enforced here.
func HashPassword(plaintext string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plaintext), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// VerifyPassword reports whether plaintext matches the stored bcrypt hash.
// bcrypt's own comparison is constant-time over the digest.
func VerifyPassword(plaintext, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plaintext)) == nil
}

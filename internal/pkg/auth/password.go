package auth

import (
	"golang.org/x/crypto/bcrypt"
)

// BcryptCost is the work factor used for new secret hashes.
const BcryptCost = 12

// HashSecret hashes a raw secret with bcrypt. The raw secret is never stored.
func HashSecret(secret string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifySecret reports whether the raw secret matches the stored hash.
func VerifySecret(hashedSecret, secret string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedSecret), []byte(secret))
	return err == nil
}

// BcryptHasher is the default secret-hashing primitive used in production.
type BcryptHasher struct{}

// Hash hashes a raw secret with bcrypt.
func (BcryptHasher) Hash(secret string) (string, error) {
	return HashSecret(secret)
}

// Verify reports whether the raw secret matches the stored hash.
func (BcryptHasher) Verify(hash, secret string) bool {
	return VerifySecret(hash, secret)
}

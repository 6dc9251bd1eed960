package auth

import "golang.org/x/crypto/bcrypt"

// bcryptCost matches the work factor the rest of the system was provisioned
// for. Raising it invalidates no existing digests but slows logins.
const bcryptCost = 10

// HashPassword produces a salted one-way digest of the plaintext. The salt
// is generated per call, so equal inputs yield different digests.
func HashPassword(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(digest), nil
}

// CheckPassword reports whether plain matches the digest. It fails closed:
// an empty or malformed digest verifies to false, never panics.
func CheckPassword(plain, digest string) bool {
	if digest == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}

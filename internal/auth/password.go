package auth

import "golang.org/x/crypto/bcrypt"

// passwordCost is the bcrypt work factor applied to new hashes.
const passwordCost = 10

// HashPassword derives a salted adaptive hash from the plaintext password.
// The plaintext is never stored and cannot be recovered from the hash.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), passwordCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

// CheckPassword reports whether the plaintext password matches the stored
// hash. The comparison is constant-time.
func CheckPassword(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}

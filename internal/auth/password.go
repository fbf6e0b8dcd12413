package auth

import "golang.org/x/crypto/bcrypt"

// hashCost is applied to newly hashed passwords; existing hashes keep the
// cost they were created with.
const hashCost = bcrypt.DefaultCost

// HashPassword derives the bcrypt hash stored for a user account.
func HashPassword(pw string) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(pw), hashCost)
	return string(b), err
}

// CheckPassword reports via error whether pw matches the stored hash.
func CheckPassword(hash, pw string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(pw))
}

package service

import "golang.org/x/crypto/bcrypt"

// bcryptCost is a design constant, not user-configurable.
const bcryptCost = 10

func hashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcryptCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// verifyPassword reports whether plain matches hash. A mismatch is not an
// error, it is a false.
func verifyPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}

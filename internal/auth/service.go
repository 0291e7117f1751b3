package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/ubudget/ubudget/apperrors"
)

// HashPassword derives the stored bcrypt hash for a plain password. Inputs
// beyond MaxPasswordLength exceed bcrypt's input limit and fail;
// NewUser.Validate screens them out before registration reaches the hasher.
func HashPassword(plain string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("%w: failed to hash password: %v", apperrors.ErrInternal, err)
	}
	return string(hashed), nil
}

// ComparePasswords reports whether plain matches the stored bcrypt hash.
func ComparePasswords(hashed, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plain)) == nil
}

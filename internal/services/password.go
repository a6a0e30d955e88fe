package services

import "golang.org/x/crypto/bcrypt"

// PasswordHasher is the one-way credential hashing capability injected
// into the user service.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(hashed, plaintext string) bool
}

type bcryptHasher struct {
	cost int
}

// NewBcryptHasher returns the production hasher at bcrypt's default cost.
func NewBcryptHasher() PasswordHasher {
	return &bcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *bcryptHasher) Hash(plaintext string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}

func (h *bcryptHasher) Verify(hashed, plaintext string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hashed), []byte(plaintext)) == nil
}

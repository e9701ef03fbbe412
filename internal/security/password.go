package security

import "golang.org/x/crypto/bcrypt"

// dummyHash is compared against when the account does not exist, so a login
// for an unknown email costs as much as a wrong password.
var dummyHash = mustHash("expensehub-timing-equalizer")

// HashPassword hashes a plain text password with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)

	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a plaintext password. Hashes that
// are not bcrypt (such as the federated sentinel) never match.
func CheckPassword(hash, plain string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
}

// BurnCompare performs a throwaway comparison and always returns an error.
func BurnCompare(plain string) error {
	err := bcrypt.CompareHashAndPassword(dummyHash, []byte(plain))
	if err == nil {
		return bcrypt.ErrMismatchedHashAndPassword
	}
	return err
}

func mustHash(plain string) []byte {
	h, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		panic(err)
	}
	return h
}

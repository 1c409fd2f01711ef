package security

import "golang.org/x/crypto/bcrypt"

// ErrPasswordTooLong is returned for inputs bcrypt cannot hash (> 72 bytes).
var ErrPasswordTooLong = bcrypt.ErrPasswordTooLong

// Hasher hashes passwords with bcrypt at a fixed cost. The zero value uses
// bcrypt.DefaultCost.
type Hasher struct {
	Cost int
}

// NewHasher returns a hasher with the given cost, clamped to bcrypt's range.
func NewHasher(cost int) Hasher {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}
	return Hasher{Cost: cost}
}

func (h Hasher) Hash(plain string) (string, error) {
	cost := h.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
}

// Matches reports whether plain is the password behind hash. bcrypt compares
// in constant time.
func (h Hasher) Matches(hash, plain string) bool {
	if hash == "" || plain == "" {
		return false
	}

	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain))
	return err == nil
}

package credentials

import (
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authgateway/internal/common"
	"golang.org/x/crypto/bcrypt"
)

const DefaultBcryptCost = 10

// bcryptMaxBytes is the longest input bcrypt reads. Longer passwords are
// cut to this length for both Hash and Verify.
const bcryptMaxBytes = 72

type Bcrypt struct {
	cost int
}

// NewBcrypt returns a bcrypt codec. Costs outside bcrypt's range fall back
// to DefaultBcryptCost.
func NewBcrypt(cost int) *Bcrypt {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &Bcrypt{cost: cost}
}

func (b *Bcrypt) Hash(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword(truncate(password), b.cost)
	if err != nil {
		return "", fmt.Errorf("bcrypt: %w", err)
	}
	return string(h), nil
}

func (b *Bcrypt) Verify(password, hash string) (bool, error) {
	err := bcrypt.CompareHashAndPassword([]byte(hash), truncate(password))
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, bcrypt.ErrMismatchedHashAndPassword):
		return false, nil
	default:
		return false, fmt.Errorf("%w: %v", common.ErrorMalformedHash, err)
	}
}

func isBcryptHash(h string) bool {
	return strings.HasPrefix(h, "$2a$") || strings.HasPrefix(h, "$2b$") || strings.HasPrefix(h, "$2y$")
}

func truncate(password string) []byte {
	b := []byte(password)
	if len(b) > bcryptMaxBytes {
		return b[:bcryptMaxBytes]
	}
	return b
}

// Package credentials hashes and verifies passwords. Hashes are
// self-describing strings, so a store may hold bcrypt and argon2id hashes
// side by side.
package credentials

import (
	"fmt"
	"strings"

	"github.com/dmitrijs2005/authgateway/internal/common"
)

// Codec hashes passwords and checks them against stored hashes.
//
// Verify returns (false, nil) on a mismatch. An error means the stored hash
// could not be interpreted and should be treated as store corruption.
type Codec interface {
	Hash(password string) (string, error)
	Verify(password, hash string) (bool, error)
}

const (
	AlgorithmBcrypt   = "bcrypt"
	AlgorithmArgon2id = "argon2id"
)

// Multi hashes with its primary codec and verifies with whichever codec
// recognises the hash prefix.
type Multi struct {
	primary Codec
	bcrypt  *Bcrypt
	argon2  *Argon2id
}

// New builds a Multi whose primary algorithm is algorithm ("bcrypt" or
// "argon2id"). bcryptCost only affects newly created bcrypt hashes.
func New(algorithm string, bcryptCost int) (*Multi, error) {
	m := &Multi{bcrypt: NewBcrypt(bcryptCost), argon2: NewArgon2id(DefaultArgon2Params)}
	switch strings.ToLower(algorithm) {
	case "", AlgorithmBcrypt:
		m.primary = m.bcrypt
	case AlgorithmArgon2id:
		m.primary = m.argon2
	default:
		return nil, fmt.Errorf("unknown hash algorithm %q", algorithm)
	}
	return m, nil
}

func (m *Multi) Hash(password string) (string, error) {
	return m.primary.Hash(password)
}

func (m *Multi) Verify(password, hash string) (bool, error) {
	switch {
	case isBcryptHash(hash):
		return m.bcrypt.Verify(password, hash)
	case strings.HasPrefix(hash, argon2Prefix):
		return m.argon2.Verify(password, hash)
	default:
		return false, common.ErrorMalformedHash
	}
}

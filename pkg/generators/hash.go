package generators

import (
	"crypto/sha1"
	"crypto/sha256"
	"crypto/sha512"
	"fmt"
	"hash"

	"golang.org/x/crypto/sha3"
)

// SaltedHash wraps a cryptographic hash function, mixing the salt into
// every digest.
type SaltedHash struct {
	hash.Hash
	salt []byte
	buf  []byte
}

func NewSaltedHash(salt []byte, engine string) (*SaltedHash, error) {
	var h hash.Hash

	switch engine {
	case EngineSha1:
		h = sha1.New()
	case EngineSha256:
		h = sha256.New()
	case EngineSha512:
		h = sha512.New()
	case EngineSha3224:
		h = sha3.New224()
	case EngineSha3256:
		h = sha3.New256()
	case EngineSha3384:
		h = sha3.New384()
	case EngineSha3512:
		h = sha3.New512()
	default:
		return nil, fmt.Errorf("unknown hash function %q", engine)
	}

	return &SaltedHash{
		Hash: h,
		salt: salt,
		buf:  make([]byte, 0, h.Size()),
	}, nil
}

func (s *SaltedHash) Generate(data []byte) ([]byte, error) {
	defer s.Reset()

	if _, err := s.Write(s.salt); err != nil {
		return nil, fmt.Errorf("unable to write salt into hash: %w", err)
	}
	if _, err := s.Write(data); err != nil {
		return nil, fmt.Errorf("unable to write data into hash: %w", err)
	}

	s.buf = s.buf[:0]
	return s.Sum(s.buf), nil
}

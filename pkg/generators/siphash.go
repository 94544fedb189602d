package generators

import (
	"fmt"
	"hash"

	"github.com/dchest/siphash"
	"golang.org/x/crypto/sha3"
)

// SipHash is the default engine. The 128-bit key is stretched from the
// salt with SHA3.
type SipHash struct {
	hash.Hash
	buf []byte
}

func NewSipHash(salt []byte) *SipHash {
	key := sha3.New224().Sum(salt)[:16]

	return &SipHash{
		Hash: siphash.New(key),
		buf:  make([]byte, 0, 8),
	}
}

func (s *SipHash) Generate(data []byte) ([]byte, error) {
	defer s.Reset()

	if _, err := s.Write(data); err != nil {
		return nil, fmt.Errorf("unable to write data into hash: %w", err)
	}

	s.buf = s.buf[:0]
	return s.Sum(s.buf), nil
}

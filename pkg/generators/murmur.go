package generators

import (
	"encoding/binary"
	"fmt"
	"hash"

	"github.com/spaolacci/murmur3"
	"golang.org/x/crypto/sha3"
)

// MurmurHash is a fast non-cryptographic engine. The seed is derived from
// the salt so distinct salts produce unrelated digests.
type MurmurHash struct {
	hash.Hash
	size int
}

func NewMurmurHash(salt []byte, bits int) (*MurmurHash, error) {
	seed := binary.LittleEndian.Uint32(sha3.New224().Sum(salt)[:4])

	var h hash.Hash
	switch bits {
	case 32:
		h = murmur3.New32WithSeed(seed)
	case 64:
		h = murmur3.New64WithSeed(seed)
	case 128:
		h = murmur3.New128WithSeed(seed)
	default:
		return nil, fmt.Errorf("unsupported murmur3 width %d", bits)
	}

	return &MurmurHash{
		Hash: h,
		size: bits / 8,
	}, nil
}

func (mh *MurmurHash) Size() int {
	return mh.size
}

func (mh *MurmurHash) Generate(data []byte) ([]byte, error) {
	defer mh.Reset()

	if _, err := mh.Write(data); err != nil {
		return nil, fmt.Errorf("unable to write data into hash: %w", err)
	}
	return mh.Sum(nil), nil
}

// Package generators provides the deterministic digest engines backing the
// hashing transformers. Every engine is salted and produces the same digest
// for the same input across runs and processes.
package generators

import "fmt"

// Engine names accepted by New.
const (
	EngineSipHash   = "siphash"
	EngineMurmur32  = "murmur3-32"
	EngineMurmur64  = "murmur3-64"
	EngineMurmur128 = "murmur3-128"
	EngineSha1      = "sha1"
	EngineSha256    = "sha256"
	EngineSha512    = "sha512"
	EngineSha3224   = "sha3-224"
	EngineSha3256   = "sha3-256"
	EngineSha3384   = "sha3-384"
	EngineSha3512   = "sha3-512"
)

// Generator derives a digest from the input bytes. The digest length is
// fixed per engine and reported by Size.
type Generator interface {
	Generate([]byte) ([]byte, error)
	Size() int
}

// New builds the named digest engine seeded with salt.
func New(engine string, salt []byte) (Generator, error) {
	switch engine {
	case EngineSipHash:
		return NewSipHash(salt), nil
	case EngineMurmur32:
		return NewMurmurHash(salt, 32)
	case EngineMurmur64:
		return NewMurmurHash(salt, 64)
	case EngineMurmur128:
		return NewMurmurHash(salt, 128)
	case EngineSha1, EngineSha256, EngineSha512,
		EngineSha3224, EngineSha3256, EngineSha3384, EngineSha3512:
		return NewSaltedHash(salt, engine)
	default:
		return nil, fmt.Errorf("unknown digest engine %q", engine)
	}
}

// Copyright 2025 Seedmask
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package transformers

import (
	crand "crypto/rand"
	"encoding/hex"
	"fmt"
	"math/big"
	"os"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/generators"
	"github.com/seedmask/seedmask/pkg/rowkit"
)

const HashTransformerName = "hash"

const (
	saltLength    = 32
	globalSaltEnv = "SEEDMASK_GLOBAL_SALT"
)

var HashTransformerDefinition = NewDefinition(
	HashTransformerName,
	"Replace the value with a salted digest. The engine parameter selects the "+
		"digest function: siphash (default), murmur3-32, murmur3-64, murmur3-128, "+
		"sha1, sha256, sha512, sha3-224, sha3-256, sha3-384, sha3-512. Strings "+
		"become hex digests, optionally truncated to max_length characters; "+
		"numbers keep their sign and digit count. The salt parameter may also be "+
		"provided hex encoded via the SEEDMASK_GLOBAL_SALT environment variable; "+
		"without either a random salt is drawn at startup, making the output "+
		"differ between runs.",
	NewHashTransformer,
)

// HashTransformer maps equal inputs to equal outputs, so foreign keys over
// hashed columns keep joining after anonymization as long as the salt is
// shared.
type HashTransformer struct {
	rowkit.Binding
	gen       generators.Generator
	maxLength int
}

func NewHashTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	salt, err := resolveSalt(params)
	if err != nil {
		return nil, err
	}

	maxLength := params.Int("max_length", 0)
	if maxLength < 0 {
		return nil, fmt.Errorf("max_length must not be negative, got %d", maxLength)
	}

	gen, err := generators.New(params.String("engine", generators.EngineSipHash), salt)
	if err != nil {
		return nil, err
	}

	return &HashTransformer{
		Binding:   rowkit.NewBinding(table, column),
		gen:       gen,
		maxLength: maxLength,
	}, nil
}

// resolveSalt picks the digest salt: the rule's salt parameter wins, then
// the hex encoded SEEDMASK_GLOBAL_SALT environment variable, then a random
// salt. Rules that must hash consistently across tables or runs share one of
// the first two.
func resolveSalt(params Params) ([]byte, error) {
	if s := params.String("salt", ""); s != "" {
		return []byte(s), nil
	}
	if env := os.Getenv(globalSaltEnv); env != "" {
		salt, err := hex.DecodeString(env)
		if err != nil {
			return nil, fmt.Errorf("unable to decode %s: %w", globalSaltEnv, err)
		}
		return salt, nil
	}
	salt := make([]byte, saltLength)
	if _, err := crand.Read(salt); err != nil {
		return nil, fmt.Errorf("unable to generate random salt: %w", err)
	}
	return salt, nil
}

func (ht *HashTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		v, _ := c.StringValue()
		digest, err := ht.gen.Generate([]byte(v))
		if err != nil {
			return rowkit.Column{}, err
		}
		out := hex.EncodeToString(digest)
		if ht.maxLength > 0 && len(out) > ht.maxLength {
			out = out[:ht.maxLength]
		}
		return rowkit.NewStringColumn(c.Name(), out), nil
	case rowkit.KindChar:
		v, _ := c.CharValue()
		digest, err := ht.gen.Generate([]byte(string(v)))
		if err != nil {
			return rowkit.Column{}, err
		}
		return rowkit.NewCharColumn(c.Name(), rune(hex.EncodeToString(digest)[0])), nil
	case rowkit.KindNumber:
		v, _ := c.NumberValue()
		digest, err := ht.gen.Generate([]byte(v.String()))
		if err != nil {
			return rowkit.Column{}, err
		}
		d, err := decimal.NewFromString(digestDigitsLike(digest, v.String()))
		if err != nil {
			return rowkit.Column{}, err
		}
		return rowkit.NewNumberColumn(c.Name(), d), nil
	case rowkit.KindFloat:
		v, _ := c.FloatValue()
		raw := strconv.FormatFloat(v, 'f', -1, 64)
		digest, err := ht.gen.Generate([]byte(raw))
		if err != nil {
			return rowkit.Column{}, err
		}
		f, err := strconv.ParseFloat(digestDigitsLike(digest, raw), 64)
		if err != nil {
			return rowkit.Column{}, err
		}
		return rowkit.NewFloatColumn(c.Name(), f), nil
	default:
		return c, nil
	}
}

// digestDigitsLike rewrites every digit of a formatted number with digits
// from the decimal expansion of the digest, keeping the sign, the decimal
// point and the digit count. The leading digit of a multi-digit integer
// part stays non-zero.
func digestDigitsLike(digest []byte, s string) string {
	src := new(big.Int).SetBytes(digest).String()
	b := []byte(s)
	n := 0
	leading := true
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			if c == '.' {
				leading = false
			}
			continue
		}
		d := src[n%len(src)]
		n++
		if leading {
			var next byte
			if i+1 < len(b) {
				next = b[i+1]
			}
			leading = false
			if next >= '0' && next <= '9' {
				d = '1' + (d-'0')%9
			}
		}
		b[i] = d
	}
	return string(b)
}

func init() {
	DefaultRegistry.MustRegister(HashTransformerDefinition)
}

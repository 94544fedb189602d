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
	"math/rand"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const RandomTransformerName = "random"

var RandomTransformerDefinition = NewDefinition(
	RandomTransformerName,
	"Replace the value with random content of the same kind and length: "+
		"letters and digits keep their class, numbers keep their digit count and sign. "+
		"Set the seed parameter for a reproducible sequence.",
	NewRandomTransformer,
)

const (
	randomLowercase = "abcdefghijklmnopqrstuvwxyz"
	randomUppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
	randomDigits    = "0123456789"
)

// RandomTransformer replaces values with random ones while preserving their
// shape, so downstream schemas and length constraints keep holding. It keeps
// per-character classes for strings: letters map to letters of the same case,
// digits to digits, everything else stays in place.
type RandomTransformer struct {
	rowkit.Binding
	rnd *rand.Rand
}

func NewRandomTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	seed := params.Int64("seed", 0)
	if !params.Has("seed") {
		seed = time.Now().UnixNano()
	}
	return &RandomTransformer{
		Binding: rowkit.NewBinding(table, column),
		rnd:     rand.New(rand.NewSource(seed)),
	}, nil
}

func (t *RandomTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		v, _ := c.StringValue()
		return rowkit.NewStringColumn(c.Name(), t.randomText(v)), nil
	case rowkit.KindChar:
		ch := randomLowercase[t.rnd.Intn(len(randomLowercase))]
		return rowkit.NewCharColumn(c.Name(), rune(ch)), nil
	case rowkit.KindNumber:
		v, _ := c.NumberValue()
		d, err := decimal.NewFromString(t.randomDigitsLike(v.String()))
		if err != nil {
			return rowkit.Column{}, err
		}
		return rowkit.NewNumberColumn(c.Name(), d), nil
	case rowkit.KindFloat:
		v, _ := c.FloatValue()
		raw := strconv.FormatFloat(v, 'f', -1, 64)
		f, err := strconv.ParseFloat(t.randomDigitsLike(raw), 64)
		if err != nil {
			return rowkit.Column{}, err
		}
		return rowkit.NewFloatColumn(c.Name(), f), nil
	default:
		return c, nil
	}
}

// randomText replaces each rune with a random one of the same class. The
// result has the same rune count and the same punctuation layout as the
// input.
func (t *RandomTransformer) randomText(s string) string {
	var sb strings.Builder
	sb.Grow(len(s))
	for _, r := range s {
		switch {
		case r >= 'a' && r <= 'z':
			sb.WriteByte(randomLowercase[t.rnd.Intn(26)])
		case r >= 'A' && r <= 'Z':
			sb.WriteByte(randomUppercase[t.rnd.Intn(26)])
		case r >= '0' && r <= '9':
			sb.WriteByte(randomDigits[t.rnd.Intn(10)])
		default:
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// randomDigitsLike rewrites every digit of a formatted number, keeping the
// sign, the decimal point and the digit count. The leading digit of a
// multi-digit integer part stays non-zero so the magnitude is preserved.
func (t *RandomTransformer) randomDigitsLike(s string) string {
	b := []byte(s)
	leading := true
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c < '0' || c > '9' {
			if c == '.' {
				leading = false
			}
			continue
		}
		if leading {
			next := byte(0)
			if i+1 < len(b) {
				next = b[i+1]
			}
			leading = false
			if next >= '0' && next <= '9' {
				b[i] = '1' + byte(t.rnd.Intn(9))
				continue
			}
		}
		b[i] = '0' + byte(t.rnd.Intn(10))
	}
	return string(b)
}

func init() {
	DefaultRegistry.MustRegister(RandomTransformerDefinition)
}

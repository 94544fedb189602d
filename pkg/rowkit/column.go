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

package rowkit

import (
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
)

// ValueKind enumerates the literal kinds a dump value decodes to.
type ValueKind int

const (
	// KindNone - the value was present in the dump but is not a recognized
	// literal (NULL markers, expressions, unsupported token kinds). A None
	// column may still carry the verbatim source text of the expression so
	// that serialization can replay it untouched.
	KindNone ValueKind = iota
	KindNumber
	KindFloat
	KindString
	KindChar
)

func (k ValueKind) String() string {
	switch k {
	case KindNumber:
		return "number"
	case KindFloat:
		return "float"
	case KindString:
		return "string"
	case KindChar:
		return "char"
	default:
		return "none"
	}
}

// Column is one named value extracted from a row-insertion statement.
// A Column is immutable once constructed: transformers build replacements
// through the New*Column constructors, they never edit in place. The name is
// always the column name declared by the source statement.
//
// Number columns are backed by decimal.Decimal so that integers wider than
// 64 bits (bigint sequences, numeric identifiers) survive the round trip
// without overflow.
type Column struct {
	name   string
	kind   ValueKind
	number decimal.Decimal
	float  float64
	str    string
	char   rune
	raw    string
}

func NewNumberColumn(name string, v decimal.Decimal) Column {
	return Column{name: name, kind: KindNumber, number: v}
}

func NewFloatColumn(name string, v float64) Column {
	return Column{name: name, kind: KindFloat, float: v}
}

func NewStringColumn(name string, v string) Column {
	return Column{name: name, kind: KindString, str: v}
}

func NewCharColumn(name string, v rune) Column {
	return Column{name: name, kind: KindChar, char: v}
}

func NewNoneColumn(name string) Column {
	return Column{name: name, kind: KindNone}
}

// NewRawColumn builds a None column that remembers the source spelling of a
// value the pipeline cannot type: booleans, casts, function calls, NULL. The
// text is replayed verbatim on serialization.
func NewRawColumn(name, raw string) Column {
	return Column{name: name, kind: KindNone, raw: raw}
}

// Name returns the declared column name. It is never empty for columns
// produced by the extraction pipeline.
func (c Column) Name() string {
	return c.name
}

func (c Column) Kind() ValueKind {
	return c.kind
}

// NumberValue - the wide integer payload; ok is false for any other kind.
func (c Column) NumberValue() (decimal.Decimal, bool) {
	if c.kind != KindNumber {
		return decimal.Decimal{}, false
	}
	return c.number, true
}

// FloatValue - the float payload; ok is false for any other kind.
func (c Column) FloatValue() (float64, bool) {
	if c.kind != KindFloat {
		return 0, false
	}
	return c.float, true
}

// StringValue - the string payload; ok is false for any other kind.
func (c Column) StringValue() (string, bool) {
	if c.kind != KindString {
		return "", false
	}
	return c.str, true
}

// CharValue - the character payload; ok is false for any other kind.
func (c Column) CharValue() (rune, bool) {
	if c.kind != KindChar {
		return 0, false
	}
	return c.char, true
}

// RawValue - the preserved source text of a None column; ok is false for any
// other kind. The text is empty for None columns built without one.
func (c Column) RawValue() (string, bool) {
	if c.kind != KindNone {
		return "", false
	}
	return c.raw, true
}

// Equal reports whether two columns carry the same name, kind and value.
// Number columns compare numerically (decimal.Equal), so 7 equals 7 even if
// the operands were parsed from differently formatted tokens.
func (c Column) Equal(o Column) bool {
	if c.name != o.name || c.kind != o.kind {
		return false
	}
	switch c.kind {
	case KindNumber:
		return c.number.Equal(o.number)
	case KindFloat:
		return c.float == o.float
	case KindString:
		return c.str == o.str
	case KindChar:
		return c.char == o.char
	default:
		return c.raw == o.raw
	}
}

// Literal renders the value as a SQL literal for statement serialization.
// None columns replay their preserved source text, so booleans, casts and
// function calls survive the round trip; a None column without source text
// renders as NULL.
func (c Column) Literal() string {
	switch c.kind {
	case KindNumber:
		return c.number.String()
	case KindFloat:
		return strconv.FormatFloat(c.float, 'f', -1, 64)
	case KindString:
		return quoteLiteral(c.str)
	case KindChar:
		return quoteLiteral(string(c.char))
	default:
		if c.raw != "" {
			return c.raw
		}
		return "NULL"
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

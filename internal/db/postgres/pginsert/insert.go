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

package pginsert

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

// ErrMalformedStatement marks a statement that was recognized as a row
// insertion but whose structure could not be decoded. Callers either skip the
// statement or abort the stream, depending on their strictness setting.
var ErrMalformedStatement = errors.New("malformed insert statement")

// cursor walks the significant tokens of a statement, skipping whitespace
// and comments.
type cursor struct {
	tokens []Token
	pos    int
}

func (c *cursor) next() (Token, bool) {
	for c.pos < len(c.tokens) {
		t := c.tokens[c.pos]
		c.pos++
		if t.Significant() {
			return t, true
		}
	}
	return Token{}, false
}

func (c *cursor) peek() (Token, bool) {
	for pos := c.pos; pos < len(c.tokens); pos++ {
		if c.tokens[pos].Significant() {
			return c.tokens[pos], true
		}
	}
	return Token{}, false
}

// InsertTable decides whether the tokens encode a row-insertion statement and
// returns the target table name. It matches INSERT INTO followed by a
// possibly schema-qualified identifier and keeps the qualification, so
// "public.employees" stays "public.employees": rules match the name exactly
// as the dump spells it. Statements of any other shape are not insertions,
// which is the normal case for most of a dump, so the miss is reported
// through the boolean, never as an error.
func InsertTable(tokens []Token) (string, bool) {
	c := &cursor{tokens: tokens}
	t, ok := c.next()
	if !ok || !t.MatchKeyword("INSERT") {
		return "", false
	}
	t, ok = c.next()
	if !ok || !t.MatchKeyword("INTO") {
		return "", false
	}
	t, ok = c.next()
	if !ok || t.Kind != TokenWord || t.Value == "" {
		return "", false
	}
	table := t.Value
	for {
		p, ok := c.peek()
		if !ok || p.Kind != TokenPeriod {
			return table, true
		}
		c.next()
		t, ok = c.next()
		if !ok || t.Kind != TokenWord || t.Value == "" {
			return "", false
		}
		table += "." + t.Value
	}
}

// ColumnNames returns the declared column list of an insertion statement in
// order. A statement without a parenthesized column list cannot be mapped to
// transformers and is malformed here even though it may be valid SQL.
func ColumnNames(tokens []Token) ([]string, error) {
	c := &cursor{tokens: tokens}
	for {
		t, ok := c.next()
		if !ok || t.MatchKeyword("VALUES") {
			return nil, fmt.Errorf("%w: missing column list", ErrMalformedStatement)
		}
		if t.Kind == TokenLParen {
			break
		}
	}

	var names []string
	t, ok := c.next()
	if !ok {
		return nil, fmt.Errorf("%w: unterminated column list", ErrMalformedStatement)
	}
	if t.Kind == TokenRParen {
		return nil, fmt.Errorf("%w: empty column list", ErrMalformedStatement)
	}
	for {
		if t.Kind != TokenWord || t.Value == "" {
			return nil, fmt.Errorf("%w: unexpected %s in column list", ErrMalformedStatement, t.Kind)
		}
		names = append(names, t.Value)

		sep, ok := c.next()
		if !ok {
			return nil, fmt.Errorf("%w: unterminated column list", ErrMalformedStatement)
		}
		if sep.Kind == TokenRParen {
			return names, nil
		}
		if sep.Kind != TokenComma {
			return nil, fmt.Errorf("%w: unexpected %s in column list", ErrMalformedStatement, sep.Kind)
		}
		t, ok = c.next()
		if !ok {
			return nil, fmt.Errorf("%w: unterminated column list", ErrMalformedStatement)
		}
	}
}

// Values returns the VALUES list split into one token slot per column. Slots
// keep only significant tokens. A plain literal occupies its slot alone,
// anything richer (casts, function calls, nested parens) stays together in
// its slot for the typing step to classify.
func Values(tokens []Token) ([][]Token, error) {
	c := &cursor{tokens: tokens}
	for {
		t, ok := c.next()
		if !ok {
			return nil, fmt.Errorf("%w: missing VALUES keyword", ErrMalformedStatement)
		}
		if t.MatchKeyword("VALUES") {
			break
		}
	}
	t, ok := c.next()
	if !ok || t.Kind != TokenLParen {
		return nil, fmt.Errorf("%w: missing VALUES list", ErrMalformedStatement)
	}

	var slots [][]Token
	var cur []Token
	depth := 1
	for {
		t, ok := c.next()
		if !ok {
			return nil, fmt.Errorf("%w: unterminated VALUES list", ErrMalformedStatement)
		}
		switch {
		case t.Kind == TokenLParen:
			depth++
			cur = append(cur, t)
		case t.Kind == TokenRParen:
			depth--
			if depth > 0 {
				cur = append(cur, t)
				continue
			}
			if len(cur) == 0 && len(slots) > 0 {
				return nil, fmt.Errorf("%w: empty value expression", ErrMalformedStatement)
			}
			if len(cur) > 0 {
				slots = append(slots, cur)
			}
			if p, ok := c.peek(); ok && p.Kind == TokenComma {
				return nil, fmt.Errorf("%w: multi-row VALUES list", ErrMalformedStatement)
			}
			return slots, nil
		case t.Kind == TokenComma && depth == 1:
			if len(cur) == 0 {
				return nil, fmt.Errorf("%w: empty value expression", ErrMalformedStatement)
			}
			slots = append(slots, cur)
			cur = nil
		default:
			cur = append(cur, t)
		}
	}
}

// TypeColumn classifies one value slot into a typed column. Plain numbers
// with an optional sign become number or float columns, string-family
// literals become string columns, a lone unclassified character becomes a
// char column. Everything else - NULL markers, keywords, casts, expressions -
// is a None column carrying raw, the slot's source text, so serialization
// can replay the expression even though no transformer can rewrite it.
func TypeColumn(name string, slot []Token, raw string) (rowkit.Column, error) {
	if len(slot) == 0 {
		return rowkit.Column{}, fmt.Errorf("%w: empty value for column %q", ErrMalformedStatement, name)
	}
	if len(slot) == 2 && (slot[0].Kind == TokenMinus || slot[0].Kind == TokenPlus) && slot[1].Kind == TokenNumber {
		return typeNumber(name, slot[1].Value, slot[0].Kind == TokenMinus)
	}
	if len(slot) > 1 {
		return rowkit.NewRawColumn(name, raw), nil
	}
	t := slot[0]
	switch t.Kind {
	case TokenNumber:
		return typeNumber(name, t.Value, false)
	case TokenString, TokenNationalString, TokenHexString:
		return rowkit.NewStringColumn(name, t.Value), nil
	case TokenChar:
		r, _ := utf8.DecodeRuneInString(t.Value)
		return rowkit.NewCharColumn(name, r), nil
	default:
		return rowkit.NewRawColumn(name, raw), nil
	}
}

func typeNumber(name, raw string, neg bool) (rowkit.Column, error) {
	if strings.Contains(raw, ".") {
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return rowkit.Column{}, fmt.Errorf("%w: bad float literal %q for column %q: %v", ErrMalformedStatement, raw, name, err)
		}
		if neg {
			f = -f
		}
		return rowkit.NewFloatColumn(name, f), nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return rowkit.Column{}, fmt.Errorf("%w: bad number literal %q for column %q: %v", ErrMalformedStatement, raw, name, err)
	}
	if neg {
		d = d.Neg()
	}
	return rowkit.NewNumberColumn(name, d), nil
}

// rawSpan recovers the source text of a slot from the statement. Fabricated
// tokens without offsets fall back to empty, which serializes as NULL.
func rawSpan(text string, slot []Token) string {
	lo, hi := slot[0].Pos, slot[len(slot)-1].End
	if lo < 0 || hi > len(text) || lo >= hi {
		return ""
	}
	return strings.TrimSpace(text[lo:hi])
}

// ParseRow decodes one statement into a typed row, given its text and its
// tokens. The boolean reports whether the statement is a row insertion at
// all; when it is false the statement is simply not about row data and
// carries no error. A true flag with a non-nil error means the statement
// looked like an insertion but violated the expected structure.
func ParseRow(text string, tokens []Token) (rowkit.Row, bool, error) {
	table, ok := InsertTable(tokens)
	if !ok {
		return rowkit.Row{}, false, nil
	}
	names, err := ColumnNames(tokens)
	if err != nil {
		return rowkit.Row{}, true, err
	}
	slots, err := Values(tokens)
	if err != nil {
		return rowkit.Row{}, true, err
	}
	if len(names) != len(slots) {
		return rowkit.Row{}, true, fmt.Errorf("%w: %d columns but %d values", ErrMalformedStatement, len(names), len(slots))
	}
	columns := make([]rowkit.Column, 0, len(names))
	for i, name := range names {
		col, err := TypeColumn(name, slots[i], rawSpan(text, slots[i]))
		if err != nil {
			return rowkit.Row{}, true, err
		}
		columns = append(columns, col)
	}
	return rowkit.Row{TableName: table, Columns: columns}, true, nil
}

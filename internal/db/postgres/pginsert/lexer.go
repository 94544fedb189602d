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
	"strings"
	"unicode"
	"unicode/utf8"
)

var (
	ErrUnterminatedString  = errors.New("unterminated string literal")
	ErrUnterminatedIdent   = errors.New("unterminated quoted identifier")
	ErrUnterminatedComment = errors.New("unterminated block comment")
)

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\r' || r == '\n'
}

func isDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func isWordStart(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func isWordPart(r rune) bool {
	return r == '_' || r == '$' || unicode.IsLetter(r) || unicode.IsDigit(r)
}

// Tokenize splits one statement into tokens. Whitespace runs and comments are
// preserved as tokens, string escapes ('' doubling) and identifier quoting are
// resolved into Token.Value. The only failures are unterminated literals and
// comments.
func Tokenize(stmt string) ([]Token, error) {
	l := &lexer{input: stmt}
	for l.pos < len(l.input) {
		if err := l.next(); err != nil {
			return nil, err
		}
	}
	return l.tokens, nil
}

type lexer struct {
	input  string
	pos    int
	tokens []Token
}

func (l *lexer) emit(kind TokenKind, value string) {
	l.tokens = append(l.tokens, Token{Kind: kind, Value: value})
}

func (l *lexer) peekAt(offset int) rune {
	if l.pos+offset >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.pos+offset:])
	return r
}

func (l *lexer) next() error {
	start := l.pos
	n := len(l.tokens)
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])

	var err error
	switch {
	case isSpace(r):
		l.whitespace()
	case r == '-' && l.peekAt(1) == '-':
		l.lineComment()
	case r == '/' && l.peekAt(1) == '*':
		err = l.blockComment()
	case r == '\'':
		err = l.str(TokenString)
	case (r == 'N' || r == 'n') && l.peekAt(1) == '\'':
		l.pos++
		err = l.str(TokenNationalString)
	case (r == 'X' || r == 'x') && l.peekAt(1) == '\'':
		l.pos++
		err = l.str(TokenHexString)
	case r == '"':
		err = l.quotedIdent()
	case isWordStart(r):
		l.word()
	case isDigit(r):
		l.number()
	case r == ',':
		l.pos++
		l.emit(TokenComma, ",")
	case r == '(':
		l.pos++
		l.emit(TokenLParen, "(")
	case r == ')':
		l.pos++
		l.emit(TokenRParen, ")")
	case r == '.':
		l.pos++
		l.emit(TokenPeriod, ".")
	case r == ';':
		l.pos++
		l.emit(TokenSemicolon, ";")
	case r == '+':
		l.pos++
		l.emit(TokenPlus, "+")
	case r == '-':
		l.pos++
		l.emit(TokenMinus, "-")
	case strings.ContainsRune("=<>!*/%:&|^~[]", r):
		l.operator()
	default:
		l.pos += size
		l.emit(TokenChar, string(r))
	}
	if err != nil {
		return err
	}
	if len(l.tokens) > n {
		l.tokens[n].Pos = start
		l.tokens[n].End = l.pos
	}
	return nil
}

func (l *lexer) whitespace() {
	start := l.pos
	for l.pos < len(l.input) && isSpace(l.peekAt(0)) {
		l.pos++
	}
	l.emit(TokenWhitespace, l.input[start:l.pos])
}

func (l *lexer) lineComment() {
	start := l.pos
	for l.pos < len(l.input) && l.peekAt(0) != '\n' {
		l.pos++
	}
	l.emit(TokenComment, l.input[start:l.pos])
}

// blockComment consumes a nested block comment the way the server does.
func (l *lexer) blockComment() error {
	start := l.pos
	depth := 0
	for l.pos < len(l.input) {
		switch {
		case l.peekAt(0) == '/' && l.peekAt(1) == '*':
			depth++
			l.pos += 2
		case l.peekAt(0) == '*' && l.peekAt(1) == '/':
			depth--
			l.pos += 2
			if depth == 0 {
				l.emit(TokenComment, l.input[start:l.pos])
				return nil
			}
		default:
			_, size := utf8.DecodeRuneInString(l.input[l.pos:])
			l.pos += size
		}
	}
	return fmt.Errorf("%w at offset %d", ErrUnterminatedComment, start)
}

// str consumes a single-quoted literal, resolving '' doubling. The opening
// quote is at the current position.
func (l *lexer) str(kind TokenKind) error {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == '\'' {
			if l.peekAt(1) == '\'' {
				sb.WriteByte('\'')
				l.pos += 2
				continue
			}
			l.pos++
			l.emit(kind, sb.String())
			return nil
		}
		sb.WriteRune(r)
		l.pos += size
	}
	return fmt.Errorf("%w at offset %d", ErrUnterminatedString, start)
}

func (l *lexer) quotedIdent() error {
	start := l.pos
	l.pos++
	var sb strings.Builder
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if r == '"' {
			if l.peekAt(1) == '"' {
				sb.WriteByte('"')
				l.pos += 2
				continue
			}
			l.pos++
			l.tokens = append(l.tokens, Token{Kind: TokenWord, Value: sb.String(), Quoted: true})
			return nil
		}
		sb.WriteRune(r)
		l.pos += size
	}
	return fmt.Errorf("%w at offset %d", ErrUnterminatedIdent, start)
}

func (l *lexer) word() {
	start := l.pos
	for l.pos < len(l.input) {
		r, size := utf8.DecodeRuneInString(l.input[l.pos:])
		if !isWordPart(r) {
			break
		}
		l.pos += size
	}
	l.emit(TokenWord, l.input[start:l.pos])
}

// number consumes digits with at most one embedded decimal point. Exponent
// notation is not part of the token: "1e5" lexes as number, word.
func (l *lexer) number() {
	start := l.pos
	sawDot := false
	for l.pos < len(l.input) {
		r := l.peekAt(0)
		if isDigit(r) {
			l.pos++
			continue
		}
		if r == '.' && !sawDot && isDigit(l.peekAt(1)) {
			sawDot = true
			l.pos += 2
			continue
		}
		break
	}
	l.emit(TokenNumber, l.input[start:l.pos])
}

func (l *lexer) operator() {
	two := ""
	if l.pos+2 <= len(l.input) {
		two = l.input[l.pos : l.pos+2]
	}
	switch two {
	case "::", "<=", ">=", "<>", "!=", "||":
		l.pos += 2
		l.emit(TokenOperator, two)
		return
	}
	r, size := utf8.DecodeRuneInString(l.input[l.pos:])
	l.pos += size
	l.emit(TokenOperator, string(r))
}

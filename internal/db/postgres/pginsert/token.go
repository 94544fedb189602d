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

import "strings"

// TokenKind enumerates the token classes produced by Tokenize. Whitespace and
// comments are emitted as tokens of their own instead of being dropped, which
// keeps the token sequence an exact cover of the statement text.
type TokenKind int

const (
	TokenWhitespace TokenKind = iota
	TokenComment
	// TokenWord - an identifier or keyword. Quoted identifiers ("Order") are
	// words with Quoted set and never match keywords.
	TokenWord
	// TokenNumber - digits with at most one embedded decimal point. The sign
	// is not part of the token, a leading minus lexes as TokenMinus.
	TokenNumber
	// TokenString - a single-quoted literal; Value holds the unescaped text.
	TokenString
	// TokenNationalString - N'...' literal.
	TokenNationalString
	// TokenHexString - X'...' literal.
	TokenHexString
	TokenComma
	TokenLParen
	TokenRParen
	TokenPeriod
	TokenSemicolon
	TokenPlus
	TokenMinus
	// TokenOperator - any other recognized operator (=, <>, ::, ...).
	TokenOperator
	// TokenChar - a single character the lexer has no rule for.
	TokenChar
)

func (k TokenKind) String() string {
	switch k {
	case TokenWhitespace:
		return "whitespace"
	case TokenComment:
		return "comment"
	case TokenWord:
		return "word"
	case TokenNumber:
		return "number"
	case TokenString:
		return "string"
	case TokenNationalString:
		return "national string"
	case TokenHexString:
		return "hex string"
	case TokenComma:
		return "comma"
	case TokenLParen:
		return "("
	case TokenRParen:
		return ")"
	case TokenPeriod:
		return "period"
	case TokenSemicolon:
		return "semicolon"
	case TokenPlus:
		return "plus"
	case TokenMinus:
		return "minus"
	case TokenOperator:
		return "operator"
	case TokenChar:
		return "char"
	default:
		return "unknown"
	}
}

// Token is one lexical unit of a dump statement. Value carries the decoded
// payload: the identifier text with quoting removed, the literal content with
// escapes resolved, or the raw text for everything else. Pos and End are byte
// offsets into the statement text (End exclusive), so the original spelling
// of any token run can be recovered from the source.
type Token struct {
	Kind   TokenKind
	Value  string
	Quoted bool
	Pos    int
	End    int
}

// MatchKeyword reports whether the token is the given unquoted keyword,
// compared case-insensitively.
func (t Token) MatchKeyword(kw string) bool {
	return t.Kind == TokenWord && !t.Quoted && strings.EqualFold(t.Value, kw)
}

// Significant reports whether the token contributes statement structure.
// Whitespace and comments are layout only.
func (t Token) Significant() bool {
	return t.Kind != TokenWhitespace && t.Kind != TokenComment
}

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
	"bufio"
	"io"
	"strings"

	"github.com/seedmask/seedmask/internal/utils/reader"
)

const defaultSplitterBufSize = 64 * 1024

// Statement is one semicolon-terminated statement of a dump, with the
// 1-based line number where it starts.
type Statement struct {
	Text string
	Line int
}

// Splitter cuts a plain-text dump stream into statements. It reads line by
// line and tracks single-quote and dollar-quote state across lines, so a
// semicolon inside a string value never ends a statement. Lines between
// statements that are blank or pure comment are dropped.
type Splitter struct {
	r    *bufio.Reader
	line int

	// carry holds the unread tail of the current physical line after a
	// statement ended mid-line.
	carry string

	sb        strings.Builder
	stmtLine  int
	inString  bool
	dollarTag string
}

func NewSplitter(r io.Reader) *Splitter {
	return &Splitter{r: bufio.NewReaderSize(r, defaultSplitterBufSize)}
}

// Next returns the next statement. It returns io.EOF once the stream is
// exhausted. A truncated trailing statement without its terminating semicolon
// is still returned, the caller decides whether that is acceptable.
func (s *Splitter) Next() (Statement, error) {
	for {
		chunk, sameLine, err := s.nextChunk()
		if err != nil {
			if err == io.EOF && s.sb.Len() > 0 {
				return s.finish(), nil
			}
			return Statement{}, err
		}

		if s.sb.Len() == 0 {
			chunk = strings.TrimLeft(chunk, " \t")
			if strings.TrimSpace(chunk) == "" || strings.HasPrefix(chunk, "--") {
				continue
			}
			s.stmtLine = s.line
		} else if !sameLine {
			s.sb.WriteByte('\n')
		}

		if done := s.consume(chunk); done {
			return s.finish(), nil
		}
	}
}

// nextChunk returns either the carried tail of the current line or a freshly
// read line. sameLine is true for a carried tail.
func (s *Splitter) nextChunk() (chunk string, sameLine bool, err error) {
	if s.carry != "" {
		chunk = s.carry
		s.carry = ""
		return chunk, true, nil
	}
	line, err := reader.ReadLine(s.r)
	if err != nil {
		return "", false, err
	}
	s.line++
	return string(line), false, nil
}

// consume appends chunk to the current statement, advancing the quote state.
// It reports true when a top-level semicolon completed the statement, leaving
// any unconsumed tail in carry.
func (s *Splitter) consume(chunk string) bool {
	i := 0
	for i < len(chunk) {
		c := chunk[i]

		switch {
		case s.inString:
			if c == '\'' {
				if i+1 < len(chunk) && chunk[i+1] == '\'' {
					s.sb.WriteString("''")
					i += 2
					continue
				}
				s.inString = false
			}
			s.sb.WriteByte(c)
			i++

		case s.dollarTag != "":
			if c == '$' && strings.HasPrefix(chunk[i:], s.dollarTag) {
				s.sb.WriteString(s.dollarTag)
				i += len(s.dollarTag)
				s.dollarTag = ""
				continue
			}
			s.sb.WriteByte(c)
			i++

		case c == '\'':
			s.inString = true
			s.sb.WriteByte(c)
			i++

		case c == '$':
			if tag := dollarQuoteTag(chunk[i:]); tag != "" {
				s.dollarTag = tag
				s.sb.WriteString(tag)
				i += len(tag)
				continue
			}
			s.sb.WriteByte(c)
			i++

		case c == '-' && i+1 < len(chunk) && chunk[i+1] == '-':
			// Line comment: keep it, but nothing after it on this line can
			// end the statement.
			s.sb.WriteString(chunk[i:])
			return false

		case c == ';':
			s.sb.WriteByte(c)
			if tail := chunk[i+1:]; strings.TrimSpace(tail) != "" {
				s.carry = tail
			}
			return true

		default:
			s.sb.WriteByte(c)
			i++
		}
	}
	return false
}

func (s *Splitter) finish() Statement {
	stmt := Statement{Text: s.sb.String(), Line: s.stmtLine}
	s.sb.Reset()
	s.inString = false
	s.dollarTag = ""
	return stmt
}

// dollarQuoteTag returns the $tag$ delimiter at the start of chunk, or "".
func dollarQuoteTag(chunk string) string {
	if len(chunk) < 2 || chunk[0] != '$' {
		return ""
	}
	for i := 1; i < len(chunk); i++ {
		c := chunk[i]
		if c == '$' {
			return chunk[:i+1]
		}
		wordChar := c == '_' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z' || c >= '0' && c <= '9' && i > 1
		if !wordChar {
			return ""
		}
	}
	return ""
}

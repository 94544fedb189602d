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

package source

import (
	"errors"
	"fmt"
)

var (
	// ErrProducerStart reports that the dump producer could not be spawned.
	// No rows have been delivered when it is returned.
	ErrProducerStart = errors.New("unable to start dump producer")
	// ErrProducerFailed reports a non-zero producer exit. Rows delivered
	// before it are provisional: the dump they came from is incomplete.
	ErrProducerFailed = errors.New("dump producer failed")
)

// StreamError is a per-statement failure with the position context needed to
// find the offending statement in the dump. In lenient mode these are logged
// and skipped; in strict mode they abort the stream.
type StreamError struct {
	Table string `json:"table,omitempty"`
	Line  int    `json:"line,omitempty"`
	Err   error  `json:"err,omitempty"`
}

// NewStreamError wraps err with the statement position. Table may be empty
// when the statement broke before its target table was known.
func NewStreamError(table string, line int, err error) *StreamError {
	return &StreamError{
		Table: table,
		Line:  line,
		Err:   err,
	}
}

func (se *StreamError) Error() string {
	if se.Table == "" {
		return fmt.Sprintf("stream error at line %d: %s", se.Line, se.Err.Error())
	}
	return fmt.Sprintf("stream error on table %s at line %d: %s", se.Table, se.Line, se.Err.Error())
}

func (se *StreamError) Unwrap() error {
	return se.Err
}

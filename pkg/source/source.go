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

// Package source streams anonymized rows out of PostgreSQL dumps. A source
// produces a plain-text dump byte stream (a live pg_dump subprocess or a
// stored dump file), cuts it into statements, decodes every row insertion
// into a typed row, applies the transformer registry and hands the caller
// the original and transformed rows as a pair. Statements that are not row
// insertions are not the caller's concern and are dropped silently.
package source

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/rs/zerolog/log"

	"github.com/seedmask/seedmask/internal/db/postgres/pginsert"
	"github.com/seedmask/seedmask/pkg/rowkit"
)

// RowFunc receives one recognized row insertion per call, in dump order, on
// the streaming goroutine. original is the row as the dump carries it,
// transformed is the registry's output for it; the two always pair up by
// index. A non-nil return aborts the stream.
type RowFunc func(original, transformed rowkit.Row) error

// RowStreamer is the contract shared by every dump source.
type RowStreamer interface {
	StreamRows(ctx context.Context, registry *rowkit.Registry, fn RowFunc) error
}

type config struct {
	strict   bool
	usePgzip bool
}

type Option func(*config)

// WithStrict aborts the stream on the first malformed statement instead of
// logging and skipping it.
func WithStrict() Option {
	return func(c *config) {
		c.strict = true
	}
}

// WithPgzip selects the parallel pgzip implementation over compress/gzip
// when a compressed dump is read.
func WithPgzip() Option {
	return func(c *config) {
		c.usePgzip = true
	}
}

func newConfig(opts ...Option) *config {
	c := &config{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// streamStatements drives the statement loop every source shares: split,
// decode, transform, deliver. Cancellation is checked between statements
// only, a statement in flight always completes.
func streamStatements(ctx context.Context, r io.Reader, registry *rowkit.Registry, fn RowFunc, cfg *config) error {
	splitter := pginsert.NewSplitter(r)

	var rows, skipped uint64
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		stmt, err := splitter.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				log.Debug().
					Uint64("Rows", rows).
					Uint64("Skipped", skipped).
					Msg("dump stream drained")
				return nil
			}
			return fmt.Errorf("unable to split dump stream: %w", err)
		}

		delivered, err := processStatement(stmt, registry, fn)
		if err != nil {
			var se *StreamError
			if errors.As(err, &se) {
				if cfg.strict {
					return err
				}
				skipped++
				log.Warn().
					Err(se.Err).
					Str("Table", se.Table).
					Int("Line", se.Line).
					Msg("skipping malformed statement")
				continue
			}
			return err
		}
		if delivered {
			rows++
		}
	}
}

// processStatement decodes a single statement and delivers it when it is a
// row insertion. Malformed insertions come back as *StreamError so the loop
// can apply the lenient/strict policy; a callback failure is always fatal
// and is returned bare.
func processStatement(stmt pginsert.Statement, registry *rowkit.Registry, fn RowFunc) (bool, error) {
	tokens, err := pginsert.Tokenize(stmt.Text)
	if err != nil {
		return false, NewStreamError("", stmt.Line, err)
	}

	original, ok, err := pginsert.ParseRow(stmt.Text, tokens)
	if err != nil {
		table, _ := pginsert.InsertTable(tokens)
		return false, NewStreamError(table, stmt.Line, err)
	}
	if !ok {
		return false, nil
	}

	transformed, err := registry.ApplyRow(original)
	if err != nil {
		return false, NewStreamError(original.TableName, stmt.Line, err)
	}

	if err := fn(original, transformed); err != nil {
		return false, fmt.Errorf("row callback: %w", err)
	}
	return true, nil
}

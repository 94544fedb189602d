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
	"errors"
	"fmt"
)

var ErrDuplicateTransformer = errors.New("duplicate transformer for table.column key")

// Registry indexes transformers by their "table.column" key. It is built
// once before streaming starts and is read-only afterwards, so lookups need
// no locking.
type Registry struct {
	transformers map[string]Transformer
}

type registryOptions struct {
	lastWins bool
}

type RegistryOption func(*registryOptions)

// WithLastWins makes a later transformer silently replace an earlier one
// registered under the same key instead of failing the build.
func WithLastWins() RegistryOption {
	return func(o *registryOptions) {
		o.lastWins = true
	}
}

// BuildRegistry indexes the supplied transformers in order. A duplicate
// table.column key is a configuration error unless WithLastWins is given.
func BuildRegistry(transformers []Transformer, opts ...RegistryOption) (*Registry, error) {
	var o registryOptions
	for _, opt := range opts {
		opt(&o)
	}

	m := make(map[string]Transformer, len(transformers))
	for _, t := range transformers {
		key := t.TableColumnKey()
		if _, ok := m[key]; ok && !o.lastWins {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateTransformer, key)
		}
		m[key] = t
	}
	return &Registry{transformers: m}, nil
}

func (r *Registry) Len() int {
	return len(r.transformers)
}

// Lookup returns the transformer registered for table.column.
func (r *Registry) Lookup(table, column string) (Transformer, bool) {
	t, ok := r.transformers[table+"."+column]
	return t, ok
}

// Apply dispatches one column through its matching transformer. Columns with
// no registered transformer pass through unchanged. The replacement must keep
// the column name, otherwise the pairing of original and transformed rows
// would break.
func (r *Registry) Apply(table string, c Column) (Column, error) {
	t, ok := r.transformers[table+"."+c.Name()]
	if !ok {
		return c, nil
	}
	return r.apply(t, c)
}

// ApplyRow dispatches every column of the row and returns the transformed
// counterpart. The input row is the untouched original: transformers that are
// RowConditional evaluate their condition against it, and columns whose
// condition does not hold pass through unchanged. The result always shares
// the table name, length and column order with the input.
func (r *Registry) ApplyRow(row Row) (Row, error) {
	out := Row{
		TableName: row.TableName,
		Columns:   make([]Column, len(row.Columns)),
	}
	for i, c := range row.Columns {
		t, ok := r.transformers[row.TableName+"."+c.Name()]
		if !ok {
			out.Columns[i] = c
			continue
		}
		if rc, ok := t.(RowConditional); ok {
			match, err := rc.Matches(row)
			if err != nil {
				return Row{}, fmt.Errorf("transformer %q condition: %w", t.TableColumnKey(), err)
			}
			if !match {
				out.Columns[i] = c
				continue
			}
		}
		nc, err := r.apply(t, c)
		if err != nil {
			return Row{}, err
		}
		out.Columns[i] = nc
	}
	return out, nil
}

func (r *Registry) apply(t Transformer, c Column) (Column, error) {
	out, err := t.Transform(c)
	if err != nil {
		return Column{}, fmt.Errorf("transformer %q: %w", t.TableColumnKey(), err)
	}
	if out.Name() != c.Name() {
		return Column{}, fmt.Errorf("transformer %q renamed column %q to %q", t.TableColumnKey(), c.Name(), out.Name())
	}
	return out, nil
}

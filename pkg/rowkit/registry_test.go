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
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubTransformer struct {
	Binding
	fn func(c Column) (Column, error)
}

func (s *stubTransformer) Transform(c Column) (Column, error) {
	return s.fn(c)
}

func newStub(table, column string, fn func(c Column) (Column, error)) *stubTransformer {
	return &stubTransformer{Binding: NewBinding(table, column), fn: fn}
}

func TestBuildRegistry(t *testing.T) {
	redact := func(c Column) (Column, error) {
		return NewStringColumn(c.Name(), "***"), nil
	}

	t.Run("indexes_by_table_column", func(t *testing.T) {
		r, err := BuildRegistry([]Transformer{
			newStub("employees", "last_name", redact),
			newStub("employees", "phone", redact),
		})
		require.NoError(t, err)
		assert.Equal(t, 2, r.Len())
		_, ok := r.Lookup("employees", "last_name")
		assert.True(t, ok)
		_, ok = r.Lookup("employees", "first_name")
		assert.False(t, ok)
	})

	t.Run("duplicate_key_fails", func(t *testing.T) {
		_, err := BuildRegistry([]Transformer{
			newStub("employees", "last_name", redact),
			newStub("employees", "last_name", redact),
		})
		require.Error(t, err)
		assert.True(t, errors.Is(err, ErrDuplicateTransformer))
		assert.Contains(t, err.Error(), "employees.last_name")
	})

	t.Run("last_wins_overrides", func(t *testing.T) {
		first := newStub("employees", "last_name", func(c Column) (Column, error) {
			return NewStringColumn(c.Name(), "first"), nil
		})
		second := newStub("employees", "last_name", func(c Column) (Column, error) {
			return NewStringColumn(c.Name(), "second"), nil
		})
		r, err := BuildRegistry([]Transformer{first, second}, WithLastWins())
		require.NoError(t, err)
		require.Equal(t, 1, r.Len())

		out, err := r.Apply("employees", NewStringColumn("last_name", "Doe"))
		require.NoError(t, err)
		v, ok := out.StringValue()
		require.True(t, ok)
		assert.Equal(t, "second", v)
	})
}

func TestRegistry_Apply(t *testing.T) {
	r, err := BuildRegistry([]Transformer{
		newStub("employees", "last_name", func(c Column) (Column, error) {
			return NewStringColumn(c.Name(), "***"), nil
		}),
		newStub("employees", "salary", func(c Column) (Column, error) {
			return Column{}, errors.New("boom")
		}),
		newStub("employees", "badge", func(c Column) (Column, error) {
			return NewStringColumn("renamed", "x"), nil
		}),
	})
	require.NoError(t, err)

	t.Run("dispatches_matching_column", func(t *testing.T) {
		out, err := r.Apply("employees", NewStringColumn("last_name", "Doe"))
		require.NoError(t, err)
		v, ok := out.StringValue()
		require.True(t, ok)
		assert.Equal(t, "***", v)
	})

	t.Run("passes_through_unregistered_column", func(t *testing.T) {
		orig := NewStringColumn("first_name", "John")
		out, err := r.Apply("employees", orig)
		require.NoError(t, err)
		assert.True(t, out.Equal(orig))
	})

	t.Run("passes_through_unregistered_table", func(t *testing.T) {
		orig := NewStringColumn("last_name", "Doe")
		out, err := r.Apply("contractors", orig)
		require.NoError(t, err)
		assert.True(t, out.Equal(orig))
	})

	t.Run("wraps_transformer_error", func(t *testing.T) {
		_, err := r.Apply("employees", NewNumberColumn("salary", decimal.NewFromInt(100)))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "employees.salary")
		assert.Contains(t, err.Error(), "boom")
	})

	t.Run("rejects_renamed_column", func(t *testing.T) {
		_, err := r.Apply("employees", NewStringColumn("badge", "B-1"))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "renamed column")
	})
}

type conditionalStub struct {
	*stubTransformer
	matches func(r Row) (bool, error)
}

func (s *conditionalStub) Matches(r Row) (bool, error) {
	return s.matches(r)
}

func TestRegistry_ApplyRow(t *testing.T) {
	redact := newStub("employees", "last_name", func(c Column) (Column, error) {
		return NewStringColumn(c.Name(), "***"), nil
	})
	onlyManagers := &conditionalStub{
		stubTransformer: newStub("employees", "phone", func(c Column) (Column, error) {
			return NewStringColumn(c.Name(), "hidden"), nil
		}),
		matches: func(r Row) (bool, error) {
			c, _ := r.ColumnByName("role")
			v, _ := c.StringValue()
			return v == "manager", nil
		},
	}
	r, err := BuildRegistry([]Transformer{redact, onlyManagers})
	require.NoError(t, err)

	row := Row{
		TableName: "employees",
		Columns: []Column{
			NewStringColumn("last_name", "Doe"),
			NewStringColumn("phone", "555-0100"),
			NewStringColumn("role", "engineer"),
		},
	}

	t.Run("pairing_is_preserved", func(t *testing.T) {
		out, err := r.ApplyRow(row)
		require.NoError(t, err)
		require.Len(t, out.Columns, len(row.Columns))
		assert.Equal(t, row.TableName, out.TableName)
		for i := range row.Columns {
			assert.Equal(t, row.Columns[i].Name(), out.Columns[i].Name())
		}
	})

	t.Run("condition_false_passes_through", func(t *testing.T) {
		out, err := r.ApplyRow(row)
		require.NoError(t, err)

		last, _ := out.Columns[0].StringValue()
		assert.Equal(t, "***", last)
		phone, _ := out.Columns[1].StringValue()
		assert.Equal(t, "555-0100", phone)
	})

	t.Run("condition_true_transforms", func(t *testing.T) {
		manager := Row{
			TableName: row.TableName,
			Columns: []Column{
				NewStringColumn("last_name", "Doe"),
				NewStringColumn("phone", "555-0100"),
				NewStringColumn("role", "manager"),
			},
		}
		out, err := r.ApplyRow(manager)
		require.NoError(t, err)
		phone, _ := out.Columns[1].StringValue()
		assert.Equal(t, "hidden", phone)
	})

	t.Run("condition_error_propagates", func(t *testing.T) {
		failing := &conditionalStub{
			stubTransformer: newStub("employees", "last_name", func(c Column) (Column, error) {
				return c, nil
			}),
			matches: func(r Row) (bool, error) {
				return false, errors.New("boom")
			},
		}
		reg, err := BuildRegistry([]Transformer{failing})
		require.NoError(t, err)
		_, err = reg.ApplyRow(row)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "condition")
	})
}

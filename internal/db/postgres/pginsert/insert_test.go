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
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

func mustTokenize(t *testing.T, stmt string) []Token {
	t.Helper()
	tokens, err := Tokenize(stmt)
	require.NoError(t, err)
	return tokens
}

func TestInsertTable(t *testing.T) {
	tests := []struct {
		name     string
		stmt     string
		expected string
		ok       bool
	}{
		{
			name:     "schema_qualified",
			stmt:     `INSERT INTO public.employees (id) VALUES (1);`,
			expected: "public.employees",
			ok:       true,
		},
		{
			name:     "unqualified",
			stmt:     `INSERT INTO employees (id) VALUES (1);`,
			expected: "employees",
			ok:       true,
		},
		{
			name:     "quoted_table",
			stmt:     `INSERT INTO public."Order Items" (id) VALUES (1);`,
			expected: "public.Order Items",
			ok:       true,
		},
		{
			name:     "lowercase_keywords",
			stmt:     `insert into employees (id) values (1);`,
			expected: "employees",
			ok:       true,
		},
		{
			name:     "extra_whitespace_and_comment",
			stmt:     "INSERT /* hint */  INTO\n\tpublic.employees (id) VALUES (1);",
			expected: "public.employees",
			ok:       true,
		},
		{name: "set_statement", stmt: `SET client_encoding = 'UTF8';`},
		{name: "create_table", stmt: `CREATE TABLE public.employees (id integer);`},
		{name: "update_statement", stmt: `UPDATE employees SET id = 1;`},
		{name: "insert_without_into", stmt: `INSERT employees VALUES (1);`},
		{name: "quoted_insert_is_identifier", stmt: `"INSERT" INTO employees (id) VALUES (1);`},
		{name: "empty_statement", stmt: `;`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			table, ok := InsertTable(mustTokenize(t, tt.stmt))
			require.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.expected, table)
		})
	}
}

func TestColumnNames(t *testing.T) {
	t.Run("plain_and_quoted", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO public.employees (id, last_name, "Badge ID") VALUES (1, 'x', 'y');`)
		names, err := ColumnNames(tokens)
		require.NoError(t, err)
		assert.Equal(t, []string{"id", "last_name", "Badge ID"}, names)
	})

	t.Run("missing_column_list", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO employees VALUES (1);`)
		_, err := ColumnNames(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
		assert.Contains(t, err.Error(), "missing column list")
	})

	t.Run("empty_column_list", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO employees () VALUES ();`)
		_, err := ColumnNames(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})

	t.Run("unterminated_column_list", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO employees (id, last_name`)
		_, err := ColumnNames(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})

	t.Run("unexpected_token_in_list", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO employees (id, 5) VALUES (1, 2);`)
		_, err := ColumnNames(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})
}

func TestValues(t *testing.T) {
	t.Run("one_slot_per_column", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a, b, c, d) VALUES (123, 'x', NULL, -4);`)
		slots, err := Values(tokens)
		require.NoError(t, err)
		require.Len(t, slots, 4)

		require.Len(t, slots[0], 1)
		assert.Equal(t, TokenNumber, slots[0][0].Kind)
		require.Len(t, slots[1], 1)
		assert.Equal(t, TokenString, slots[1][0].Kind)
		require.Len(t, slots[2], 1)
		assert.True(t, slots[2][0].MatchKeyword("NULL"))
		require.Len(t, slots[3], 2)
		assert.Equal(t, TokenMinus, slots[3][0].Kind)
		assert.Equal(t, TokenNumber, slots[3][1].Kind)
	})

	t.Run("expression_stays_in_one_slot", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a, b) VALUES ('{}'::jsonb, now());`)
		slots, err := Values(tokens)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Len(t, slots[0], 3)
		assert.Len(t, slots[1], 3)
	})

	t.Run("nested_parens_with_comma", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a, b) VALUES (coalesce(1, 2), 3);`)
		slots, err := Values(tokens)
		require.NoError(t, err)
		require.Len(t, slots, 2)
		assert.Len(t, slots[0], 6)
		assert.Len(t, slots[1], 1)
	})

	t.Run("missing_values_keyword", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a) SELECT 1;`)
		_, err := Values(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
		assert.Contains(t, err.Error(), "VALUES")
	})

	t.Run("unterminated_values_list", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a) VALUES (1`)
		_, err := Values(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})

	t.Run("multi_row_values", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a) VALUES (1), (2);`)
		_, err := Values(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
		assert.Contains(t, err.Error(), "multi-row")
	})

	t.Run("empty_value_expression", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a, b) VALUES (1, );`)
		_, err := Values(tokens)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})

	t.Run("on_conflict_clause_ignored", func(t *testing.T) {
		tokens := mustTokenize(t, `INSERT INTO t (a) VALUES (1) ON CONFLICT DO NOTHING;`)
		slots, err := Values(tokens)
		require.NoError(t, err)
		assert.Len(t, slots, 1)
	})
}

func TestTypeColumn(t *testing.T) {
	tests := []struct {
		name     string
		slot     []Token
		raw      string
		expected rowkit.Column
	}{
		{
			name:     "integer",
			slot:     []Token{{Kind: TokenNumber, Value: "123"}},
			expected: rowkit.NewNumberColumn("c", decimal.NewFromInt(123)),
		},
		{
			name:     "float",
			slot:     []Token{{Kind: TokenNumber, Value: "1.50"}},
			expected: rowkit.NewFloatColumn("c", 1.5),
		},
		{
			name: "wide_integer",
			slot: []Token{{Kind: TokenNumber, Value: "99999999999999999999999999"}},
			expected: rowkit.NewNumberColumn("c",
				decimal.RequireFromString("99999999999999999999999999")),
		},
		{
			name:     "negative_integer",
			slot:     []Token{{Kind: TokenMinus, Value: "-"}, {Kind: TokenNumber, Value: "42"}},
			expected: rowkit.NewNumberColumn("c", decimal.NewFromInt(-42)),
		},
		{
			name:     "negative_float",
			slot:     []Token{{Kind: TokenMinus, Value: "-"}, {Kind: TokenNumber, Value: "0.5"}},
			expected: rowkit.NewFloatColumn("c", -0.5),
		},
		{
			name:     "explicit_plus_sign",
			slot:     []Token{{Kind: TokenPlus, Value: "+"}, {Kind: TokenNumber, Value: "7"}},
			expected: rowkit.NewNumberColumn("c", decimal.NewFromInt(7)),
		},
		{
			name:     "string",
			slot:     []Token{{Kind: TokenString, Value: "hello"}},
			expected: rowkit.NewStringColumn("c", "hello"),
		},
		{
			name:     "national_string",
			slot:     []Token{{Kind: TokenNationalString, Value: "hello"}},
			expected: rowkit.NewStringColumn("c", "hello"),
		},
		{
			name:     "hex_string",
			slot:     []Token{{Kind: TokenHexString, Value: "CAFE"}},
			expected: rowkit.NewStringColumn("c", "CAFE"),
		},
		{
			name:     "char",
			slot:     []Token{{Kind: TokenChar, Value: "c"}},
			expected: rowkit.NewCharColumn("c", 'c'),
		},
		{
			name:     "null_keyword",
			slot:     []Token{{Kind: TokenWord, Value: "NULL"}},
			raw:      "NULL",
			expected: rowkit.NewRawColumn("c", "NULL"),
		},
		{
			name:     "boolean_keyword",
			slot:     []Token{{Kind: TokenWord, Value: "true"}},
			raw:      "true",
			expected: rowkit.NewRawColumn("c", "true"),
		},
		{
			name: "cast_expression",
			slot: []Token{
				{Kind: TokenString, Value: "{}"},
				{Kind: TokenOperator, Value: "::"},
				{Kind: TokenWord, Value: "jsonb"},
			},
			raw:      "'{}'::jsonb",
			expected: rowkit.NewRawColumn("c", "'{}'::jsonb"),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			col, err := TypeColumn("c", tt.slot, tt.raw)
			require.NoError(t, err)
			assert.True(t, tt.expected.Equal(col), "expected %s %q, got %s %q",
				tt.expected.Kind(), tt.expected.Literal(), col.Kind(), col.Literal())
		})
	}
}

func TestTypeColumn_determinism(t *testing.T) {
	slot := []Token{{Kind: TokenNumber, Value: "1.50"}}
	first, err := TypeColumn("c", slot, "")
	require.NoError(t, err)
	for i := 0; i < 10; i++ {
		again, err := TypeColumn("c", slot, "")
		require.NoError(t, err)
		assert.True(t, first.Equal(again))
	}
}

func TestTypeColumn_errors(t *testing.T) {
	t.Run("empty_slot", func(t *testing.T) {
		_, err := TypeColumn("c", nil, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})

	t.Run("bad_number_literal", func(t *testing.T) {
		// The lexer never produces this, a mismatch between collaborators
		// must fail the statement rather than pass garbage through.
		_, err := TypeColumn("c", []Token{{Kind: TokenNumber, Value: "12..3"}}, "")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})
}

func TestParseRow(t *testing.T) {
	parse := func(t *testing.T, stmt string) (rowkit.Row, bool, error) {
		t.Helper()
		return ParseRow(stmt, mustTokenize(t, stmt))
	}

	t.Run("full_statement", func(t *testing.T) {
		row, isInsert, err := parse(t,
			`INSERT INTO public.employees (id, first_name, last_name, rate, notes) VALUES (123, 'John', 'O''Brian', 1.50, NULL);`)
		require.NoError(t, err)
		require.True(t, isInsert)

		assert.Equal(t, "public.employees", row.TableName)
		require.Len(t, row.Columns, 5)

		id, ok := row.Columns[0].NumberValue()
		require.True(t, ok)
		assert.True(t, id.Equal(decimal.NewFromInt(123)))

		first, _ := row.Columns[1].StringValue()
		assert.Equal(t, "John", first)
		last, _ := row.Columns[2].StringValue()
		assert.Equal(t, "O'Brian", last)

		rate, ok := row.Columns[3].FloatValue()
		require.True(t, ok)
		assert.Equal(t, 1.5, rate)

		assert.Equal(t, rowkit.KindNone, row.Columns[4].Kind())
		assert.Equal(t, "notes", row.Columns[4].Name())
	})

	t.Run("untyped_values_keep_their_spelling", func(t *testing.T) {
		row, isInsert, err := parse(t,
			`INSERT INTO t (active, created_at, payload) VALUES (true, now(), '{"a": 1}'::jsonb);`)
		require.NoError(t, err)
		require.True(t, isInsert)
		require.Len(t, row.Columns, 3)

		for i, expected := range []string{"true", "now()", `'{"a": 1}'::jsonb`} {
			assert.Equal(t, rowkit.KindNone, row.Columns[i].Kind())
			raw, ok := row.Columns[i].RawValue()
			require.True(t, ok)
			assert.Equal(t, expected, raw)
		}

		assert.Equal(t,
			`INSERT INTO t (active, created_at, payload) VALUES (true, now(), '{"a": 1}'::jsonb);`,
			row.InsertStatement())
	})

	t.Run("not_an_insert", func(t *testing.T) {
		_, isInsert, err := parse(t, `SET client_encoding = 'UTF8';`)
		require.NoError(t, err)
		assert.False(t, isInsert)
	})

	t.Run("count_mismatch", func(t *testing.T) {
		_, isInsert, err := parse(t, `INSERT INTO t (a, b) VALUES (1);`)
		require.True(t, isInsert)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
		assert.Contains(t, err.Error(), "2 columns but 1 values")
	})

	t.Run("malformed_insert_reports_error", func(t *testing.T) {
		_, isInsert, err := parse(t, `INSERT INTO t VALUES (1);`)
		require.True(t, isInsert)
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrMalformedStatement)
	})
}

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

// Package introspect inspects the live database that transformation rules
// target: it resolves rule table.column references against the catalog and
// samples real rows so transformations can be previewed before any dump is
// taken.
package introspect

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

// ErrTableNotFound marks a rule target that does not exist in the database.
var ErrTableNotFound = errors.New("table does not exist")

type Column struct {
	Name     string
	TypeName string
	NotNull  bool
	Num      int
}

type Table struct {
	Schema  string
	Name    string
	Columns []Column
}

func (t *Table) ColumnByName(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Connect opens a single verified connection. Numeric values decode into
// shopspring decimals, the same representation the row pipeline uses.
func Connect(ctx context.Context, dsn string) (*pgx.Conn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %w", err)
	}
	pgxdecimal.Register(conn.TypeMap())

	if err := conn.Ping(ctx); err != nil {
		if closeErr := conn.Close(ctx); closeErr != nil {
			err = errors.Join(err, closeErr)
		}
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}
	return conn, nil
}

// SplitQualified splits a rule's table reference into schema and relation
// name. Rules use the dump's spelling, so a bare name defaults to public.
func SplitQualified(table string) (schema, name string) {
	for i := len(table) - 1; i >= 0; i-- {
		if table[i] == '.' {
			return table[:i], table[i+1:]
		}
	}
	return "public", table
}

// GetTable resolves a table and its column list from the catalog. A missing
// table reports ErrTableNotFound so callers can distinguish a bad rule from
// a query failure.
func GetTable(ctx context.Context, conn *pgx.Conn, schema, name string) (*Table, error) {
	var exists bool
	row := conn.QueryRow(ctx, tableExistsQuery, schema, name)
	if err := row.Scan(&exists); err != nil {
		return nil, fmt.Errorf("unable to check table existence: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("table %s.%s: %w", schema, name, ErrTableNotFound)
	}

	rows, err := conn.Query(ctx, tableColumnsQuery, schema, name)
	if err != nil {
		return nil, fmt.Errorf("unable to execute table columns query: %w", err)
	}
	defer rows.Close()

	t := &Table{Schema: schema, Name: name}
	for rows.Next() {
		var c Column
		if err := rows.Scan(&c.Name, &c.TypeName, &c.NotNull, &c.Num); err != nil {
			return nil, fmt.Errorf("cannot scan table columns row: %w", err)
		}
		t.Columns = append(t.Columns, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("table columns query: %w", err)
	}
	return t, nil
}

// SampleRows reads up to limit rows from the rule's table and bridges them
// into pipeline rows. TableName keeps the rule's spelling so registry lookup
// matches the same way it would against a dump.
func SampleRows(ctx context.Context, conn *pgx.Conn, table string, limit uint64) ([]rowkit.Row, error) {
	schema, name := SplitQualified(table)
	query := fmt.Sprintf(
		"SELECT * FROM %s LIMIT %d",
		pgx.Identifier{schema, name}.Sanitize(), limit,
	)
	rows, err := conn.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("unable to sample table %s: %w", table, err)
	}
	defer rows.Close()

	fields := rows.FieldDescriptions()
	var res []rowkit.Row
	for rows.Next() {
		values, err := rows.Values()
		if err != nil {
			return nil, fmt.Errorf("cannot read sampled row from %s: %w", table, err)
		}
		columns := make([]rowkit.Column, 0, len(values))
		for i, v := range values {
			columns = append(columns, asColumn(string(fields[i].Name), v))
		}
		res = append(res, rowkit.Row{TableName: table, Columns: columns})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sampling table %s: %w", table, err)
	}
	return res, nil
}

// asColumn mirrors the dump pipeline's value typing for live values: text
// stays string, integers stay wide numbers, floats stay floats, and
// booleans land in raw columns exactly as their dump spelling would.
// Anything the driver returns beyond that renders through its Go text form,
// which is close enough for a validation preview.
func asColumn(name string, v any) rowkit.Column {
	switch val := v.(type) {
	case nil:
		return rowkit.NewNoneColumn(name)
	case string:
		return rowkit.NewStringColumn(name, val)
	case []byte:
		return rowkit.NewStringColumn(name, string(val))
	case int16:
		return rowkit.NewNumberColumn(name, decimal.NewFromInt(int64(val)))
	case int32:
		return rowkit.NewNumberColumn(name, decimal.NewFromInt(int64(val)))
	case int64:
		return rowkit.NewNumberColumn(name, decimal.NewFromInt(val))
	case float32:
		return rowkit.NewFloatColumn(name, float64(val))
	case float64:
		return rowkit.NewFloatColumn(name, val)
	case decimal.Decimal:
		return rowkit.NewNumberColumn(name, val)
	case bool:
		if val {
			return rowkit.NewRawColumn(name, "true")
		}
		return rowkit.NewRawColumn(name, "false")
	case time.Time:
		return rowkit.NewStringColumn(name, val.Format("2006-01-02 15:04:05.999999-07"))
	case [16]byte:
		return rowkit.NewStringColumn(name, formatUUID(val))
	default:
		return rowkit.NewRawColumn(name, fmt.Sprintf("%v", val))
	}
}

func formatUUID(b [16]byte) string {
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}

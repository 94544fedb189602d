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
	"strings"
)

// Row is one decoded row-insertion statement. Columns keep the declared
// statement order. The pipeline emits rows in pairs (original, transformed)
// that always share the table name, length and column-name-at-index.
type Row struct {
	TableName string
	Columns   []Column
}

// ColumnByName returns the first column with the given name.
func (r Row) ColumnByName(name string) (Column, bool) {
	for _, c := range r.Columns {
		if c.Name() == name {
			return c, true
		}
	}
	return Column{}, false
}

// InsertStatement renders the row back into a single-row
// INSERT INTO ... VALUES (...); statement.
func (r Row) InsertStatement() string {
	var sb strings.Builder
	sb.WriteString("INSERT INTO ")
	sb.WriteString(quoteTable(r.TableName))
	sb.WriteString(" (")
	for i, c := range r.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(quoteIdent(c.Name()))
	}
	sb.WriteString(") VALUES (")
	for i, c := range r.Columns {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(c.Literal())
	}
	sb.WriteString(");")
	return sb.String()
}

// quoteTable quotes a possibly schema-qualified table name one path segment
// at a time, so "public.Order Items" comes out as public."Order Items".
func quoteTable(name string) string {
	segments := strings.Split(name, ".")
	for i, s := range segments {
		segments[i] = quoteIdent(s)
	}
	return strings.Join(segments, ".")
}

// quoteIdent quotes an identifier only when it cannot stand bare.
func quoteIdent(name string) string {
	plain := name != "" && !(name[0] >= '0' && name[0] <= '9')
	for i := 0; plain && i < len(name); i++ {
		ch := name[i]
		if !(ch >= 'a' && ch <= 'z' || ch >= '0' && ch <= '9' || ch == '_') {
			plain = false
		}
	}
	if plain {
		return name
	}
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}

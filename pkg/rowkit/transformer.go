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

// Transformer replaces the value of one table column. Implementations are
// expected (not enforced) to preserve the value kind and, for strings, the
// length characteristics of the original.
type Transformer interface {
	// TableColumnKey returns the "table.column" key the transformer is
	// registered under. Case-sensitive, no escaping.
	TableColumnKey() string
	// Transform returns the replacement column. It must carry the same name
	// as its input and must not modify the input.
	Transform(c Column) (Column, error)
}

// RowConditional is implemented by transformers that apply only to rows
// matching a condition. The condition is evaluated against the original row,
// before any column of it is transformed.
type RowConditional interface {
	Matches(r Row) (bool, error)
}

// Binding names the table and column a transformer applies to. Transformer
// implementations embed it to satisfy TableColumnKey.
type Binding struct {
	Table  string
	Column string
}

func NewBinding(table, column string) Binding {
	return Binding{Table: table, Column: column}
}

func (b Binding) TableColumnKey() string {
	return b.Table + "." + b.Column
}

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

package transformers

import (
	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const TransientTransformerName = "transient"

var TransientTransformerDefinition = NewDefinition(
	TransientTransformerName,
	"Collapse the value to the empty value of its kind: empty string, zero number, space character.",
	NewTransientTransformer,
)

type TransientTransformer struct {
	rowkit.Binding
}

func NewTransientTransformer(table, column string, _ Params) (rowkit.Transformer, error) {
	return &TransientTransformer{Binding: rowkit.NewBinding(table, column)}, nil
}

func (t *TransientTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		return rowkit.NewStringColumn(c.Name(), ""), nil
	case rowkit.KindChar:
		return rowkit.NewCharColumn(c.Name(), ' '), nil
	case rowkit.KindNumber:
		return rowkit.NewNumberColumn(c.Name(), decimal.Zero), nil
	case rowkit.KindFloat:
		return rowkit.NewFloatColumn(c.Name(), 0), nil
	default:
		return c, nil
	}
}

func init() {
	DefaultRegistry.MustRegister(TransientTransformerDefinition)
}

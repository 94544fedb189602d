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
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const RedactTransformerName = "redact"

var RedactTransformerDefinition = NewDefinition(
	RedactTransformerName,
	"Blank the value out: strings become placeholder runs of the same length, "+
		"numbers become zero. "+
		"Parameters: placeholder (single character, default *), width (fixed output width, 0 keeps the original length).",
	NewRedactTransformer,
)

type RedactTransformer struct {
	rowkit.Binding
	placeholder rune
	width       int
}

func NewRedactTransformer(table, column string, params Params) (rowkit.Transformer, error) {
	placeholder := params.String("placeholder", "*")
	if utf8.RuneCountInString(placeholder) != 1 {
		return nil, fmt.Errorf("placeholder must be a single character, got %q", placeholder)
	}
	r, _ := utf8.DecodeRuneInString(placeholder)
	width := params.Int("width", 0)
	if width < 0 {
		return nil, fmt.Errorf("width must not be negative, got %d", width)
	}
	return &RedactTransformer{
		Binding:     rowkit.NewBinding(table, column),
		placeholder: r,
		width:       width,
	}, nil
}

func (t *RedactTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	switch c.Kind() {
	case rowkit.KindString:
		v, _ := c.StringValue()
		n := t.width
		if n == 0 {
			n = utf8.RuneCountInString(v)
		}
		return rowkit.NewStringColumn(c.Name(), strings.Repeat(string(t.placeholder), n)), nil
	case rowkit.KindChar:
		return rowkit.NewCharColumn(c.Name(), t.placeholder), nil
	case rowkit.KindNumber:
		return rowkit.NewNumberColumn(c.Name(), decimal.Zero), nil
	case rowkit.KindFloat:
		return rowkit.NewFloatColumn(c.Name(), 0), nil
	default:
		return c, nil
	}
}

func init() {
	DefaultRegistry.MustRegister(RedactTransformerDefinition)
}

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
	"strconv"
	"unicode/utf8"

	"github.com/shopspring/decimal"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

// goValue exposes a column value to expression and template environments.
// Numbers that fit an int64 come through as int64, wider ones as their
// decimal string, NULL as nil.
func goValue(c rowkit.Column) any {
	switch c.Kind() {
	case rowkit.KindString:
		v, _ := c.StringValue()
		return v
	case rowkit.KindChar:
		v, _ := c.CharValue()
		return string(v)
	case rowkit.KindNumber:
		v, _ := c.NumberValue()
		if v.IsInteger() && v.BigInt().IsInt64() {
			return v.IntPart()
		}
		return v.String()
	case rowkit.KindFloat:
		v, _ := c.FloatValue()
		return v
	default:
		return nil
	}
}

// coerceColumn converts generated text back into the kind of the column it
// replaces. Transformed rows must keep the value kinds of their originals,
// otherwise serialized output would change column types mid-stream.
func coerceColumn(name string, kind rowkit.ValueKind, out string) (rowkit.Column, error) {
	switch kind {
	case rowkit.KindString:
		return rowkit.NewStringColumn(name, out), nil
	case rowkit.KindChar:
		if out == "" {
			return rowkit.Column{}, fmt.Errorf("cannot coerce empty output into a char value for column %q", name)
		}
		r, _ := utf8.DecodeRuneInString(out)
		return rowkit.NewCharColumn(name, r), nil
	case rowkit.KindNumber:
		d, err := decimal.NewFromString(out)
		if err != nil {
			return rowkit.Column{}, fmt.Errorf("cannot coerce %q into a number value for column %q: %w", out, name, err)
		}
		return rowkit.NewNumberColumn(name, d), nil
	case rowkit.KindFloat:
		f, err := strconv.ParseFloat(out, 64)
		if err != nil {
			return rowkit.Column{}, fmt.Errorf("cannot coerce %q into a float value for column %q: %w", out, name, err)
		}
		return rowkit.NewFloatColumn(name, f), nil
	default:
		return rowkit.NewNoneColumn(name), nil
	}
}

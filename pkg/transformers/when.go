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

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

// ConditionalTransformer wraps another transformer and applies it only to
// rows matching the compiled when condition. The condition sees the
// original row under the record namespace, one entry per column:
//
//	record.role == "manager" && record.salary > 100000
type ConditionalTransformer struct {
	inner rowkit.Transformer
	prog  *vm.Program
	when  string
}

func NewConditionalTransformer(inner rowkit.Transformer, when string) (*ConditionalTransformer, error) {
	prog, err := expr.Compile(when)
	if err != nil {
		return nil, fmt.Errorf("unable to compile when condition %q: %w", when, err)
	}

	return &ConditionalTransformer{
		inner: inner,
		prog:  prog,
		when:  when,
	}, nil
}

func (ct *ConditionalTransformer) TableColumnKey() string {
	return ct.inner.TableColumnKey()
}

func (ct *ConditionalTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	return ct.inner.Transform(c)
}

// Matches evaluates the when condition against the row as it was produced
// by the dump, before any column of it got transformed.
func (ct *ConditionalTransformer) Matches(r rowkit.Row) (bool, error) {
	record := make(map[string]any, len(r.Columns))
	for _, c := range r.Columns {
		record[c.Name()] = goValue(c)
	}

	output, err := expr.Run(ct.prog, map[string]any{"record": record})
	if err != nil {
		return false, fmt.Errorf("unable to evaluate when condition: %w", err)
	}

	cond, ok := output.(bool)
	if !ok {
		return false, fmt.Errorf("when condition should return boolean, got %T", output)
	}
	return cond, nil
}

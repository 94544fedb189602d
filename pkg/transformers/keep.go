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

import "github.com/seedmask/seedmask/pkg/rowkit"

const KeepTransformerName = "keep"

var KeepTransformerDefinition = NewDefinition(
	KeepTransformerName,
	"Return the value unchanged. Useful as an explicit marker for columns reviewed and left as is.",
	NewKeepTransformer,
)

type KeepTransformer struct {
	rowkit.Binding
}

func NewKeepTransformer(table, column string, _ Params) (rowkit.Transformer, error) {
	return &KeepTransformer{Binding: rowkit.NewBinding(table, column)}, nil
}

func (t *KeepTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	return c, nil
}

func init() {
	DefaultRegistry.MustRegister(KeepTransformerDefinition)
}

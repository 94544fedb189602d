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

package domains

import (
	"fmt"

	"github.com/seedmask/seedmask/pkg/rowkit"
	"github.com/seedmask/seedmask/pkg/transformers"
)

// BuildTransformers instantiates every rule through the transformer kind
// registry, wrapping the ones that carry a when condition. The result feeds
// rowkit.BuildRegistry.
func BuildTransformers(rules []*Rule) ([]rowkit.Transformer, error) {
	ts := make([]rowkit.Transformer, 0, len(rules))
	for i, r := range rules {
		if r.Table == "" {
			return nil, fmt.Errorf("rule[%d]: table is required", i)
		}
		if r.Column == "" {
			return nil, fmt.Errorf("rule[%d] (%s): column is required", i, r.Table)
		}
		if r.Transformer == "" {
			return nil, fmt.Errorf("rule[%d] (%s.%s): transformer is required", i, r.Table, r.Column)
		}

		t, err := transformers.DefaultRegistry.Build(r.Transformer, r.Table, r.Column, r.Params)
		if err != nil {
			return nil, fmt.Errorf("rule[%d] (%s.%s): %w", i, r.Table, r.Column, err)
		}
		if r.When != "" {
			t, err = transformers.NewConditionalTransformer(t, r.When)
			if err != nil {
				return nil, fmt.Errorf("rule[%d] (%s.%s): %w", i, r.Table, r.Column, err)
			}
		}
		ts = append(ts, t)
	}
	return ts, nil
}

// RegistryOptions translates the on_duplicate policy into registry build
// options. Unknown values fall back to the default hard-error behavior.
func RegistryOptions(onDuplicate string) []rowkit.RegistryOption {
	if onDuplicate == OnDuplicateLastWins {
		return []rowkit.RegistryOption{rowkit.WithLastWins()}
	}
	return nil
}

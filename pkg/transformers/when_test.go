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
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

func whenTestRow() rowkit.Row {
	return rowkit.Row{
		TableName: "employees",
		Columns: []rowkit.Column{
			rowkit.NewStringColumn("role", "manager"),
			rowkit.NewNumberColumn("salary", decimal.NewFromInt(120000)),
			rowkit.NewStringColumn("phone", "+4930123456"),
			rowkit.NewNoneColumn("deleted_at"),
		},
	}
}

func TestConditionalTransformer_Matches(t *testing.T) {
	inner, err := DefaultRegistry.Build(RedactTransformerName, "employees", "phone", nil)
	require.NoError(t, err)

	tests := []struct {
		name string
		when string
		want bool
	}{
		{"string equality", `record.role == "manager"`, true},
		{"number comparison", `record.salary > 100000`, true},
		{"null check", `record.deleted_at == nil`, true},
		{"combined", `record.role == "boss" || record.salary >= 120000`, true},
		{"no match", `record.role == "intern"`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ct, err := NewConditionalTransformer(inner, tt.when)
			require.NoError(t, err)

			got, err := ct.Matches(whenTestRow())
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestConditionalTransformer_delegates(t *testing.T) {
	inner, err := DefaultRegistry.Build(RedactTransformerName, "employees", "phone", nil)
	require.NoError(t, err)

	ct, err := NewConditionalTransformer(inner, `record.role == "manager"`)
	require.NoError(t, err)

	assert.Equal(t, "employees.phone", ct.TableColumnKey())

	out, err := ct.Transform(rowkit.NewStringColumn("phone", "+4930123456"))
	require.NoError(t, err)
	v, _ := out.StringValue()
	assert.Equal(t, "***********", v)
}

func TestNewConditionalTransformer_compile_error(t *testing.T) {
	inner, err := DefaultRegistry.Build(RedactTransformerName, "employees", "phone", nil)
	require.NoError(t, err)

	_, err = NewConditionalTransformer(inner, `record.role ==`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to compile when condition")
}

func TestConditionalTransformer_non_boolean(t *testing.T) {
	inner, err := DefaultRegistry.Build(RedactTransformerName, "employees", "phone", nil)
	require.NoError(t, err)

	ct, err := NewConditionalTransformer(inner, `record.role`)
	require.NoError(t, err)

	_, err = ct.Matches(whenTestRow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "should return boolean")
}

func TestConditionalTransformer_evaluation_error(t *testing.T) {
	inner, err := DefaultRegistry.Build(RedactTransformerName, "employees", "phone", nil)
	require.NoError(t, err)

	ct, err := NewConditionalTransformer(inner, `record.salary + "x" == "1x"`)
	require.NoError(t, err)

	_, err = ct.Matches(whenTestRow())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unable to evaluate when condition")
}

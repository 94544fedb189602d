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

func buildHash(t *testing.T, params Params) rowkit.Transformer {
	t.Helper()
	tr, err := NewHashTransformer("employees", "last_name", params)
	require.NoError(t, err)
	return tr
}

func TestHashTransformer_string(t *testing.T) {
	tr := buildHash(t, Params{"salt": "pepper"})

	in := rowkit.NewStringColumn("last_name", "O'Brian")
	out, err := tr.Transform(in)
	require.NoError(t, err)
	require.Equal(t, rowkit.KindString, out.Kind())

	v, _ := out.StringValue()
	assert.Len(t, v, 16)
	assert.Regexp(t, "^[0-9a-f]+$", v)

	again, err := tr.Transform(in)
	require.NoError(t, err)
	assert.True(t, out.Equal(again))

	other, err := tr.Transform(rowkit.NewStringColumn("last_name", "Smith"))
	require.NoError(t, err)
	assert.False(t, out.Equal(other))
}

func TestHashTransformer_engines(t *testing.T) {
	tests := []struct {
		engine string
		hexLen int
	}{
		{"siphash", 16},
		{"murmur3-32", 8},
		{"murmur3-64", 16},
		{"murmur3-128", 32},
		{"sha1", 40},
		{"sha256", 64},
		{"sha512", 128},
		{"sha3-224", 56},
		{"sha3-256", 64},
		{"sha3-384", 96},
		{"sha3-512", 128},
	}

	for _, tt := range tests {
		t.Run(tt.engine, func(t *testing.T) {
			tr := buildHash(t, Params{"engine": tt.engine, "salt": "pepper"})

			out, err := tr.Transform(rowkit.NewStringColumn("last_name", "Miller"))
			require.NoError(t, err)

			v, _ := out.StringValue()
			assert.Len(t, v, tt.hexLen)
		})
	}
}

func TestHashTransformer_same_salt_same_digest(t *testing.T) {
	a := buildHash(t, Params{"salt": "pepper", "engine": "sha256"})
	b := buildHash(t, Params{"salt": "pepper", "engine": "sha256"})

	in := rowkit.NewStringColumn("last_name", "Miller")
	outA, err := a.Transform(in)
	require.NoError(t, err)
	outB, err := b.Transform(in)
	require.NoError(t, err)
	assert.True(t, outA.Equal(outB))
}

func TestHashTransformer_random_salt_differs(t *testing.T) {
	t.Setenv(globalSaltEnv, "")

	a := buildHash(t, nil)
	b := buildHash(t, nil)

	in := rowkit.NewStringColumn("last_name", "Miller")
	outA, err := a.Transform(in)
	require.NoError(t, err)
	outB, err := b.Transform(in)
	require.NoError(t, err)
	assert.False(t, outA.Equal(outB))
}

func TestHashTransformer_global_salt_env(t *testing.T) {
	// hex("seedmask")
	t.Setenv(globalSaltEnv, "736565646d61736b")

	a := buildHash(t, Params{"engine": "sha256"})
	b := buildHash(t, Params{"engine": "sha256"})

	in := rowkit.NewStringColumn("last_name", "Miller")
	outA, err := a.Transform(in)
	require.NoError(t, err)
	outB, err := b.Transform(in)
	require.NoError(t, err)
	assert.True(t, outA.Equal(outB))

	// The rule's own salt still wins over the environment.
	c := buildHash(t, Params{"engine": "sha256", "salt": "pepper"})
	outC, err := c.Transform(in)
	require.NoError(t, err)
	assert.False(t, outA.Equal(outC))
}

func TestHashTransformer_global_salt_env_invalid(t *testing.T) {
	t.Setenv(globalSaltEnv, "not-hex")

	_, err := NewHashTransformer("employees", "last_name", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), globalSaltEnv)
}

func TestHashTransformer_max_length(t *testing.T) {
	tr := buildHash(t, Params{"salt": "pepper", "max_length": 10})

	out, err := tr.Transform(rowkit.NewStringColumn("last_name", "Miller"))
	require.NoError(t, err)

	v, _ := out.StringValue()
	assert.Len(t, v, 10)
}

func TestHashTransformer_number_shape(t *testing.T) {
	tr := buildHash(t, Params{"salt": "pepper"})

	in, err := decimal.NewFromString("-12345.678")
	require.NoError(t, err)

	out, err := tr.Transform(rowkit.NewNumberColumn("last_name", in))
	require.NoError(t, err)
	require.Equal(t, rowkit.KindNumber, out.Kind())

	v, _ := out.NumberValue()
	s := v.String()
	assert.True(t, v.IsNegative())
	assert.Regexp(t, `^-[1-9]\d{4}(\.\d{1,3})?$`, s)

	again, err := tr.Transform(rowkit.NewNumberColumn("last_name", in))
	require.NoError(t, err)
	assert.True(t, out.Equal(again))
}

func TestHashTransformer_char(t *testing.T) {
	tr := buildHash(t, Params{"salt": "pepper"})

	out, err := tr.Transform(rowkit.NewCharColumn("last_name", 'x'))
	require.NoError(t, err)
	require.Equal(t, rowkit.KindChar, out.Kind())

	v, _ := out.CharValue()
	assert.Contains(t, "0123456789abcdef", string(v))
}

func TestHashTransformer_float_kind(t *testing.T) {
	tr := buildHash(t, Params{"salt": "pepper"})

	out, err := tr.Transform(rowkit.NewFloatColumn("last_name", -987.25))
	require.NoError(t, err)
	require.Equal(t, rowkit.KindFloat, out.Kind())

	v, _ := out.FloatValue()
	assert.Negative(t, v)

	again, err := tr.Transform(rowkit.NewFloatColumn("last_name", -987.25))
	require.NoError(t, err)
	assert.True(t, out.Equal(again))
}

func TestNewHashTransformer_errors(t *testing.T) {
	_, err := NewHashTransformer("employees", "last_name", Params{"engine": "crc32"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "crc32")

	_, err = NewHashTransformer("employees", "last_name", Params{"max_length": -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "max_length")
}

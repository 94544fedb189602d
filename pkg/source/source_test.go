package source

import (
	"bytes"
	"compress/gzip"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedmask/seedmask/pkg/rowkit"
)

const testDump = `--
-- PostgreSQL database dump
--

SET statement_timeout = 0;
SET client_encoding = 'UTF8';

CREATE TABLE public.users (
    id integer NOT NULL,
    name text,
    email text
);

INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 'alice@corp.test');
INSERT INTO public.users (id, name, email) VALUES (2, 'bob', 'bob@corp.test');
INSERT INTO public.orders (id, total, paid, created_at) VALUES (10, 99.50, true, now());

-- Completed on 2025-04-01
`

// suffixTransformer appends a fixed marker so tests can tell original and
// transformed values apart without randomness.
type suffixTransformer struct {
	rowkit.Binding
}

func (t suffixTransformer) Transform(c rowkit.Column) (rowkit.Column, error) {
	v, ok := c.StringValue()
	if !ok {
		return rowkit.Column{}, errors.New("expected a string column")
	}
	return rowkit.NewStringColumn(c.Name(), v+"-masked"), nil
}

func testRegistry(t *testing.T) *rowkit.Registry {
	t.Helper()
	registry, err := rowkit.BuildRegistry([]rowkit.Transformer{
		suffixTransformer{rowkit.NewBinding("public.users", "email")},
	})
	require.NoError(t, err)
	return registry
}

type rowPair struct {
	original    rowkit.Row
	transformed rowkit.Row
}

func collect(pairs *[]rowPair) RowFunc {
	return func(original, transformed rowkit.Row) error {
		*pairs = append(*pairs, rowPair{original: original, transformed: transformed})
		return nil
	}
}

func TestReader_StreamRows(t *testing.T) {
	var pairs []rowPair
	src := NewReader(strings.NewReader(testDump))

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.NoError(t, err)
	require.Len(t, pairs, 3)

	first := pairs[0]
	assert.Equal(t, "public.users", first.original.TableName)
	assert.Equal(t, "public.users", first.transformed.TableName)

	email, ok := first.original.ColumnByName("email")
	require.True(t, ok)
	v, _ := email.StringValue()
	assert.Equal(t, "alice@corp.test", v)

	email, ok = first.transformed.ColumnByName("email")
	require.True(t, ok)
	v, _ = email.StringValue()
	assert.Equal(t, "alice@corp.test-masked", v)

	// Columns without a registered transformer pass through untouched.
	name, ok := first.transformed.ColumnByName("name")
	require.True(t, ok)
	orig, _ := first.original.ColumnByName("name")
	assert.True(t, name.Equal(orig))

	// Dump order is preserved.
	second, _ := pairs[1].original.ColumnByName("email")
	v, _ = second.StringValue()
	assert.Equal(t, "bob@corp.test", v)

	// Tables with no registered rules still stream, value-identical.
	assert.Equal(t, "public.orders", pairs[2].original.TableName)
	total, ok := pairs[2].transformed.ColumnByName("total")
	require.True(t, ok)
	origTotal, _ := pairs[2].original.ColumnByName("total")
	assert.True(t, total.Equal(origTotal))

	// Values the typing step cannot rewrite keep their source spelling all
	// the way through serialization.
	assert.Equal(t,
		`INSERT INTO public.orders (id, total, paid, created_at) VALUES (10, 99.5, true, now());`,
		pairs[2].transformed.InsertStatement())
}

func TestReader_StreamRows_gzip(t *testing.T) {
	buf := bytes.NewBuffer(nil)
	gz := gzip.NewWriter(buf)
	_, err := gz.Write([]byte(testDump))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	for _, opts := range [][]Option{nil, {WithPgzip()}} {
		var pairs []rowPair
		src := NewReader(bytes.NewReader(buf.Bytes()), opts...)

		err = src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
		require.NoError(t, err)
		assert.Len(t, pairs, 3)
	}
}

func TestReader_StreamRows_empty(t *testing.T) {
	var pairs []rowPair
	src := NewReader(strings.NewReader(""))

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.NoError(t, err)
	assert.Empty(t, pairs)
}

func TestReader_StreamRows_lenient_skips_malformed(t *testing.T) {
	dump := `INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 'a@b.c');
INSERT INTO public.users (id, name) VALUES (2);
INSERT INTO public.users (id, name, email) VALUES (3, 'carol', 'c@d.e');
`
	var pairs []rowPair
	src := NewReader(strings.NewReader(dump))

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	id, _ := pairs[1].original.ColumnByName("id")
	n, _ := id.NumberValue()
	assert.Equal(t, "3", n.String())
}

func TestReader_StreamRows_strict_aborts(t *testing.T) {
	dump := `INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 'a@b.c');
INSERT INTO public.users (id, name) VALUES (2);
INSERT INTO public.users (id, name, email) VALUES (3, 'carol', 'c@d.e');
`
	var pairs []rowPair
	src := NewReader(strings.NewReader(dump), WithStrict())

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.Error(t, err)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "public.users", se.Table)
	assert.Equal(t, 2, se.Line)

	// The statements before the abort were already delivered.
	require.Len(t, pairs, 1)
}

func TestReader_StreamRows_transformer_error(t *testing.T) {
	// The registered transformer rejects non-string values, numbers in the
	// email column make it fail.
	dump := `INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 42);
`
	var pairs []rowPair

	src := NewReader(strings.NewReader(dump))
	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.NoError(t, err)
	assert.Empty(t, pairs)

	strict := NewReader(strings.NewReader(dump), WithStrict())
	err = strict.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.Error(t, err)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "public.users", se.Table)
}

func TestReader_StreamRows_callback_error_is_fatal(t *testing.T) {
	boom := errors.New("consumer exploded")
	var calls int

	src := NewReader(strings.NewReader(testDump))
	err := src.StreamRows(context.Background(), testRegistry(t), func(_, _ rowkit.Row) error {
		calls++
		return boom
	})
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "row callback")
	// A callback failure aborts even in lenient mode, after exactly one
	// delivery.
	assert.Equal(t, 1, calls)
}

func TestReader_StreamRows_cancelled_context(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var pairs []rowPair
	src := NewReader(strings.NewReader(testDump))

	err := src.StreamRows(ctx, testRegistry(t), collect(&pairs))
	require.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, pairs)
}

func TestStreamError_format(t *testing.T) {
	err := NewStreamError("public.users", 17, errors.New("broken"))
	assert.Equal(t, "stream error on table public.users at line 17: broken", err.Error())

	err = NewStreamError("", 3, errors.New("unterminated string"))
	assert.Equal(t, "stream error at line 3: unterminated string", err.Error())

	assert.ErrorIs(t, err, err.Err)
}

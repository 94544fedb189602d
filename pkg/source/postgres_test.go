package source

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/seedmask/seedmask/internal/db/postgres/pgdump"
)

// fakeProducer drops an executable named pg_dump into a temp dir so the
// subprocess source can be exercised without a real database.
func fakeProducer(t *testing.T, script string) string {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake producer scripts need a unix shell")
	}
	dir := t.TempDir()
	path := filepath.Join(dir, "pg_dump")
	err := os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0o755)
	require.NoError(t, err)
	return dir
}

func TestPostgres_StreamRows(t *testing.T) {
	binPath := fakeProducer(t, `
echo "pg_dump: last built-in OID is 16383" >&2
printf '%s\n' "SET client_encoding = 'UTF8';"
printf '%s\n' "INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 'alice@corp.test');"
printf '%s\n' "INSERT INTO public.users (id, name, email) VALUES (2, 'bob', 'bob@corp.test');"
`)

	var pairs []rowPair
	src := NewPostgres(binPath, &pgdump.Options{DbName: "testdb"})

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.NoError(t, err)
	require.Len(t, pairs, 2)

	email, ok := pairs[1].transformed.ColumnByName("email")
	require.True(t, ok)
	v, _ := email.StringValue()
	assert.Equal(t, "bob@corp.test-masked", v)
}

func TestPostgres_StreamRows_producer_failure(t *testing.T) {
	// Rows already delivered stay delivered, but the non-zero exit still
	// fails the stream: the dump they came from is incomplete.
	binPath := fakeProducer(t, `
printf '%s\n' "INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 'a@b.c');"
echo "pg_dump: error: connection to server was lost" >&2
exit 3
`)

	var pairs []rowPair
	src := NewPostgres(binPath, &pgdump.Options{DbName: "testdb"})

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProducerFailed)
	assert.Contains(t, err.Error(), "exit code 3")
	assert.Len(t, pairs, 1)
}

func TestPostgres_StreamRows_spawn_failure(t *testing.T) {
	var pairs []rowPair
	src := NewPostgres(t.TempDir(), &pgdump.Options{DbName: "testdb"})

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrProducerStart)
	assert.Empty(t, pairs)
}

func TestPostgres_StreamRows_strict_abort_kills_producer(t *testing.T) {
	// The producer keeps a long tail behind the malformed statement; strict
	// mode must not wait for it.
	binPath := fakeProducer(t, `
printf '%s\n' "INSERT INTO public.users (id) VALUES (1, 2);"
sleep 5
printf '%s\n' "INSERT INTO public.users (id, name, email) VALUES (3, 'carol', 'c@d.e');"
`)

	var pairs []rowPair
	src := NewPostgres(binPath, &pgdump.Options{DbName: "testdb"}, WithStrict())

	err := src.StreamRows(context.Background(), testRegistry(t), collect(&pairs))
	require.Error(t, err)

	var se *StreamError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "public.users", se.Table)
	assert.Empty(t, pairs)
}

func TestPostgres_StreamRows_cancelled_context(t *testing.T) {
	binPath := fakeProducer(t, `
printf '%s\n' "INSERT INTO public.users (id, name, email) VALUES (1, 'alice', 'a@b.c');"
`)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	var pairs []rowPair
	src := NewPostgres(binPath, &pgdump.Options{DbName: "testdb"})

	err := src.StreamRows(ctx, testRegistry(t), collect(&pairs))
	require.Error(t, err)
	assert.Empty(t, pairs)
}

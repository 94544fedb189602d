package memory

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPutAndGetObject(t *testing.T) {
	st := New("/")

	content := []byte("hello world")
	st.Put("test.txt", content)

	reader, err := st.GetObject(context.Background(), "test.txt")
	require.NoError(t, err)

	data, err := io.ReadAll(reader)
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestGetObjectMissing(t *testing.T) {
	st := New("/")

	_, err := st.GetObject(context.Background(), "missing.txt")
	require.Error(t, err)
}

func TestExists(t *testing.T) {
	st := New("/")

	ok, err := st.Exists(context.Background(), "test.txt")
	require.NoError(t, err)
	assert.False(t, ok)

	st.Put("test.txt", []byte("data"))

	ok, err = st.Exists(context.Background(), "test.txt")
	require.NoError(t, err)
	assert.True(t, ok)
}

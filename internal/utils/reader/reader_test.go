package reader

import (
	"bufio"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadLine(t *testing.T) {
	br := bufio.NewReader(strings.NewReader("first\nsecond\n"))

	line, err := ReadLine(br)
	require.NoError(t, err)
	assert.Equal(t, "first", string(line))

	line, err = ReadLine(br)
	require.NoError(t, err)
	assert.Equal(t, "second", string(line))

	_, err = ReadLine(br)
	assert.ErrorIs(t, err, io.EOF)
}

func TestReadLine_longer_than_buffer(t *testing.T) {
	long := strings.Repeat("x", 100)
	br := bufio.NewReaderSize(strings.NewReader(long+"\nend\n"), 16)

	line, err := ReadLine(br)
	require.NoError(t, err)
	assert.Equal(t, long, string(line))

	line, err = ReadLine(br)
	require.NoError(t, err)
	assert.Equal(t, "end", string(line))
}

func TestReadLine_trailing_fragment(t *testing.T) {
	br := bufio.NewReaderSize(strings.NewReader(strings.Repeat("y", 20)), 16)

	line, err := ReadLine(br)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("y", 20), string(line))

	_, err = ReadLine(br)
	assert.ErrorIs(t, err, io.EOF)
}

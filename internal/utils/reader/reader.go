package reader

import (
	"bufio"
	"fmt"
	"io"

	"github.com/pkg/errors"
)

// ReadLine joins the fragments bufio produces for lines longer than its
// buffer. io.EOF passes through unwrapped so callers can detect the end of
// the stream; a final line cut off by EOF is returned as a regular line.
func ReadLine(r *bufio.Reader) ([]byte, error) {
	var res []byte
	for {
		line, isPrefix, err := r.ReadLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if len(res) > 0 {
					return res, nil
				}
				return nil, io.EOF
			}
			return nil, fmt.Errorf("unable to read line: %w", err)
		}
		res = append(res, line...)
		if !isPrefix {
			break
		}
	}
	return res, nil
}

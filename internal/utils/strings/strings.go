// Package strings has small text helpers for tabular command output.
package strings

import (
	"strings"

	"github.com/mitchellh/go-wordwrap"
)

// WrapString breaks v into lines of at most maxLength characters. Word
// boundaries are preferred, an unbreakable run is split hard so a single
// long token cannot blow up a table column.
func WrapString(v string, maxLength int) string {
	var res []string
	for _, s := range strings.Split(wordwrap.WrapString(v, uint(maxLength)), "\n") {
		for len(s) > maxLength {
			res = append(res, s[:maxLength])
			s = s[maxLength:]
		}
		res = append(res, s)
	}
	return strings.Join(res, "\n")
}

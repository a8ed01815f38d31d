package config

import (
	"strings"
)

// CleanFileName removes characters not allowed in a single file name element.
// Leading dots are dropped so result is never hidden or relative.
func CleanFileName(in string) string {
	out := strings.Map(func(sym rune) rune {
		if sym < ' ' || strings.ContainsRune(forbiddenNameChars, sym) {
			return -1
		}
		return sym
	}, in)
	out = strings.TrimLeft(out, ". ")
	if len(out) == 0 {
		out = "_bad_file_name_"
	}
	return out
}

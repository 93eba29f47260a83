package textutil

import (
	"strings"
	"unicode"
)

// fileNameReplacer replaces filesystem-unsafe characters with safe alternatives.
var fileNameReplacer = strings.NewReplacer(
	"/", "-",
	"\\", "-",
	":", "-",
	"*", "-",
	"?", "",
	"\"", "",
	"<", "",
	">", "",
	"|", "",
)

// SanitizeFileName replaces filesystem-unsafe characters in a filename.
// Slashes, backslashes, colons, and asterisks become dashes; other unsafe
// characters and control runes are removed. Leading dots are dropped so a
// performer or title never produces a hidden directory.
func SanitizeFileName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return ""
	}
	name = strings.Map(func(r rune) rune {
		if unicode.IsControl(r) {
			return -1
		}
		return r
	}, fileNameReplacer.Replace(name))
	name = strings.TrimLeft(strings.TrimSpace(name), ".")
	return strings.TrimSpace(name)
}

// CollapseSpaces squeezes runs of whitespace into single spaces.
func CollapseSpaces(value string) string {
	return strings.Join(strings.Fields(value), " ")
}

// Dedupe trims entries, drops empties, and removes repeats while keeping the
// first occurrence order.
func Dedupe(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := make(map[string]struct{}, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}

// Package bango parses and normalizes identifier codes such as SSIS-698 and
// FC2-PPV-1234567, and derives the library file names of coded videos.
package bango

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"mediasort/internal/media"
	"mediasort/internal/textutil"
)

// ChineseSubtitleMarker is the suffix letter that marks a release with
// hard-coded Chinese subtitles rather than a part.
const ChineseSubtitleMarker = "C"

var (
	fc2Code     = regexp.MustCompile(`FC2[-_ ]?(?:PPV[-_ ]?)?(\d{5,8})`)
	genericCode = regexp.MustCompile(`(?:^|[^A-Z0-9])([A-Z]{2,6})[-_ ]?(\d{2,7})(?:[^0-9]|$)`)
	suffixRe    = regexp.MustCompile(`^[-_ ]?([A-Z])(?:[^A-Z]|$)`)
	bareCode    = regexp.MustCompile(`^([A-Z0-9]+?)[-_ ]?(\d+)$`)
)

// Parsed is a code found in a file name plus the optional letter after it.
type Parsed struct {
	Code   string
	Suffix string
}

// Parse finds the identifier code in a file name. Suffix is the single letter
// following the code (SSIS-698-C gives "C"), if any.
func Parse(name string) (Parsed, bool) {
	stem := strings.ToUpper(textutil.FoldWidth(media.Stem(name)))

	if loc := fc2Code.FindStringSubmatchIndex(stem); loc != nil {
		code := "FC2-PPV-" + stem[loc[2]:loc[3]]
		return Parsed{Code: code, Suffix: suffixAfter(stem[loc[1]:])}, true
	}
	if loc := genericCode.FindStringSubmatchIndex(stem); loc != nil {
		code := stem[loc[2]:loc[3]] + "-" + stem[loc[4]:loc[5]]
		return Parsed{Code: code, Suffix: suffixAfter(stem[loc[5]:])}, true
	}
	return Parsed{}, false
}

func suffixAfter(rest string) string {
	if m := suffixRe.FindStringSubmatch(rest); m != nil {
		return m[1]
	}
	return ""
}

// Normalize upper-cases a code, folds full-width characters, and inserts the
// hyphen between prefix and number when it is missing.
func Normalize(code string) string {
	code = strings.ToUpper(strings.TrimSpace(textutil.FoldWidth(code)))
	if code == "" {
		return ""
	}
	if p, ok := Parse(code); ok {
		return p.Code
	}
	if m := bareCode.FindStringSubmatch(code); m != nil {
		return m[1] + "-" + m[2]
	}
	return code
}

// Item is one coded video to be named. Code, when set, overrides the code
// parsed from the file name.
type Item struct {
	File string
	Code string
}

// FileNames returns the library base name for each item, in order.
//
// The code is upper-cased and a -C marker is kept. Several files sharing a
// code whose names carry letter suffixes become CODE.part.N.ext, numbered in
// input order, unless one of them carries the -C marker; then every letter is
// kept upper-cased.
func FileNames(items []Item) []string {
	type entry struct {
		code   string
		suffix string
		ext    string
	}
	entries := make([]entry, len(items))
	groups := make(map[string][]int)
	for i, item := range items {
		parsed, ok := Parse(item.File)
		code := Normalize(item.Code)
		if code == "" {
			if ok {
				code = parsed.Code
			} else {
				code = textutil.SanitizeFileName(media.Stem(item.File))
			}
		}
		suffix := ""
		if ok && (item.Code == "" || parsed.Code == code) {
			suffix = parsed.Suffix
		}
		entries[i] = entry{code: code, suffix: suffix, ext: strings.ToLower(path.Ext(media.BaseName(item.File)))}
		groups[code] = append(groups[code], i)
	}

	parts := make(map[int]int)
	for _, members := range groups {
		lettered := make([]int, 0, len(members))
		marked := false
		for _, idx := range members {
			switch entries[idx].suffix {
			case "":
			case ChineseSubtitleMarker:
				marked = true
				lettered = append(lettered, idx)
			default:
				lettered = append(lettered, idx)
			}
		}
		if marked || len(lettered) < 2 {
			continue
		}
		for n, idx := range lettered {
			parts[idx] = n + 1
		}
	}

	out := make([]string, len(entries))
	for i, e := range entries {
		switch {
		case parts[i] > 0:
			out[i] = e.code + ".part." + strconv.Itoa(parts[i]) + e.ext
		case e.suffix != "":
			out[i] = e.code + "-" + e.suffix + e.ext
		default:
			out[i] = e.code + e.ext
		}
	}
	return out
}

// Package sublang guesses the language of subtitle files from their names and
// their first lines of text.
package sublang

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/spf13/afero"
	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/simplifiedchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"mediasort/internal/media"
)

const (
	sampleLines = 30
	sampleBytes = 32 << 10
)

var (
	timingLine = regexp.MustCompile(`^\d{1,2}:\d{2}:\d{2}[,.]\d{1,3}\s*-->`)
	assTag     = regexp.MustCompile(`\{[^}]*\}`)
	nameTokens = regexp.MustCompile(`[\p{L}\p{N}]+`)
)

var nameHints = map[string]media.Language{
	"chs": media.LanguageChinese, "cht": media.LanguageChinese, "sc": media.LanguageChinese,
	"tc": media.LanguageChinese, "zh": media.LanguageChinese, "chi": media.LanguageChinese,
	"zho": media.LanguageChinese, "gb": media.LanguageChinese, "big5": media.LanguageChinese,
	"chinese": media.LanguageChinese, "简体": media.LanguageChinese, "繁体": media.LanguageChinese,
	"繁體": media.LanguageChinese, "中文": media.LanguageChinese, "简中": media.LanguageChinese,
	"繁中": media.LanguageChinese, "简体中文": media.LanguageChinese, "繁體中文": media.LanguageChinese,
	"en": media.LanguageEnglish, "eng": media.LanguageEnglish, "english": media.LanguageEnglish,
	"ja": media.LanguageJapanese, "jp": media.LanguageJapanese, "jpn": media.LanguageJapanese,
	"japanese": media.LanguageJapanese, "日本語": media.LanguageJapanese, "日语": media.LanguageJapanese,
	"ko": media.LanguageKorean, "kor": media.LanguageKorean, "korean": media.LanguageKorean,
	"한국어": media.LanguageKorean,
}

var englishStopwords = map[string]struct{}{
	"the": {}, "and": {}, "you": {}, "to": {}, "is": {}, "it": {}, "of": {},
	"a": {}, "i": {}, "what": {}, "that": {}, "this": {}, "we": {}, "are": {},
}

// Sampler reads subtitles below a root directory. It implements
// planner.Sampler.
type Sampler struct {
	fs   afero.Fs
	root string
}

// NewSampler reads files relative to root through fs.
func NewSampler(fs afero.Fs, root string) *Sampler {
	return &Sampler{fs: fs, root: root}
}

// Sample returns the language of file. A recognizable language tag in the
// file name wins over the text; undecidable files are LanguageOthers.
func (s *Sampler) Sample(ctx context.Context, file string) (media.Language, error) {
	if lang, ok := FromName(file); ok {
		return lang, nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}
	f, err := s.fs.Open(path.Join(s.root, file))
	if err != nil {
		return "", fmt.Errorf("open subtitle: %w", err)
	}
	defer f.Close()

	raw, err := io.ReadAll(io.LimitReader(f, sampleBytes))
	if err != nil {
		return "", fmt.Errorf("read subtitle: %w", err)
	}
	text, err := decode(raw)
	if err != nil {
		return "", fmt.Errorf("decode subtitle: %w", err)
	}
	return FromText(text), nil
}

// FromName looks for a language tag among the dot, dash, or space separated
// tokens of a subtitle's stem.
func FromName(file string) (media.Language, bool) {
	stem := strings.ToLower(media.Stem(file))
	tokens := nameTokens.FindAllString(stem, -1)
	for i := len(tokens) - 1; i >= 0; i-- {
		if lang, ok := nameHints[tokens[i]]; ok {
			return lang, true
		}
	}
	return "", false
}

// decode turns UTF-8, UTF-16 with BOM, or GB18030 bytes into a string.
func decode(raw []byte) (string, error) {
	bomAware := xunicode.BOMOverride(encoding.Nop.NewDecoder())
	out, _, err := transform.Bytes(bomAware, raw)
	if err != nil {
		return "", err
	}
	if utf8.Valid(out) {
		return string(out), nil
	}
	gb, _, err := transform.Bytes(simplifiedchinese.GB18030.NewDecoder(), raw)
	if err != nil {
		return string(bytes.ToValidUTF8(out, nil)), nil
	}
	return string(gb), nil
}

// FromText classifies subtitle text by script: hangul means Korean, kana
// means Japanese, other han means Chinese, and latin text with common English
// words means English.
func FromText(text string) media.Language {
	var han, kana, hangul, latin int
	var words, stop int
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 4096), sampleBytes)
	lines := 0
	for scanner.Scan() && lines < sampleLines {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || isCueNumber(line) || timingLine.MatchString(line) {
			continue
		}
		if strings.HasPrefix(line, "Dialogue:") {
			if idx := nthComma(line, 9); idx >= 0 {
				line = line[idx+1:]
			}
		} else if isHeader(line) {
			continue
		}
		line = assTag.ReplaceAllString(line, "")
		lines++
		for _, r := range line {
			switch {
			case unicode.Is(unicode.Hangul, r):
				hangul++
			case unicode.Is(unicode.Hiragana, r), unicode.Is(unicode.Katakana, r):
				kana++
			case unicode.Is(unicode.Han, r):
				han++
			case r < unicode.MaxASCII && unicode.IsLetter(r):
				latin++
			}
		}
		for _, w := range strings.FieldsFunc(strings.ToLower(line), func(r rune) bool { return !unicode.IsLetter(r) && r != '\'' }) {
			words++
			if _, ok := englishStopwords[w]; ok {
				stop++
			}
		}
	}

	cjk := han + kana + hangul
	switch {
	case hangul > 0 && hangul >= han+kana:
		return media.LanguageKorean
	case kana > 0 && kana*10 >= cjk:
		return media.LanguageJapanese
	case han > 0:
		return media.LanguageChinese
	case latin > 0 && words > 0 && stop*20 >= words:
		return media.LanguageEnglish
	default:
		return media.LanguageOthers
	}
}

var headerPrefixes = []string{"[", "Style:", "Format:", "Title:", "ScriptType:", "PlayRes", "WrapStyle:", "ScaledBorderAndShadow:", "YCbCr Matrix:", "WEBVTT", "NOTE", "Kind:", "Language:"}

func isHeader(line string) bool {
	for _, prefix := range headerPrefixes {
		if strings.HasPrefix(line, prefix) {
			return true
		}
	}
	return false
}

func isCueNumber(line string) bool {
	for _, r := range line {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

func nthComma(line string, n int) int {
	for i, r := range line {
		if r == ',' {
			n--
			if n == 0 {
				return i
			}
		}
	}
	return -1
}

package language

import (
	"strings"

	"golang.org/x/text/language"

	"mediasort/internal/media"
)

type entry struct {
	code2   string   // ISO 639-1 (2-letter)
	code3   string   // ISO 639-2 tag used in subtitle file names
	alt3    string   // ISO 639-2 alternate (e.g. "zho" vs "chi")
	display string   // English name
	native  string   // Name written in the language itself
	words   []string // Full word forms (e.g. "english")
	bucket  media.Language
}

var languages = []entry{
	{"zh", "chi", "zho", "Chinese", "简体中文", []string{"chinese", "中文", "简体中文", "繁體中文"}, media.LanguageChinese},
	{"en", "eng", "", "English", "English", []string{"english"}, media.LanguageEnglish},
	{"ja", "jpn", "", "Japanese", "日本語", []string{"japanese", "日本語"}, media.LanguageJapanese},
	{"ko", "kor", "", "Korean", "한국어", []string{"korean", "한국어"}, media.LanguageKorean},
	{"es", "spa", "", "Spanish", "Español", []string{"spanish"}, media.LanguageOthers},
	{"fr", "fra", "fre", "French", "Français", []string{"french"}, media.LanguageOthers},
	{"de", "deu", "ger", "German", "Deutsch", []string{"german"}, media.LanguageOthers},
	{"ru", "rus", "", "Russian", "Русский", []string{"russian"}, media.LanguageOthers},
}

// Index maps built at init time.
var (
	byCode2  map[string]*entry
	byCode3  map[string]*entry
	byWord   map[string]*entry
	byBucket map[media.Language]*entry
)

func init() {
	byCode2 = make(map[string]*entry, len(languages))
	byCode3 = make(map[string]*entry, len(languages)*2)
	byWord = make(map[string]*entry, len(languages))
	byBucket = make(map[media.Language]*entry, 4)
	for i := range languages {
		e := &languages[i]
		byCode2[e.code2] = e
		byCode3[e.code3] = e
		if e.alt3 != "" {
			byCode3[e.alt3] = e
		}
		for _, w := range e.words {
			byWord[w] = e
		}
		if e.bucket != media.LanguageOthers {
			byBucket[e.bucket] = e
		}
	}
}

func lookup(code string) *entry {
	code = strings.ToLower(strings.TrimSpace(code))
	if code == "" {
		return nil
	}
	if e, ok := byCode2[code]; ok {
		return e
	}
	if e, ok := byCode3[code]; ok {
		return e
	}
	if e, ok := byWord[code]; ok {
		return e
	}
	// BCP 47 tags such as zh-Hans or ja-JP reduce to their base language.
	if tag, err := language.Parse(code); err == nil {
		base, _ := tag.Base()
		if e, ok := byCode2[base.String()]; ok {
			return e
		}
	}
	return nil
}

// ToISO2 converts any recognized language code, word, or BCP 47 tag to
// ISO 639-1. Returns empty string for unrecognized input.
func ToISO2(code string) string {
	if e := lookup(code); e != nil {
		return e.code2
	}
	return ""
}

// ToISO3 converts a recognized code to the ISO 639-2 form used in subtitle
// names. Unrecognized input that still parses as a language tag falls back to
// its ISO 639-3 base; everything else is "und".
func ToISO3(code string) string {
	if e := lookup(code); e != nil {
		return e.code3
	}
	if tag, err := language.Parse(strings.TrimSpace(code)); err == nil {
		if base, conf := tag.Base(); conf != language.No {
			if iso3 := base.ISO3(); iso3 != "" {
				return iso3
			}
		}
	}
	return "und"
}

// DisplayName returns the English name for a recognized code.
// Returns "Unknown" for empty input, or the uppercased code otherwise.
func DisplayName(code string) string {
	if strings.TrimSpace(code) == "" {
		return "Unknown"
	}
	if e := lookup(code); e != nil {
		return e.display
	}
	return strings.ToUpper(strings.TrimSpace(code))
}

// Bucket maps a code, word, or tag to the library language bucket.
func Bucket(code string) media.Language {
	if e := lookup(code); e != nil {
		return e.bucket
	}
	return media.ParseLanguage(code)
}

// SubtitleSuffix returns the ".<native>.<iso3>" infix placed between a video
// stem and a subtitle extension, e.g. ".简体中文.chi". Buckets without a
// subtitle convention return "".
func SubtitleSuffix(lang media.Language) string {
	e, ok := byBucket[lang]
	if !ok {
		return ""
	}
	return "." + e.native + "." + e.code3
}

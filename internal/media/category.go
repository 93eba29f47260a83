package media

import (
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

// Category is the single content category assigned to a request.
type Category string

const (
	CategoryUnknown      Category = "unknown"
	CategoryMovie        Category = "movie"
	CategoryTVSeries     Category = "tv_series"
	CategoryAnimMovie    Category = "anim_movie"
	CategoryAnimTVSeries Category = "anim_tv_series"
	CategoryPhotobook    Category = "photobook"
	CategoryPorn         Category = "porn"
	CategoryBangoPorn    Category = "bango_porn"
	CategoryAudioBook    Category = "audio_book"
	CategoryBook         Category = "book"
	CategoryMusic        Category = "music"
	CategoryMusicVideo   Category = "music_video"
)

// Categories lists every category in declaration order. Dispatch within a
// phase walks candidates in this order.
var Categories = []Category{
	CategoryUnknown,
	CategoryMovie,
	CategoryTVSeries,
	CategoryAnimMovie,
	CategoryAnimTVSeries,
	CategoryPhotobook,
	CategoryPorn,
	CategoryBangoPorn,
	CategoryAudioBook,
	CategoryBook,
	CategoryMusic,
	CategoryMusicVideo,
}

// ParseCategory converts a serialized category name. Matching ignores case and
// surrounding whitespace.
func ParseCategory(value string) (Category, error) {
	normalized := Category(strings.ToLower(strings.TrimSpace(value)))
	if slices.Contains(Categories, normalized) {
		return normalized, nil
	}
	return "", fmt.Errorf("unknown category %q", value)
}

// Valid reports whether c is one of the enumerated categories.
func (c Category) Valid() bool {
	return slices.Contains(Categories, c)
}

func (c Category) String() string { return string(c) }

// IsAnimated reports whether the category is one of the derived animation categories.
func (c Category) IsAnimated() bool {
	return c == CategoryAnimMovie || c == CategoryAnimTVSeries
}

// Base strips the animation refinement: anim_movie becomes movie and
// anim_tv_series becomes tv_series.
func (c Category) Base() Category {
	switch c {
	case CategoryAnimMovie:
		return CategoryMovie
	case CategoryAnimTVSeries:
		return CategoryTVSeries
	default:
		return c
	}
}

// Animated returns the animation refinement of movie or tv_series, or c unchanged.
func (c Category) Animated() Category {
	switch c {
	case CategoryMovie:
		return CategoryAnimMovie
	case CategoryTVSeries:
		return CategoryAnimTVSeries
	default:
		return c
	}
}

// PerFile reports whether the category is evaluated file by file instead of
// with a single group-level classification.
func (c Category) PerFile() bool {
	return c == CategoryPorn || c == CategoryBangoPorn
}

// UnmarshalJSON rejects names outside the enumeration.
func (c *Category) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseCategory(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// CategorySet is an unordered set of categories.
type CategorySet map[Category]struct{}

// NewCategorySet builds a set from the supplied categories.
func NewCategorySet(categories ...Category) CategorySet {
	set := make(CategorySet, len(categories))
	for _, c := range categories {
		set[c] = struct{}{}
	}
	return set
}

func (s CategorySet) Add(categories ...Category) {
	for _, c := range categories {
		s[c] = struct{}{}
	}
}

func (s CategorySet) Has(c Category) bool {
	_, ok := s[c]
	return ok
}

// Without returns the members of s that are absent from other.
func (s CategorySet) Without(other CategorySet) CategorySet {
	out := make(CategorySet, len(s))
	for c := range s {
		if !other.Has(c) {
			out[c] = struct{}{}
		}
	}
	return out
}

// Sorted returns the members in declaration order so callers iterate deterministically.
func (s CategorySet) Sorted() []Category {
	out := make([]Category, 0, len(s))
	for _, c := range Categories {
		if s.Has(c) {
			out = append(out, c)
		}
	}
	return out
}

// MarshalJSON renders the set as a sorted array.
func (s CategorySet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// Verdict is the answer of a classification oracle. The zero value means no
// verdict was obtained because the call failed.
type Verdict string

const (
	VerdictNone  Verdict = ""
	VerdictYes   Verdict = "yes"
	VerdictNo    Verdict = "no"
	VerdictMaybe Verdict = "maybe"
)

// ParseVerdict is lenient about case and accepts booleans rendered as strings.
func ParseVerdict(value string) Verdict {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "yes", "true", "y":
		return VerdictYes
	case "no", "false", "n":
		return VerdictNo
	case "maybe", "unsure", "possibly":
		return VerdictMaybe
	default:
		return VerdictNone
	}
}

func (v Verdict) Yes() bool { return v == VerdictYes }

// UnmarshalJSON accepts strings, booleans and null.
func (v *Verdict) UnmarshalJSON(data []byte) error {
	trimmed := strings.TrimSpace(string(data))
	switch trimmed {
	case "null":
		*v = VerdictNone
		return nil
	case "true":
		*v = VerdictYes
		return nil
	case "false":
		*v = VerdictNo
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("verdict: %w", err)
	}
	*v = ParseVerdict(raw)
	return nil
}

// Language is the coarse language bucket used for library sub-directories.
type Language string

const (
	LanguageChinese  Language = "Chinese"
	LanguageEnglish  Language = "English"
	LanguageJapanese Language = "Japanese"
	LanguageKorean   Language = "Korean"
	LanguageOthers   Language = "Others"
)

// ParseLanguage maps names and common ISO codes to a bucket. Anything
// unrecognized, including the empty string, becomes LanguageOthers.
func ParseLanguage(value string) Language {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "chinese", "zh", "zho", "chi", "cn", "中文":
		return LanguageChinese
	case "english", "en", "eng":
		return LanguageEnglish
	case "japanese", "ja", "jpn", "jp", "日本語":
		return LanguageJapanese
	case "korean", "ko", "kor", "kr", "한국어":
		return LanguageKorean
	default:
		return LanguageOthers
	}
}

// UnmarshalJSON folds unexpected spellings into the closed set.
func (l *Language) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		if strings.TrimSpace(string(data)) == "null" {
			*l = ""
			return nil
		}
		return fmt.Errorf("language: %w", err)
	}
	if strings.TrimSpace(raw) == "" {
		*l = ""
		return nil
	}
	*l = ParseLanguage(raw)
	return nil
}

// Package candidates derives the plausible categories of a request from file
// extensions and name patterns alone. It never performs I/O.
package candidates

import (
	"regexp"
	"strings"

	"mediasort/internal/media"
	"mediasort/internal/textutil"
)

var (
	episodePattern    = regexp.MustCompile(`(?i)s\d{1,2}e\d{1,4}`)
	identifierPattern = regexp.MustCompile(`(?i)[a-z]{3,5}-\d{2,7}`)
	fc2Pattern        = regexp.MustCompile(`(?i)fc2(-?ppv)?-\d+`)
)

var classCategories = map[media.FileClass][]media.Category{
	media.ClassVideo: {
		media.CategoryMovie,
		media.CategoryTVSeries,
		media.CategoryPorn,
		media.CategoryBangoPorn,
		media.CategoryMusicVideo,
	},
	media.ClassAudio:    {media.CategoryMusic, media.CategoryAudioBook},
	media.ClassDocument: {media.CategoryBook},
	media.ClassImage:    {media.CategoryPhotobook},
}

// Set holds the filter output. HighlyPossible is not required to be a subset
// of Possible; the dispatcher treats the two independently.
type Set struct {
	HighlyPossible media.CategorySet `json:"highly_possible"`
	Possible       media.CategorySet `json:"possible"`
}

// FromFiles computes the union of candidates across files. The result does not
// depend on file order and empty input yields empty sets.
func FromFiles(files []string) Set {
	set := Set{
		HighlyPossible: media.NewCategorySet(),
		Possible:       media.NewCategorySet(),
	}
	for _, file := range files {
		class := media.ClassOf(file)
		set.Possible.Add(classCategories[class]...)
		if class != media.ClassVideo {
			continue
		}
		name := strings.ToLower(textutil.FoldWidth(media.BaseName(file)))
		if episodePattern.MatchString(name) {
			set.HighlyPossible.Add(media.CategoryTVSeries)
		}
		if LooksLikeIdentifier(name) {
			set.HighlyPossible.Add(media.CategoryBangoPorn)
		}
	}
	return set
}

// LooksLikeIdentifier reports whether a file name carries an identifier code
// such as SSIS-698 or FC2-PPV-1234567.
func LooksLikeIdentifier(name string) bool {
	return identifierPattern.MatchString(name) || fc2Pattern.MatchString(name)
}

// HasEpisodeMarker reports whether a file name carries an SxxEyy marker.
func HasEpisodeMarker(name string) bool {
	return episodePattern.MatchString(name)
}

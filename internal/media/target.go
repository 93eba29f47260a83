package media

// TargetDir is a top-level library directory.
type TargetDir string

const (
	TargetAudioBook    TargetDir = "audio_book"
	TargetBook         TargetDir = "book"
	TargetMusic        TargetDir = "music"
	TargetMusicVideo   TargetDir = "music_video"
	TargetPhotobook    TargetDir = "photobook"
	TargetMovie        TargetDir = "movie"
	TargetAnimMovie    TargetDir = "anim_movie"
	TargetTVSeries     TargetDir = "tv_series"
	TargetAnimTVSeries TargetDir = "anim_tv_series"
	TargetPorn         TargetDir = "porn"
	TargetPornVR       TargetDir = "porn_vr"
	TargetJAV          TargetDir = "jav"
	TargetJAVVR        TargetDir = "jav_vr"
	TargetMadou        TargetDir = "madou"
)

// UncreditedPerformerDir is the bucket for identifier-coded content with no
// credited performer.
const UncreditedPerformerDir = "素人"

// TargetFor returns the default library root for a category. Adult categories
// return their non-VR root; the planner picks variants per file.
func TargetFor(c Category) (TargetDir, bool) {
	switch c {
	case CategoryAudioBook:
		return TargetAudioBook, true
	case CategoryBook:
		return TargetBook, true
	case CategoryMusic:
		return TargetMusic, true
	case CategoryMusicVideo:
		return TargetMusicVideo, true
	case CategoryPhotobook:
		return TargetPhotobook, true
	case CategoryMovie:
		return TargetMovie, true
	case CategoryAnimMovie:
		return TargetAnimMovie, true
	case CategoryTVSeries:
		return TargetTVSeries, true
	case CategoryAnimTVSeries:
		return TargetAnimTVSeries, true
	case CategoryPorn:
		return TargetPorn, true
	case CategoryBangoPorn:
		return TargetJAV, true
	default:
		return "", false
	}
}

package media

import (
	"path"
	"strings"
)

// FileClass groups extensions that share candidate categories.
type FileClass string

const (
	ClassNone     FileClass = ""
	ClassVideo    FileClass = "video"
	ClassDocument FileClass = "document"
	ClassAudio    FileClass = "audio"
	ClassImage    FileClass = "image"
	ClassSubtitle FileClass = "subtitle"
)

var extensionClasses = map[string]FileClass{
	".mp4":  ClassVideo,
	".mkv":  ClassVideo,
	".avi":  ClassVideo,
	".mov":  ClassVideo,
	".wmv":  ClassVideo,
	".ts":   ClassVideo,
	".pdf":  ClassDocument,
	".epub": ClassDocument,
	".mobi": ClassDocument,
	".txt":  ClassDocument,
	".mp3":  ClassAudio,
	".wav":  ClassAudio,
	".flac": ClassAudio,
	".ogg":  ClassAudio,
	".m4a":  ClassAudio,
	".jpg":  ClassImage,
	".jpeg": ClassImage,
	".png":  ClassImage,
	".srt":  ClassSubtitle,
	".sub":  ClassSubtitle,
	".ass":  ClassSubtitle,
	".ssa":  ClassSubtitle,
	".vtt":  ClassSubtitle,
}

// ClassOf returns the class of a file based on its extension, ignoring case.
// Paths are treated as slash-separated request paths.
func ClassOf(file string) FileClass {
	return extensionClasses[strings.ToLower(path.Ext(file))]
}

func IsVideo(file string) bool { return ClassOf(file) == ClassVideo }

// BaseName returns the final element of a request path.
func BaseName(file string) string {
	return path.Base(strings.ReplaceAll(file, "\\", "/"))
}

// Stem returns the base name without its extension.
func Stem(file string) string {
	base := BaseName(file)
	return strings.TrimSuffix(base, path.Ext(base))
}

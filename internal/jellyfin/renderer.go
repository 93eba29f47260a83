// Package jellyfin names movie and series files the way Jellyfin expects:
// "<Title (Year)>/<Title (Year)>.ext" for films and
// "<Title (Year)>/Season XX/<Title (Year)> SXXEYY.ext" for episodes, below a
// per-language directory.
package jellyfin

import (
	"context"
	"fmt"
	"log/slog"
	"path"
	"regexp"
	"strconv"
	"strings"

	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/planner"
	"mediasort/internal/textutil"
)

var (
	extraPattern  = regexp.MustCompile(`(?i)(^|[^a-z])(sample|trailer|teaser|featurette|behind[ ._-]?the[ ._-]?scenes|deleted[ ._-]?scenes?|interview|making[ ._-]?of|extras?|bonus|ncop|nced)([^a-z]|$)`)
	seasonEpisode = regexp.MustCompile(`(?i)s(\d{1,2})[ ._-]?e(\d{1,4})`)
	crossEpisode  = regexp.MustCompile(`(?i)(?:^|[^0-9a-z])(\d{1,2})x(\d{1,3})(?:[^0-9]|$)`)
	cjkEpisode    = regexp.MustCompile(`第\s*(\d{1,4})\s*[集话話]`)
	bareEpisode   = regexp.MustCompile(`(?i)(?:^|[^a-z])ep?[ ._-]?(\d{1,4})(?:[^0-9]|$)`)
	seasonDir     = regexp.MustCompile(`(?i)(?:season|series|s)[ ._-]?(\d{1,2})\b|第\s*(\d{1,2})\s*季`)
)

// Renderer is the default planner.Renderer. It is deterministic and never
// calls an oracle.
type Renderer struct {
	logger *slog.Logger
}

// NewRenderer builds a renderer.
func NewRenderer(logger *slog.Logger) *Renderer {
	return &Renderer{logger: logging.NewComponentLogger(logger, "jellyfin")}
}

// Render implements planner.Renderer.
func (r *Renderer) Render(ctx context.Context, req planner.RenderRequest) ([]media.PlanAction, oracle.Usage, error) {
	root := string(req.Root)
	if root == "" {
		target, ok := media.TargetFor(req.Category)
		if !ok {
			return nil, oracle.Usage{}, fmt.Errorf("no library root for category %q", req.Category)
		}
		root = string(target)
	}
	lang := req.Language
	if lang == "" {
		lang = media.LanguageOthers
	}
	folder := FolderName(req.LocalizedTitle, req.Title, req.Year)
	if folder == "" && len(req.Videos) > 0 {
		folder = textutil.SanitizeFileName(media.Stem(req.Videos[0]))
	}
	if folder == "" {
		return nil, oracle.Usage{}, fmt.Errorf("no title to name %d files", len(req.Videos))
	}
	base := path.Join(root, string(lang), folder)

	var actions []media.PlanAction
	switch req.Category.Base() {
	case media.CategoryTVSeries:
		actions = r.renderSeries(ctx, base, folder, req.Videos)
	default:
		actions = r.renderMovie(base, folder, req.Videos)
	}
	return actions, oracle.Usage{}, nil
}

// FolderName builds "Title (Year)", preferring the localized title.
func FolderName(localized, title string, year int) string {
	name := textutil.SanitizeFileName(textutil.CollapseSpaces(localized))
	if name == "" {
		name = textutil.SanitizeFileName(textutil.CollapseSpaces(title))
	}
	if name == "" {
		return ""
	}
	if year > 0 {
		name += " (" + strconv.Itoa(year) + ")"
	}
	return name
}

func (r *Renderer) renderMovie(base, folder string, videos []string) []media.PlanAction {
	var main []string
	actions := make([]media.PlanAction, 0, len(videos))
	for _, video := range videos {
		if IsExtra(video) {
			actions = append(actions, media.Skip(video))
			continue
		}
		main = append(main, video)
	}
	for i, video := range main {
		name := folder
		if len(main) > 1 {
			name += " - part" + strconv.Itoa(i+1)
		}
		actions = append(actions, media.Move(video, path.Join(base, name+strings.ToLower(path.Ext(video)))))
	}
	return actions
}

func (r *Renderer) renderSeries(ctx context.Context, base, folder string, videos []string) []media.PlanAction {
	logger := logging.WithContext(ctx, r.logger)
	actions := make([]media.PlanAction, 0, len(videos))
	used := make(map[string]struct{}, len(videos))
	for _, video := range videos {
		season, episode, ok := Episode(video)
		if !ok || IsExtra(video) {
			logger.Debug("no episode number; skipping", logging.String("file", video))
			actions = append(actions, media.Skip(video))
			continue
		}
		name := fmt.Sprintf("%s S%02dE%02d", folder, season, episode)
		target := path.Join(base, fmt.Sprintf("Season %02d", season), name+strings.ToLower(path.Ext(video)))
		if _, dup := used[target]; dup {
			logger.Debug("duplicate episode; skipping", logging.String("file", video), logging.String("target", target))
			actions = append(actions, media.Skip(video))
			continue
		}
		used[target] = struct{}{}
		actions = append(actions, media.Move(video, target))
	}
	return actions
}

// IsExtra reports whether a video looks like a sample, trailer, or bonus clip.
func IsExtra(file string) bool {
	if extraPattern.MatchString(media.Stem(file)) {
		return true
	}
	dir := path.Base(path.Dir(strings.ReplaceAll(file, `\`, "/")))
	return extraPattern.MatchString(dir) && dir != "."
}

// Episode extracts season and episode numbers from a file path. A bare
// episode number takes its season from the parent directory, or 1.
func Episode(file string) (season, episode int, ok bool) {
	name := textutil.FoldWidth(media.Stem(file))
	if m := seasonEpisode.FindStringSubmatch(name); m != nil {
		return atoi(m[1]), atoi(m[2]), true
	}
	if m := crossEpisode.FindStringSubmatch(name); m != nil {
		return atoi(m[1]), atoi(m[2]), true
	}
	var bare []string
	if bare = cjkEpisode.FindStringSubmatch(name); bare == nil {
		bare = bareEpisode.FindStringSubmatch(name)
	}
	if bare == nil {
		return 0, 0, false
	}
	season = 1
	dir := textutil.FoldWidth(path.Base(path.Dir(strings.ReplaceAll(file, `\`, "/"))))
	if m := seasonDir.FindStringSubmatch(dir); m != nil {
		if m[1] != "" {
			season = atoi(m[1])
		} else {
			season = atoi(m[2])
		}
	}
	return season, atoi(bare[1]), true
}

func atoi(s string) int {
	n, _ := strconv.Atoi(s)
	return n
}

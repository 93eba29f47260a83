package planner

import (
	"context"
	"path"
	"regexp"
	"slices"
	"strings"

	"mediasort/internal/bango"
	"mediasort/internal/language"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/textutil"
)

var episodeKey = regexp.MustCompile(`(?i)s(\d{1,2})e(\d{1,4})`)

// planSubtitles adds a move for every subtitle that can be paired with a
// moved video. A subtitle pairs with the video whose stem prefixes its own,
// then one with the same episode marker, then one with the same identifier
// code and part letter, and finally with the only moved video. Unpaired
// subtitles stay out of actions and end up skipped.
func (p *Planner) planSubtitles(ctx context.Context, subtitles []string, actions map[string]media.PlanAction) {
	if len(subtitles) == 0 {
		return
	}
	var moved []media.PlanAction
	for _, action := range actions {
		if action.Action == media.ActionMove && media.IsVideo(action.File) {
			moved = append(moved, action)
		}
	}
	if len(moved) == 0 {
		return
	}
	slices.SortFunc(moved, func(a, b media.PlanAction) int { return strings.Compare(a.File, b.File) })
	logger := logging.WithContext(ctx, p.logger)
	used := make(map[string]struct{}, len(actions))
	for _, action := range actions {
		used[action.Target] = struct{}{}
	}

	for _, sub := range subtitles {
		video, ok := matchVideo(sub, moved)
		if !ok {
			logger.Debug("subtitle has no matching video", logging.String("file", sub))
			continue
		}
		suffix := ""
		if p.sampler != nil {
			lang, err := p.sampler.Sample(ctx, sub)
			if err != nil {
				logger.Debug("subtitle language sampling failed", logging.String("file", sub), logging.Error(err))
			} else {
				suffix = language.SubtitleSuffix(lang)
			}
		}
		target := path.Join(path.Dir(video.Target), media.Stem(video.Target)+suffix+strings.ToLower(path.Ext(sub)))
		if _, taken := used[target]; taken {
			logger.Debug("subtitle target already planned", logging.String("file", sub), logging.String("target", target))
			continue
		}
		used[target] = struct{}{}
		actions[sub] = media.Move(sub, target)
	}
}

func matchVideo(sub string, moved []media.PlanAction) (media.PlanAction, bool) {
	subStem := normalizedStem(sub)

	best, bestLen := -1, 0
	for i, v := range moved {
		stem := normalizedStem(v.File)
		if stem != "" && strings.HasPrefix(subStem, stem) && len(stem) > bestLen {
			best, bestLen = i, len(stem)
		}
	}
	if best >= 0 {
		return moved[best], true
	}

	if key := episodeOf(subStem); key != "" {
		if v, ok := uniqueMatch(moved, func(v media.PlanAction) bool { return episodeOf(normalizedStem(v.File)) == key }); ok {
			return v, true
		}
	}

	if code, ok := bango.Parse(sub); ok {
		if v, ok := uniqueMatch(moved, func(v media.PlanAction) bool {
			other, ok := bango.Parse(v.File)
			return ok && other.Code == code.Code && other.Suffix == code.Suffix
		}); ok {
			return v, true
		}
	}

	if len(moved) == 1 {
		return moved[0], true
	}
	return media.PlanAction{}, false
}

func uniqueMatch(moved []media.PlanAction, pred func(media.PlanAction) bool) (media.PlanAction, bool) {
	var (
		found media.PlanAction
		n     int
	)
	for _, v := range moved {
		if pred(v) {
			found = v
			n++
		}
	}
	return found, n == 1
}

func normalizedStem(file string) string {
	return strings.ToLower(textutil.FoldWidth(media.Stem(file)))
}

func episodeOf(stem string) string {
	m := episodeKey.FindStringSubmatch(stem)
	if m == nil {
		return ""
	}
	return "s" + strings.TrimLeft(m[1], "0") + "e" + strings.TrimLeft(m[2], "0")
}

package planner

import (
	"context"
	"fmt"

	"mediasort/internal/categorizer"
	"mediasort/internal/media"
	"mediasort/internal/services"
)

func (p *Planner) planVideo(ctx context.Context, category media.Category, cctx *categorizer.Context) (Result, error) {
	if p.renderer == nil {
		return Result{Actions: skipAll(cctx.Request.Files)}, services.Wrap(services.ErrConfiguration, "planner", "render", "no renderer configured", nil)
	}
	videos, subtitles, _ := split(cctx.Request.Files)
	root, _ := media.TargetFor(category)
	attrs, _ := resultFor(cctx, category)

	req := RenderRequest{
		Category:       category,
		Root:           root,
		Videos:         videos,
		Title:          attrs.Title,
		LocalizedTitle: attrs.LocalizedTitle,
		Year:           int(attrs.Year),
		Language:       attrs.Language,
		Animated:       category.IsAnimated(),
	}
	if req.Language == "" {
		req.Language = media.LanguageOthers
	}

	var res Result
	actions := make(map[string]media.PlanAction)
	if len(videos) > 0 {
		rendered, usage, err := p.renderer.Render(ctx, req)
		res.Usage = res.Usage.Add(usage)
		if err != nil {
			res.Actions = skipAll(cctx.Request.Files)
			return res, fmt.Errorf("render %s: %w", category, err)
		}
		for _, action := range rendered {
			if err := action.Validate(); err != nil {
				return Result{Actions: skipAll(cctx.Request.Files), Usage: res.Usage}, services.Wrap(services.ErrValidation, "planner", "render", "", err)
			}
			actions[action.File] = action
		}
	}

	p.planSubtitles(ctx, subtitles, actions)
	res.Actions = ordered(cctx.Request.Files, actions)
	return res, nil
}

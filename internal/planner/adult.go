package planner

import (
	"context"
	"errors"
	"path"
	"strings"

	"mediasort/internal/bango"
	"mediasort/internal/categorizer"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/textutil"
)

// adultFiles returns the checked videos to place. Only files answered yes
// move when any file did; when the category came from the decision oracle
// every checked file moves.
func adultFiles(cctx *categorizer.Context, category media.Category, videos []string) ([]string, map[string]oracle.Result) {
	group := cctx.Groups[category]
	if group == nil {
		return videos, map[string]oracle.Result{}
	}
	if yes := group.Yes(videos); len(yes) > 0 {
		return yes, group.Files
	}
	out := make([]string, 0, len(videos))
	for _, file := range videos {
		if _, ok := group.Files[file]; ok {
			out = append(out, file)
		}
	}
	return out, group.Files
}

func bangoRoot(r oracle.Result) media.TargetDir {
	switch {
	case r.AltStudio.Yes():
		return media.TargetMadou
	case r.VR.Yes():
		return media.TargetJAVVR
	default:
		return media.TargetJAV
	}
}

func (p *Planner) planBango(ctx context.Context, cctx *categorizer.Context) (Result, error) {
	videos, subtitles, _ := split(cctx.Request.Files)
	files, results := adultFiles(cctx, media.CategoryBangoPorn, videos)

	items := make([]bango.Item, len(files))
	for i, file := range files {
		items[i] = bango.Item{File: file, Code: results[file].Code}
	}
	names := bango.FileNames(items)

	var (
		res     Result
		errs    []error
		actions = make(map[string]media.PlanAction, len(files))
		dirs    = make(map[string]string)
		failed  = make(map[string]error)
	)
	for i, file := range files {
		r := results[file]
		key := strings.Join(r.Performers, "\x00")
		dir, known := dirs[key]
		if _, broken := failed[key]; broken {
			continue
		}
		if !known {
			var err error
			dir, err = p.performerDir(ctx, r.Performers, &res.Usage)
			if err != nil {
				failed[key] = err
				errs = append(errs, err)
				continue
			}
			dirs[key] = dir
		}
		actions[file] = media.Move(file, path.Join(string(bangoRoot(r)), dir, names[i]))
	}

	p.planSubtitles(ctx, subtitles, actions)
	res.Actions = ordered(cctx.Request.Files, actions)
	return res, errors.Join(errs...)
}

func (p *Planner) performerDir(ctx context.Context, performers []string, usage *oracle.Usage) (string, error) {
	if len(textutil.Dedupe(performers)) == 0 || p.performers == nil {
		return media.UncreditedPerformerDir, nil
	}
	dir, u, err := p.performers.Resolve(ctx, performers)
	*usage = usage.Add(u)
	if err != nil {
		return "", err
	}
	if dir = textutil.SanitizeFileName(dir); dir == "" {
		return media.UncreditedPerformerDir, nil
	}
	return dir, nil
}

func (p *Planner) planPorn(ctx context.Context, cctx *categorizer.Context) (Result, error) {
	videos, subtitles, _ := split(cctx.Request.Files)
	files, results := adultFiles(cctx, media.CategoryPorn, videos)

	actions := make(map[string]media.PlanAction, len(files))
	used := make(map[string]struct{})
	for _, file := range files {
		r := results[file]
		root := media.TargetPorn
		if r.VR.Yes() {
			root = media.TargetPornVR
		}
		name := pornName(r, file)
		target := path.Join(string(root), name, name+strings.ToLower(path.Ext(file)))
		if _, dup := used[target]; dup {
			logging.WithContext(ctx, p.logger).Debug("duplicate porn target; skipping", logging.String("file", file), logging.String("target", target))
			continue
		}
		used[target] = struct{}{}
		actions[file] = media.Move(file, target)
	}

	p.planSubtitles(ctx, subtitles, actions)
	return Result{Actions: ordered(cctx.Request.Files, actions)}, nil
}

func pornName(r oracle.Result, file string) string {
	for _, candidate := range []string{r.ExternalID, r.Name, media.Stem(file)} {
		if name := textutil.SanitizeFileName(candidate); name != "" {
			return name
		}
	}
	return "untitled"
}

package planner

import (
	"context"
	"errors"
	"log/slog"

	"mediasort/internal/categorizer"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/services"
)

// RenderRequest carries what a renderer needs to name movie and series files.
type RenderRequest struct {
	Category       media.Category
	Root           media.TargetDir
	Videos         []string
	Title          string
	LocalizedTitle string
	Year           int
	Language       media.Language
	Animated       bool
}

// Renderer names the video files of a movie or series.
type Renderer interface {
	Render(ctx context.Context, req RenderRequest) ([]media.PlanAction, oracle.Usage, error)
}

// Sampler detects the language of a subtitle file.
type Sampler interface {
	Sample(ctx context.Context, file string) (media.Language, error)
}

// PerformerResolver maps credited names to a performer directory.
type PerformerResolver interface {
	Resolve(ctx context.Context, names []string) (string, oracle.Usage, error)
}

// Result is a plan plus the oracle cost spent while planning.
type Result struct {
	Actions []media.PlanAction `json:"plan"`
	Usage   oracle.Usage       `json:"usage"`
}

// Planner builds move plans.
type Planner struct {
	renderer   Renderer
	sampler    Sampler
	performers PerformerResolver
	logger     *slog.Logger
}

// New builds a planner. sampler and performers may be nil; subtitles then
// get no language suffix and coded videos land in the uncredited bucket.
func New(renderer Renderer, sampler Sampler, performers PerformerResolver, logger *slog.Logger) *Planner {
	return &Planner{
		renderer:   renderer,
		sampler:    sampler,
		performers: performers,
		logger:     logging.NewComponentLogger(logger, "planner"),
	}
}

// Plan builds the move plan for a dispatch outcome. When performer
// resolution fails the affected files are skipped and the partial plan is
// returned together with the error.
func (p *Planner) Plan(ctx context.Context, outcome categorizer.Outcome) (Result, error) {
	cctx := outcome.Context
	if cctx == nil {
		return Result{}, services.Wrap(services.ErrValidation, "planner", "plan", "outcome has no categorization context", nil)
	}
	req := cctx.Request
	if len(req.Files) == 0 {
		return Result{}, services.Wrap(services.ErrMalformedRequest, "planner", "plan", "request has no files", nil)
	}
	ctx = services.WithStage(ctx, "placement")
	logger := logging.WithContext(ctx, p.logger)

	var (
		res Result
		err error
	)
	switch category := outcome.Category; category {
	case media.CategoryPhotobook, media.CategoryAudioBook, media.CategoryBook, media.CategoryMusic, media.CategoryMusicVideo:
		res.Actions = simplePlan(category, req.Files)
	case media.CategoryMovie, media.CategoryTVSeries, media.CategoryAnimMovie, media.CategoryAnimTVSeries:
		res, err = p.planVideo(ctx, category, cctx)
	case media.CategoryBangoPorn:
		res, err = p.planBango(ctx, cctx)
	case media.CategoryPorn:
		res, err = p.planPorn(ctx, cctx)
	default:
		res.Actions = skipAll(req.Files)
	}

	moves := 0
	for _, action := range res.Actions {
		if action.Action == media.ActionMove {
			moves++
		}
	}
	attrs := []logging.Attr{
		logging.String(logging.FieldCategory, outcome.Category.String()),
		logging.Int("actions", len(res.Actions)),
		logging.Int("moves", moves),
	}
	if err != nil {
		logging.WarnWithContext(logger, "placement plan is partial", "plan_partial", append(attrs,
			logging.Error(err),
			logging.String(logging.FieldImpact, "affected files are skipped"),
			logging.String(logging.FieldErrorHint, hintFor(err)),
		)...)
		return res, err
	}
	logger.Info("placement planned", logging.Args(attrs...)...)
	return res, nil
}

func hintFor(err error) string {
	if errors.Is(err, services.ErrAliasStoreLockTimeout) {
		return "another mediasort process holds the performer store lock; rerun the plan"
	}
	return "check logs for details"
}

func skipAll(files []string) []media.PlanAction {
	out := make([]media.PlanAction, 0, len(files))
	for _, file := range distinct(files) {
		out = append(out, media.Skip(file))
	}
	return out
}

func distinct(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, file := range files {
		if _, ok := seen[file]; ok {
			continue
		}
		seen[file] = struct{}{}
		out = append(out, file)
	}
	return out
}

// split partitions files into videos, subtitles, and everything else,
// dropping duplicates and keeping request order.
func split(files []string) (videos, subtitles, others []string) {
	for _, file := range distinct(files) {
		switch media.ClassOf(file) {
		case media.ClassVideo:
			videos = append(videos, file)
		case media.ClassSubtitle:
			subtitles = append(subtitles, file)
		default:
			others = append(others, file)
		}
	}
	return videos, subtitles, others
}

// ordered emits one action per distinct request file, in request order.
// Files without an action are skipped.
func ordered(files []string, actions map[string]media.PlanAction) []media.PlanAction {
	out := make([]media.PlanAction, 0, len(actions))
	for _, file := range distinct(files) {
		if action, ok := actions[file]; ok {
			out = append(out, action)
			continue
		}
		out = append(out, media.Skip(file))
	}
	return out
}

func resultFor(cctx *categorizer.Context, category media.Category) (oracle.Result, bool) {
	if r, ok := cctx.Results[category]; ok && !r.Failed() {
		return r, true
	}
	if base := category.Base(); base != category {
		if r, ok := cctx.Results[base]; ok && !r.Failed() {
			return r, true
		}
	}
	return oracle.Result{}, false
}

package categorizer

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"mediasort/internal/candidates"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/services"
)

// Outcome is the dispatcher's answer for one request.
type Outcome struct {
	Category media.Category
	Reason   string
	// Decided is true when the decision oracle, not a classifier, chose.
	Decided bool
	Context *Context
}

// Option customizes a Dispatcher.
type Option func(*Dispatcher)

// WithPerFileConcurrency bounds parallel per-file checks. Values below 1 mean
// sequential.
func WithPerFileConcurrency(n int) Option {
	return func(d *Dispatcher) {
		if n < 1 {
			n = 1
		}
		d.concurrency = n
	}
}

// WithLogger sets the dispatcher logger.
func WithLogger(logger *slog.Logger) Option {
	return func(d *Dispatcher) {
		d.logger = logging.NewComponentLogger(logger, "dispatcher")
	}
}

// Dispatcher runs the phased classification.
type Dispatcher struct {
	classifier  oracle.Classifier
	decider     oracle.Decider
	concurrency int
	logger      *slog.Logger
}

// NewDispatcher builds a dispatcher around the two oracles.
func NewDispatcher(classifier oracle.Classifier, decider oracle.Decider, opts ...Option) *Dispatcher {
	d := &Dispatcher{
		classifier:  classifier,
		decider:     decider,
		concurrency: 1,
		logger:      logging.NewComponentLogger(nil, "dispatcher"),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

type phase struct {
	name       string
	categories []media.Category
}

func phasesFor(hints []media.Category, cands candidates.Set) []phase {
	return []phase{
		{name: "hints", categories: hints},
		{name: "highly_possible", categories: cands.HighlyPossible.Sorted()},
		{name: "possible", categories: cands.Possible.Without(cands.HighlyPossible).Sorted()},
	}
}

// Categorize returns the category of req. Classifier failures are recorded in
// the context and do not stop dispatch. The outcome's Context is populated
// even when an error is returned.
func (d *Dispatcher) Categorize(ctx context.Context, req media.Request, hints []media.Category, cands candidates.Set) (Outcome, error) {
	cctx := newContext(req, hints, cands)
	out := Outcome{Category: media.CategoryUnknown, Context: cctx}
	if len(req.Files) == 0 {
		return out, services.Wrap(services.ErrMalformedRequest, "categorizer", "categorize", "request has no files", nil)
	}
	logger := logging.WithContext(ctx, d.logger)

	for _, ph := range phasesFor(hints, cands) {
		for _, category := range ph.categories {
			if err := ctx.Err(); err != nil {
				return out, err
			}
			if category == media.CategoryUnknown || cctx.attempted(category) {
				continue
			}
			cctx.Attempted = append(cctx.Attempted, category)

			var (
				verdict media.Verdict
				reason  string
				err     error
			)
			if category.PerFile() {
				verdict, reason, err = d.checkFiles(ctx, cctx, category)
				if err != nil {
					return out, err
				}
			} else {
				verdict, reason = d.checkGroup(ctx, cctx, category)
			}
			logger.Debug("category checked",
				logging.String("phase", ph.name),
				logging.String(logging.FieldCategory, category.String()),
				logging.String("verdict", string(verdict)),
			)
			if verdict.Yes() {
				out.Category = refine(category, cctx)
				out.Reason = reason
				logger.Info("category decided", logging.Args(append(
					logging.DecisionAttrs("categorize", out.Category.String(), reason),
					logging.String("phase", ph.name),
					logging.Int("oracle_requests", cctx.Usage.Requests),
				)...)...)
				return out, nil
			}
		}
	}

	return d.decide(ctx, cctx, out)
}

func (d *Dispatcher) checkGroup(ctx context.Context, cctx *Context, category media.Category) (media.Verdict, string) {
	result, err := d.classifier.Classify(services.WithCategory(ctx, category.String()), category, cctx.Request)
	if err != nil {
		result.Verdict = media.VerdictNone
		result.Error = err.Error()
		logging.WarnWithContext(logging.WithContext(ctx, d.logger), "classification failed", "classification_failed",
			logging.String(logging.FieldCategory, category.String()),
			logging.Error(err),
			logging.String(logging.FieldImpact, "category carries no evidence"),
			logging.String(logging.FieldErrorHint, "check llm connectivity and api key"),
		)
	}
	cctx.recordGroup(category, result)
	return result.Verdict, result.Reason
}

// checkFiles classifies each video file on its own. Results are written to
// the context only after every call has returned.
func (d *Dispatcher) checkFiles(ctx context.Context, cctx *Context, category media.Category) (media.Verdict, string, error) {
	videos := videoFiles(cctx.Request.Files)
	results := make([]oracle.Result, len(videos))
	catCtx := services.WithCategory(ctx, category.String())

	var g errgroup.Group
	g.SetLimit(d.concurrency)
	for i, file := range videos {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			result, err := d.classifier.Classify(catCtx, category, cctx.Request.WithFiles(file))
			if err != nil {
				result.Verdict = media.VerdictNone
				result.Error = err.Error()
				logging.WarnWithContext(logging.WithContext(ctx, d.logger), "file classification failed", "classification_failed",
					logging.String(logging.FieldCategory, category.String()),
					logging.String("file", file),
					logging.Error(err),
					logging.String(logging.FieldImpact, "file carries no evidence"),
				)
			}
			results[i] = result
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return media.VerdictNone, "", err
	}

	byFile := make(map[string]oracle.Result, len(videos))
	for i, file := range videos {
		byFile[file] = results[i]
	}
	group := cctx.recordFiles(category, byFile)

	var reason string
	for i := range videos {
		if results[i].Verdict == group.Verdict {
			reason = results[i].Reason
			break
		}
	}
	return group.Verdict, reason, nil
}

func (d *Dispatcher) decide(ctx context.Context, cctx *Context, out Outcome) (Outcome, error) {
	logger := logging.WithContext(ctx, d.logger)
	if d.decider == nil {
		return out, services.Wrap(services.ErrUnresolvedCategory, "categorizer", "decide", "no decision oracle configured", services.ErrOracleUnavailable)
	}
	evidence, err := json.Marshal(cctx)
	if err != nil {
		return out, fmt.Errorf("encode categorization context: %w", err)
	}
	decision, err := d.decider.Decide(ctx, evidence)
	cctx.Usage = cctx.Usage.Add(decision.Usage)
	if err != nil {
		logging.ErrorWithContext(logger, "decision oracle failed", "decision_failed",
			logging.Error(err),
			logging.Int("attempted", len(cctx.Attempted)),
		)
		return out, services.Wrap(services.ErrUnresolvedCategory, "categorizer", "decide", "", err)
	}

	out.Category = refine(decision.Category, cctx)
	out.Reason = decision.Reason
	out.Decided = true
	logger.Info("category decided", logging.Args(append(
		logging.DecisionAttrs("decide", out.Category.String(), decision.Reason),
		logging.Int("oracle_requests", cctx.Usage.Requests),
	)...)...)
	return out, nil
}

// refine upgrades movie and tv_series to their animated variants when the
// recorded classification flagged the content as animated.
func refine(category media.Category, cctx *Context) media.Category {
	if category.IsAnimated() || category.Animated() == category {
		return category
	}
	for _, key := range []media.Category{category, category.Animated()} {
		if r, ok := cctx.Results[key]; ok && r.Animated.Yes() {
			return category.Animated()
		}
	}
	return category
}

func videoFiles(files []string) []string {
	seen := make(map[string]struct{}, len(files))
	out := make([]string, 0, len(files))
	for _, file := range files {
		if !media.IsVideo(file) {
			continue
		}
		if _, ok := seen[file]; ok {
			continue
		}
		seen[file] = struct{}{}
		out = append(out, file)
	}
	return out
}

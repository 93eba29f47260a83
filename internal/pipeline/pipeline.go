// Package pipeline runs one request through hint resolution, candidate
// filtering, category dispatch, and placement planning.
package pipeline

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"mediasort/internal/candidates"
	"mediasort/internal/categorizer"
	"mediasort/internal/hints"
	"mediasort/internal/history"
	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/planner"
	"mediasort/internal/services"
)

// Recorder journals finished runs.
type Recorder interface {
	Record(ctx context.Context, run history.Run) error
}

// Result is the outcome of one planning run.
type Result struct {
	RunID    string             `json:"run_id"`
	Category media.Category     `json:"category"`
	Reason   string             `json:"reason"`
	Decided  bool               `json:"decided"`
	Plan     []media.PlanAction `json:"plan"`
	Usage    oracle.Usage       `json:"usage"`
}

// Pipeline wires the planning stages together.
type Pipeline struct {
	hints      *hints.Resolver
	dispatcher *categorizer.Dispatcher
	planner    *planner.Planner
	recorder   Recorder
	logger     *slog.Logger
	newID      func() string
}

// New assembles a pipeline. recorder may be nil.
func New(resolver *hints.Resolver, dispatcher *categorizer.Dispatcher, p *planner.Planner, recorder Recorder, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		hints:      resolver,
		dispatcher: dispatcher,
		planner:    p,
		recorder:   recorder,
		logger:     logging.NewComponentLogger(logger, "pipeline"),
		newID:      uuid.NewString,
	}
}

// Plan categorizes req and builds its move plan. When placement only partly
// succeeds the result carries the partial plan alongside the error.
func (p *Pipeline) Plan(ctx context.Context, req media.Request) (Result, error) {
	res := Result{RunID: p.newID()}
	ctx = services.WithRequestID(ctx, res.RunID)
	logger := logging.WithContext(ctx, p.logger)
	started := time.Now()

	if len(req.Files) == 0 {
		return res, services.Wrap(services.ErrMalformedRequest, "pipeline", "plan", "request has no files", nil)
	}
	logger.Info("run started", logging.Int("files", len(req.Files)))

	resolution, err := p.hints.Resolve(services.WithStage(ctx, "hints"), req)
	if err != nil {
		p.record(ctx, req, res, err)
		return res, err
	}
	cands := candidates.FromFiles(resolution.Request.Files)

	outcome, err := p.dispatcher.Categorize(services.WithStage(ctx, "dispatch"), resolution.Request, resolution.Categories, cands)
	if outcome.Context != nil {
		res.Usage = outcome.Context.Usage
	}
	if err != nil {
		p.record(ctx, req, res, err)
		return res, err
	}
	res.Category = outcome.Category
	res.Reason = outcome.Reason
	res.Decided = outcome.Decided

	planned, err := p.planner.Plan(ctx, outcome)
	res.Plan = planned.Actions
	res.Usage = res.Usage.Add(planned.Usage)
	p.record(ctx, req, res, err)

	attrs := []logging.Attr{
		logging.String(logging.FieldCategory, res.Category.String()),
		logging.Int("actions", len(res.Plan)),
		logging.Int("oracle_requests", res.Usage.Requests),
		logging.Int("oracle_tokens", res.Usage.Tokens()),
		logging.Duration("elapsed", time.Since(started)),
	}
	if err != nil {
		logging.WarnWithContext(logger, "run finished with errors", "run_partial", append(attrs, logging.Error(err))...)
		return res, err
	}
	logger.Info("run finished", logging.Args(attrs...)...)
	return res, nil
}

func (p *Pipeline) record(ctx context.Context, req media.Request, res Result, runErr error) {
	if p.recorder == nil {
		return
	}
	run := history.Run{
		ID:       res.RunID,
		Files:    req.Files,
		Category: res.Category,
		Reason:   res.Reason,
		Decided:  res.Decided,
		Usage:    res.Usage,
		Plan:     res.Plan,
	}
	if runErr != nil {
		run.Error = runErr.Error()
	}
	if err := p.recorder.Record(context.WithoutCancel(ctx), run); err != nil {
		logging.WarnWithContext(logging.WithContext(ctx, p.logger), "run not journaled", "history_write_failed",
			logging.Error(err),
			logging.String(logging.FieldImpact, "run is missing from history"),
		)
	}
}

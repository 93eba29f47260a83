package categorizer

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"sync"
	"testing"

	"mediasort/internal/candidates"
	"mediasort/internal/media"
	"mediasort/internal/oracle"
	"mediasort/internal/services"
)

type call struct {
	category media.Category
	files    []string
}

type fakeClassifier struct {
	mu      sync.Mutex
	answers map[media.Category]oracle.Result
	perFile map[string]oracle.Result
	fail    map[media.Category]bool
	calls   []call
}

func (f *fakeClassifier) Classify(_ context.Context, category media.Category, req media.Request) (oracle.Result, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{category: category, files: req.Files})
	usage := oracle.Usage{Requests: 1, PromptTokens: 10}
	if f.fail[category] {
		return oracle.Result{Usage: usage}, services.Wrap(services.ErrOracleUnavailable, "test", "classify", "", errors.New("boom"))
	}
	if category.PerFile() && len(req.Files) == 1 {
		if r, ok := f.perFile[string(category)+":"+req.Files[0]]; ok {
			r.Usage = usage
			return r, nil
		}
	}
	r, ok := f.answers[category]
	if !ok {
		r = oracle.Result{Verdict: media.VerdictNo, Reason: "not " + category.String()}
	}
	r.Usage = usage
	return r, nil
}

func (f *fakeClassifier) categories() []media.Category {
	out := make([]media.Category, 0, len(f.calls))
	for _, c := range f.calls {
		if len(out) > 0 && out[len(out)-1] == c.category {
			continue
		}
		out = append(out, c.category)
	}
	return out
}

type fakeDecider struct {
	decision oracle.Decision
	err      error
	evidence json.RawMessage
	calls    int
}

func (f *fakeDecider) Decide(_ context.Context, evidence json.RawMessage) (oracle.Decision, error) {
	f.calls++
	f.evidence = evidence
	return f.decision, f.err
}

func TestCategorizeShortCircuitsOnYes(t *testing.T) {
	files := []string{"Show.S01E01.mkv", "Show.S01E02.mkv"}
	classifier := &fakeClassifier{answers: map[media.Category]oracle.Result{
		media.CategoryTVSeries: {Verdict: media.VerdictYes, Reason: "episodes"},
	}}
	decider := &fakeDecider{}
	d := NewDispatcher(classifier, decider)

	out, err := d.Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if out.Category != media.CategoryTVSeries || out.Reason != "episodes" || out.Decided {
		t.Fatalf("outcome = %+v", out)
	}
	if got := classifier.categories(); !reflect.DeepEqual(got, []media.Category{media.CategoryTVSeries}) {
		t.Fatalf("calls = %v", got)
	}
	if decider.calls != 0 {
		t.Fatalf("decider should not run")
	}
	if out.Context.Usage.Requests != 1 {
		t.Fatalf("usage = %+v", out.Context.Usage)
	}
}

func TestCategorizeHintsRunFirstAndAreNotRepeated(t *testing.T) {
	files := []string{"Movie.2020.mkv"}
	classifier := &fakeClassifier{}
	decider := &fakeDecider{decision: oracle.Decision{Category: media.CategoryUnknown, Reason: "nothing fits"}}
	d := NewDispatcher(classifier, decider)

	hints := []media.Category{media.CategoryMusicVideo, media.CategoryMovie}
	out, err := d.Categorize(context.Background(), media.Request{Files: files}, hints, candidates.FromFiles(files))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	want := []media.Category{
		media.CategoryMusicVideo, media.CategoryMovie,
		media.CategoryTVSeries, media.CategoryPorn, media.CategoryBangoPorn,
	}
	if got := classifier.categories(); !reflect.DeepEqual(got, want) {
		t.Fatalf("order = %v, want %v", got, want)
	}
	if out.Category != media.CategoryUnknown || out.Reason != "nothing fits" || !out.Decided {
		t.Fatalf("outcome = %+v", out)
	}
	if decider.calls != 1 {
		t.Fatalf("decider calls = %d", decider.calls)
	}
}

func TestCategorizeHighlyPossibleBeforePossible(t *testing.T) {
	files := []string{"SSIS-698.mp4"}
	classifier := &fakeClassifier{perFile: map[string]oracle.Result{
		"bango_porn:SSIS-698.mp4": {Verdict: media.VerdictYes, Attributes: oracle.Attributes{Code: "SSIS-698"}, Reason: "code"},
	}}
	d := NewDispatcher(classifier, &fakeDecider{})

	out, err := d.Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if out.Category != media.CategoryBangoPorn || out.Reason != "code" {
		t.Fatalf("outcome = %+v", out)
	}
	if got := classifier.categories(); !reflect.DeepEqual(got, []media.Category{media.CategoryBangoPorn}) {
		t.Fatalf("calls = %v", got)
	}
	group := out.Context.Groups[media.CategoryBangoPorn]
	if group == nil || group.Files["SSIS-698.mp4"].Code != "SSIS-698" {
		t.Fatalf("per-file results missing: %+v", group)
	}
}

func TestCategorizeAnimatedRefinement(t *testing.T) {
	files := []string{"Spirited Away.mkv"}
	classifier := &fakeClassifier{answers: map[media.Category]oracle.Result{
		media.CategoryMovie: {Verdict: media.VerdictYes, Attributes: oracle.Attributes{Animated: media.VerdictYes}},
	}}
	out, err := NewDispatcher(classifier, &fakeDecider{}).Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if out.Category != media.CategoryAnimMovie {
		t.Fatalf("category = %s", out.Category)
	}
}

func TestCategorizeDecidedCategoryIsRefined(t *testing.T) {
	files := []string{"Show.mkv"}
	classifier := &fakeClassifier{answers: map[media.Category]oracle.Result{
		media.CategoryTVSeries: {Verdict: media.VerdictMaybe, Attributes: oracle.Attributes{Animated: media.VerdictYes}},
	}}
	decider := &fakeDecider{decision: oracle.Decision{Category: media.CategoryTVSeries, Reason: "best guess", Usage: oracle.Usage{Requests: 1}}}
	out, err := NewDispatcher(classifier, decider).Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if out.Category != media.CategoryAnimTVSeries || !out.Decided {
		t.Fatalf("outcome = %+v", out)
	}
	if out.Context.Usage.Requests != 6 {
		t.Fatalf("expected 5 classifier calls plus the decision, got %+v", out.Context.Usage)
	}
}

func TestPerFileAggregation(t *testing.T) {
	files := []string{"a.mp4", "b.mp4", "cover.jpg", "a.mp4"}
	tests := []struct {
		name    string
		answers map[string]oracle.Result
		want    media.Verdict
	}{
		{"any yes", map[string]oracle.Result{"porn:a.mp4": {Verdict: media.VerdictNo}, "porn:b.mp4": {Verdict: media.VerdictYes}}, media.VerdictYes},
		{"maybe beats no", map[string]oracle.Result{"porn:a.mp4": {Verdict: media.VerdictMaybe}, "porn:b.mp4": {Verdict: media.VerdictNo}}, media.VerdictMaybe},
		{"all no", map[string]oracle.Result{"porn:a.mp4": {Verdict: media.VerdictNo}, "porn:b.mp4": {Verdict: media.VerdictNo}}, media.VerdictNo},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			classifier := &fakeClassifier{perFile: tc.answers}
			d := NewDispatcher(classifier, &fakeDecider{decision: oracle.Decision{Category: media.CategoryUnknown}}, WithPerFileConcurrency(3))
			out, _ := d.Categorize(context.Background(), media.Request{Files: files}, []media.Category{media.CategoryPorn}, candidates.Set{})
			group := out.Context.Groups[media.CategoryPorn]
			if group == nil || group.Verdict != tc.want {
				t.Fatalf("group = %+v, want %s", group, tc.want)
			}
			if len(group.Files) != 2 {
				t.Fatalf("only distinct video files are checked: %v", group.Files)
			}
			for _, c := range classifier.calls {
				if len(c.files) != 1 {
					t.Fatalf("per-file call carried %v", c.files)
				}
			}
		})
	}
}

func TestClassifierFailureIsRecordedAndDispatchContinues(t *testing.T) {
	files := []string{"album/01.flac"}
	classifier := &fakeClassifier{
		fail:    map[media.Category]bool{media.CategoryAudioBook: true},
		answers: map[media.Category]oracle.Result{media.CategoryMusic: {Verdict: media.VerdictYes}},
	}
	out, err := NewDispatcher(classifier, &fakeDecider{}).Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if out.Category != media.CategoryMusic {
		t.Fatalf("category = %s", out.Category)
	}
	failed := out.Context.Results[media.CategoryAudioBook]
	if !failed.Failed() || !strings.Contains(failed.Error, "boom") {
		t.Fatalf("failure not recorded: %+v", failed)
	}
	if out.Context.Usage.Requests != 2 {
		t.Fatalf("failed call usage must count: %+v", out.Context.Usage)
	}
}

func TestDeciderFailureIsUnresolved(t *testing.T) {
	files := []string{"notes.pdf"}
	decider := &fakeDecider{err: services.Wrap(services.ErrOracleUnavailable, "test", "decide", "", errors.New("down"))}
	_, err := NewDispatcher(&fakeClassifier{}, decider).Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files))
	if !errors.Is(err, services.ErrUnresolvedCategory) || !errors.Is(err, services.ErrOracleUnavailable) {
		t.Fatalf("expected unresolved wrapping oracle unavailable, got %v", err)
	}
}

func TestDeciderReceivesEvidence(t *testing.T) {
	files := []string{"notes.pdf"}
	decider := &fakeDecider{decision: oracle.Decision{Category: media.CategoryBook}}
	classifier := &fakeClassifier{answers: map[media.Category]oracle.Result{media.CategoryBook: {Verdict: media.VerdictMaybe, Reason: "pdf scan"}}}
	if _, err := NewDispatcher(classifier, decider).Categorize(context.Background(), media.Request{Files: files}, nil, candidates.FromFiles(files)); err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	var evidence struct {
		Request   media.Request            `json:"request"`
		Attempted []media.Category         `json:"attempted"`
		Results   map[string]oracle.Result `json:"results"`
	}
	if err := json.Unmarshal(decider.evidence, &evidence); err != nil {
		t.Fatalf("evidence not JSON: %v", err)
	}
	if evidence.Results["book"].Reason != "pdf scan" || len(evidence.Attempted) != 1 {
		t.Fatalf("evidence = %s", decider.evidence)
	}
}

func TestEmptyRequestIsMalformed(t *testing.T) {
	_, err := NewDispatcher(&fakeClassifier{}, &fakeDecider{}).Categorize(context.Background(), media.Request{}, nil, candidates.Set{})
	if !errors.Is(err, services.ErrMalformedRequest) {
		t.Fatalf("expected malformed request, got %v", err)
	}
}

func TestUnknownHintIsSkipped(t *testing.T) {
	classifier := &fakeClassifier{}
	decider := &fakeDecider{decision: oracle.Decision{Category: media.CategoryUnknown}}
	_, err := NewDispatcher(classifier, decider).Categorize(context.Background(), media.Request{Files: []string{"x.bin"}}, []media.Category{media.CategoryUnknown}, candidates.FromFiles([]string{"x.bin"}))
	if err != nil {
		t.Fatalf("Categorize: %v", err)
	}
	if len(classifier.calls) != 0 {
		t.Fatalf("unexpected calls %v", classifier.calls)
	}
}

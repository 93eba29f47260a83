package performer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"

	"mediasort/internal/oracle"
)

type stubSearcher struct {
	hits     []string
	calls    []string
	onSearch func()
}

func (s *stubSearcher) Search(_ context.Context, name string) []string {
	s.calls = append(s.calls, name)
	if s.onSearch != nil {
		s.onSearch()
	}
	return s.hits
}

type stubVerifier struct {
	out   []string
	err   error
	input []string
}

func (s *stubVerifier) VerifyAliases(_ context.Context, aliases []string) ([]string, oracle.Usage, error) {
	s.input = aliases
	return s.out, oracle.Usage{Requests: 1, PromptTokens: 5}, s.err
}

func TestResolveKnownNameNeedsNoCalls(t *testing.T) {
	path := writeStore(t, map[string][]string{"Yui Hatano": {"波多野结衣"}})
	searcher := &stubSearcher{}
	verifier := &stubVerifier{}
	r := NewResolver(NewStore(path, time.Second, nil), searcher, verifier, nil)

	dir, usage, err := r.Resolve(context.Background(), []string{"Unknown Person", "波多野结衣"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir != "Yui Hatano" || !usage.IsZero() {
		t.Fatalf("dir=%q usage=%+v", dir, usage)
	}
	if len(searcher.calls) != 0 || verifier.input != nil {
		t.Fatalf("no external calls expected")
	}
}

func TestResolveUnknownSearchesFirstName(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performers.json")
	searcher := &stubSearcher{hits: []string{"三上悠亜", "鬼頭桃菜", "Yua Mikami"}}
	verifier := &stubVerifier{out: []string{"三上悠亜", "Yua Mikami"}}
	r := NewResolver(NewStore(path, time.Second, nil), searcher, verifier, nil)

	dir, usage, err := r.Resolve(context.Background(), []string{" ", "Yua Mikami", "Other"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir != "Yua Mikami" {
		t.Fatalf("dir = %q", dir)
	}
	if usage.Requests != 1 {
		t.Fatalf("usage = %+v", usage)
	}
	if !reflect.DeepEqual(searcher.calls, []string{"Yua Mikami"}) {
		t.Fatalf("search calls = %v", searcher.calls)
	}
	if verifier.input[0] != "Yua Mikami" {
		t.Fatalf("seed must lead verification input: %v", verifier.input)
	}
	got := readStore(t, path)["Yua Mikami"]
	if !reflect.DeepEqual(got, []string{"Yua Mikami", "三上悠亜"}) {
		t.Fatalf("stored aliases = %v", got)
	}

	// Second lookup of an alias now hits the store.
	dir, usage, err = r.Resolve(context.Background(), []string{"三上悠亜"})
	if err != nil || dir != "Yua Mikami" || !usage.IsZero() {
		t.Fatalf("dir=%q usage=%+v err=%v", dir, usage, err)
	}
}

func TestResolveVerifierFailureKeepsRawAliases(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performers.json")
	searcher := &stubSearcher{hits: []string{"A1", "A2"}}
	verifier := &stubVerifier{err: errors.New("oracle down")}
	r := NewResolver(NewStore(path, time.Second, nil), searcher, verifier, nil)

	dir, _, err := r.Resolve(context.Background(), []string{"Seed"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got := readStore(t, path)[dir]; !reflect.DeepEqual(got, []string{"Seed", "A1", "A2"}) {
		t.Fatalf("stored = %v", got)
	}
}

func TestResolveMergesIntoDirectoryFoundBySearch(t *testing.T) {
	path := writeStore(t, map[string][]string{"Yui Hatano": {"波多野结衣"}})
	searcher := &stubSearcher{hits: []string{"波多野結衣", "波多野结衣"}}
	r := NewResolver(NewStore(path, time.Second, nil), searcher, nil, nil)

	dir, _, err := r.Resolve(context.Background(), []string{"はたのゆい"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir != "Yui Hatano" {
		t.Fatalf("dir = %q", dir)
	}
	got := readStore(t, path)
	if len(got) != 1 || len(got["Yui Hatano"]) != 3 {
		t.Fatalf("store = %v", got)
	}
}

func TestResolveNoNames(t *testing.T) {
	r := NewResolver(NewStore(filepath.Join(t.TempDir(), "p.json"), time.Second, nil), nil, nil, nil)
	dir, _, err := r.Resolve(context.Background(), nil)
	if err != nil || dir != "" {
		t.Fatalf("dir=%q err=%v", dir, err)
	}
}

func TestResolveVerifiesSeedWithoutSearchHits(t *testing.T) {
	path := writeStore(t, map[string][]string{"三上悠亜": {"三上悠亜", "三上悠亚"}})
	searcher := &stubSearcher{}
	verifier := &stubVerifier{out: []string{"Yua Mikami", "三上悠亚"}}
	r := NewResolver(NewStore(path, time.Second, nil), searcher, verifier, nil)

	dir, usage, err := r.Resolve(context.Background(), []string{"Yua Mikami"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(verifier.input, []string{"Yua Mikami"}) {
		t.Fatalf("verifier input = %v", verifier.input)
	}
	if dir != "三上悠亜" || usage.Requests != 1 {
		t.Fatalf("dir=%q usage=%+v", dir, usage)
	}
	got := readStore(t, path)
	if len(got) != 1 {
		t.Fatalf("expected a single directory, store = %v", got)
	}
	want := []string{"三上悠亜", "三上悠亚", "Yua Mikami"}
	if !reflect.DeepEqual(got["三上悠亜"], want) {
		t.Fatalf("aliases = %v, want %v", got["三上悠亜"], want)
	}
}

func TestResolveMergesIntoEntryWrittenDuringSearch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "performers.json")
	searcher := &stubSearcher{}
	searcher.onSearch = func() {
		// Another process records the performer while this one is searching.
		data := []byte(`{"三上悠亜": ["三上悠亜", "Yua Mikami"]}`)
		if err := os.WriteFile(path, data, 0o644); err != nil {
			t.Errorf("rewrite store: %v", err)
		}
	}
	r := NewResolver(NewStore(path, time.Second, nil), searcher, nil, nil)

	dir, _, err := r.Resolve(context.Background(), []string{"Yua Mikami"})
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if dir != "三上悠亜" {
		t.Fatalf("dir = %q", dir)
	}
	if got := readStore(t, path); len(got) != 1 {
		t.Fatalf("expected a single directory, store = %v", got)
	}
}

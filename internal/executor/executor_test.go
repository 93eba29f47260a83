package executor

import (
	"context"
	"path"
	"testing"

	"github.com/spf13/afero"

	"mediasort/internal/media"
)

func newFixture(t *testing.T, files ...string) (afero.Fs, *Executor) {
	t.Helper()
	fs := afero.NewMemMapFs()
	for _, name := range files {
		if err := afero.WriteFile(fs, "/downloads/"+name, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	return fs, New(fs, "/downloads", "/library", nil)
}

func TestExecuteMovesFiles(t *testing.T) {
	root := t.TempDir()
	fs := afero.NewBasePathFs(afero.NewOsFs(), root)
	for _, name := range []string{"test_file.txt", "Album/01.flac", "Album/02.flac", "junk.nfo"} {
		p := "/downloads/" + name
		if err := fs.MkdirAll(path.Dir(p), 0o755); err != nil {
			t.Fatalf("mkdir for %s: %v", name, err)
		}
		if err := afero.WriteFile(fs, p, []byte(name), 0o644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	exec := New(fs, "/downloads", "/library", nil)

	failures := exec.Execute(context.Background(), []media.PlanAction{
		media.Move("test_file.txt", "documents/test_file.txt"),
		media.Move("Album", "music/Album"),
		media.Skip("junk.nfo"),
	})
	if len(failures) != 0 {
		t.Fatalf("unexpected failures: %+v", failures)
	}
	for _, p := range []string{"/library/documents/test_file.txt", "/library/music/Album/02.flac", "/downloads/junk.nfo"} {
		if ok, _ := afero.Exists(fs, p); !ok {
			t.Errorf("expected %s to exist", p)
		}
	}
	for _, p := range []string{"/downloads/test_file.txt", "/downloads/Album"} {
		if ok, _ := afero.Exists(fs, p); ok {
			t.Errorf("%s should be gone after move", p)
		}
	}
}

func TestExecuteReportsFailures(t *testing.T) {
	fs, exec := newFixture(t, "a.mkv", "b.mkv")
	if err := afero.WriteFile(fs, "/library/movie/B/B.mkv", []byte("old"), 0o644); err != nil {
		t.Fatal(err)
	}

	failures := exec.Execute(context.Background(), []media.PlanAction{
		media.Move("non_existent_file.txt", "documents/non_existent_file.txt"),
		media.Move("b.mkv", "movie/B/B.mkv"),
		media.Move("a.mkv", "../escape.mkv"),
		{File: "a.mkv", Action: media.ActionMove},
	})

	wantReasons := []string{"file not found", "target exists", "target escapes library directory", ""}
	if len(failures) != len(wantReasons) {
		t.Fatalf("expected %d failures, got %+v", len(wantReasons), failures)
	}
	for i, want := range wantReasons {
		if want != "" && failures[i].Reason != want {
			t.Errorf("failure %d reason = %q, want %q", i, failures[i].Reason, want)
		}
	}
	if ok, _ := afero.Exists(fs, "/library/documents/non_existent_file.txt"); ok {
		t.Fatal("missing source must not create a target")
	}
	if got, _ := afero.ReadFile(fs, "/library/movie/B/B.mkv"); string(got) != "old" {
		t.Fatalf("existing target overwritten: %q", got)
	}
}

func TestExecuteStopsMovingAfterCancel(t *testing.T) {
	fs, exec := newFixture(t, "a.mkv")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	failures := exec.Execute(ctx, []media.PlanAction{media.Move("a.mkv", "movie/A/A.mkv")})
	if len(failures) != 1 {
		t.Fatalf("expected a failure for the canceled move, got %+v", failures)
	}
	if ok, _ := afero.Exists(fs, "/downloads/a.mkv"); !ok {
		t.Fatal("canceled move must leave the source in place")
	}
}

func TestWithin(t *testing.T) {
	tests := []struct {
		rel string
		ok  bool
	}{
		{"movie/A/A.mkv", true},
		{"a/../b.mkv", true},
		{"../b.mkv", false},
		{"/etc/passwd", false},
		{".", false},
	}
	for _, tc := range tests {
		if _, ok := within("/library", tc.rel); ok != tc.ok {
			t.Errorf("within(%q) = %v, want %v", tc.rel, ok, tc.ok)
		}
	}
}

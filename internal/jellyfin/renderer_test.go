package jellyfin

import (
	"context"
	"reflect"
	"testing"

	"mediasort/internal/media"
	"mediasort/internal/planner"
)

func TestRenderMovie(t *testing.T) {
	r := NewRenderer(nil)
	actions, usage, err := r.Render(context.Background(), planner.RenderRequest{
		Category:       media.CategoryMovie,
		Root:           media.TargetMovie,
		Videos:         []string{"dl/Titanic.1997.1080p.MKV", "dl/Sample/titanic-sample.mkv"},
		Title:          "Titanic",
		LocalizedTitle: "泰坦尼克号",
		Year:           1997,
		Language:       media.LanguageEnglish,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !usage.IsZero() {
		t.Fatalf("usage = %+v", usage)
	}
	want := []media.PlanAction{
		media.Skip("dl/Sample/titanic-sample.mkv"),
		media.Move("dl/Titanic.1997.1080p.MKV", "movie/English/泰坦尼克号 (1997)/泰坦尼克号 (1997).mkv"),
	}
	if !reflect.DeepEqual(actions, want) {
		t.Fatalf("actions = %+v\nwant %+v", actions, want)
	}
}

func TestRenderMovieParts(t *testing.T) {
	actions, _, err := NewRenderer(nil).Render(context.Background(), planner.RenderRequest{
		Category: media.CategoryAnimMovie,
		Root:     media.TargetAnimMovie,
		Videos:   []string{"CD1.avi", "CD2.avi"},
		Title:    "Akira: Final",
		Year:     1988,
		Language: media.LanguageJapanese,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if actions[0].Target != "anim_movie/Japanese/Akira- Final (1988)/Akira- Final (1988) - part1.avi" {
		t.Fatalf("target = %q", actions[0].Target)
	}
	if actions[1].Target != "anim_movie/Japanese/Akira- Final (1988)/Akira- Final (1988) - part2.avi" {
		t.Fatalf("target = %q", actions[1].Target)
	}
}

func TestRenderSeries(t *testing.T) {
	actions, _, err := NewRenderer(nil).Render(context.Background(), planner.RenderRequest{
		Category: media.CategoryTVSeries,
		Root:     media.TargetTVSeries,
		Videos: []string{
			"Dark/Dark.S01E01.mkv",
			"Dark/Season 2/Dark - 03.mkv",
			"Dark/Dark.S01E01.proper.mkv",
			"Dark/notes.mkv",
		},
		Title:    "Dark",
		Year:     2017,
		Language: media.LanguageOthers,
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	want := []media.PlanAction{
		media.Move("Dark/Dark.S01E01.mkv", "tv_series/Others/Dark (2017)/Season 01/Dark (2017) S01E01.mkv"),
		media.Skip("Dark/Season 2/Dark - 03.mkv"),
		media.Skip("Dark/Dark.S01E01.proper.mkv"),
		media.Skip("Dark/notes.mkv"),
	}
	if !reflect.DeepEqual(actions, want) {
		t.Fatalf("actions = %+v", actions)
	}
}

func TestEpisode(t *testing.T) {
	tests := []struct {
		file            string
		season, episode int
		ok              bool
	}{
		{"Show.S02E10.mkv", 2, 10, true},
		{"show s1 e3.mp4", 1, 3, true},
		{"Show.2x05.avi", 2, 5, true},
		{"我的剧/第12集.mp4", 1, 12, true},
		{"Show/Season 3/Show EP07.mkv", 3, 7, true},
		{"Show/S04/E08.mkv", 4, 8, true},
		{"Movie.2010.mkv", 0, 0, false},
	}
	for _, tc := range tests {
		season, episode, ok := Episode(tc.file)
		if season != tc.season || episode != tc.episode || ok != tc.ok {
			t.Errorf("Episode(%q) = %d, %d, %v", tc.file, season, episode, ok)
		}
	}
}

func TestFolderName(t *testing.T) {
	if got := FolderName("", "  The  Office ", 0); got != "The Office" {
		t.Fatalf("got %q", got)
	}
	if got := FolderName("", "", 2000); got != "" {
		t.Fatalf("got %q", got)
	}
}

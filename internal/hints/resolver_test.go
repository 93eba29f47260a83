package hints

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"strings"
	"testing"

	"mediasort/internal/logging"
	"mediasort/internal/media"
	"mediasort/internal/services"
)

type fakeLookup struct {
	payload json.RawMessage
	err     error
	calls   []string
}

func (f *fakeLookup) Lookup(_ context.Context, family Family, identifier string) (json.RawMessage, error) {
	f.calls = append(f.calls, string(family)+":"+identifier)
	return f.payload, f.err
}

func TestResolveOverrideSkipsLookup(t *testing.T) {
	lookup := &fakeLookup{}
	r := NewResolver(lookup, logging.NewNop())
	req := media.Request{Files: []string{"a.flac"}, Metadata: map[string]any{"category": []any{"music", "audio_book", "music"}}}

	res, err := r.Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := []media.Category{media.CategoryMusic, media.CategoryAudioBook}
	if !reflect.DeepEqual(res.Categories, want) || !res.Override {
		t.Fatalf("resolution = %+v", res)
	}
	if len(lookup.calls) != 0 {
		t.Fatalf("override must not call lookup: %v", lookup.calls)
	}
}

func TestResolveRejectsMalformedHints(t *testing.T) {
	tests := []struct {
		name string
		meta map[string]any
	}{
		{name: "unknown override", meta: map[string]any{"category": "documentary"}},
		{name: "override plus id", meta: map[string]any{"category": "movie", "media_id": "tt1"}},
		{name: "both ids", meta: map[string]any{"media_id": "1", "porn_id": "2"}},
		{name: "override wrong type", meta: map[string]any{"category": 42.0}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewResolver(&fakeLookup{}, nil).Resolve(context.Background(), media.Request{Files: []string{"a"}, Metadata: tc.meta})
			if !errors.Is(err, services.ErrMalformedRequest) {
				t.Fatalf("expected ErrMalformedRequest, got %v", err)
			}
		})
	}
}

func TestResolveAttachesLookupToCopy(t *testing.T) {
	lookup := &fakeLookup{payload: json.RawMessage(`{"media_type":"tv","name":"Dark"}`)}
	meta := map[string]any{"media_id": "70523"}
	req := media.Request{Files: []string{"Dark.S01E01.mkv"}, Metadata: meta}

	res, err := NewResolver(lookup, nil).Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if !reflect.DeepEqual(res.Categories, []media.Category{media.CategoryTVSeries}) {
		t.Fatalf("categories = %v", res.Categories)
	}
	if _, ok := meta[media.MetaLookup]; ok {
		t.Fatalf("caller metadata was mutated")
	}
	if !res.Request.HasMeta(media.MetaLookup) {
		t.Fatalf("lookup payload not attached")
	}
	if lookup.calls[0] != "media:70523" {
		t.Fatalf("calls = %v", lookup.calls)
	}
	encoded, err := json.Marshal(res.Request)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(encoded), `"_lookup":{"media_type":"tv","name":"Dark"}`) {
		t.Fatalf("encoded request = %s", encoded)
	}
}

func TestResolveLookupFailureYieldsNoHints(t *testing.T) {
	lookup := &fakeLookup{err: errors.New("provider down")}
	req := media.Request{Files: []string{"a.mp4"}, Metadata: map[string]any{"porn_id": "abc"}}
	res, err := NewResolver(lookup, nil).Resolve(context.Background(), req)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if len(res.Categories) != 0 || res.Request.HasMeta(media.MetaLookup) {
		t.Fatalf("resolution = %+v", res)
	}
}

func TestResolveWithoutHints(t *testing.T) {
	res, err := NewResolver(nil, nil).Resolve(context.Background(), media.Request{Files: []string{"a.mp4"}, Metadata: map[string]any{"media_id": "1"}})
	if err != nil || len(res.Categories) != 0 {
		t.Fatalf("res=%+v err=%v", res, err)
	}
}

func TestRoute(t *testing.T) {
	tests := []struct {
		family Family
		raw    string
		want   []media.Category
	}{
		{FamilyMedia, `{"media_type":"series"}`, []media.Category{media.CategoryTVSeries}},
		{FamilyMedia, `{"number_of_seasons":3}`, []media.Category{media.CategoryTVSeries}},
		{FamilyMedia, `{"media_type":"Movie"}`, []media.Category{media.CategoryMovie}},
		{FamilyMedia, `{"release_date":"2020-01-01"}`, []media.Category{media.CategoryMovie}},
		{FamilyMedia, `{"title":"?"}`, []media.Category{media.CategoryMovie, media.CategoryTVSeries}},
		{FamilyAdult, `{"code":"SSIS-698"}`, []media.Category{media.CategoryBangoPorn}},
		{FamilyAdult, `{"bango":"","type":"western"}`, []media.Category{media.CategoryPorn}},
		{FamilyAdult, `{}`, []media.Category{media.CategoryPorn, media.CategoryBangoPorn}},
	}
	for _, tc := range tests {
		if got := Route(tc.family, json.RawMessage(tc.raw)); !reflect.DeepEqual(got, tc.want) {
			t.Errorf("Route(%s, %s) = %v, want %v", tc.family, tc.raw, got, tc.want)
		}
	}
}

package performer

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"
	"time"
)

const actorSearchPage = `<html><body>
<div class="actors">
  <div class="box actor-box"><a href="/actors/abc" title="三上悠亜, 鬼頭桃菜,Yua Mikami"><strong>三上悠亜</strong></a></div>
  <div class="box actor-box"><a href="/actors/def" title="Someone Else"></a></div>
</div></body></html>`

func TestJavDBSearch(t *testing.T) {
	var gotQuery, gotFilter, gotAgent string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.Query().Get("q")
		gotFilter = r.URL.Query().Get("f")
		gotAgent = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(actorSearchPage))
	}))
	defer srv.Close()

	aliases := NewJavDB(srv.URL+"/", time.Second, 0, nil).Search(context.Background(), "三上 悠亜")
	want := []string{"三上悠亜", "鬼頭桃菜", "Yua Mikami", "三上 悠亜"}
	if !reflect.DeepEqual(aliases, want) {
		t.Fatalf("aliases = %v, want %v", aliases, want)
	}
	if gotQuery != "三上 悠亜" || gotFilter != "actor" || gotAgent == "" {
		t.Fatalf("request q=%q f=%q ua=%q", gotQuery, gotFilter, gotAgent)
	}
}

func TestJavDBSearchNoActor(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`<html><body>No results</body></html>`))
	}))
	defer srv.Close()

	aliases := NewJavDB(srv.URL, time.Second, 0, nil).Search(context.Background(), "Nobody")
	if !reflect.DeepEqual(aliases, []string{"Nobody"}) {
		t.Fatalf("aliases = %v", aliases)
	}
}

func TestJavDBSearchFailureIsEmpty(t *testing.T) {
	calls := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls++
		http.Error(w, "blocked", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	aliases := NewJavDB(srv.URL, time.Second, 1, nil).Search(context.Background(), "Nobody")
	if aliases != nil {
		t.Fatalf("aliases = %v", aliases)
	}
	if calls != 2 {
		t.Fatalf("expected one retry, got %d calls", calls)
	}
}

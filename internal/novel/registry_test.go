package novel

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

const listingPage = `<html><body>
<div class="li-row"><h3 class="tit"><a href="/novel/first-novel">First Novel</a></h3><span class="s1">1200 Chapters</span></div>
<div class="li-row"><h3 class="tit"><a href="/novel/second-novel">Second Novel</a></h3><span class="s1">unknown</span></div>
<div class="li-row"><h3 class="tit"><a href="/novel/third-novel">Third Novel</a></h3><span class="s1">88 Chapters</span></div>
<div class="li-row"><h3 class="tit"><a href="/novel/n4">Fourth</a></h3><span class="s1">4 Chapters</span></div>
<div class="li-row"><h3 class="tit"><a href="/novel/n5">Fifth</a></h3><span class="s1">5 Chapters</span></div>
<div class="li-row"><h3 class="tit"><a href="/novel/n6">Sixth</a></h3><span class="s1">6 Chapters</span></div>
</body></html>`

func TestRegistry_FetchPopular(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/sort/most-popular" {
			http.NotFound(w, r)
			return
		}
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	reg := NewRegistry(srv.URL, nil, srv.Client())

	novels, err := reg.FetchPopular(context.Background())
	if err != nil {
		t.Fatalf("FetchPopular() error = %v", err)
	}

	if len(novels) != 5 {
		t.Fatalf("got %d novels, want top 5", len(novels))
	}

	first := novels[0]
	if first.Title != "First Novel" {
		t.Errorf("Title = %q", first.Title)
	}
	if want := srv.URL + "/novel/first-novel/chapter-"; first.ChapterURL != want {
		t.Errorf("ChapterURL = %q, want %q", first.ChapterURL, want)
	}
	if first.TotalChapters == nil || *first.TotalChapters != 1200 {
		t.Errorf("TotalChapters = %v, want 1200", first.TotalChapters)
	}

	// Malformed chapter count leaves the total unknown.
	if novels[1].TotalChapters != nil {
		t.Errorf("expected unknown total for second novel, got %d", *novels[1].TotalChapters)
	}
}

func TestRegistry_AllIncludesCustomOnListingFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	custom := []Novel{{Title: "My Werewolf System", ChapterURL: "https://example.com/mws/chapter-"}}
	reg := NewRegistry(srv.URL, custom, srv.Client())

	novels, err := reg.All(context.Background())
	if err == nil {
		t.Error("expected listing error to be reported")
	}
	if len(novels) != 1 || novels[0].Title != "My Werewolf System" {
		t.Fatalf("expected custom novels to survive listing failure, got %v", novels)
	}
}

func TestRegistry_Lookup(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, listingPage)
	}))
	defer srv.Close()

	custom := []Novel{{Title: "Custom One", ChapterURL: "https://example.com/c1/chapter-"}}
	reg := NewRegistry(srv.URL, custom, srv.Client())

	if n, ok := reg.Lookup(context.Background(), "Custom One"); !ok || n.ChapterURL == "" {
		t.Errorf("Lookup(Custom One) = %v, %v", n, ok)
	}
	if _, ok := reg.Lookup(context.Background(), "Nope"); ok {
		t.Error("Lookup(Nope) should fail")
	}
}

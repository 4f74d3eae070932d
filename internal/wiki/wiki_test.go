package wiki

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
)

func testClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	c := New("en.wikipedia.org")
	c.BaseURL = srv.URL
	return c
}

func TestRandomArticle(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rest_v1/page/random/summary" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/Banana"}}}`))
	})

	page, err := c.RandomArticle(context.Background())
	if err != nil {
		t.Fatalf("random article: %v", err)
	}
	if page != "https://en.wikipedia.org/wiki/Banana" {
		t.Fatalf("unexpected page %q", page)
	}
}

func TestCanonicalArticleResolvesRedirect(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/rest_v1/page/summary/USA" {
			t.Fatalf("unexpected path %s", r.URL.Path)
		}
		w.Write([]byte(`{"content_urls":{"desktop":{"page":"https://en.wikipedia.org/wiki/United_States"}}}`))
	})

	page, err := c.CanonicalArticle(context.Background(), "/wiki/USA")
	if err != nil {
		t.Fatalf("canonical article: %v", err)
	}
	if page != "https://en.wikipedia.org/wiki/United_States" {
		t.Fatalf("unexpected page %q", page)
	}
}

func TestCanonicalArticleRejectsNonArticlePaths(t *testing.T) {
	c := New("en.wikipedia.org")
	if _, err := c.CanonicalArticle(context.Background(), "/robots.txt"); err == nil {
		t.Fatal("non-article pathnames should be rejected")
	}
}

func TestFetchPageErrors(t *testing.T) {
	c := testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if _, err := c.RandomArticle(context.Background()); err == nil {
		t.Fatal("non-2xx status should be an error")
	}

	c = testClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})
	if _, err := c.RandomArticle(context.Background()); err == nil {
		t.Fatal("missing page URL should be an error")
	}
}

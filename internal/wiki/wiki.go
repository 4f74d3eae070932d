// Package wiki talks to the article host's REST API. The game core only ever
// needs two things from it: a random article to race from, and the canonical
// (redirect-resolved) URL of a visited page.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

type Client struct {
	BaseURL string
	http    *http.Client
}

func New(host string) *Client {
	return &Client{BaseURL: "https://" + host, http: &http.Client{Timeout: 20 * time.Second}}
}

// summary is the slice of the REST page summary response we care about. The
// desktop page URL is canonical: requesting a redirect's summary answers with
// the target article.
type summary struct {
	ContentURLs struct {
		Desktop struct {
			Page string `json:"page"`
		} `json:"desktop"`
	} `json:"content_urls"`
}

// RandomArticle returns the absolute URL of a random article.
func (c *Client) RandomArticle(ctx context.Context) (string, error) {
	return c.fetchPage(ctx, c.BaseURL+"/api/rest_v1/page/random/summary")
}

// CanonicalArticle resolves the canonical URL for an article pathname such as
// "/wiki/Some_Title", following redirects on the host side.
func (c *Client) CanonicalArticle(ctx context.Context, pathname string) (string, error) {
	title := strings.TrimPrefix(pathname, "/wiki/")
	if title == "" || title == pathname {
		return "", fmt.Errorf("not an article pathname: %q", pathname)
	}
	return c.fetchPage(ctx, c.BaseURL+"/api/rest_v1/page/summary/"+title)
}

func (c *Client) fetchPage(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return "", fmt.Errorf("wiki status %d", resp.StatusCode)
	}
	var out summary
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	if out.ContentURLs.Desktop.Page == "" {
		return "", errors.New("summary response missing page URL")
	}
	return out.ContentURLs.Desktop.Page, nil
}

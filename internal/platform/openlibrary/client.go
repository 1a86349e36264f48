package openlibrary

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

type Client struct {
	httpClient *http.Client
	userAgent  string
	baseURL    string
	limiter    *rate.Limiter
}

func NewClient(userAgent string, rps int) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
		userAgent: userAgent,
		baseURL:   "https://openlibrary.org",
		limiter:   rate.NewLimiter(rate.Every(time.Second/time.Duration(rps)), 1),
	}
}

// SearchResponse matches search.json
type SearchResponse struct {
	NumFound int   `json:"numFound"`
	Docs     []Doc `json:"docs"`
}

type Doc struct {
	Key     string `json:"key"`
	Title   string `json:"title"`
	CoverID int    `json:"cover_i"`
}

func (c *Client) SearchByISBN(ctx context.Context, isbn string) (*SearchResponse, error) {
	u := fmt.Sprintf("%s/search.json?isbn=%s&fields=key,title,cover_i&limit=1",
		c.baseURL, url.QueryEscape(isbn))
	return c.search(ctx, u)
}

func (c *Client) SearchByTitle(ctx context.Context, title string) (*SearchResponse, error) {
	u := fmt.Sprintf("%s/search.json?title=%s&fields=key,title,cover_i&limit=1",
		c.baseURL, url.QueryEscape(title))
	return c.search(ctx, u)
}

// search issues a single GET. Callers absorb failures into a fallback, so
// there is no retry here.
func (c *Client) search(ctx context.Context, u string) (*SearchResponse, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
	}

	var res SearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
		return nil, err
	}
	return &res, nil
}

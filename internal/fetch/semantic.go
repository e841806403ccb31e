// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/pdiddy/citegraph/pkg/types"
)

// semanticAPIBase is the Semantic Scholar graph API root. Declared as a
// var so tests can substitute an httptest server.
var semanticAPIBase = "https://api.semanticscholar.org/graph/v1"

// Operation names, used in cache keys and error messages.
const (
	OpSearch     = "search"
	OpCitations  = "citations"
	OpReferences = "references"
)

const paperFields = "paperId,title,abstract,authors,year,citationCount,referenceCount,url"

// Client fetches papers and citation links from the Semantic Scholar API.
// Zero fields fall back to defaults; the zero value works for anonymous use.
type Client struct {
	HTTP      *http.Client
	APIKey    string
	UserAgent string
	Policy    Policy
}

// NewClient builds a Client from configuration.
func NewClient(cfg types.FetchConfig) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		HTTP:      &http.Client{Timeout: timeout},
		APIKey:    cfg.APIKey,
		UserAgent: cfg.UserAgent,
		Policy: Policy{
			MaxAttempts: cfg.MaxAttempts,
			Delay:       cfg.RetryDelay,
		},
	}
}

// Search returns up to limit papers matching query, in API rank order.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]types.Paper, error) {
	params := url.Values{
		"query":  {query},
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {paperFields},
	}
	reqURL := semanticAPIBase + "/paper/search?" + params.Encode()

	var sr searchResponse
	if err := c.getJSON(ctx, OpSearch, reqURL, &sr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(sr.Data))
	for _, wp := range sr.Data {
		if wp.PaperID == "" {
			continue
		}
		papers = append(papers, wp.toPaper())
	}
	return papers, nil
}

// CitationsOf returns up to limit papers that cite paperID (forward
// citations), in API order.
func (c *Client) CitationsOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error) {
	return c.links(ctx, OpCitations, paperID, limit)
}

// ReferencesOf returns up to limit papers that paperID cites (backward
// citations), in API order.
func (c *Client) ReferencesOf(ctx context.Context, paperID string, limit int) ([]types.Paper, error) {
	return c.links(ctx, OpReferences, paperID, limit)
}

func (c *Client) links(ctx context.Context, op, paperID string, limit int) ([]types.Paper, error) {
	params := url.Values{
		"limit":  {fmt.Sprintf("%d", limit)},
		"fields": {paperFields},
	}
	reqURL := fmt.Sprintf("%s/paper/%s/%s?%s", semanticAPIBase, url.PathEscape(paperID), op, params.Encode())

	var lr linksResponse
	if err := c.getJSON(ctx, op, reqURL, &lr); err != nil {
		return nil, err
	}

	papers := make([]types.Paper, 0, len(lr.Data))
	for _, entry := range lr.Data {
		wp := entry.CitingPaper
		if op == OpReferences {
			wp = entry.CitedPaper
		}
		// The API returns a null wrapper for papers it cannot resolve.
		if wp == nil || wp.PaperID == "" {
			continue
		}
		papers = append(papers, wp.toPaper())
	}
	if len(papers) > limit {
		papers = papers[:limit]
	}
	return papers, nil
}

// getJSON performs one retried GET and decodes the body into out.
// Transport errors, 5xx, and 429 are retried per the policy; other 4xx
// and malformed bodies fail immediately as fatal.
func (c *Client) getJSON(ctx context.Context, op, reqURL string, out any) error {
	return c.Policy.Do(ctx, op, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return &Error{Kind: KindFatal, Op: op, Err: err}
		}
		if c.UserAgent != "" {
			req.Header.Set("User-Agent", c.UserAgent)
		}
		if c.APIKey != "" {
			req.Header.Set("x-api-key", c.APIKey)
		}

		httpClient := c.HTTP
		if httpClient == nil {
			httpClient = http.DefaultClient
		}

		resp, err := httpClient.Do(req)
		if err != nil {
			return &Error{Kind: KindRetryable, Op: op, Err: err}
		}
		defer resp.Body.Close()

		switch {
		case resp.StatusCode == http.StatusOK:
			// Decoded below.
		case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
			io.Copy(io.Discard, resp.Body)
			return &Error{Kind: KindRetryable, Op: op, Status: resp.StatusCode,
				Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
		default:
			io.Copy(io.Discard, resp.Body)
			return &Error{Kind: KindFatal, Op: op, Status: resp.StatusCode,
				Err: fmt.Errorf("HTTP %d", resp.StatusCode)}
		}

		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			return &Error{Kind: KindFatal, Op: op, Err: fmt.Errorf("parsing response: %w", err)}
		}
		return nil
	})
}

// Semantic Scholar API JSON structures.
type searchResponse struct {
	Total  int         `json:"total"`
	Offset int         `json:"offset"`
	Data   []wirePaper `json:"data"`
}

type linksResponse struct {
	Offset int         `json:"offset"`
	Data   []linkEntry `json:"data"`
}

// linkEntry wraps the linked paper: the citations endpoint nests it under
// "citingPaper", the references endpoint under "citedPaper".
type linkEntry struct {
	CitingPaper *wirePaper `json:"citingPaper"`
	CitedPaper  *wirePaper `json:"citedPaper"`
}

type wirePaper struct {
	PaperID        string       `json:"paperId"`
	Title          string       `json:"title"`
	Abstract       string       `json:"abstract"`
	Authors        []wireAuthor `json:"authors"`
	Year           int          `json:"year"`
	CitationCount  int          `json:"citationCount"`
	ReferenceCount int          `json:"referenceCount"`
	URL            string       `json:"url"`
}

type wireAuthor struct {
	AuthorID string `json:"authorId"`
	Name     string `json:"name"`
}

// toPaper normalizes the loose API shape into the fixed Paper structure.
func (wp *wirePaper) toPaper() types.Paper {
	p := types.Paper{
		PaperID:        wp.PaperID,
		Title:          wp.Title,
		Abstract:       wp.Abstract,
		Year:           wp.Year,
		CitationCount:  wp.CitationCount,
		ReferenceCount: wp.ReferenceCount,
		URL:            wp.URL,
	}
	for _, a := range wp.Authors {
		if a.Name != "" {
			p.Authors = append(p.Authors, a.Name)
		}
	}
	return p
}

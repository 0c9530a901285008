// Package metadata looks up book metadata from Open Library. The rest of
// the system only sees BookCandidate values; how a candidate becomes a
// Book is the book service's concern.
package metadata

import (
	"context"
	"encoding/json/v2"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	apperrors "github.com/mindleafapp/mindleaf/internal/errors"
	"github.com/mindleafapp/mindleaf/internal/ratelimit"
)

// Open Library asks for polite usage; stay well under their guidance.
const (
	lookupRPS   = 2
	lookupBurst = 4
)

// BookCandidate is one external lookup result.
type BookCandidate struct {
	Title     string `json:"title"`
	Author    string `json:"author"`
	ISBN      string `json:"isbn,omitempty"`
	CoverURL  string `json:"cover_url,omitempty"`
	PageCount int    `json:"page_count,omitempty"`
}

// Client queries the Open Library search API.
type Client struct {
	httpClient   *http.Client
	baseURL      string
	coverBaseURL string
	limiter      *ratelimit.KeyedRateLimiter
	logger       *slog.Logger
}

// NewClient creates a metadata client. Empty URLs fall back to the public
// Open Library endpoints.
func NewClient(baseURL, coverBaseURL string, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = "https://openlibrary.org"
	}
	if coverBaseURL == "" {
		coverBaseURL = "https://covers.openlibrary.org"
	}
	return &Client{
		httpClient:   &http.Client{Timeout: 10 * time.Second},
		baseURL:      baseURL,
		coverBaseURL: coverBaseURL,
		limiter:      ratelimit.New(lookupRPS, lookupBurst),
		logger:       logger,
	}
}

// searchResponse mirrors the fields we use from /search.json.
type searchResponse struct {
	NumFound int         `json:"numFound"`
	Docs     []searchDoc `json:"docs"`
}

type searchDoc struct {
	Title           string   `json:"title"`
	AuthorName      []string `json:"author_name"`
	ISBN            []string `json:"isbn"`
	CoverID         int64    `json:"cover_i"`
	NumberOfPagesMd int      `json:"number_of_pages_median"`
}

// Search returns candidates for a free-text query, best matches first.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]BookCandidate, error) {
	if query == "" {
		return nil, apperrors.Validation("search query is required")
	}
	if limit <= 0 {
		limit = 10
	}

	endpoint := fmt.Sprintf("%s/search.json?q=%s&limit=%d&fields=title,author_name,isbn,cover_i,number_of_pages_median",
		c.baseURL, url.QueryEscape(query), limit)

	res, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}

	candidates := make([]BookCandidate, 0, len(res.Docs))
	for _, doc := range res.Docs {
		candidates = append(candidates, c.candidate(doc))
	}

	c.logger.Debug("metadata search completed",
		"query", query, "results", len(candidates), "total", res.NumFound)
	return candidates, nil
}

// LookupISBN returns the best candidate for one ISBN, or NotFound.
func (c *Client) LookupISBN(ctx context.Context, isbn string) (*BookCandidate, error) {
	if isbn == "" {
		return nil, apperrors.Validation("isbn is required")
	}

	endpoint := fmt.Sprintf("%s/search.json?q=isbn:%s&limit=1&fields=title,author_name,isbn,cover_i,number_of_pages_median",
		c.baseURL, url.QueryEscape(isbn))

	res, err := c.fetch(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	if len(res.Docs) == 0 {
		return nil, apperrors.NotFoundf("no book found for isbn %s", isbn)
	}

	candidate := c.candidate(res.Docs[0])
	if candidate.ISBN == "" {
		candidate.ISBN = isbn
	}
	return &candidate, nil
}

func (c *Client) fetch(ctx context.Context, endpoint string) (*searchResponse, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if err := c.limiter.Wait(ctx, req.URL.Host); err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "metadata lookup failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperrors.Internal("metadata lookup returned status " + strconv.Itoa(resp.StatusCode))
	}

	var out searchResponse
	if err := json.UnmarshalRead(resp.Body, &out); err != nil {
		return nil, apperrors.Wrap(err, apperrors.CodeInternal, "decode metadata response")
	}
	return &out, nil
}

func (c *Client) candidate(doc searchDoc) BookCandidate {
	cand := BookCandidate{
		Title:     doc.Title,
		PageCount: doc.NumberOfPagesMd,
	}
	if len(doc.AuthorName) > 0 {
		cand.Author = doc.AuthorName[0]
	}
	if len(doc.ISBN) > 0 {
		cand.ISBN = doc.ISBN[0]
	}
	if doc.CoverID > 0 {
		cand.CoverURL = fmt.Sprintf("%s/b/id/%d-M.jpg", c.coverBaseURL, doc.CoverID)
	}
	return cand
}

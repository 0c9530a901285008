package search

import (
	"context"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Params configures a search query.
type Params struct {
	Query  string    // User's search query
	Types  []DocType // Document types to include (empty = all)
	Limit  int
	Offset int
}

// DefaultParams returns sensible defaults.
func DefaultParams(q string) Params {
	return Params{
		Query: q,
		Limit: 20,
	}
}

// Result holds the search results.
type Result struct {
	Query  string `json:"query"`
	Total  uint64 `json:"total"`
	TookMs int64  `json:"took_ms"`
	Hits   []Hit  `json:"hits"`
}

// Hit is a single search result.
type Hit struct {
	ID     string  `json:"id"`
	Type   DocType `json:"type"`
	Score  float64 `json:"score"`
	Title  string  `json:"title"`
	Author string  `json:"author,omitempty"`
}

// Search executes a federated search across indexed books and journal
// entries.
func (s *Index) Search(ctx context.Context, params Params) (*Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if params.Limit <= 0 {
		params.Limit = 20
	}

	searchQuery := buildQuery(params)
	request := bleve.NewSearchRequestOptions(searchQuery, params.Limit, params.Offset, false)
	request.Fields = []string{"id", "type", "title", "author"}

	res, err := s.index.SearchInContext(ctx, request)
	if err != nil {
		return nil, err
	}

	out := &Result{
		Query:  params.Query,
		Total:  res.Total,
		TookMs: res.Took.Milliseconds(),
		Hits:   make([]Hit, 0, len(res.Hits)),
	}
	for _, hit := range res.Hits {
		h := Hit{ID: hit.ID, Score: hit.Score}
		if v, ok := hit.Fields["type"].(string); ok {
			h.Type = DocType(v)
		}
		if v, ok := hit.Fields["title"].(string); ok {
			h.Title = v
		}
		if v, ok := hit.Fields["author"].(string); ok {
			h.Author = v
		}
		out.Hits = append(out.Hits, h)
	}
	return out, nil
}

func buildQuery(params Params) query.Query {
	var base query.Query
	if params.Query == "" {
		base = bleve.NewMatchAllQuery()
	} else {
		match := bleve.NewMatchQuery(params.Query)
		base = match
	}

	if len(params.Types) == 0 {
		return base
	}

	typeQueries := make([]query.Query, 0, len(params.Types))
	for _, t := range params.Types {
		tq := bleve.NewTermQuery(string(t))
		tq.SetField("type")
		typeQueries = append(typeQueries, tq)
	}

	conjunction := bleve.NewConjunctionQuery(base, bleve.NewDisjunctionQuery(typeQueries...))
	return conjunction
}

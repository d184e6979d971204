package enrich

import "context"

// SearchClient queries an AI search/RAG service for prior notes or
// guideline passages similar to a rendered note. Out-of-core by design:
// retrieval quality has no bearing on parsing correctness.
type SearchClient struct {
	client *resilientClient
}

// NewSearchClient creates a client against an AI search/RAG service.
func NewSearchClient(cfg ClientConfig) *SearchClient {
	return &SearchClient{client: newResilientClient("ai-search", cfg)}
}

// SearchRequest is a similarity query over a rendered note's text.
type SearchRequest struct {
	Query string `json:"query"`
	TopK  int    `json:"top_k"`
}

// SearchHit is one retrieved passage with its similarity score.
type SearchHit struct {
	Source     string  `json:"source"`
	Excerpt    string  `json:"excerpt"`
	Similarity float64 `json:"similarity"`
}

// SearchResult is the ranked list of retrieved passages.
type SearchResult struct {
	Hits []SearchHit `json:"hits"`
}

// Search queries the upstream service for passages similar to query,
// returning at most topK hits.
func (c *SearchClient) Search(ctx context.Context, query string, topK int) (*SearchResult, error) {
	if topK <= 0 {
		topK = 5
	}

	req := SearchRequest{Query: query, TopK: topK}
	var result SearchResult
	if err := c.client.postJSON(ctx, "/v1/search", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package enrich

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

func TestEnrichmentClient_Enrich(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/enrich", r.URL.Path)
		json.NewEncoder(w).Encode(EnrichmentResult{Annotations: []string{"consider beta-blocker"}, Confidence: 0.8})
	}))
	defer srv.Close()

	c := NewEnrichmentClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second, RateLimitPerSecond: 100})

	rendered := domain.RenderedNote{Text: "Assessment: Hypertension"}
	diagnoses := []domain.Diagnosis{{Canonical: "Hypertension"}}

	result, err := c.Enrich(context.Background(), rendered, diagnoses)
	require.NoError(t, err)
	require.Len(t, result.Annotations, 1)
	assert.Equal(t, "consider beta-blocker", result.Annotations[0])
}

func TestSearchClient_Search(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/search", r.URL.Path)
		json.NewEncoder(w).Encode(SearchResult{Hits: []SearchHit{{Source: "guideline", Excerpt: "...", Similarity: 0.9}}})
	}))
	defer srv.Close()

	c := NewSearchClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second, RateLimitPerSecond: 100})

	result, err := c.Search(context.Background(), "chest pain management", 3)
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)
	assert.Equal(t, "guideline", result.Hits[0].Source)
}

func TestQAClient_Ask(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/qa", r.URL.Path)
		json.NewEncoder(w).Encode(QAResult{Answer: "Improving", Confidence: 0.7})
	}))
	defer srv.Close()

	c := NewQAClient(ClientConfig{BaseURL: srv.URL, Timeout: time.Second, RateLimitPerSecond: 100})

	result, err := c.Ask(context.Background(), "How is renal function trending?", "BUN 20, Cr 1.1")
	require.NoError(t, err)
	assert.Equal(t, "Improving", result.Answer)
}

func TestResilientClient_CircuitBreakerOpensOnRepeatedFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewQAClient(ClientConfig{
		BaseURL:            srv.URL,
		Timeout:            time.Second,
		RateLimitPerSecond: 100,
		CircuitMaxRequests: 1,
		CircuitInterval:    time.Minute,
		CircuitTimeout:     time.Minute,
	})

	for i := 0; i < 3; i++ {
		_, err := c.Ask(context.Background(), "q", "note")
		assert.Error(t, err)
	}

	_, err := c.Ask(context.Background(), "q", "note")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "circuit breaker open")
}

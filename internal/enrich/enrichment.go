package enrich

import (
	"context"

	"github.com/sony/gobreaker"

	"github.com/clinacuity/clinical-note-parser/internal/domain"
)

// EnrichmentClient expands a rendered note with additional clinical context
// — e.g. spelling out an abbreviation the normalizer left untouched, or
// flagging a drug interaction the safety validator doesn't know about. It
// is strictly post-processing: called with an already-rendered note, never
// consulted during parsing.
type EnrichmentClient struct {
	client *resilientClient
}

// NewEnrichmentClient creates a client against an AI enrichment service.
func NewEnrichmentClient(cfg ClientConfig) *EnrichmentClient {
	return &EnrichmentClient{client: newResilientClient("ai-enrichment", cfg)}
}

// EnrichmentRequest carries the already-rendered note text to the upstream
// enrichment service, plus the structured diagnoses for context.
type EnrichmentRequest struct {
	RenderedText string   `json:"rendered_text"`
	Diagnoses    []string `json:"diagnoses"`
}

// EnrichmentResult is the upstream service's suggested additions.
type EnrichmentResult struct {
	Annotations []string `json:"annotations"`
	Confidence  float64  `json:"confidence"`
}

// CircuitOpen reports whether the breaker guarding this client is
// currently open, for health reporting.
func (c *EnrichmentClient) CircuitOpen() bool {
	return c.client.State() == gobreaker.StateOpen
}

// Enrich calls the upstream service with the rendered note and its
// diagnoses, returning suggested annotations.
func (c *EnrichmentClient) Enrich(ctx context.Context, rendered domain.RenderedNote, diagnoses []domain.Diagnosis) (*EnrichmentResult, error) {
	names := make([]string, 0, len(diagnoses))
	for _, d := range diagnoses {
		names = append(names, d.Canonical)
	}

	req := EnrichmentRequest{RenderedText: rendered.Text, Diagnoses: names}
	var result EnrichmentResult
	if err := c.client.postJSON(ctx, "/v1/enrich", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

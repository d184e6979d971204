package enrich

import "context"

// QAClient answers a free-text question about an already-rendered note,
// e.g. "what is this patient's renal function trend?". It is a
// conversational convenience layered on top of the parser's structured
// output, never a substitute for it.
type QAClient struct {
	client *resilientClient
}

// NewQAClient creates a client against an AI question-answering service.
func NewQAClient(cfg ClientConfig) *QAClient {
	return &QAClient{client: newResilientClient("ai-qa", cfg)}
}

// QARequest pairs a question with the rendered note text it's about.
type QARequest struct {
	Question     string `json:"question"`
	RenderedText string `json:"rendered_text"`
}

// QAResult is the upstream service's answer and its confidence.
type QAResult struct {
	Answer     string  `json:"answer"`
	Confidence float64 `json:"confidence"`
}

// Ask submits question against renderedText and returns the answer.
func (c *QAClient) Ask(ctx context.Context, question, renderedText string) (*QAResult, error) {
	req := QARequest{Question: question, RenderedText: renderedText}
	var result QAResult
	if err := c.client.postJSON(ctx, "/v1/qa", req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

package llm

import "context"

// Provider sends a rendered prompt to one model API.
type Provider interface {
	Name() string
	Complete(ctx context.Context, req *Request) (*Response, error)
}

// Request is a provider-neutral completion request.
type Request struct {
	System      string
	Prompt      string
	MaxTokens   int
	Temperature float64
}

// Usage reports token counts for a completion.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Response is a provider-neutral completion response.
type Response struct {
	Text       string
	Model      string
	StopReason string
	Usage      Usage
}

package llm

import "context"

type Message struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// Request is a single completion call. Function calls travel inside the text
// of the response, so there is no tool plumbing at this layer.
type Request struct {
	SystemPrompt string
	Messages     []Message
	Temperature  float64
	MaxTokens    int
}

type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

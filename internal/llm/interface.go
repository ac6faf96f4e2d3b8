// Package llm defines the provider-agnostic contract shared by every LLM
// backend. Clients translate the normalized message sequence into their wire
// dialect and return a normalized reply; all failures are *core.Error values
// from the provider taxonomy.
package llm

import "context"

// Client is the interface implemented by every LLM backend.
type Client interface {
	Name() string
	Generate(ctx context.Context, messages []Message) (*Reply, error)
}

// Message roles understood by the providers.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Reply holds the normalized response from a provider.
type Reply struct {
	Text string
}

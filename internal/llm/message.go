package llm

import "strings"

// Message is one normalized conversation turn. Content is carried as parts so
// providers that return multi-part content can be mapped without changing
// call sites; most messages have a single part.
type Message struct {
	Role  string
	Parts []string
}

// UserMessage creates a user message with a single text part.
func UserMessage(text string) Message {
	return Message{Role: RoleUser, Parts: []string{text}}
}

// AssistantMessage creates an assistant message with a single text part.
func AssistantMessage(text string) Message {
	return Message{Role: RoleAssistant, Parts: []string{text}}
}

// Text joins all non-empty parts with a newline.
func (m Message) Text() string {
	if len(m.Parts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		if p != "" {
			parts = append(parts, p)
		}
	}
	return strings.Join(parts, "\n")
}

// NormalizeRole maps provider-specific role spellings onto the two roles the
// adapter understands: "user" in any casing stays user, everything else
// (including "model", "system" and blank) becomes assistant.
func NormalizeRole(role string) string {
	if strings.EqualFold(strings.TrimSpace(role), RoleUser) {
		return RoleUser
	}
	return RoleAssistant
}

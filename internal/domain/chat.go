package domain

// Chat message roles accepted by the completion endpoints.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage is the provider-agnostic chat message shape used by the
// command layer and LLM integrations. Message order within a conversation
// is significant: it determines the model's context.
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

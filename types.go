package llmpipeline

// Role identifies the author of a ChatMessage.
type Role string

// Conversation roles
const (
	// RoleSystem carries instructions that frame the whole exchange.
	// System messages are lifted out of the message list and sent in the
	// wire-level system field (see NormalizeMessages).
	RoleSystem Role = "system"

	// RoleUser is the human (or calling application) turn.
	RoleUser Role = "user"

	// RoleAssistant is a prior model turn replayed for context.
	RoleAssistant Role = "assistant"
)

// String returns the wire representation of the role.
func (r Role) String() string {
	return string(r)
}

// IsValid returns true if the role is one of the known conversation roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleSystem, RoleUser, RoleAssistant:
		return true
	default:
		return false
	}
}

// ChatMessage is one turn of the conversation sent with a request.
// Messages are immutable once constructed; their order in the request
// is the order sent on the wire. They carry no identity beyond position.
type ChatMessage struct {
	// Role is the message author: system, user, or assistant.
	Role Role

	// Text is the plain-text content of the turn.
	Text string
}

// NewUserMessage constructs a user-role message.
func NewUserMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleUser, Text: text}
}

// NewAssistantMessage constructs an assistant-role message.
func NewAssistantMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleAssistant, Text: text}
}

// NewSystemMessage constructs a system-role message.
func NewSystemMessage(text string) ChatMessage {
	return ChatMessage{Role: RoleSystem, Text: text}
}

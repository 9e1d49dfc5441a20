package llmpipeline

import "strings"

// syntheticUserTurn is injected when a conversation would otherwise start
// with an assistant turn (or contain no turns at all). Chat completion APIs
// reject both shapes.
const syntheticUserTurn = "Continue."

// NormalizeMessages reshapes a conversation into the form chat completion
// APIs accept.
//
// Strategy:
//  1. Lift system-role messages out of the turn list and concatenate them
//     (after any explicit system prompt) into a single system string
//  2. Merge consecutive same-role turns into one message
//  3. Inject a synthetic user turn when the list is empty or starts with
//     an assistant turn
//
// The input slice is never mutated; callers can reuse the request.
func NormalizeMessages(system *string, messages []ChatMessage) (*string, []ChatMessage) {
	systemParts := []string{}
	if system != nil && *system != "" {
		systemParts = append(systemParts, *system)
	}

	normalized := make([]ChatMessage, 0, len(messages))
	for _, msg := range messages {
		if msg.Role == RoleSystem {
			if msg.Text != "" {
				systemParts = append(systemParts, msg.Text)
			}
			continue
		}

		// Merge into the previous turn when the role repeats.
		if n := len(normalized); n > 0 && normalized[n-1].Role == msg.Role {
			normalized[n-1].Text = joinTurns(normalized[n-1].Text, msg.Text)
			continue
		}

		normalized = append(normalized, msg)
	}

	if len(normalized) == 0 || normalized[0].Role != RoleUser {
		normalized = append([]ChatMessage{NewUserMessage(syntheticUserTurn)}, normalized...)
	}

	var normalizedSystem *string
	if len(systemParts) > 0 {
		joined := strings.Join(systemParts, "\n\n")
		normalizedSystem = &joined
	}

	return normalizedSystem, normalized
}

func joinTurns(a, b string) string {
	if a == "" {
		return b
	}
	if b == "" {
		return a
	}
	return a + "\n\n" + b
}

package llm

// TrimMessages trims a message history to fit within a token budget.
//
// The budget should already account for the system prompt and a reserve for
// the model's output. This function only manages the message list itself.
//
// Strategy:
//  1. Group messages into exchanges (a user message plus the assistant
//     reply that follows it).
//  2. Always keep the most recent exchange (the active turn).
//  3. Drop the oldest exchanges first until the total fits within budget.
//
// Exchanges are never split — either the whole pair stays or goes, so the
// model never sees an assistant reply without the message that prompted it.
func TrimMessages(messages []Message, maxTokens int) []Message {
	if len(messages) == 0 {
		return messages
	}

	groups := groupMessages(messages)

	total := 0
	for _, g := range groups {
		total += g.tokens
	}

	if total <= maxTokens {
		return messages
	}

	// Always keep the last group (active turn). Trim from the front.
	kept := total
	dropUntil := 0
	for dropUntil < len(groups)-1 && kept > maxTokens {
		kept -= groups[dropUntil].tokens
		dropUntil++
	}

	// Rebuild the message slice from the surviving groups.
	var trimmed []Message
	for _, g := range groups[dropUntil:] {
		trimmed = append(trimmed, g.messages...)
	}
	return trimmed
}

// messageGroup is a logical unit of conversation that must be kept or
// dropped as a whole.
type messageGroup struct {
	messages []Message
	tokens   int
}

// groupMessages splits a message slice into exchanges: a user message and
// the assistant message that directly follows it form one group; anything
// else stands alone.
func groupMessages(messages []Message) []messageGroup {
	var groups []messageGroup
	i := 0
	for i < len(messages) {
		msg := messages[i]

		if msg.Role == "user" && i+1 < len(messages) && messages[i+1].Role == "assistant" {
			pair := []Message{msg, messages[i+1]}
			groups = append(groups, messageGroup{
				messages: pair,
				tokens:   EstimateMessageTokens(pair[0]) + EstimateMessageTokens(pair[1]),
			})
			i += 2
			continue
		}

		groups = append(groups, messageGroup{
			messages: []Message{msg},
			tokens:   EstimateMessageTokens(msg),
		})
		i++
	}
	return groups
}

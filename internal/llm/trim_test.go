package llm

import (
	"strings"
	"testing"
)

func exchange(user, assistant string) []Message {
	return []Message{
		{Role: "user", Content: user},
		{Role: "assistant", Content: assistant},
	}
}

func TestTrimMessagesFitsUntouched(t *testing.T) {
	msgs := append(exchange("oi", "olá"), Message{Role: "user", Content: "tudo bem?"})
	trimmed := TrimMessages(msgs, 1000)
	if len(trimmed) != len(msgs) {
		t.Errorf("expected no trimming, got %d of %d", len(trimmed), len(msgs))
	}
}

func TestTrimMessagesDropsOldestExchangeFirst(t *testing.T) {
	long := strings.Repeat("x", 400) // ~100 tokens per message
	var msgs []Message
	msgs = append(msgs, exchange("primeira "+long, "resposta "+long)...)
	msgs = append(msgs, exchange("segunda "+long, "resposta "+long)...)
	msgs = append(msgs, Message{Role: "user", Content: "atual"})

	budget := EstimateMessagesTokens(msgs) - 1
	trimmed := TrimMessages(msgs, budget)

	if len(trimmed) != 3 {
		t.Fatalf("expected the oldest pair dropped, got %d messages", len(trimmed))
	}
	if !strings.HasPrefix(trimmed[0].Content, "segunda") {
		t.Errorf("wrong exchange dropped: %q", trimmed[0].Content)
	}
	if trimmed[2].Content != "atual" {
		t.Errorf("active turn must survive, got %q", trimmed[2].Content)
	}
}

func TestTrimMessagesNeverSplitsExchange(t *testing.T) {
	var msgs []Message
	for i := 0; i < 4; i++ {
		msgs = append(msgs, exchange(strings.Repeat("u", 100), strings.Repeat("a", 100))...)
	}
	msgs = append(msgs, Message{Role: "user", Content: "atual"})

	trimmed := TrimMessages(msgs, 60)
	for i := 0; i < len(trimmed)-1; i++ {
		if trimmed[i].Role == "assistant" && (i == 0 || trimmed[i-1].Role != "user") {
			t.Fatalf("assistant message at %d lost its user message", i)
		}
	}
}

func TestTrimMessagesAlwaysKeepsLastGroup(t *testing.T) {
	msgs := []Message{{Role: "user", Content: strings.Repeat("x", 4000)}}
	trimmed := TrimMessages(msgs, 10)
	if len(trimmed) != 1 {
		t.Fatalf("the active turn must never be dropped, got %d messages", len(trimmed))
	}
}

func TestTrimMessagesEmpty(t *testing.T) {
	if got := TrimMessages(nil, 100); len(got) != 0 {
		t.Errorf("expected empty result, got %v", got)
	}
}

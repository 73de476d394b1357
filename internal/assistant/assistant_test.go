package assistant

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/rafael/ritmo/internal/llm"
	"github.com/rafael/ritmo/internal/store"
)

// scriptedClient returns canned completions in order. A nil entry in errs
// means that call succeeds.
type scriptedClient struct {
	responses []string
	errs      []error
	requests  []llm.Request
}

func (c *scriptedClient) Complete(_ context.Context, r llm.Request) (string, error) {
	i := len(c.requests)
	c.requests = append(c.requests, r)
	if i < len(c.errs) && c.errs[i] != nil {
		return "", c.errs[i]
	}
	if i >= len(c.responses) {
		return "", errors.New("unexpected extra completion call")
	}
	return c.responses[i], nil
}

func newTestAssistant(t *testing.T, client llm.Client) (*Assistant, *store.Store, int64) {
	t.Helper()
	s, err := store.Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	userID, err := s.EnsureUser("Ana")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	loc, _ := time.LoadLocation("America/Sao_Paulo")
	clock := NewClock(loc).WithNow(func() time.Time {
		return time.Date(2024, 1, 20, 10, 0, 0, 0, loc)
	})
	a := New(s, client, clock, 100000)
	return a, s, userID
}

func TestRespondSchedulesEvent(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`Claro! [FUNCTION: create_event {"title": "Reunião", "startDate": "2024-01-21T12:00:00"}]`,
		"Pronto, Ana! Reunião agendada para amanhã ao meio-dia.",
	}}
	a, s, userID := newTestAssistant(t, client)

	reply, err := a.Respond(context.Background(), userID, "sess-1", "Agendar reunião amanhã às 12:00")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(reply.Executed) != 1 || !reply.Executed[0].Result.Success {
		t.Fatalf("expected one successful call, got %+v", reply.Executed)
	}
	if reply.Message != "Pronto, Ana! Reunião agendada para amanhã ao meio-dia." {
		t.Errorf("unexpected reply: %q", reply.Message)
	}

	events, _ := s.UpcomingEvents(userID, "2024-01-21 00:00:00", 5)
	if len(events) != 1 || events[0].StartAt != "2024-01-21 12:00:00" {
		t.Errorf("event not persisted as expected: %v", events)
	}

	turns, _ := s.GetSession("sess-1")
	if len(turns) != 2 {
		t.Fatalf("expected user+assistant turns, got %d", len(turns))
	}
	if turns[1].Role != "assistant" || turns[1].Metadata == "" {
		t.Errorf("assistant turn should carry execution metadata: %+v", turns[1])
	}
}

func TestRespondCreatesTask(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`[FUNCTION: create_task {"title": "estudar React"}]`,
		"Tarefa anotada! 📚",
	}}
	a, s, userID := newTestAssistant(t, client)

	reply, err := a.Respond(context.Background(), userID, "sess-1", "preciso estudar React")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(reply.Executed) != 1 {
		t.Fatalf("expected one call, got %d", len(reply.Executed))
	}

	tasks, _ := s.ListTasks(userID, store.TaskFilter{})
	if len(tasks) != 1 || tasks[0].Title != "estudar React" {
		t.Errorf("task not persisted: %v", tasks)
	}
	if tasks[0].Priority != store.PriorityMedium {
		t.Errorf("expected default priority, got %q", tasks[0].Priority)
	}
}

func TestRespondPlainConversation(t *testing.T) {
	client := &scriptedClient{responses: []string{
		"Olá, Ana! Em que posso ajudar hoje?",
	}}
	a, _, userID := newTestAssistant(t, client)

	reply, err := a.Respond(context.Background(), userID, "sess-1", "oi")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(reply.Executed) != 0 {
		t.Errorf("expected no executed calls, got %d", len(reply.Executed))
	}
	if reply.Message != "Olá, Ana! Em que posso ajudar hoje?" {
		t.Errorf("unexpected reply: %q", reply.Message)
	}
	// No calls means no synthesis round-trip.
	if len(client.requests) != 1 {
		t.Errorf("expected a single model call, got %d", len(client.requests))
	}
}

func TestRespondCompletionErrorIsFatal(t *testing.T) {
	client := &scriptedClient{errs: []error{errors.New("model unavailable")}}
	a, s, userID := newTestAssistant(t, client)

	_, err := a.Respond(context.Background(), userID, "sess-1", "oi")
	if err == nil {
		t.Fatal("expected error when completion fails")
	}

	turns, _ := s.GetSession("sess-1")
	if len(turns) != 1 || turns[0].Role != "user" {
		t.Errorf("only the user turn should be persisted, got %+v", turns)
	}
}

func TestRespondSynthesisFallback(t *testing.T) {
	client := &scriptedClient{
		responses: []string{
			`[FUNCTION: create_task {"title": "pagar contas"}]`,
			"",
		},
		errs: []error{nil, errors.New("synthesis down")},
	}
	a, _, userID := newTestAssistant(t, client)

	reply, err := a.Respond(context.Background(), userID, "sess-1", "lembrar de pagar contas")
	if err != nil {
		t.Fatalf("Respond should survive synthesis failure: %v", err)
	}
	if !strings.Contains(reply.Message, "✅") {
		t.Errorf("expected raw-result fallback, got %q", reply.Message)
	}
	if len(reply.Executed) != 1 || !reply.Executed[0].Result.Success {
		t.Errorf("execution result lost in fallback: %+v", reply.Executed)
	}
}

func TestRespondMultipleCallsOrdered(t *testing.T) {
	client := &scriptedClient{responses: []string{
		`[FUNCTION: create_task {"title": "um"}]
[FUNCTION: create_note {"title": "dois", "content": "texto"}]`,
		"Feito! Tarefa e nota criadas.",
	}}
	a, _, userID := newTestAssistant(t, client)

	reply, err := a.Respond(context.Background(), userID, "sess-1", "cria uma tarefa e uma nota")
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if len(reply.Executed) != 2 {
		t.Fatalf("expected 2 executed calls, got %d", len(reply.Executed))
	}
	if reply.Executed[0].Name != "create_task" || reply.Executed[1].Name != "create_note" {
		t.Errorf("execution order lost: %v, %v", reply.Executed[0].Name, reply.Executed[1].Name)
	}
}

func TestRespondPromptCarriesTemporalContext(t *testing.T) {
	client := &scriptedClient{responses: []string{"Olá!"}}
	a, _, userID := newTestAssistant(t, client)

	if _, err := a.Respond(context.Background(), userID, "sess-1", "oi"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	prompt := client.requests[0].SystemPrompt
	if !strings.Contains(prompt, "Hoje: 2024-01-20") || !strings.Contains(prompt, "Amanhã: 2024-01-21") {
		t.Errorf("system prompt missing literal dates:\n%s", prompt)
	}
	if !strings.Contains(prompt, "Nome: Ana") {
		t.Error("system prompt missing user name")
	}
}

func TestRespondPromptCarriesRecentNotes(t *testing.T) {
	client := &scriptedClient{responses: []string{"Olá!"}}
	a, s, userID := newTestAssistant(t, client)

	if _, err := s.CreateNote(userID, "ideias de presente", "texto", "", nil); err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if _, err := a.Respond(context.Background(), userID, "sess-1", "oi"); err != nil {
		t.Fatalf("Respond: %v", err)
	}
	if !strings.Contains(client.requests[0].SystemPrompt, "ideias de presente") {
		t.Error("system prompt missing the recent note")
	}
}

func TestRespondHistoryFlowsIntoNextTurn(t *testing.T) {
	client := &scriptedClient{responses: []string{"Primeira resposta.", "Segunda resposta."}}
	a, _, userID := newTestAssistant(t, client)

	if _, err := a.Respond(context.Background(), userID, "sess-1", "primeira pergunta"); err != nil {
		t.Fatalf("first Respond: %v", err)
	}
	if _, err := a.Respond(context.Background(), userID, "sess-1", "segunda pergunta"); err != nil {
		t.Fatalf("second Respond: %v", err)
	}

	second := client.requests[1]
	if len(second.Messages) != 3 {
		t.Fatalf("expected 3 messages (two user turns + one assistant), got %d", len(second.Messages))
	}
	if second.Messages[0].Content != "primeira pergunta" || second.Messages[1].Content != "Primeira resposta." {
		t.Errorf("history out of order: %+v", second.Messages)
	}
}

func TestRespondRejectsForeignSession(t *testing.T) {
	client := &scriptedClient{responses: []string{"Olá!"}}
	a, _, userID := newTestAssistant(t, client)

	if _, err := a.Respond(context.Background(), userID, "sess-1", "oi"); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	if _, err := a.Respond(context.Background(), userID+1, "sess-1", "oi"); err == nil {
		t.Error("expected error when another user reuses the session ID")
	}
}

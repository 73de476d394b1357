package assistant

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"

	"github.com/rafael/ritmo/internal/llm"
	"github.com/rafael/ritmo/internal/store"
)

const (
	// completionTemperature stays low: the response must carry
	// machine-parseable call syntax, so determinism beats creativity.
	completionTemperature = 0.3
	completionMaxTokens   = 1000
)

// Assistant orchestrates one conversation turn: compose prompt, get a
// completion, extract calls, execute them, synthesize the final reply, and
// persist the exchange.
type Assistant struct {
	store            *store.Store
	client           llm.Client
	executor         *Executor
	clock            *Clock
	maxContextTokens int
}

// Reply is the outcome of one turn handed back to the transport layer.
type Reply struct {
	Message  string
	Executed []ExecutedCall
}

func New(st *store.Store, client llm.Client, clock *Clock, maxContextTokens int) *Assistant {
	return &Assistant{
		store:            st,
		client:           client,
		executor:         NewExecutor(st, clock),
		clock:            clock,
		maxContextTokens: maxContextTokens,
	}
}

// Respond processes one user message within a session. A completion failure
// is fatal for the turn (the user's message is already logged, no assistant
// turn is persisted); everything downstream degrades instead of failing.
func (a *Assistant) Respond(ctx context.Context, callerUserID int64, sessionID, message string) (*Reply, error) {
	if err := a.store.EnsureSession(sessionID, callerUserID); err != nil {
		return nil, fmt.Errorf("ensuring session: %w", err)
	}

	turns, err := a.store.GetSession(sessionID)
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	history := make([]llm.Message, 0, len(turns)+1)
	for _, t := range turns {
		history = append(history, llm.Message{Role: t.Role, Content: t.Content})
	}

	uc, err := a.loadUserContext(ctx, callerUserID)
	if err != nil {
		return nil, fmt.Errorf("loading user context: %w", err)
	}

	tc := a.clock.Snapshot()
	systemPrompt := ComposePrompt(uc, tc)

	if err := a.store.AppendTurn(sessionID, "user", message, ""); err != nil {
		return nil, fmt.Errorf("persisting user turn: %w", err)
	}

	// The new user message is always last; older exchanges are trimmed first.
	messages := append(history, llm.Message{Role: "user", Content: message})
	budget := a.maxContextTokens - llm.EstimateTokens(systemPrompt)
	if budget < 1000 {
		budget = 1000 // floor so we always have room for the current turn
	}
	trimmed := llm.TrimMessages(messages, budget)
	if len(trimmed) < len(messages) {
		slog.Info("context trimmed", "before", len(messages), "after", len(trimmed))
	}

	raw, err := a.client.Complete(ctx, llm.Request{
		SystemPrompt: systemPrompt,
		Messages:     trimmed,
		Temperature:  completionTemperature,
		MaxTokens:    completionMaxTokens,
	})
	if err != nil {
		return nil, fmt.Errorf("completion: %w", err)
	}

	extraction := Extract(raw)

	final := extraction.CleanText
	var executed []ExecutedCall
	if len(extraction.Calls) > 0 {
		executed = a.executor.ExecuteAll(extraction.Calls, callerUserID)
		final = Synthesize(ctx, a.client, message, executed, uc.Name)
	}

	metadata := ""
	if len(executed) > 0 {
		if b, err := json.Marshal(executed); err == nil {
			metadata = string(b)
		}
	}
	if err := a.store.AppendTurn(sessionID, "assistant", final, metadata); err != nil {
		// The reply is already computed; losing the audit row should not
		// cost the user their answer.
		slog.Error("persisting assistant turn", "error", err, "session_id", sessionID)
	}

	return &Reply{Message: final, Executed: executed}, nil
}

// loadUserContext gathers the profile snapshot for prompt composition. The
// reads are independent, so they run concurrently and join here.
func (a *Assistant) loadUserContext(ctx context.Context, userID int64) (UserContext, error) {
	var uc UserContext
	g, _ := errgroup.WithContext(ctx)

	g.Go(func() error {
		name, err := a.store.GetUserName(userID)
		uc.Name = name
		return err
	})
	g.Go(func() error {
		n, err := a.store.CountOpenTasks(userID)
		uc.OpenTasks = n
		return err
	})
	g.Go(func() error {
		n, err := a.store.CountNotes(userID)
		uc.Notes = n
		return err
	})
	g.Go(func() error {
		n, err := a.store.CountActiveGoals(userID)
		uc.ActiveGoals = n
		return err
	})
	g.Go(func() error {
		tasks, err := a.store.RecentTasks(userID, 5)
		uc.RecentTasks = tasks
		return err
	})
	g.Go(func() error {
		notes, err := a.store.RecentNotes(userID, 5)
		uc.RecentNotes = notes
		return err
	})
	g.Go(func() error {
		goals, err := a.store.ActiveGoals(userID, 5)
		uc.Goals = goals
		return err
	})

	if err := g.Wait(); err != nil {
		return UserContext{}, err
	}
	return uc, nil
}

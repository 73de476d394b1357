package store

import (
	"testing"
)

func openTestStore(t *testing.T) (*Store, int64) {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("opening test store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	userID, err := s.EnsureUser("Ana")
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	return s, userID
}

// --- Users ---

func TestEnsureUserIdempotent(t *testing.T) {
	s, userID := openTestStore(t)

	again, err := s.EnsureUser("Outro Nome")
	if err != nil {
		t.Fatalf("EnsureUser second call: %v", err)
	}
	if again != userID {
		t.Errorf("expected same user ID %d, got %d", userID, again)
	}
	name, err := s.GetUserName(userID)
	if err != nil {
		t.Fatalf("GetUserName: %v", err)
	}
	if name != "Ana" {
		t.Errorf("expected name Ana, got %q", name)
	}
}

// --- Tasks ---

func TestCreateTaskDefaults(t *testing.T) {
	s, userID := openTestStore(t)

	task, err := s.CreateTask(userID, "estudar React", "", "", "", "")
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if task.Priority != PriorityMedium {
		t.Errorf("expected default priority MEDIUM, got %q", task.Priority)
	}
	if task.Category == "" {
		t.Error("expected non-empty default category")
	}
	if task.Completed {
		t.Error("new task should not be completed")
	}
}

func TestListTasksFilters(t *testing.T) {
	s, userID := openTestStore(t)

	s.CreateTask(userID, "a", "", PriorityHigh, "", "")
	s.CreateTask(userID, "b", "", "", "", "")
	done, _ := s.CreateTask(userID, "c", "", "", "", "")
	if _, err := s.CompleteTask(userID, done.ID); err != nil {
		t.Fatalf("CompleteTask: %v", err)
	}

	high, err := s.ListTasks(userID, TaskFilter{Priority: PriorityHigh})
	if err != nil {
		t.Fatalf("ListTasks(priority): %v", err)
	}
	if len(high) != 1 || high[0].Title != "a" {
		t.Fatalf("expected only task a, got %v", high)
	}

	f := false
	pending, err := s.ListTasks(userID, TaskFilter{Completed: &f})
	if err != nil {
		t.Fatalf("ListTasks(pending): %v", err)
	}
	if len(pending) != 2 {
		t.Fatalf("expected 2 pending tasks, got %d", len(pending))
	}
}

func TestListTasksLimit(t *testing.T) {
	s, userID := openTestStore(t)

	for i := 0; i < 15; i++ {
		s.CreateTask(userID, "t", "", "", "", "")
	}
	tasks, err := s.ListTasks(userID, TaskFilter{})
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(tasks) != 10 {
		t.Errorf("expected default limit of 10, got %d", len(tasks))
	}
}

func TestCompleteTaskScopedToUser(t *testing.T) {
	s, userID := openTestStore(t)

	task, _ := s.CreateTask(userID, "minha tarefa", "", "", "", "")

	res, err := s.conn.Exec("INSERT INTO users (name) VALUES ('Intruso')")
	if err != nil {
		t.Fatalf("creating second user: %v", err)
	}
	otherID, _ := res.LastInsertId()

	if _, err := s.CompleteTask(otherID, task.ID); err == nil {
		t.Error("expected completing another user's task to fail")
	}

	done, err := s.CompleteTask(userID, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask by owner: %v", err)
	}
	if !done.Completed || done.CompletedAt == "" {
		t.Errorf("expected completed task with timestamp, got %+v", done)
	}
}

// --- Goals ---

func TestUpdateGoalProgressThreshold(t *testing.T) {
	s, userID := openTestStore(t)

	goal, err := s.CreateGoal(userID, "ler livros", "", 12, "livros", "")
	if err != nil {
		t.Fatalf("CreateGoal: %v", err)
	}
	if goal.Current != 0 || goal.Status != GoalActive {
		t.Fatalf("new goal should start at 0/active, got %+v", goal)
	}

	g, err := s.UpdateGoalProgress(userID, goal.ID, 5)
	if err != nil {
		t.Fatalf("UpdateGoalProgress(5): %v", err)
	}
	if g.Status != GoalActive {
		t.Errorf("expected active below target, got %q", g.Status)
	}

	g, err = s.UpdateGoalProgress(userID, goal.ID, 12)
	if err != nil {
		t.Fatalf("UpdateGoalProgress(12): %v", err)
	}
	if g.Status != GoalCompleted {
		t.Errorf("expected completed at target, got %q", g.Status)
	}
}

func TestUpdateGoalProgressScopedToUser(t *testing.T) {
	s, userID := openTestStore(t)

	goal, _ := s.CreateGoal(userID, "meta", "", 10, "", "")

	res, _ := s.conn.Exec("INSERT INTO users (name) VALUES ('Intruso')")
	otherID, _ := res.LastInsertId()

	if _, err := s.UpdateGoalProgress(otherID, goal.ID, 3); err == nil {
		t.Error("expected updating another user's goal to fail")
	}
}

// --- Notes ---

func TestCreateNote(t *testing.T) {
	s, userID := openTestStore(t)

	note, err := s.CreateNote(userID, "ideia", "conteúdo da nota", "", []string{"trabalho", "urgente"})
	if err != nil {
		t.Fatalf("CreateNote: %v", err)
	}
	if note.Category != "Geral" {
		t.Errorf("expected default category Geral, got %q", note.Category)
	}
	if len(note.Tags) != 2 {
		t.Errorf("expected 2 tags, got %v", note.Tags)
	}

	n, err := s.CountNotes(userID)
	if err != nil {
		t.Fatalf("CountNotes: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 note, got %d", n)
	}
}

func TestRecentNotesNewestFirst(t *testing.T) {
	s, userID := openTestStore(t)

	for _, title := range []string{"primeira", "segunda", "terceira"} {
		if _, err := s.CreateNote(userID, title, "c", "", nil); err != nil {
			t.Fatalf("CreateNote(%s): %v", title, err)
		}
	}

	notes, err := s.RecentNotes(userID, 2)
	if err != nil {
		t.Fatalf("RecentNotes: %v", err)
	}
	if len(notes) != 2 {
		t.Fatalf("expected 2 notes, got %d", len(notes))
	}
	if notes[0].Title != "terceira" || notes[1].Title != "segunda" {
		t.Errorf("expected newest first, got %q then %q", notes[0].Title, notes[1].Title)
	}
}

// --- Events ---

func TestCreateAndListEvents(t *testing.T) {
	s, userID := openTestStore(t)

	ev, err := s.CreateEvent(userID, "Reunião", "", "2024-01-21 12:00:00", "", "", "")
	if err != nil {
		t.Fatalf("CreateEvent: %v", err)
	}
	if ev.Category != "Pessoal" {
		t.Errorf("expected default category Pessoal, got %q", ev.Category)
	}

	upcoming, err := s.UpcomingEvents(userID, "2024-01-20 00:00:00", 5)
	if err != nil {
		t.Fatalf("UpcomingEvents: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Title != "Reunião" {
		t.Fatalf("expected the created event, got %v", upcoming)
	}

	past, err := s.UpcomingEvents(userID, "2024-02-01 00:00:00", 5)
	if err != nil {
		t.Fatalf("UpcomingEvents(after): %v", err)
	}
	if len(past) != 0 {
		t.Errorf("expected no events after cutoff, got %d", len(past))
	}
}

// --- Transactions ---

func TestCreateTransaction(t *testing.T) {
	s, userID := openTestStore(t)

	tx, err := s.CreateTransaction(userID, "mercado", 250.5, TransactionExpense, "", "")
	if err != nil {
		t.Fatalf("CreateTransaction: %v", err)
	}
	if tx.Category != "Geral" || tx.OccurredAt == "" {
		t.Errorf("expected defaults filled, got %+v", tx)
	}

	if _, err := s.CreateTransaction(userID, "x", 1, "invalid", "", ""); err == nil {
		t.Error("expected invalid kind to fail")
	}

	txs, err := s.ListTransactions(userID, TransactionExpense, 0)
	if err != nil {
		t.Fatalf("ListTransactions: %v", err)
	}
	if len(txs) != 1 {
		t.Errorf("expected 1 expense, got %d", len(txs))
	}
}

// --- Conversations ---

func TestSessionTurnsOrdered(t *testing.T) {
	s, userID := openTestStore(t)

	if err := s.EnsureSession("sess-1", userID); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}
	s.AppendTurn("sess-1", "user", "primeira", "")
	s.AppendTurn("sess-1", "assistant", "resposta", `{"calls":1}`)
	s.AppendTurn("sess-1", "user", "segunda", "")

	turns, err := s.GetSession("sess-1")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(turns) != 3 {
		t.Fatalf("expected 3 turns, got %d", len(turns))
	}
	want := []string{"primeira", "resposta", "segunda"}
	for i, w := range want {
		if turns[i].Content != w {
			t.Errorf("turn %d: expected %q, got %q", i, w, turns[i].Content)
		}
	}
	if turns[1].Metadata == "" {
		t.Error("assistant turn should keep its metadata")
	}
}

func TestEnsureSessionOwnership(t *testing.T) {
	s, userID := openTestStore(t)

	if err := s.EnsureSession("sess-1", userID); err != nil {
		t.Fatalf("EnsureSession: %v", err)
	}

	res, _ := s.conn.Exec("INSERT INTO users (name) VALUES ('Intruso')")
	otherID, _ := res.LastInsertId()

	if err := s.EnsureSession("sess-1", otherID); err == nil {
		t.Error("expected claiming another user's session to fail")
	}
}

func TestGetSessionMissing(t *testing.T) {
	s, _ := openTestStore(t)

	turns, err := s.GetSession("nao-existe")
	if err != nil {
		t.Fatalf("GetSession: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("expected empty history for unknown session, got %d turns", len(turns))
	}
}

func TestPruneSessions(t *testing.T) {
	s, userID := openTestStore(t)

	s.EnsureSession("old", userID)
	s.AppendTurn("old", "user", "oi", "")
	s.EnsureSession("fresh", userID)

	// Backdate the old session past the TTL.
	if _, err := s.conn.Exec("UPDATE sessions SET updated_at = datetime('now', '-40 days') WHERE id = 'old'"); err != nil {
		t.Fatalf("backdating session: %v", err)
	}

	n, err := s.PruneSessions(30)
	if err != nil {
		t.Fatalf("PruneSessions: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 pruned session, got %d", n)
	}

	turns, _ := s.GetSession("old")
	if len(turns) != 0 {
		t.Errorf("expected cascade delete of turns, got %d", len(turns))
	}
	if err := s.EnsureSession("fresh", userID); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

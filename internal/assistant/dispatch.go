package assistant

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/rafael/ritmo/internal/store"
)

// ExecutionResult is the uniform envelope every dispatched call produces,
// success or failure.
type ExecutionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

// ExecutedCall pairs an extracted call with its result, in extraction order.
type ExecutedCall struct {
	Name       string          `json:"name"`
	Parameters json.RawMessage `json:"parameters,omitempty"`
	Result     ExecutionResult `json:"result"`
}

// Executor dispatches extracted calls against the record store. It validates
// names against the catalog and executes mechanically; intent selection is
// the model's job, not the dispatcher's.
type Executor struct {
	store *store.Store
	clock *Clock
}

func NewExecutor(st *store.Store, clock *Clock) *Executor {
	return &Executor{store: st, clock: clock}
}

// call is one decoded invocation. Each kind carries its own typed parameter
// record, populated straight from the payload JSON, and knows how to run
// itself against the store.
type call interface {
	run(e *Executor, callerUserID int64) ExecutionResult
}

// newCall maps a catalog name to a zero parameter record of its kind. This is
// the closed registry of executable calls; every Catalog entry must have an
// arm here, and the pairing is checked by a test.
func newCall(name string) (call, bool) {
	switch name {
	case "create_task":
		return &createTaskCall{}, true
	case "create_note":
		return &createNoteCall{}, true
	case "create_goal":
		return &createGoalCall{}, true
	case "create_event":
		return &createEventCall{}, true
	case "list_tasks":
		return &listTasksCall{}, true
	case "list_events":
		return &listEventsCall{}, true
	case "complete_task":
		return &completeTaskCall{}, true
	case "update_goal_progress":
		return &updateGoalProgressCall{}, true
	case "add_transaction":
		return &addTransactionCall{}, true
	case "list_transactions":
		return &listTransactionsCall{}, true
	}
	return nil, false
}

// ExecuteAll runs every call in order. One call failing never prevents the
// rest from running; the result slice always has one entry per call.
func (e *Executor) ExecuteAll(calls []ExtractedCall, callerUserID int64) []ExecutedCall {
	executed := make([]ExecutedCall, 0, len(calls))
	for _, c := range calls {
		result := e.Execute(c.Name, c.Parameters, callerUserID)
		slog.Info("function executed",
			"name", c.Name,
			"success", result.Success,
			"user_id", callerUserID,
		)
		executed = append(executed, ExecutedCall{Name: c.Name, Parameters: c.Parameters, Result: result})
	}
	return executed
}

// Execute runs a single call for the given user. Unknown names, undecodable
// parameters and record store failures come back as failed results, never as
// panics or errors crossing this boundary.
func (e *Executor) Execute(name string, params json.RawMessage, callerUserID int64) ExecutionResult {
	if _, ok := LookupFunction(name); !ok {
		return failure("Função desconhecida: " + name)
	}
	c, ok := newCall(name)
	if !ok {
		// Catalog and dispatch went out of sync; treat like an unknown name.
		return failure("Função desconhecida: " + name)
	}
	if len(params) > 0 {
		if err := json.Unmarshal(params, c); err != nil {
			return failuref("Parâmetros inválidos para "+name, err)
		}
	}
	return c.run(e, callerUserID)
}

type createTaskCall struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Priority    string `json:"priority"`
	Category    string `json:"category"`
	DueDate     string `json:"dueDate"`
}

func (c *createTaskCall) run(e *Executor, userID int64) ExecutionResult {
	if c.Title == "" {
		return failure("Parâmetro obrigatório ausente: title")
	}
	priority := c.Priority
	if priority != "" {
		var err error
		if priority, err = normalizePriority(priority); err != nil {
			return failure(err.Error())
		}
	}
	dueDate := c.DueDate
	if dueDate != "" {
		var err error
		if dueDate, err = normalizeDate(dueDate); err != nil {
			return failure("Data de vencimento inválida: " + c.DueDate)
		}
	}
	task, err := e.store.CreateTask(userID, c.Title, c.Description, priority, c.Category, dueDate)
	if err != nil {
		return failuref("Falha ao criar a tarefa", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Tarefa criada: %q (ID %d, prioridade %s)", task.Title, task.ID, task.Priority),
		Data:    task,
	}
}

type createNoteCall struct {
	Title    string   `json:"title"`
	Content  string   `json:"content"`
	Category string   `json:"category"`
	Tags     []string `json:"tags"`
}

func (c *createNoteCall) run(e *Executor, userID int64) ExecutionResult {
	if c.Title == "" {
		return failure("Parâmetro obrigatório ausente: title")
	}
	if c.Content == "" {
		return failure("Parâmetro obrigatório ausente: content")
	}
	note, err := e.store.CreateNote(userID, c.Title, c.Content, c.Category, c.Tags)
	if err != nil {
		return failuref("Falha ao criar a nota", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Nota criada: %q (ID %d)", note.Title, note.ID),
		Data:    note,
	}
}

type createGoalCall struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Target      *float64 `json:"target"`
	Unit        string   `json:"unit"`
	Deadline    string   `json:"deadline"`
}

func (c *createGoalCall) run(e *Executor, userID int64) ExecutionResult {
	if c.Title == "" {
		return failure("Parâmetro obrigatório ausente: title")
	}
	if c.Target == nil {
		return failure("Parâmetro obrigatório ausente: target")
	}
	deadline := c.Deadline
	if deadline != "" {
		var err error
		if deadline, err = normalizeDate(deadline); err != nil {
			return failure("Prazo inválido: " + c.Deadline)
		}
	}
	goal, err := e.store.CreateGoal(userID, c.Title, c.Description, *c.Target, c.Unit, deadline)
	if err != nil {
		return failuref("Falha ao criar a meta", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Meta criada: %q (ID %d, alvo %s)", goal.Title, goal.ID, formatAmount(goal.Target)),
		Data:    goal,
	}
}

type createEventCall struct {
	Title       string `json:"title"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
	Description string `json:"description"`
	Location    string `json:"location"`
	Category    string `json:"category"`
}

func (c *createEventCall) run(e *Executor, userID int64) ExecutionResult {
	if c.Title == "" {
		return failure("Parâmetro obrigatório ausente: title")
	}
	if c.StartDate == "" {
		return failure("Parâmetro obrigatório ausente: startDate")
	}
	startAt, err := normalizeDateTime(c.StartDate)
	if err != nil {
		return failure("Data de início inválida: " + c.StartDate)
	}
	endAt := ""
	if c.EndDate != "" {
		if endAt, err = normalizeDateTime(c.EndDate); err != nil {
			return failure("Data de término inválida: " + c.EndDate)
		}
	}
	event, err := e.store.CreateEvent(userID, c.Title, c.Description, startAt, endAt, c.Location, c.Category)
	if err != nil {
		return failuref("Falha ao criar o evento", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Evento agendado: %q em %s (ID %d)", event.Title, event.StartAt, event.ID),
		Data:    event,
	}
}

type listTasksCall struct {
	Completed *bool  `json:"completed"`
	Priority  string `json:"priority"`
	Limit     int    `json:"limit"`
}

func (c *listTasksCall) run(e *Executor, userID int64) ExecutionResult {
	filter := store.TaskFilter{Completed: c.Completed, Limit: c.Limit}
	if c.Priority != "" {
		p, err := normalizePriority(c.Priority)
		if err != nil {
			return failure(err.Error())
		}
		filter.Priority = p
	}
	tasks, err := e.store.ListTasks(userID, filter)
	if err != nil {
		return failuref("Falha ao listar as tarefas", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("%d tarefa(s) encontrada(s)", len(tasks)),
		Data:    tasks,
	}
}

type listEventsCall struct {
	Limit int `json:"limit"`
}

func (c *listEventsCall) run(e *Executor, userID int64) ExecutionResult {
	limit := c.Limit
	if limit <= 0 {
		limit = 10
	}
	from := e.clock.now().In(e.clock.loc).Format(time.DateTime)
	events, err := e.store.UpcomingEvents(userID, from, limit)
	if err != nil {
		return failuref("Falha ao listar os eventos", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("%d evento(s) encontrado(s)", len(events)),
		Data:    events,
	}
}

type completeTaskCall struct {
	TaskID *int64 `json:"taskId"`
}

func (c *completeTaskCall) run(e *Executor, userID int64) ExecutionResult {
	if c.TaskID == nil {
		return failure("Parâmetro obrigatório ausente: taskId")
	}
	task, err := e.store.CompleteTask(userID, *c.TaskID)
	if err != nil {
		return failuref("Falha ao concluir a tarefa", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Tarefa concluída: %q (ID %d)", task.Title, task.ID),
		Data:    task,
	}
}

type updateGoalProgressCall struct {
	GoalID  *int64   `json:"goalId"`
	Current *float64 `json:"current"`
}

func (c *updateGoalProgressCall) run(e *Executor, userID int64) ExecutionResult {
	if c.GoalID == nil {
		return failure("Parâmetro obrigatório ausente: goalId")
	}
	if c.Current == nil {
		return failure("Parâmetro obrigatório ausente: current")
	}
	goal, err := e.store.UpdateGoalProgress(userID, *c.GoalID, *c.Current)
	if err != nil {
		return failuref("Falha ao atualizar a meta", err)
	}
	msg := fmt.Sprintf("Progresso da meta %q atualizado: %s/%s", goal.Title, formatAmount(goal.Current), formatAmount(goal.Target))
	if goal.Status == store.GoalCompleted {
		msg = fmt.Sprintf("Meta %q concluída! Progresso: %s/%s", goal.Title, formatAmount(goal.Current), formatAmount(goal.Target))
	}
	return ExecutionResult{Success: true, Message: msg, Data: goal}
}

type addTransactionCall struct {
	Description string   `json:"description"`
	Amount      *float64 `json:"amount"`
	Type        string   `json:"type"`
	Category    string   `json:"category"`
	Date        string   `json:"date"`
}

func (c *addTransactionCall) run(e *Executor, userID int64) ExecutionResult {
	if c.Description == "" {
		return failure("Parâmetro obrigatório ausente: description")
	}
	if c.Amount == nil {
		return failure("Parâmetro obrigatório ausente: amount")
	}
	if c.Type == "" {
		return failure("Parâmetro obrigatório ausente: type")
	}
	kind := strings.ToLower(c.Type)
	if kind != store.TransactionIncome && kind != store.TransactionExpense {
		return failure("Tipo de transação inválido: " + c.Type)
	}
	occurredAt := ""
	if c.Date != "" {
		d, err := normalizeDate(c.Date)
		if err != nil {
			return failure("Data inválida: " + c.Date)
		}
		occurredAt = d + " 00:00:00"
	}
	tx, err := e.store.CreateTransaction(userID, c.Description, *c.Amount, kind, c.Category, occurredAt)
	if err != nil {
		return failuref("Falha ao registrar a transação", err)
	}
	label := "despesa"
	if tx.Kind == store.TransactionIncome {
		label = "receita"
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("Transação registrada: %q (%s de R$ %.2f)", tx.Description, label, tx.Amount),
		Data:    tx,
	}
}

type listTransactionsCall struct {
	Type  string `json:"type"`
	Limit int    `json:"limit"`
}

func (c *listTransactionsCall) run(e *Executor, userID int64) ExecutionResult {
	kind := strings.ToLower(c.Type)
	if kind != "" && kind != store.TransactionIncome && kind != store.TransactionExpense {
		return failure("Tipo de transação inválido: " + c.Type)
	}
	txs, err := e.store.ListTransactions(userID, kind, c.Limit)
	if err != nil {
		return failuref("Falha ao listar as transações", err)
	}
	return ExecutionResult{
		Success: true,
		Message: fmt.Sprintf("%d transação(ões) encontrada(s)", len(txs)),
		Data:    txs,
	}
}

func failure(msg string) ExecutionResult {
	return ExecutionResult{Success: false, Message: msg}
}

func failuref(msg string, err error) ExecutionResult {
	return ExecutionResult{Success: false, Message: fmt.Sprintf("%s: %v", msg, err)}
}

var priorities = map[string]bool{
	store.PriorityLow: true, store.PriorityMedium: true,
	store.PriorityHigh: true, store.PriorityUrgent: true,
}

func normalizePriority(p string) (string, error) {
	up := strings.ToUpper(strings.TrimSpace(p))
	if !priorities[up] {
		return "", fmt.Errorf("Prioridade inválida: %s", p)
	}
	return up, nil
}

// dateTimeLayouts are the shapes accepted for datetime parameters. A
// date-only value gets the default morning hour, per the prompt's rules.
var dateTimeLayouts = []string{
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// normalizeDateTime converts a model-supplied datetime into the record
// store's representation (YYYY-MM-DD HH:MM:SS). Invalid input is an error,
// never a silent zero value.
func normalizeDateTime(s string) (string, error) {
	s = strings.TrimSpace(s)
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateTime), nil
		}
	}
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly) + " 09:00:00", nil
	}
	return "", fmt.Errorf("invalid datetime %q", s)
}

// normalizeDate converts a model-supplied date into YYYY-MM-DD, accepting a
// full datetime and keeping only the date part.
func normalizeDate(s string) (string, error) {
	s = strings.TrimSpace(s)
	if t, err := time.Parse(time.DateOnly, s); err == nil {
		return t.Format(time.DateOnly), nil
	}
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(time.DateOnly), nil
		}
	}
	return "", fmt.Errorf("invalid date %q", s)
}

func formatAmount(f float64) string {
	s := fmt.Sprintf("%.2f", f)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}

package assistant

// Param documents one parameter of a callable function. The same record is
// rendered into the system prompt and consulted by the dispatcher, so the
// instructions the model sees and the fields the executor forwards cannot
// drift apart.
type Param struct {
	Name        string
	Type        string // string, number, integer, boolean, array
	Description string
}

type FunctionSpec struct {
	Name        string
	Description string
	Required    []Param
	Optional    []Param
}

// Catalog is the closed set of actions the assistant can invoke. Every entry
// pairs with a call kind in newCall; the dispatcher rejects any name not
// present in this list.
var Catalog = []FunctionSpec{
	{
		Name:        "create_task",
		Description: "Cria uma nova tarefa.",
		Required: []Param{
			{"title", "string", "Título da tarefa"},
		},
		Optional: []Param{
			{"description", "string", "Detalhes adicionais"},
			{"priority", "string", "Prioridade: LOW, MEDIUM, HIGH ou URGENT (padrão MEDIUM)"},
			{"category", "string", "Categoria (padrão Geral)"},
			{"dueDate", "string", "Data de vencimento no formato YYYY-MM-DD"},
		},
	},
	{
		Name:        "create_note",
		Description: "Cria uma nova nota.",
		Required: []Param{
			{"title", "string", "Título da nota"},
			{"content", "string", "Conteúdo da nota"},
		},
		Optional: []Param{
			{"category", "string", "Categoria (padrão Geral)"},
			{"tags", "array", "Lista de tags"},
		},
	},
	{
		Name:        "create_goal",
		Description: "Cria uma nova meta com progresso inicial zero.",
		Required: []Param{
			{"title", "string", "Título da meta"},
			{"target", "number", "Valor alvo da meta"},
		},
		Optional: []Param{
			{"description", "string", "Detalhes da meta"},
			{"unit", "string", "Unidade do alvo, ex.: km, livros, R$"},
			{"deadline", "string", "Prazo no formato YYYY-MM-DD"},
		},
	},
	{
		Name:        "create_event",
		Description: "Cria um evento no calendário.",
		Required: []Param{
			{"title", "string", "Título do evento"},
			{"startDate", "string", "Início no formato YYYY-MM-DDTHH:MM:SS"},
		},
		Optional: []Param{
			{"endDate", "string", "Término no formato YYYY-MM-DDTHH:MM:SS"},
			{"description", "string", "Detalhes do evento"},
			{"location", "string", "Local do evento"},
			{"category", "string", "Categoria (padrão Pessoal)"},
		},
	},
	{
		Name:        "list_tasks",
		Description: "Lista as tarefas do usuário.",
		Optional: []Param{
			{"completed", "boolean", "true para concluídas, false para pendentes"},
			{"priority", "string", "Filtrar por prioridade: LOW, MEDIUM, HIGH ou URGENT"},
			{"limit", "integer", "Máximo de resultados (padrão 10)"},
		},
	},
	{
		Name:        "list_events",
		Description: "Lista os próximos eventos da agenda.",
		Optional: []Param{
			{"limit", "integer", "Máximo de resultados (padrão 10)"},
		},
	},
	{
		Name:        "complete_task",
		Description: "Marca uma tarefa como concluída.",
		Required: []Param{
			{"taskId", "integer", "ID da tarefa"},
		},
	},
	{
		Name:        "update_goal_progress",
		Description: "Atualiza o progresso de uma meta. A meta é concluída quando o progresso atinge o alvo.",
		Required: []Param{
			{"goalId", "integer", "ID da meta"},
			{"current", "number", "Progresso atual"},
		},
	},
	{
		Name:        "add_transaction",
		Description: "Registra uma transação financeira (receita ou despesa).",
		Required: []Param{
			{"description", "string", "Descrição da transação"},
			{"amount", "number", "Valor da transação"},
			{"type", "string", "Tipo: income (receita) ou expense (despesa)"},
		},
		Optional: []Param{
			{"category", "string", "Categoria (padrão Geral)"},
			{"date", "string", "Data no formato YYYY-MM-DD"},
		},
	},
	{
		Name:        "list_transactions",
		Description: "Lista as transações financeiras do usuário.",
		Optional: []Param{
			{"type", "string", "Filtrar por tipo: income ou expense"},
			{"limit", "integer", "Máximo de resultados (padrão 10)"},
		},
	},
}

var catalogByName = func() map[string]FunctionSpec {
	m := make(map[string]FunctionSpec, len(Catalog))
	for _, f := range Catalog {
		m[f.Name] = f
	}
	return m
}()

// LookupFunction returns the spec for a function name, if it exists.
func LookupFunction(name string) (FunctionSpec, bool) {
	f, ok := catalogByName[name]
	return f, ok
}

package assistant

import (
	"fmt"
	"strings"

	"github.com/rafael/ritmo/internal/store"
)

// UserContext is the read-only profile snapshot injected into the prompt.
// It is assembled fresh per request from the record store.
type UserContext struct {
	Name        string
	OpenTasks   int
	Notes       int
	ActiveGoals int
	RecentTasks []store.Task
	RecentNotes []store.Note
	Goals       []store.Goal
}

// ComposePrompt builds the system prompt for the first model round-trip.
// Pure string builder: given well-formed inputs it always produces a prompt.
//
// Dates are embedded as literal strings so the model never does its own
// calendar arithmetic.
func ComposePrompt(uc UserContext, tc TemporalContext) string {
	var b strings.Builder

	b.WriteString("Você é o Ritmo, assistente pessoal de produtividade. ")
	b.WriteString("Você ajuda o usuário a gerenciar tarefas, notas, metas, eventos e finanças.\n\n")

	fmt.Fprintf(&b, "## Usuário\nNome: %s\n", uc.Name)
	fmt.Fprintf(&b, "Tarefas pendentes: %d | Notas: %d | Metas ativas: %d\n", uc.OpenTasks, uc.Notes, uc.ActiveGoals)
	if len(uc.RecentTasks) > 0 {
		b.WriteString("Tarefas recentes:\n")
		for _, t := range uc.RecentTasks {
			fmt.Fprintf(&b, "- [%d] %s (%s)\n", t.ID, t.Title, t.Priority)
		}
	}
	if len(uc.RecentNotes) > 0 {
		b.WriteString("Notas recentes:\n")
		for _, n := range uc.RecentNotes {
			fmt.Fprintf(&b, "- [%d] %s (%s)\n", n.ID, n.Title, n.Category)
		}
	}
	if len(uc.Goals) > 0 {
		b.WriteString("Metas ativas:\n")
		for _, g := range uc.Goals {
			fmt.Fprintf(&b, "- [%d] %s: %.0f/%.0f %s\n", g.ID, g.Title, g.Current, g.Target, g.Unit)
		}
	}

	b.WriteString("\n## Data e hora\n")
	fmt.Fprintf(&b, "Agora: %s, %s (%s)\n", tc.LongDate, tc.Time, tc.Date)
	tomorrow, _ := Relative(tc.Date, "tomorrow")
	dayAfter, _ := Relative(tc.Date, "day-after-tomorrow")
	fmt.Fprintf(&b, "Hoje: %s | Amanhã: %s | Depois de amanhã: %s\n", tc.Date, tomorrow, dayAfter)
	b.WriteString("Use sempre essas datas literais. Nunca calcule datas por conta própria.\n")

	b.WriteString("\n## Funções disponíveis\n")
	for _, f := range Catalog {
		fmt.Fprintf(&b, "- %s: %s\n", f.Name, f.Description)
		if len(f.Required) > 0 {
			b.WriteString("  Obrigatórios: ")
			writeParams(&b, f.Required)
		}
		if len(f.Optional) > 0 {
			b.WriteString("  Opcionais: ")
			writeParams(&b, f.Optional)
		}
	}

	b.WriteString(`
## Como executar ações
Quando a intenção do usuário corresponder a uma função acima, você DEVE emitir
uma chamada no formato exato, em uma única linha:

[FUNCTION: nome_da_funcao {"parametro": "valor"}]

Exemplos:
[FUNCTION: create_task {"title": "Estudar React", "priority": "HIGH"}]
[FUNCTION: create_event {"title": "Reunião", "startDate": "` + tomorrow + `T12:00:00"}]

Pode haver mais de uma chamada na mesma resposta. O texto fora das chamadas é
o que o usuário verá.

## Regras de horário
- Horário não especificado: use 09:00.
- "meio-dia": use 12:00.
- "tarde": use 14:00.
- "noite": use 19:00.

## Comportamento
- Responda sempre em português, de forma breve e simpática. Emojis com moderação.
- Confirme o que foi criado ou alterado, citando os detalhes.
- Para perguntas sobre dados existentes, use list_tasks, list_events ou list_transactions em vez de adivinhar.
- Datas no formato YYYY-MM-DD; datas com hora no formato YYYY-MM-DDTHH:MM:SS.
`)

	return b.String()
}

func writeParams(b *strings.Builder, params []Param) {
	parts := make([]string, len(params))
	for i, p := range params {
		parts[i] = fmt.Sprintf("%s (%s — %s)", p.Name, p.Type, p.Description)
	}
	b.WriteString(strings.Join(parts, ", "))
	b.WriteString("\n")
}

package assistant

import (
	"strings"
	"testing"

	"github.com/rafael/ritmo/internal/store"
)

func TestComposePromptLiteralDates(t *testing.T) {
	tc := fixedClock(t, "2024-01-20 10:00").Snapshot()
	prompt := ComposePrompt(UserContext{Name: "Ana"}, tc)

	for _, want := range []string{
		"Hoje: 2024-01-20",
		"Amanhã: 2024-01-21",
		"Depois de amanhã: 2024-01-22",
		"sábado, 20 de janeiro de 2024",
	} {
		if !strings.Contains(prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestComposePromptListsCatalog(t *testing.T) {
	tc := fixedClock(t, "2024-01-20 10:00").Snapshot()
	prompt := ComposePrompt(UserContext{Name: "Ana"}, tc)

	for _, f := range Catalog {
		if !strings.Contains(prompt, f.Name) {
			t.Errorf("prompt missing function %q", f.Name)
		}
	}
	if !strings.Contains(prompt, "[FUNCTION:") {
		t.Error("prompt missing call syntax example")
	}
	if !strings.Contains(prompt, "09:00") {
		t.Error("prompt missing default-time rule")
	}
}

func TestComposePromptUserSnapshot(t *testing.T) {
	tc := fixedClock(t, "2024-01-20 10:00").Snapshot()
	uc := UserContext{
		Name:        "Ana",
		OpenTasks:   3,
		ActiveGoals: 1,
		RecentTasks: []store.Task{{ID: 7, Title: "revisar PR", Priority: store.PriorityHigh}},
		RecentNotes: []store.Note{{ID: 3, Title: "ideias de presente", Category: "Geral"}},
		Goals:       []store.Goal{{ID: 2, Title: "correr", Current: 40, Target: 100, Unit: "km"}},
	}
	prompt := ComposePrompt(uc, tc)

	if !strings.Contains(prompt, "Nome: Ana") {
		t.Error("prompt missing user name")
	}
	if !strings.Contains(prompt, "revisar PR") {
		t.Error("prompt missing recent task")
	}
	if !strings.Contains(prompt, "ideias de presente") {
		t.Error("prompt missing recent note")
	}
	if !strings.Contains(prompt, "40/100 km") {
		t.Error("prompt missing goal progress")
	}
}

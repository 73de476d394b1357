package assistant

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/rafael/ritmo/internal/llm"
)

// Synthesize asks the model for a short confirmation narrating the executed
// calls. This second round-trip is best effort: when it fails, the raw
// execution messages are listed instead, so the turn never dies here.
func Synthesize(ctx context.Context, client llm.Client, originalMessage string, executed []ExecutedCall, userName string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "O usuário %s pediu: %q\n\n", userName, originalMessage)
	b.WriteString("As seguintes ações foram executadas:\n")
	for _, ec := range executed {
		status := "falhou"
		if ec.Result.Success {
			status = "ok"
		}
		fmt.Fprintf(&b, "- %s [%s]: %s\n", ec.Name, status, ec.Result.Message)
	}
	b.WriteString("\nEscreva uma confirmação curta e natural em português para o usuário, " +
		"mencionando o que deu certo e o que falhou. Não invente ações que não estão na lista. " +
		"Não use o formato [FUNCTION: ...].")

	text, err := client.Complete(ctx, llm.Request{
		SystemPrompt: "Você é o Ritmo, assistente pessoal de produtividade. Responda em português, em no máximo três frases.",
		Messages:     []llm.Message{{Role: "user", Content: b.String()}},
		Temperature:  0.5,
		MaxTokens:    300,
	})
	if err != nil || strings.TrimSpace(text) == "" {
		if err != nil {
			slog.Warn("synthesis failed, falling back to raw results", "error", err)
		}
		return fallbackConfirmation(executed)
	}
	// The synthesis prompt forbids call markup; strip any that slips through
	// so the final reply never carries markers.
	return Extract(text).CleanText
}

// fallbackConfirmation lists the raw execution messages when synthesis is
// unavailable. Failures stay visible; they are never hidden from the user.
func fallbackConfirmation(executed []ExecutedCall) string {
	var lines []string
	for _, ec := range executed {
		prefix := "✅"
		if !ec.Result.Success {
			prefix = "⚠️"
		}
		lines = append(lines, prefix+" "+ec.Result.Message)
	}
	if len(lines) == 0 {
		return defaultFiller
	}
	return strings.Join(lines, "\n")
}

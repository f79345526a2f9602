package agent

import (
	"strings"

	"github.com/matiasleandrokruk/sqlpilot/internal/domain/tool"
)

// BuildSystemPrompt assembles the system message: assistant identity, the
// tool-action protocol, available tools, the database schema report, and any
// profile instructions.
func BuildSystemPrompt(profile Profile, schemaReport string, tools []tool.Definition) string {
	b := strings.Builder{}
	b.WriteString("You are ")
	b.WriteString(profile.Name)
	b.WriteString(", an assistant that answers questions about a SQL database.\n\n")

	b.WriteString("To act, reply with exactly one JSON object and nothing else:\n")
	b.WriteString(`  {"action": "<tool name>", "params": {...}}  to invoke a tool` + "\n")
	b.WriteString(`  {"action": "final", "answer": "..."}        to answer the user` + "\n\n")

	b.WriteString("Available tools:\n")
	for _, def := range tools {
		b.WriteString("  - ")
		b.WriteString(def.Name)
		b.WriteString(": ")
		b.WriteString(def.Description)
		b.WriteString("\n")
	}

	if schemaReport != "" {
		b.WriteString("\nDatabase schema:\n")
		b.WriteString(schemaReport)
		b.WriteString("\n")
	}

	b.WriteString("\nWrite SQL only against the tables and columns above. ")
	b.WriteString("When a query fails, read the error and retry with a corrected query. ")
	b.WriteString("Give the final answer in plain language, not raw JSON.")

	if profile.Instructions != "" {
		b.WriteString("\n\n")
		b.WriteString(strings.TrimSpace(profile.Instructions))
	}

	return b.String()
}

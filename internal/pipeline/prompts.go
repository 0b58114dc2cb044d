package pipeline

import (
	"fmt"
	"strings"
)

// User-facing fallback messages. Each maps to one failure path in Ask.
const (
	refusalMessage = "I can only help with questions about our soccer academy: " +
		"players, teams, games, evaluations, assessments and training metrics. " +
		"Please ask me something about the academy."

	guidanceMessage = "I couldn't turn that question into a database query. " +
		"Try asking about players, teams, games or evaluations, for example: " +
		"\"How many players are in the under-15 team?\" or \"Who scored the most goals this season?\""

	apologyMessage = "Sorry, something went wrong while answering your question. Please try again."
)

const generationSystemPrompt = `You translate questions about a youth soccer academy into a single PostgreSQL SELECT statement.

Rules:
- Produce exactly one SELECT (or WITH ... SELECT) statement and nothing else.
- Never modify data. No INSERT, UPDATE, DELETE, DDL or administrative commands.
- Use only the tables and columns in the schema below.
- Prefer explicit column lists over SELECT *.
- Return plain SQL without markdown fences or commentary.

%s`

const synthesisSystemPrompt = `You are the friendly assistant of a youth soccer academy. You answer questions from coaches and staff using only the database records provided.

Rules:
- Base your answer strictly on the records. Never invent players, numbers or results.
- If no records are provided, say that no matching data was found.
- Keep answers short, concrete and in plain language.
- Do not mention SQL, databases or the records format.`

func generationPrompt(schemaText string) string {
	return fmt.Sprintf(generationSystemPrompt, schemaText)
}

func synthesisUserPrompt(question, recordContext string) string {
	var b strings.Builder
	b.WriteString("Question: ")
	b.WriteString(question)
	b.WriteString("\n\nDatabase records:\n")
	if recordContext == "" {
		b.WriteString("(no records found)\n")
	} else {
		b.WriteString(recordContext)
	}
	b.WriteString("\nAnswer the question using only these records.")
	return b.String()
}

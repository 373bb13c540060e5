package llm

import (
	"strings"

	"github.com/diogo/bookchat/internal/models"
)

const promptTemplate = `You are a literary assistant.

IMPORTANT:
You must answer STRICTLY using only the information contained in the provided context.
You are NOT allowed to use prior knowledge.
If the answer is not explicitly or clearly supported by the context,
you MUST respond EXACTLY with:

"{not_found}"

Context:
{context}

Question:
{question}

Answer:`

// BuildPrompt fills the literary-assistant prompt. Chunks are joined by newlines.
func BuildPrompt(question string, chunks []string) string {
	r := strings.NewReplacer(
		"{not_found}", models.TextAnswerNotFound,
		"{context}", strings.Join(chunks, "\n"),
		"{question}", question,
	)
	return r.Replace(promptTemplate)
}

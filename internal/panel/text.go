package panel

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"github.com/charmbracelet/x/ansi"

	"github.com/diogo/bookchat/internal/models"
)

var lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>`)

// PlainText prepares backend supplied text for the log. Line break tags
// become newlines and terminal escape sequences and control characters are
// dropped; every other character is kept as sent.
func PlainText(s string) string {
	s = lineBreakRe.ReplaceAllString(s, "\n")
	s = ansi.Strip(s)
	return strings.Map(func(r rune) rune {
		if r != '\n' && r != '\t' && unicode.IsControl(r) {
			return -1
		}
		return r
	}, s)
}

// loadSummary formats the success message for an ingestion
func loadSummary(result *models.BookLoadResult) string {
	return strings.Join([]string{
		models.TextLoadSucceeded,
		fmt.Sprintf("Files: %d", result.TotalFilesFound),
		fmt.Sprintf("Chunks created: %d", result.ChunksCreated),
	}, "\n")
}

// bookList formats the startup listing of stored books
func bookList(books []string) string {
	var sb strings.Builder
	sb.WriteString(models.TextBooksHeader)
	for _, book := range books {
		sb.WriteString("\n")
		sb.WriteString(models.TextBookBullet)
		sb.WriteString(PlainText(book))
	}
	return sb.String()
}

// trimQuestion strips surrounding whitespace from a typed question
func trimQuestion(s string) string {
	return strings.TrimSpace(s)
}

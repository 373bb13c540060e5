package library

import (
	"context"
	"fmt"

	"github.com/diogo/bookchat/internal/store"
)

// DefaultSearchLimit is the number of chunks retrieved per question
const DefaultSearchLimit = 20

// Index is the part of store.Store the searcher reads from
type Index interface {
	Search(ctx context.Context, vector []float32, limit int) ([]store.Match, error)
}

// Searcher finds the stored chunks closest to a question
type Searcher struct {
	index    Index
	embedder Embedder
	limit    int
}

// NewSearcher creates a searcher returning up to limit chunks per question.
// A non-positive limit selects DefaultSearchLimit.
func NewSearcher(index Index, embedder Embedder, limit int) *Searcher {
	if limit <= 0 {
		limit = DefaultSearchLimit
	}
	return &Searcher{index: index, embedder: embedder, limit: limit}
}

// Search returns the texts of the nearest non-empty chunks, closest first
func (s *Searcher) Search(ctx context.Context, question string) ([]string, error) {
	vectors, err := s.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("failed to embed question: %w", err)
	}
	if len(vectors) != 1 {
		return nil, fmt.Errorf("embedder returned %d vectors for 1 question", len(vectors))
	}

	matches, err := s.index.Search(ctx, vectors[0], s.limit)
	if err != nil {
		return nil, fmt.Errorf("failed to search chunks: %w", err)
	}

	texts := make([]string, 0, len(matches))
	for _, m := range matches {
		if m.Chunk.Text != "" {
			texts = append(texts, m.Chunk.Text)
		}
	}
	return texts, nil
}

// Package library ingests a folder of plain-text books into the chunk store
// and retrieves the chunks relevant to a question.
package library

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
	"github.com/diogo/bookchat/internal/store"
)

// Embedder turns texts into vectors, one per input, in order
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// ChunkStore is the part of store.Store the loader writes to
type ChunkStore interface {
	Sources(ctx context.Context) ([]string, error)
	Add(ctx context.Context, chunks []store.Chunk) (int, error)
}

// Loader scans a books folder and stores every new .txt file. Loads are
// serialized; a second caller waits for the first to finish.
type Loader struct {
	dir      string
	store    ChunkStore
	embedder Embedder
	splitter Splitter
	logger   *zap.Logger

	mu sync.Mutex
}

// LoaderOption configures a Loader
type LoaderOption func(*Loader)

// WithSplitter overrides the chunking parameters
func WithSplitter(s Splitter) LoaderOption {
	return func(l *Loader) {
		l.splitter = s
	}
}

// WithLogger sets the logger used to report progress
func WithLogger(logger *zap.Logger) LoaderOption {
	return func(l *Loader) {
		if logger != nil {
			l.logger = logger
		}
	}
}

// NewLoader creates a loader for the books in dir
func NewLoader(dir string, st ChunkStore, embedder Embedder, opts ...LoaderOption) *Loader {
	l := &Loader{
		dir:      dir,
		store:    st,
		embedder: embedder,
		splitter: NewSplitter(),
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Dir returns the folder the loader scans
func (l *Loader) Dir() string {
	return l.dir
}

// Load ingests every .txt file of the folder whose name is not yet a stored
// source. It fails with ErrNoBooksFolder or ErrNoTextFiles when there is
// nothing to scan.
func (l *Loader) Load(ctx context.Context) (*models.BookLoadResult, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	files, err := l.textFiles()
	if err != nil {
		return nil, err
	}

	existing, err := l.store.Sources(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list stored sources: %w", err)
	}

	result := &models.BookLoadResult{
		TotalFilesFound: len(files),
		BooksLoaded:     []string{},
		BooksSkipped:    []string{},
	}

	for _, name := range files {
		if slices.Contains(existing, name) {
			result.BooksSkipped = append(result.BooksSkipped, name)
			continue
		}

		start := time.Now()
		created, inserted, err := l.loadFile(ctx, name)
		if err != nil {
			return result, fmt.Errorf("failed to load %s: %w", name, err)
		}
		l.logger.Info("book loaded",
			zap.String("source", name),
			zap.Int("chunks", inserted),
			zap.Duration("duration", time.Since(start)),
		)

		result.BooksLoaded = append(result.BooksLoaded, name)
		result.ChunksCreated += created
		result.ChunksInserted += inserted
	}

	return result, nil
}

// textFiles lists the .txt files of the folder, sorted by name
func (l *Loader) textFiles() ([]string, error) {
	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, apierrors.ErrNoBooksFolder
		}
		return nil, fmt.Errorf("failed to read books folder: %w", err)
	}

	var files []string
	for _, e := range entries {
		if !e.IsDir() && strings.EqualFold(filepath.Ext(e.Name()), ".txt") {
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, apierrors.ErrNoTextFiles
	}
	return files, nil
}

func (l *Loader) loadFile(ctx context.Context, name string) (created, inserted int, err error) {
	data, err := os.ReadFile(filepath.Join(l.dir, name))
	if err != nil {
		return 0, 0, err
	}
	if !utf8.Valid(data) {
		return 0, 0, fmt.Errorf("file is not valid UTF-8")
	}

	texts := l.splitter.Split(string(data))
	if len(texts) == 0 {
		return 0, 0, nil
	}

	vectors, err := l.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to embed chunks: %w", err)
	}
	if len(vectors) != len(texts) {
		return 0, 0, fmt.Errorf("embedder returned %d vectors for %d chunks", len(vectors), len(texts))
	}

	chunks := make([]store.Chunk, len(texts))
	for i, text := range texts {
		chunks[i] = store.Chunk{Text: text, Source: name, Vector: vectors[i]}
	}

	inserted, err = l.store.Add(ctx, chunks)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to store chunks: %w", err)
	}
	return len(texts), inserted, nil
}

// Describe returns the message reported to clients for a Load failure
func (l *Loader) Describe(err error) string {
	switch {
	case errors.Is(err, apierrors.ErrNoBooksFolder):
		return fmt.Sprintf("Folder '%s' does not exist", l.dir)
	case errors.Is(err, apierrors.ErrNoTextFiles):
		return "No TXT files were found"
	default:
		return err.Error()
	}
}

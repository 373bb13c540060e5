package commands

import (
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/bookchat/internal/library"
	"github.com/diogo/bookchat/internal/llm"
	"github.com/diogo/bookchat/internal/logging"
	"github.com/diogo/bookchat/internal/server"
	"github.com/diogo/bookchat/internal/store"
)

type serveOptions struct {
	addr     string
	booksDir string
	dbPath   string
}

func newServeCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	opts := &serveOptions{}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the literary assistant backend",
		Long: `Run the backend that the chat talks to.

POST /load ingests the .txt files of the books folder, GET /books lists the
stored books and POST /ask answers a question from the stored chunks.
Embeddings and answers are produced by an Ollama server.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, deps, g, opts)
		},
	}

	cmd.Flags().StringVar(&opts.addr, "addr", "", "Listen address (default from config)")
	cmd.Flags().StringVar(&opts.booksDir, "books", "", "Books folder (default from config)")
	cmd.Flags().StringVar(&opts.dbPath, "db", "", "Chunk store file (default from config)")
	return cmd
}

func runServe(cmd *cobra.Command, deps *Dependencies, g *globalOptions, opts *serveOptions) error {
	cfg := g.settings(deps)
	if opts.addr != "" {
		cfg.ListenAddr = opts.addr
	}
	if opts.booksDir != "" {
		cfg.BooksDir = opts.booksDir
	}
	if opts.dbPath != "" {
		cfg.DBPath = opts.dbPath
	}

	logger, err := logging.NewServer(cfg.Verbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := os.MkdirAll(filepath.Dir(cfg.DBPath), 0o700); err != nil {
		return fmt.Errorf("failed to create store directory: %w", err)
	}
	st, err := store.Open(cfg.DBPath)
	if err != nil {
		return err
	}
	defer st.Close()

	ollama, err := llm.NewOllama(cfg.OllamaHost,
		llm.WithModels(cfg.EmbedModel, cfg.ChatModel),
		llm.WithLogger(logger.Named("ollama")),
	)
	if err != nil {
		return err
	}

	loader := library.NewLoader(cfg.BooksDir, st, ollama, library.WithLogger(logger.Named("library")))
	searcher := library.NewSearcher(st, ollama, cfg.SearchLimit)
	srv := server.New(loader, st, searcher, ollama, server.WithLogger(logger.Named("http")))

	logger.Info("starting backend",
		zap.String("addr", cfg.ListenAddr),
		zap.String("books_dir", cfg.BooksDir),
		zap.String("db", cfg.DBPath),
		zap.String("ollama", ollama.Host()),
	)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return srv.Run(ctx, cfg.ListenAddr)
}

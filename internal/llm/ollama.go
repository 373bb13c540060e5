// Package llm talks to an Ollama server for embeddings and answers.
package llm

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// Default models used by the backend
const (
	DefaultEmbedModel = "nomic-embed-text"
	DefaultChatModel  = "llama3.2"
)

// embedBatchSize bounds the number of texts sent in one /api/embed call
const embedBatchSize = 64

// Ollama embeds texts and answers questions through an Ollama server
type Ollama struct {
	host       string
	embedModel string
	chatModel  string
	logger     *zap.Logger

	client *api.Client
}

// Option configures an Ollama client
type Option func(*Ollama)

// WithModels overrides the embedding and chat models. Empty names keep the defaults.
func WithModels(embed, chat string) Option {
	return func(o *Ollama) {
		if embed != "" {
			o.embedModel = embed
		}
		if chat != "" {
			o.chatModel = chat
		}
	}
}

// WithLogger sets the logger used for request tracing
func WithLogger(logger *zap.Logger) Option {
	return func(o *Ollama) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHTTPClient replaces the HTTP client used to reach the server
func WithHTTPClient(hc *http.Client) Option {
	return func(o *Ollama) {
		o.client = api.NewClient(o.base(), hc)
	}
}

// NewOllama creates a client for the Ollama server at host
func NewOllama(host string, opts ...Option) (*Ollama, error) {
	u, err := url.Parse(strings.TrimSuffix(host, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid ollama host %q: %w", host, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid ollama host %q: missing scheme or host", host)
	}

	o := &Ollama{
		host:       u.String(),
		embedModel: DefaultEmbedModel,
		chatModel:  DefaultChatModel,
		logger:     zap.NewNop(),
		client:     api.NewClient(u, &http.Client{}),
	}
	for _, opt := range opts {
		opt(o)
	}
	return o, nil
}

func (o *Ollama) base() *url.URL {
	u, _ := url.Parse(o.host)
	return u
}

// Host returns the server address
func (o *Ollama) Host() string {
	return o.host
}

// Embed returns one vector per text, in order
func (o *Ollama) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for start := 0; start < len(texts); start += embedBatchSize {
		end := min(start+embedBatchSize, len(texts))
		batch := texts[start:end]

		resp, err := o.client.Embed(ctx, &api.EmbedRequest{
			Model: o.embedModel,
			Input: batch,
		})
		if err != nil {
			return nil, fmt.Errorf("error sending embed request: %w", err)
		}
		if len(resp.Embeddings) != len(batch) {
			return nil, fmt.Errorf("ollama returned %d embeddings for %d texts", len(resp.Embeddings), len(batch))
		}
		vectors = append(vectors, resp.Embeddings...)
	}

	o.logger.Debug("embedded texts", zap.String("model", o.embedModel), zap.Int("count", len(texts)))
	return vectors, nil
}

// Answer asks the chat model to answer question from the given context chunks
func (o *Ollama) Answer(ctx context.Context, question string, chunks []string) (string, error) {
	stream := false
	req := api.ChatRequest{
		Model: o.chatModel,
		Messages: []api.Message{
			{
				Role:    "user",
				Content: BuildPrompt(question, chunks),
			},
		},
		Stream: &stream,
	}

	var answer strings.Builder
	if err := o.client.Chat(ctx, &req, func(res api.ChatResponse) error {
		answer.WriteString(res.Message.Content)
		return nil
	}); err != nil {
		return "", fmt.Errorf("error sending chat request: %w", err)
	}

	o.logger.Debug("answered question",
		zap.String("model", o.chatModel),
		zap.Int("context_chunks", len(chunks)),
	)
	return strings.TrimSpace(answer.String()), nil
}

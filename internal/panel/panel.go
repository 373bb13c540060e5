// Package panel implements the chat panel: an append-only message log and
// the three backend-driven operations (load books, ask, list books) that
// write into it.
package panel

import (
	"context"
	"time"

	"go.uber.org/zap"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
)

// Backend is the HTTP/JSON API the panel talks to
type Backend interface {
	Load(ctx context.Context) (*models.BookLoadResult, error)
	Ask(ctx context.Context, question string) (*models.AskResponse, error)
	Books(ctx context.Context) (*models.BookListResult, error)
}

// Input is the text field questions are typed into
type Input interface {
	Value() string
	SetValue(s string)
}

// Completion is the outcome of a finished Task. Apply must be called on the
// goroutine that owns the panel.
type Completion struct {
	// Op names the operation ("load", "ask", "books")
	Op string
	// Err is the failure that was rendered as a bot message, if any
	Err error

	apply func(p *Panel)
}

// Apply writes the outcome into the panel's log
func (c Completion) Apply(p *Panel) {
	if c.apply != nil {
		c.apply(p)
	}
}

// Task performs one backend round trip. It may block and must not touch the
// panel; everything it wants to render goes into the returned Completion.
type Task func(ctx context.Context) Completion

// Panel mediates between user triggers and the backend
type Panel struct {
	log     *Log
	backend Backend
	input   Input
	logger  *zap.Logger
}

// Option configures a Panel
type Option func(*Panel)

// WithInput binds the panel to the field questions are typed into
func WithInput(input Input) Option {
	return func(p *Panel) {
		p.input = input
	}
}

// WithLogger sets the logger used to trace backend round trips
func WithLogger(logger *zap.Logger) Option {
	return func(p *Panel) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// New creates a panel with an empty log
func New(backend Backend, opts ...Option) *Panel {
	p := &Panel{
		log:     NewLog(),
		backend: backend,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Log returns the panel's message log
func (p *Panel) Log() *Log {
	return p.log
}

// RenderMessage appends a message. A non-empty id tags it for later removal.
// The text is stored as given.
func (p *Panel) RenderMessage(text string, sender models.Sender, id string) {
	p.log.Render(models.Message{Text: text, Sender: sender, ID: id})
}

// ClearAll removes every rendered message. Backend state is not affected.
func (p *Panel) ClearAll() {
	p.log.Clear()
}

// Do runs a task to completion on the calling goroutine and applies it.
// It returns the failure the task rendered, if any.
func (p *Panel) Do(ctx context.Context, task Task) error {
	if task == nil {
		return nil
	}
	c := task(ctx)
	c.Apply(p)
	return c.Err
}

// TriggerLoad renders the loading placeholder and returns the task that asks
// the backend to ingest the books folder.
func (p *Panel) TriggerLoad() Task {
	p.RenderMessage(models.TextLoadingBooks, models.SenderBot, models.PlaceholderLoading)

	backend, logger := p.backend, p.logger
	return func(ctx context.Context) Completion {
		start := time.Now()
		result, err := backend.Load(ctx)
		logRoundTrip(logger, models.EndpointLoad, start, err)

		if err == nil && result == nil {
			err = apierrors.NewParseError("empty load result", "")
		}
		if err != nil {
			return replacePlaceholder("load", models.PlaceholderLoading, models.TextLoadFailed, err)
		}
		if result.Failed() {
			return replacePlaceholder("load", models.PlaceholderLoading, PlainText(result.Error),
				apierrors.NewAPIError(0, models.EndpointLoad, result.Error))
		}
		return replacePlaceholder("load", models.PlaceholderLoading, loadSummary(result), nil)
	}
}

// SubmitQuestion renders the question and the thinking placeholder, clears
// the input and returns the task that asks the backend. Blank questions are
// ignored and yield a nil task.
func (p *Panel) SubmitQuestion(text string) Task {
	question := trimQuestion(text)
	if question == "" {
		return nil
	}

	p.RenderMessage(question, models.SenderUser, "")
	if p.input != nil {
		p.input.SetValue("")
	}
	p.RenderMessage(models.TextThinking, models.SenderBot, models.PlaceholderThinking)

	backend, logger := p.backend, p.logger
	return func(ctx context.Context) Completion {
		start := time.Now()
		resp, err := backend.Ask(ctx, question)
		logRoundTrip(logger, models.EndpointAsk, start, err)

		if err == nil && resp == nil {
			err = apierrors.NewParseError("empty ask response", "")
		}
		if err != nil {
			return replacePlaceholder("ask", models.PlaceholderThinking, models.TextAskFailed, err)
		}
		return replacePlaceholder("ask", models.PlaceholderThinking, PlainText(resp.Answer), nil)
	}
}

// Initialize returns the task that lists the books already stored by the
// backend. It renders nothing until the task completes.
func (p *Panel) Initialize() Task {
	backend, logger := p.backend, p.logger
	return func(ctx context.Context) Completion {
		start := time.Now()
		result, err := backend.Books(ctx)
		logRoundTrip(logger, models.EndpointBooks, start, err)

		text := models.TextNoBooks
		switch {
		case err != nil:
			text = models.TextBooksFailed
		case result != nil && len(result.Books) > 0:
			text = bookList(result.Books)
		}
		return Completion{
			Op:  "books",
			Err: err,
			apply: func(p *Panel) {
				p.RenderMessage(text, models.SenderBot, "")
			},
		}
	}
}

// replacePlaceholder builds a completion that drops the placeholder (when it
// is still present) and then renders text as a bot message.
func replacePlaceholder(op, placeholderID, text string, err error) Completion {
	return Completion{
		Op:  op,
		Err: err,
		apply: func(p *Panel) {
			p.log.RemoveByID(placeholderID)
			p.RenderMessage(text, models.SenderBot, "")
		},
	}
}

func logRoundTrip(logger *zap.Logger, endpoint string, start time.Time, err error) {
	fields := []zap.Field{
		zap.String("endpoint", endpoint),
		zap.Duration("duration", time.Since(start)),
	}
	if err != nil {
		logger.Warn("backend request failed", append(fields, zap.Error(err))...)
		return
	}
	logger.Debug("backend request finished", fields...)
}

package panel

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.uber.org/zap/zaptest"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
)

// fakeBackend returns canned responses and records the questions it receives
type fakeBackend struct {
	loadResult *models.BookLoadResult
	loadErr    error
	answer     *models.AskResponse
	askErr     error
	books      *models.BookListResult
	booksErr   error

	questions []string
}

func (f *fakeBackend) Load(ctx context.Context) (*models.BookLoadResult, error) {
	return f.loadResult, f.loadErr
}

func (f *fakeBackend) Ask(ctx context.Context, question string) (*models.AskResponse, error) {
	f.questions = append(f.questions, question)
	return f.answer, f.askErr
}

func (f *fakeBackend) Books(ctx context.Context) (*models.BookListResult, error) {
	return f.books, f.booksErr
}

type fakeInput struct {
	value string
}

func (f *fakeInput) Value() string     { return f.value }
func (f *fakeInput) SetValue(s string) { f.value = s }

func bot(text string) models.Message {
	return models.Message{Text: text, Sender: models.SenderBot}
}

func user(text string) models.Message {
	return models.Message{Text: text, Sender: models.SenderUser}
}

func assertLog(t *testing.T, p *Panel, want []models.Message) {
	t.Helper()
	if diff := cmp.Diff(want, p.Log().Messages()); diff != "" {
		t.Errorf("log mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderMessage_AppendsInOrder(t *testing.T) {
	p := New(&fakeBackend{})

	p.RenderMessage("first", models.SenderUser, "")
	p.RenderMessage("<b>raw</b>", models.SenderBot, "tag")

	assertLog(t, p, []models.Message{
		user("first"),
		{Text: "<b>raw</b>", Sender: models.SenderBot, ID: "tag"},
	})
}

func TestSubmitQuestion(t *testing.T) {
	backend := &fakeBackend{answer: &models.AskResponse{Answer: "Ishmael."}}
	input := &fakeInput{value: "  Who narrates Moby Dick?  "}
	p := New(backend, WithInput(input), WithLogger(zaptest.NewLogger(t)))

	task := p.SubmitQuestion(input.Value())
	if task == nil {
		t.Fatal("SubmitQuestion() returned nil task for a real question")
	}

	// Before the round trip: question then placeholder, input cleared
	assertLog(t, p, []models.Message{
		user("Who narrates Moby Dick?"),
		{Text: models.TextThinking, Sender: models.SenderBot, ID: models.PlaceholderThinking},
	})
	if input.value != "" {
		t.Errorf("input = %q, want empty", input.value)
	}

	if err := p.Do(context.Background(), task); err != nil {
		t.Fatalf("Do() error = %v", err)
	}

	assertLog(t, p, []models.Message{
		user("Who narrates Moby Dick?"),
		bot("Ishmael."),
	})
	if diff := cmp.Diff([]string{"Who narrates Moby Dick?"}, backend.questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
}

func TestSubmitQuestion_BlankIsNoop(t *testing.T) {
	for _, text := range []string{"", "   ", "\t\n"} {
		input := &fakeInput{value: text}
		p := New(&fakeBackend{}, WithInput(input))

		if task := p.SubmitQuestion(text); task != nil {
			t.Errorf("SubmitQuestion(%q) returned a task", text)
		}
		if p.Log().Len() != 0 {
			t.Errorf("SubmitQuestion(%q) rendered %d messages", text, p.Log().Len())
		}
		if input.value != text {
			t.Errorf("input changed to %q, want %q", input.value, text)
		}
	}
}

func TestSubmitQuestion_FailureRemovesPlaceholder(t *testing.T) {
	cause := apierrors.NewNetworkErrorWithEndpoint("ask", models.EndpointAsk, errors.New("connection refused"))
	p := New(&fakeBackend{askErr: cause})

	err := p.Do(context.Background(), p.SubmitQuestion("hello"))
	if !errors.Is(err, cause) {
		t.Errorf("Do() error = %v, want %v", err, cause)
	}

	assertLog(t, p, []models.Message{user("hello"), bot(models.TextAskFailed)})
}

func TestSubmitQuestion_KeepsAnswerText(t *testing.T) {
	tests := []struct {
		name   string
		answer string
		want   string
	}{
		{"angle brackets", "In the poem, x<y and y>z describe the stanza; use <name> as a slot.", "In the poem, x<y and y>z describe the stanza; use <name> as a slot."},
		{"markup kept literally", "<b>Ahab</b> &amp; the whale", "<b>Ahab</b> &amp; the whale"},
		{"line breaks", "Line one<br>Line two", "Line one\nLine two"},
		{"terminal escapes", "\x1b[2JLine one", "Line one"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(&fakeBackend{answer: &models.AskResponse{Answer: tt.answer}})

			_ = p.Do(context.Background(), p.SubmitQuestion("q"))

			last, ok := p.Log().LastFrom(models.SenderBot)
			if !ok {
				t.Fatal("no bot message rendered")
			}
			if last.Text != tt.want {
				t.Errorf("answer = %q, want %q", last.Text, tt.want)
			}
		})
	}
}

func TestTriggerLoad_ErrorTextVerbatim(t *testing.T) {
	const msg = "Folder '/srv/<books>' does not exist"
	p := New(&fakeBackend{loadResult: &models.BookLoadResult{Error: msg}})

	_ = p.Do(context.Background(), p.TriggerLoad())

	assertLog(t, p, []models.Message{bot(msg)})
}

func TestInitialize_BookNamesVerbatim(t *testing.T) {
	p := New(&fakeBackend{books: &models.BookListResult{Books: []string{"notes<v2>.txt", "a&b.txt"}}})

	_ = p.Do(context.Background(), p.Initialize())

	assertLog(t, p, []models.Message{bot(models.TextBooksHeader + "\n• notes<v2>.txt\n• a&b.txt")})
}

func TestTriggerLoad(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
		wantErr bool
	}{
		{
			name:    "success",
			backend: &fakeBackend{loadResult: &models.BookLoadResult{TotalFilesFound: 2, ChunksCreated: 57}},
			want:    "Books loaded successfully.\nFiles: 2\nChunks created: 57",
		},
		{
			name:    "backend reported error",
			backend: &fakeBackend{loadResult: &models.BookLoadResult{Error: "No TXT files were found"}},
			want:    "No TXT files were found",
			wantErr: true,
		},
		{
			name:    "network failure",
			backend: &fakeBackend{loadErr: apierrors.NewNetworkError("load", errors.New("eof"))},
			want:    models.TextLoadFailed,
			wantErr: true,
		},
		{
			name:    "malformed response",
			backend: &fakeBackend{loadErr: apierrors.NewParseError("invalid JSON", "")},
			want:    models.TextLoadFailed,
			wantErr: true,
		},
		{
			name:    "nil result",
			backend: &fakeBackend{},
			want:    models.TextLoadFailed,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.backend)

			task := p.TriggerLoad()
			assertLog(t, p, []models.Message{
				{Text: models.TextLoadingBooks, Sender: models.SenderBot, ID: models.PlaceholderLoading},
			})

			err := p.Do(context.Background(), task)
			if (err != nil) != tt.wantErr {
				t.Errorf("Do() error = %v, wantErr %v", err, tt.wantErr)
			}
			if p.Log().Has(models.PlaceholderLoading) {
				t.Error("loading placeholder still present")
			}
			assertLog(t, p, []models.Message{bot(tt.want)})
		})
	}
}

func TestTriggerLoad_ConcurrentLoadsRemoveOnePlaceholderEach(t *testing.T) {
	p := New(&fakeBackend{loadResult: &models.BookLoadResult{TotalFilesFound: 1, ChunksCreated: 1}})

	first := p.TriggerLoad()
	second := p.TriggerLoad()

	_ = p.Do(context.Background(), first)
	if !p.Log().Has(models.PlaceholderLoading) {
		t.Fatal("second placeholder removed too early")
	}
	_ = p.Do(context.Background(), second)
	if p.Log().Has(models.PlaceholderLoading) {
		t.Error("placeholder left behind")
	}
	if p.Log().Len() != 2 {
		t.Errorf("Len() = %d, want 2", p.Log().Len())
	}
}

func TestClearAll(t *testing.T) {
	p := New(&fakeBackend{answer: &models.AskResponse{Answer: "a"}})
	p.RenderMessage("one", models.SenderUser, "")
	p.RenderMessage("two", models.SenderBot, "")
	_ = p.Do(context.Background(), p.SubmitQuestion("three"))

	p.ClearAll()

	if p.Log().Len() != 0 {
		t.Errorf("Len() = %d after ClearAll, want 0", p.Log().Len())
	}
}

func TestClearAll_WhileTaskInFlight(t *testing.T) {
	p := New(&fakeBackend{answer: &models.AskResponse{Answer: "late answer"}})

	task := p.SubmitQuestion("question")
	p.ClearAll()
	_ = p.Do(context.Background(), task)

	assertLog(t, p, []models.Message{bot("late answer")})
}

func TestInitialize(t *testing.T) {
	tests := []struct {
		name    string
		backend *fakeBackend
		want    string
	}{
		{
			name:    "books present",
			backend: &fakeBackend{books: &models.BookListResult{Books: []string{"a.txt", "b.txt"}}},
			want:    "Books already loaded:\n• a.txt\n• b.txt",
		},
		{
			name:    "no books",
			backend: &fakeBackend{books: &models.BookListResult{Books: []string{}}},
			want:    models.TextNoBooks,
		},
		{
			name:    "nil list",
			backend: &fakeBackend{books: &models.BookListResult{}},
			want:    models.TextNoBooks,
		},
		{
			name:    "failure",
			backend: &fakeBackend{booksErr: errors.New("boom")},
			want:    models.TextBooksFailed,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := New(tt.backend)

			task := p.Initialize()
			if p.Log().Len() != 0 {
				t.Fatal("Initialize() rendered before its round trip")
			}
			_ = p.Do(context.Background(), task)

			assertLog(t, p, []models.Message{bot(tt.want)})
		})
	}
}

func TestDo_NilTask(t *testing.T) {
	p := New(&fakeBackend{})
	if err := p.Do(context.Background(), nil); err != nil {
		t.Errorf("Do(nil) error = %v", err)
	}
}

func TestCompletion_OpNames(t *testing.T) {
	backend := &fakeBackend{
		loadResult: &models.BookLoadResult{},
		answer:     &models.AskResponse{},
		books:      &models.BookListResult{},
	}
	p := New(backend)
	ctx := context.Background()

	got := []string{
		p.TriggerLoad()(ctx).Op,
		p.SubmitQuestion("q")(ctx).Op,
		p.Initialize()(ctx).Op,
	}
	if strings.Join(got, ",") != "load,ask,books" {
		t.Errorf("ops = %v", got)
	}
}

package commands

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/diogo/bookchat/internal/api"
	"github.com/diogo/bookchat/internal/config"
	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
	"github.com/diogo/bookchat/internal/panel"
	"github.com/diogo/bookchat/internal/tui"
)

type fakeTUI struct {
	calls   int
	backend panel.Backend
	opts    tui.Options
}

func (f *fakeTUI) RunChat(_ context.Context, backend panel.Backend, opts tui.Options) error {
	f.calls++
	f.backend = backend
	f.opts = opts
	return nil
}

type testEnv struct {
	deps    *Dependencies
	backend *api.MockBackend
	tui     *fakeTUI
	cfg     config.Config
	saved   []config.Config
	copied  []string
	stdout  *bytes.Buffer
	stderr  *bytes.Buffer
	stdin   *bytes.Buffer
	piped   bool
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("HOME", t.TempDir())
	for _, key := range []string{config.EnvServer, config.EnvBooksDir, config.EnvOllama, config.EnvGlamour} {
		t.Setenv(key, "")
	}

	env := &testEnv{
		backend: &api.MockBackend{},
		tui:     &fakeTUI{},
		cfg:     config.DefaultConfig(),
		stdout:  &bytes.Buffer{},
		stderr:  &bytes.Buffer{},
		stdin:   &bytes.Buffer{},
	}
	env.cfg.Markdown.Style = "notty"

	env.deps = &Dependencies{
		Backend:    env.backend,
		TUI:        env.tui,
		LoadConfig: func() (config.Config, error) { return env.cfg, nil },
		SaveConfig: func(c config.Config) error {
			env.saved = append(env.saved, c)
			return nil
		},
		Clipboard: func(s string) error {
			env.copied = append(env.copied, s)
			return nil
		},
		Stdin:      env.stdin,
		Stdout:     env.stdout,
		Stderr:     env.stderr,
		StdinPiped: func() bool { return env.piped },
	}
	return env
}

func (e *testEnv) run(args ...string) error {
	cmd := NewRootCmd(e.deps)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(context.Background())
}

func TestRootCmd_Subcommands(t *testing.T) {
	cmd := NewRootCmd(newTestEnv(t).deps)

	var names []string
	for _, sub := range cmd.Commands() {
		names = append(names, sub.Name())
	}
	for _, want := range []string{"ask", "books", "chat", "config", "load", "serve"} {
		found := false
		for _, name := range names {
			if name == want {
				found = true
			}
		}
		if !found {
			t.Errorf("subcommand %s not found in %v", want, names)
		}
	}

	for _, flag := range []string{"server", "verbose"} {
		if cmd.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("persistent flag %s not found", flag)
		}
	}
}

func TestRootCmd_Version(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("--version"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if !strings.HasPrefix(env.stdout.String(), "bookchat "+Version) {
		t.Errorf("stdout = %q", env.stdout.String())
	}
	if env.tui.calls != 0 {
		t.Error("version should not open the chat")
	}
}

func TestRootCmd_OpensChat(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want string
	}{
		{"no args", nil, models.DefaultServerURL},
		{"chat subcommand", []string{"chat"}, models.DefaultServerURL},
		{"server flag", []string{"--server", "http://books.local:9000/"}, "http://books.local:9000"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			if err := env.run(tt.args...); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if env.tui.calls != 1 {
				t.Fatalf("RunChat calls = %d, want 1", env.tui.calls)
			}
			if env.tui.opts.ServerURL != tt.want {
				t.Errorf("ServerURL = %q, want %q", env.tui.opts.ServerURL, tt.want)
			}
			if env.tui.backend != env.backend {
				t.Error("chat should receive the injected backend")
			}
		})
	}
}

func TestRootCmd_RejectsArgs(t *testing.T) {
	if err := newTestEnv(t).run("what is this?"); err == nil {
		t.Error("root command should reject positional arguments")
	}
}

func TestSettings_Precedence(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.ServerURL = "http://from-file:8090"
	t.Setenv(config.EnvServer, "http://from-env:8090")

	g := &globalOptions{}
	if got := g.settings(env.deps).ServerURL; got != "http://from-env:8090" {
		t.Errorf("env should override the file, got %q", got)
	}

	g.server = "http://from-flag:8090"
	g.verbose = true
	cfg := g.settings(env.deps)
	if cfg.ServerURL != "http://from-flag:8090" || !cfg.Verbose {
		t.Errorf("flags should override env, got %q verbose=%v", cfg.ServerURL, cfg.Verbose)
	}
}

func TestSettings_InvalidConfigWarns(t *testing.T) {
	env := newTestEnv(t)
	env.deps.LoadConfig = func() (config.Config, error) {
		return config.DefaultConfig(), errors.New("bad config.json")
	}

	cfg := (&globalOptions{}).settings(env.deps)
	if cfg.ServerURL != models.DefaultServerURL {
		t.Errorf("ServerURL = %q", cfg.ServerURL)
	}
	if !strings.Contains(env.stderr.String(), "bad config.json") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestAskCmd(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AskVal = &models.AskResponse{Answer: "Ishmael narrates."}

	if err := env.run("ask", "--raw", "Who", "narrates?"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Who narrates?"}, env.backend.Questions); diff != "" {
		t.Errorf("questions mismatch (-want +got):\n%s", diff)
	}
	if got := env.stdout.String(); got != "Ishmael narrates.\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestAskCmd_Decorated(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AskVal = &models.AskResponse{Answer: "Ishmael narrates."}

	if err := env.run("ask", "Who narrates?"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := env.stdout.String()
	if !strings.Contains(out, "Bot") || !strings.Contains(out, "Ishmael narrates.") {
		t.Errorf("stdout = %q", out)
	}
	if strings.Contains(out, models.TextThinking) {
		t.Error("placeholder should not be printed")
	}
}

func TestAskCmd_Inputs(t *testing.T) {
	dir := t.TempDir()
	questionFile := filepath.Join(dir, "question.md")
	if err := os.WriteFile(questionFile, []byte("  From a file?\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name  string
		args  []string
		stdin string
		piped bool
		want  string
	}{
		{"file flag", []string{"ask", "--raw", "-f", questionFile}, "", false, "From a file?"},
		{"stdin", []string{"ask", "--raw"}, "From stdin?\n", true, "From stdin?"},
		{"file wins over args", []string{"ask", "--raw", "-f", questionFile, "ignored"}, "", false, "From a file?"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.AskVal = &models.AskResponse{Answer: "ok"}
			env.stdin.WriteString(tt.stdin)
			env.piped = tt.piped

			if err := env.run(tt.args...); err != nil {
				t.Fatalf("Execute() error = %v", err)
			}
			if diff := cmp.Diff([]string{tt.want}, env.backend.Questions); diff != "" {
				t.Errorf("questions mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestAskCmd_EmptyQuestion(t *testing.T) {
	env := newTestEnv(t)

	err := env.run("ask", "   ")
	if !errors.Is(err, apierrors.ErrEmptyQuestion) {
		t.Errorf("Execute() error = %v, want ErrEmptyQuestion", err)
	}
	if len(env.backend.Questions) != 0 {
		t.Error("blank question should not reach the backend")
	}
}

func TestAskCmd_MissingFile(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("ask", "-f", filepath.Join(t.TempDir(), "missing.md")); err == nil {
		t.Error("missing question file should fail")
	}
}

func TestAskCmd_OutputFile(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AskVal = &models.AskResponse{Answer: "Saved answer."}
	out := filepath.Join(t.TempDir(), "answer.md")

	if err := env.run("ask", "-o", out, "Question?"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	data, err := os.ReadFile(out)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if string(data) != "Saved answer." {
		t.Errorf("file = %q", data)
	}
	if env.stdout.Len() != 0 {
		t.Errorf("stdout should stay empty, got %q", env.stdout.String())
	}
	if !strings.Contains(env.stderr.String(), "Answer saved to") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestAskCmd_Clipboard(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.CopyToClipboard = true
	env.backend.AskVal = &models.AskResponse{Answer: "Copied."}

	if err := env.run("ask", "Question?"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if diff := cmp.Diff([]string{"Copied."}, env.copied); diff != "" {
		t.Errorf("clipboard mismatch (-want +got):\n%s", diff)
	}

	env.deps.Clipboard = func(string) error { return errors.New("no display") }
	env.stderr.Reset()
	if err := env.run("ask", "Question?"); err != nil {
		t.Fatalf("clipboard failure should not fail the command: %v", err)
	}
	if !strings.Contains(env.stderr.String(), "no display") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestAskCmd_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.AskErr = apierrors.NewNetworkErrorWithEndpoint("ask", models.EndpointAsk, errors.New("connection refused"))

	err := env.run("ask", "--raw", "Question?")
	var reported *reportedError
	if !errors.As(err, &reported) {
		t.Fatalf("Execute() error = %v, want reportedError", err)
	}
	if !apierrors.IsNetworkError(err) {
		t.Error("reported error should keep its cause")
	}
	if got := env.stdout.String(); got != models.TextAskFailed+"\n" {
		t.Errorf("stdout = %q", got)
	}

	env = newTestEnv(t)
	env.backend.AskErr = apierrors.NewNetworkErrorWithEndpoint("ask", models.EndpointAsk, errors.New("connection refused"))
	_ = env.run("ask", "Question?")
	if !strings.Contains(env.stderr.String(), "Ask failed") || !strings.Contains(env.stderr.String(), "bookchat serve") {
		t.Errorf("stderr = %q", env.stderr.String())
	}
}

func TestLoadCmd(t *testing.T) {
	tests := []struct {
		name    string
		val     *models.BookLoadResult
		err     error
		want    string
		wantErr bool
	}{
		{
			name: "success",
			val:  &models.BookLoadResult{TotalFilesFound: 2, ChunksCreated: 5},
			want: "Books loaded successfully.\nFiles: 2\nChunks created: 5\n",
		},
		{
			name:    "backend reported error",
			val:     &models.BookLoadResult{Error: "No TXT files were found"},
			want:    "No TXT files were found\n",
			wantErr: true,
		},
		{
			name:    "transport failure",
			err:     apierrors.NewNetworkError("load", errors.New("refused")),
			want:    models.TextLoadFailed + "\n",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.backend.LoadVal, env.backend.LoadErr = tt.val, tt.err

			err := env.run("load", "--raw")
			if (err != nil) != tt.wantErr {
				t.Errorf("Execute() error = %v, wantErr %v", err, tt.wantErr)
			}
			if got := env.stdout.String(); got != tt.want {
				t.Errorf("stdout = %q, want %q", got, tt.want)
			}
			if env.backend.LoadCalls != 1 {
				t.Errorf("LoadCalls = %d", env.backend.LoadCalls)
			}
		})
	}
}

func TestBooksCmd(t *testing.T) {
	env := newTestEnv(t)
	env.backend.BooksVal = &models.BookListResult{Books: []string{"emma.txt", "moby.txt"}}

	if err := env.run("books", "--raw"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want := "Books already loaded:\n• emma.txt\n• moby.txt\n"
	if got := env.stdout.String(); got != want {
		t.Errorf("stdout = %q, want %q", got, want)
	}

	env = newTestEnv(t)
	env.backend.BooksVal = &models.BookListResult{}
	if err := env.run("books", "--raw"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if got := env.stdout.String(); got != models.TextNoBooks+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestBooksCmd_Failure(t *testing.T) {
	env := newTestEnv(t)
	env.backend.BooksErr = apierrors.NewAPIError(503, models.EndpointBooks, "unavailable")

	if err := env.run("books", "--raw"); err == nil {
		t.Fatal("Execute() should fail")
	}
	if got := env.stdout.String(); got != models.TextBooksFailed+"\n" {
		t.Errorf("stdout = %q", got)
	}
}

func TestConfigCmd_Show(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "show"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	out := env.stdout.String()
	for _, want := range []string{"server_url", models.DefaultServerURL, "search_limit", "markdown.style"} {
		if !strings.Contains(out, want) {
			t.Errorf("config show missing %q:\n%s", want, out)
		}
	}
}

func TestConfigCmd_Set(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "set", "search_limit", "5"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	if len(env.saved) != 1 || env.saved[0].SearchLimit != 5 {
		t.Fatalf("saved = %+v", env.saved)
	}

	err := env.run("config", "set", "nope", "x")
	var cfgErr *apierrors.ConfigError
	if !errors.As(err, &cfgErr) {
		t.Errorf("unknown key error = %v, want ConfigError", err)
	}
	if len(env.saved) != 1 {
		t.Error("invalid set should not save")
	}

	if err := env.run("config", "set", "search_limit"); err == nil {
		t.Error("set with one argument should fail")
	}
}

func TestConfigCmd_Path(t *testing.T) {
	env := newTestEnv(t)
	if err := env.run("config", "path"); err != nil {
		t.Fatalf("Execute() error = %v", err)
	}
	want, _ := config.GetConfigPath()
	if got := strings.TrimSpace(env.stdout.String()); got != want {
		t.Errorf("path = %q, want %q", got, want)
	}
}

func TestServeCmd_StartsAndStops(t *testing.T) {
	env := newTestEnv(t)
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "data", "books.db")

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	cmd := NewRootCmd(env.deps)
	cmd.SetArgs([]string{"serve", "--addr", "127.0.0.1:0", "--db", dbPath, "--books", dir})
	if err := cmd.ExecuteContext(ctx); err != nil {
		t.Fatalf("serve error = %v", err)
	}

	if _, err := os.Stat(dbPath); err != nil {
		t.Errorf("store file not created: %v", err)
	}
}

func TestServeCmd_InvalidOllamaHost(t *testing.T) {
	env := newTestEnv(t)
	env.cfg.OllamaHost = "not a url"

	err := env.run("serve", "--addr", "127.0.0.1:0", "--db", filepath.Join(t.TempDir(), "books.db"))
	if err == nil {
		t.Error("serve should reject an invalid ollama host")
	}
}

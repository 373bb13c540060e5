package commands

import (
	"context"
	"io"
	"os"

	"github.com/atotto/clipboard"

	"github.com/diogo/bookchat/internal/api"
	"github.com/diogo/bookchat/internal/config"
	"github.com/diogo/bookchat/internal/panel"
	"github.com/diogo/bookchat/internal/tui"
)

// TUIInterface defines the methods required from the TUI package.
type TUIInterface interface {
	RunChat(ctx context.Context, backend panel.Backend, opts tui.Options) error
}

// Dependencies holds the external dependencies for the commands.
// This allows for dependency injection and easier testing.
type Dependencies struct {
	// Backend replaces the HTTP client built from the configuration
	Backend panel.Backend

	// TUI is the terminal user interface.
	TUI TUIInterface

	// LoadConfig reads the persisted configuration
	LoadConfig func() (config.Config, error)

	// SaveConfig persists the configuration
	SaveConfig func(config.Config) error

	// Clipboard writes text to the system clipboard
	Clipboard func(string) error

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	// StdinPiped reports whether Stdin carries piped input
	StdinPiped func() bool
}

// DefaultTUI is the production implementation of TUIInterface.
type DefaultTUI struct{}

func (d *DefaultTUI) RunChat(ctx context.Context, backend panel.Backend, opts tui.Options) error {
	return tui.RunChat(ctx, backend, opts)
}

// NewDependencies creates a new Dependencies struct with default implementations.
func NewDependencies() *Dependencies {
	return &Dependencies{
		TUI:        &DefaultTUI{},
		LoadConfig: config.LoadConfig,
		SaveConfig: config.SaveConfig,
		Clipboard:  clipboard.WriteAll,
		Stdin:      os.Stdin,
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
		StdinPiped: stdinPiped,
	}
}

// withDefaults fills the fields a test left unset
func (d *Dependencies) withDefaults() *Dependencies {
	defaults := NewDependencies()
	if d == nil {
		return defaults
	}

	out := *d
	if out.TUI == nil {
		out.TUI = defaults.TUI
	}
	if out.LoadConfig == nil {
		out.LoadConfig = defaults.LoadConfig
	}
	if out.SaveConfig == nil {
		out.SaveConfig = defaults.SaveConfig
	}
	if out.Clipboard == nil {
		out.Clipboard = defaults.Clipboard
	}
	if out.Stdin == nil {
		out.Stdin = defaults.Stdin
	}
	if out.Stdout == nil {
		out.Stdout = defaults.Stdout
	}
	if out.Stderr == nil {
		out.Stderr = defaults.Stderr
	}
	if out.StdinPiped == nil {
		out.StdinPiped = func() bool { return false }
		if d.Stdin == nil {
			out.StdinPiped = defaults.StdinPiped
		}
	}
	return &out
}

// backend returns the injected backend or an HTTP client for serverURL
func (d *Dependencies) backend(serverURL string) (panel.Backend, error) {
	if d.Backend != nil {
		return d.Backend, nil
	}
	client, err := api.NewClient(api.WithBaseURL(serverURL))
	if err != nil {
		return nil, err
	}
	return client, nil
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	if err != nil {
		return false
	}
	return stat.Mode()&os.ModeCharDevice == 0
}

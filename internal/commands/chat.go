package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/diogo/bookchat/internal/render"
	"github.com/diogo/bookchat/internal/tui"
)

func newChatCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session with the literary assistant.

Enter sends a question, Ctrl+L loads the books folder and Ctrl+K clears
the conversation. /load, /books, /clear and /copy are also available.
Type 'exit', 'quit', or press Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runChat(cmd, deps, g)
		},
	}
}

func runChat(cmd *cobra.Command, deps *Dependencies, g *globalOptions) error {
	cfg := g.settings(deps)

	if cfg.TUITheme != "" && !render.SetTUITheme(cfg.TUITheme) {
		fmt.Fprintf(deps.Stderr, "Warning: unknown theme '%s', using default\n", cfg.TUITheme)
	}
	tui.UpdateTheme()

	backend, err := deps.backend(cfg.ServerURL)
	if err != nil {
		return fmt.Errorf("failed to create client: %w", err)
	}

	logger := clientLogger(cfg)
	defer func() { _ = logger.Sync() }()

	return deps.TUI.RunChat(cmd.Context(), backend, tui.Options{
		ServerURL: cfg.ServerURL,
		Markdown:  render.FromConfig(cfg.Markdown),
		Logger:    logger,
		Clipboard: deps.Clipboard,
	})
}

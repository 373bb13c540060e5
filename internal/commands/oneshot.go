package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/bookchat/internal/config"
	"github.com/diogo/bookchat/internal/panel"
	"github.com/diogo/bookchat/internal/render"
)

// oneShot describes a single panel operation run from the command line
type oneShot struct {
	spinner string
	done    string
	failure string
	raw     bool
	silent  bool
	start   func(p *panel.Panel) panel.Task
}

// run drives the operation on a fresh panel, prints the bot messages it
// rendered (unless silent) and returns the panel for callers that need its log. A rendered
// failure is also returned as an error.
func (o oneShot) run(cmd *cobra.Command, deps *Dependencies, g *globalOptions) (*panel.Panel, config.Config, error) {
	cfg := g.settings(deps)

	backend, err := deps.backend(cfg.ServerURL)
	if err != nil {
		return nil, cfg, err
	}

	logger := clientLogger(cfg)
	defer func() { _ = logger.Sync() }()

	p := panel.New(backend, panel.WithLogger(logger))
	task := o.start(p)

	stop := maybeSpinner(deps.Stderr, o.spinner, !o.raw)
	err = p.Do(cmd.Context(), task)
	stop(err == nil, o.done)

	if !o.silent {
		printMessages(deps.Stdout, p.Log().Messages(), o.raw, render.FromConfig(cfg.Markdown))
	}

	if err != nil {
		if !o.raw {
			cmd.PrintErrln(formatErrorMessage(err, o.failure, cfg.ServerURL))
		}
		return p, cfg, &reportedError{err: err}
	}
	return p, cfg, nil
}

func newLoadCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "load",
		Short: "Ingest the books folder into the backend",
		Long: `Ask the backend to ingest every .txt file of its books folder.
Books that are already stored are skipped.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := oneShot{
				spinner: "Loading books",
				done:    "Done",
				failure: "Load failed",
				raw:     raw,
				start:   (*panel.Panel).TriggerLoad,
			}.run(cmd, deps, g)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain text without decoration")
	return cmd
}

func newBooksCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	var raw bool

	cmd := &cobra.Command{
		Use:   "books",
		Short: "List the books stored by the backend",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, _, err := oneShot{
				spinner: "Checking stored books",
				done:    "Done",
				failure: "Listing books failed",
				raw:     raw,
				start:   (*panel.Panel).Initialize,
			}.run(cmd, deps, g)
			return err
		},
	}
	cmd.Flags().BoolVar(&raw, "raw", false, "Print plain text without decoration")
	return cmd
}

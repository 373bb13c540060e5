package commands

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	apierrors "github.com/diogo/bookchat/internal/errors"
	"github.com/diogo/bookchat/internal/models"
	"github.com/diogo/bookchat/internal/panel"
)

type askOptions struct {
	file   string
	output string
	raw    bool
}

func newAskCmd(deps *Dependencies, g *globalOptions) *cobra.Command {
	opts := &askOptions{}

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a single question about the loaded books",
		Long: `Ask the backend one question and print the answer.

The question is taken from the arguments, from a file (-f) or from stdin.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			question, err := readQuestion(deps, opts, args)
			if err != nil {
				return err
			}
			return runAsk(cmd, deps, g, opts, question)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "Read the question from file")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "Save the answer to file")
	cmd.Flags().BoolVar(&opts.raw, "raw", false, "Print the answer without decoration")
	return cmd
}

// readQuestion picks the question from the file flag, the arguments or stdin
func readQuestion(deps *Dependencies, opts *askOptions, args []string) (string, error) {
	var question string
	switch {
	case opts.file != "":
		data, err := os.ReadFile(opts.file)
		if err != nil {
			return "", fmt.Errorf("failed to read file: %w", err)
		}
		question = string(data)
	case len(args) > 0:
		question = strings.Join(args, " ")
	case deps.StdinPiped():
		data, err := io.ReadAll(deps.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		question = string(data)
	}

	question = strings.TrimSpace(question)
	if question == "" {
		return "", apierrors.ErrEmptyQuestion
	}
	return question, nil
}

func runAsk(cmd *cobra.Command, deps *Dependencies, g *globalOptions, opts *askOptions, question string) error {
	p, cfg, err := oneShot{
		spinner: "Thinking",
		done:    "Done",
		failure: "Ask failed",
		raw:     opts.raw,
		silent:  opts.output != "",
		start: func(p *panel.Panel) panel.Task {
			return p.SubmitQuestion(question)
		},
	}.run(cmd, deps, g)
	if err != nil {
		return err
	}

	answer, ok := p.Log().LastFrom(models.SenderBot)
	if !ok {
		return nil
	}

	if opts.output != "" {
		if err := os.WriteFile(opts.output, []byte(answer.Text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		if !opts.raw {
			fmt.Fprintln(deps.Stderr, successStyle.Render(fmt.Sprintf("✓ Answer saved to %s", opts.output)))
		}
	}

	if cfg.CopyToClipboard && !opts.raw {
		if err := deps.Clipboard(answer.Text); err != nil {
			fmt.Fprintln(deps.Stderr, warningStyle.Render(fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err)))
		} else {
			fmt.Fprintln(deps.Stderr, successStyle.Render("✓ Copied to clipboard"))
		}
	}
	return nil
}

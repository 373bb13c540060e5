// Package commands provides CLI commands for bookchat.
package commands

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/bookchat/internal/config"
	"github.com/diogo/bookchat/internal/logging"
	"github.com/diogo/bookchat/internal/models"
)

var (
	// Version info (set at build time)
	Version   = models.Version
	BuildTime = "unknown"
)

// globalOptions holds the persistent flags shared by every subcommand
type globalOptions struct {
	server  string
	verbose bool
}

// settings returns the effective configuration: the config file, then the
// environment, then the flags
func (g *globalOptions) settings(deps *Dependencies) config.Config {
	cfg, err := deps.LoadConfig()
	if err != nil {
		fmt.Fprintf(deps.Stderr, "Warning: %v (using defaults)\n", err)
	}
	cfg.ApplyEnv()

	if g.server != "" {
		cfg.ServerURL = strings.TrimSuffix(g.server, "/")
	}
	if g.verbose {
		cfg.Verbose = true
	}
	return cfg
}

// clientLogger returns the file logger used by client commands
func clientLogger(cfg config.Config) *zap.Logger {
	path, err := config.GetLogPath()
	if err != nil {
		return zap.NewNop()
	}
	logger, err := logging.NewClient(cfg.Verbose, path)
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// NewRootCmd builds the bookchat command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	deps = deps.withDefaults()
	g := &globalOptions{}

	rootCmd := &cobra.Command{
		Use:   "bookchat",
		Short: "Chat with the books of a literary assistant backend",
		Long: `bookchat is a terminal client for a literary assistant. The backend
ingests a folder of .txt books and answers questions using only their text.

Examples:
  bookchat                              Start interactive chat
  bookchat ask "Who is Ishmael?"        Ask a single question
  bookchat ask -f question.md           Read the question from a file
  echo "Who is Emma?" | bookchat ask    Read the question from stdin
  bookchat load                         Ingest the books folder
  bookchat books                        List stored books
  bookchat serve                        Run the backend
  bookchat config set server_url http://localhost:8090`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(cmd.OutOrStdout(), "bookchat %s (built %s)\n", Version, BuildTime)
				return nil
			}
			return runChat(cmd, deps, g)
		},
	}

	rootCmd.SetIn(deps.Stdin)
	rootCmd.SetOut(deps.Stdout)
	rootCmd.SetErr(deps.Stderr)

	rootCmd.PersistentFlags().StringVar(&g.server, "server", "", "Backend base URL (default from config, "+config.EnvServer+")")
	rootCmd.PersistentFlags().BoolVar(&g.verbose, "verbose", false, "Log requests to ~/.bookchat/bookchat.log (serve: debug logging)")
	rootCmd.Flags().BoolP("version", "v", false, "Show version and exit")

	rootCmd.AddCommand(
		newChatCmd(deps, g),
		newAskCmd(deps, g),
		newLoadCmd(deps, g),
		newBooksCmd(deps, g),
		newServeCmd(deps, g),
		newConfigCmd(deps),
	)

	return rootCmd
}

// Execute runs the root command
func Execute() {
	deps := NewDependencies()
	if err := NewRootCmd(deps).Execute(); err != nil {
		var shown *reportedError
		if !errors.As(err, &shown) {
			fmt.Fprintln(deps.Stderr, formatErrorMessage(err, "Error", ""))
		}
		os.Exit(1)
	}
}

// reportedError marks a failure that was already printed to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string {
	return e.err.Error()
}

func (e *reportedError) Unwrap() error {
	return e.err
}

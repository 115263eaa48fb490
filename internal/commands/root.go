// Package commands provides CLI commands for wikichat.
package commands

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/config"
	"github.com/diogo/wikichat/internal/models"
)

var (
	// Version info (set at build time)
	Version   = "0.1.0"
	BuildTime = "unknown"
)

// errExchangeFailed is returned by the one-shot query after the failure line
// has already been printed.
var errExchangeFailed = errors.New("exchange failed")

// globalFlags are shared by every subcommand
type globalFlags struct {
	endpoint   string
	mode       string
	verbose    bool
	configPath string
}

// queryFlags are the flags of the one-shot query
type queryFlags struct {
	output string
	file   string
	raw    bool
}

// app is the state shared by a command tree during one execution
type app struct {
	deps   *Dependencies
	flags  globalFlags
	query  queryFlags
	cfg    config.Config
	logger *zap.Logger
}

// NewRootCmd builds the wikichat command tree
func NewRootCmd(deps *Dependencies) *cobra.Command {
	a := &app{
		deps:   deps.withDefaults(),
		cfg:    config.DefaultConfig(),
		logger: zap.NewNop(),
	}

	cmd := &cobra.Command{
		Use:   "wikichat [prompt]",
		Short: "Chat with a Wikipedia-grounded assistant",
		Long: `wikichat is a terminal chat client for a Wikipedia question-answering
backend. Every message is sent with a mode: "fast" answers from a single
Wikipedia search, "thinking" lets an agent search as often as it needs.

Examples:
  wikichat chat                         Start interactive chat
  wikichat "Who wrote Dune?"            Send a single message
  wikichat --mode thinking "..."        Send in thinking mode
  wikichat -f question.md               Read the message from a file
  cat question.md | wikichat            Read the message from stdin
  wikichat "Hello" -o answer.md         Save the answer to a file
  wikichat serve                        Run the chat backend`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			_ = a.logger.Sync()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if v, _ := cmd.Flags().GetBool("version"); v {
				fmt.Fprintf(a.deps.Stdout, "wikichat %s (built %s)\n", Version, BuildTime)
				return nil
			}

			prompt, ok, err := a.readPrompt(args)
			if err != nil {
				return err
			}
			if !ok {
				return cmd.Help()
			}
			return a.runQuery(cmd.Context(), prompt)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&a.flags.endpoint, "endpoint", "", "Chat endpoint URL (default from config)")
	pf.StringVarP(&a.flags.mode, "mode", "m", "", "Answer mode: fast or thinking (default from config)")
	pf.BoolVar(&a.flags.verbose, "verbose", false, "Show diagnostic details and debug logs")
	pf.StringVar(&a.flags.configPath, "config", "", "Path to the config file (default ~/.wikichat/config.json)")

	cmd.Flags().StringVarP(&a.query.output, "output", "o", "", "Save the answer to file")
	cmd.Flags().StringVarP(&a.query.file, "file", "f", "", "Read the message from file")
	cmd.Flags().BoolVar(&a.query.raw, "raw", false, "Print only the final message, undecorated")
	cmd.Flags().BoolP("version", "v", false, "Show version and exit")

	cmd.AddCommand(a.newChatCmd())
	cmd.AddCommand(a.newServeCmd())
	cmd.AddCommand(a.newConfigCmd())

	return cmd
}

// rootCmd represents the base command
var rootCmd = NewRootCmd(NewDependencies())

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errExchangeFailed) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}

// setup loads the configuration, applies flag overrides and builds the logger
func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		fmt.Fprintf(a.deps.Stderr, "Warning: %v (using defaults)\n", err)
	}

	if a.flags.endpoint != "" {
		cfg.Endpoint = a.flags.endpoint
	}
	if a.flags.mode != "" {
		mode, err := models.ParseMode(a.flags.mode)
		if err != nil {
			return err
		}
		cfg.DefaultMode = string(mode)
	}
	if a.flags.verbose {
		cfg.Verbose = true
	}
	a.cfg = cfg

	logger, err := newLogger(cmd.Name(), cfg)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	a.logger = logger
	return nil
}

func (a *app) loadConfig() (config.Config, error) {
	if a.flags.configPath != "" {
		return config.LoadConfigFrom(a.flags.configPath)
	}
	return config.LoadConfig()
}

// configPath returns the file `config set` writes to
func (a *app) configPath() (string, error) {
	if a.flags.configPath != "" {
		return a.flags.configPath, nil
	}
	if _, err := config.EnsureConfigDir(); err != nil {
		return "", err
	}
	return config.GetConfigPath()
}

// readPrompt returns the message from -f, stdin or the argument, in that order
func (a *app) readPrompt(args []string) (string, bool, error) {
	if a.query.file != "" {
		data, err := os.ReadFile(a.query.file)
		if err != nil {
			return "", false, fmt.Errorf("failed to read file: %w", err)
		}
		return string(data), true, nil
	}

	if a.deps.StdinPiped() {
		data, err := io.ReadAll(a.deps.Stdin)
		if err != nil {
			return "", false, fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(data), true, nil
	}

	if len(args) > 0 {
		return args[0], true, nil
	}

	return "", false, nil
}

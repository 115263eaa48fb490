package commands

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/answer"
	"github.com/diogo/wikichat/internal/server"
	"github.com/diogo/wikichat/internal/wiki"
)

var errMissingAPIKey = errors.New("OpenAI API key not set: use 'wikichat config set server.openai_api_key <key>' or OPENAI_API_KEY")

func (a *app) newServeCmd() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the chat backend",
		Long: `Run the HTTP backend the chat client talks to.

POST /chat accepts {"message": "...", "mode": "fast"|"thinking"} and
answers {"answer": "..."} using Wikipedia search and an OpenAI model.
GET /healthz reports liveness. Stops gracefully on SIGINT/SIGTERM.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if addr != "" {
				a.cfg.Server.Addr = addr
			}
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return a.runServe(ctx)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from config, 127.0.0.1:5000)")
	return cmd
}

// answerer returns the injected Answerer or builds the Wikipedia/OpenAI one
func (a *app) answerer() (server.Answerer, error) {
	if a.deps.Answerer != nil {
		return a.deps.Answerer, nil
	}

	sc := a.cfg.Server
	key := sc.OpenAIKey()
	if key == "" {
		return nil, errMissingAPIKey
	}

	search, err := wiki.NewClient(
		wiki.WithLanguage(sc.WikiLanguage),
		wiki.WithResults(sc.WikiResults),
		wiki.WithMaxChars(sc.WikiMaxChars),
		wiki.WithLogger(a.logger),
	)
	if err != nil {
		return nil, err
	}

	completer := answer.NewOpenAICompleter(key, a.logger)
	return answer.NewService(completer, search, answer.Config{
		FastModel:     sc.FastModel,
		FastTemp:      sc.FastTemp,
		ThinkingModel: sc.ThinkingModel,
		ThinkingTemp:  sc.ThinkingTemp,
		MaxSteps:      sc.MaxAgentSteps,
	}, a.logger), nil
}

func (a *app) runServe(ctx context.Context) error {
	answerer, err := a.answerer()
	if err != nil {
		return err
	}

	srv, err := server.New(answerer, a.cfg.Server.Addr, a.logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	a.logger.Info("starting chat backend",
		zap.String("addr", srv.Addr()),
		zap.String("fast_model", a.cfg.Server.FastModel),
		zap.String("thinking_model", a.cfg.Server.ThinkingModel))

	return srv.Run(ctx)
}

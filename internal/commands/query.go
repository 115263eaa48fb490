package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/api"
	"github.com/diogo/wikichat/internal/models"
	"github.com/diogo/wikichat/internal/render"
	"github.com/diogo/wikichat/internal/session"
	"github.com/diogo/wikichat/internal/tui"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorError    = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	assistantLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	assistantBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	failureBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorError).
				Foreground(colorError).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)
)

// exchanger returns the configured Exchanger and a function releasing it
func (a *app) exchanger() (api.Exchanger, func(), error) {
	if a.deps.Exchanger != nil {
		return a.deps.Exchanger, func() {}, nil
	}

	client, err := api.NewClient(
		api.WithEndpoint(a.cfg.Endpoint),
		api.WithTimeout(time.Duration(a.cfg.TimeoutSeconds)*time.Second),
		api.WithLogger(a.logger),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create client: %w", err)
	}
	return client, client.Close, nil
}

// runQuery submits a single message and prints the final transcript entry.
// A failed exchange prints the failure line and returns errExchangeFailed.
func (a *app) runQuery(ctx context.Context, prompt string) error {
	if strings.TrimSpace(prompt) == "" {
		return fmt.Errorf("prompt cannot be empty")
	}
	if ctx == nil {
		ctx = context.Background()
	}

	exchanger, release, err := a.exchanger()
	if err != nil {
		return err
	}
	defer release()

	ctrl := session.New(exchanger,
		session.WithMode(a.cfg.Mode()),
		session.WithLogger(a.logger),
	)

	turn, err := ctrl.Begin(prompt)
	if err != nil {
		return err
	}

	raw := a.query.raw
	decorated := !raw && a.deps.Interactive()

	var spin *spinner
	if decorated {
		spin = newSpinner(a.deps.Stderr, models.PendingText)
		spin.start()
	}

	start := time.Now()
	answer, exchangeErr := turn.Run(ctx)
	elapsed := time.Since(start)
	reply := ctrl.Finish(turn, answer, exchangeErr)

	a.logger.Debug("exchange finished",
		zap.String("mode", turn.Request.Mode.String()),
		zap.Duration("elapsed", elapsed),
		zap.Error(exchangeErr))

	if exchangeErr != nil {
		if spin != nil {
			spin.stopWithError()
		}
		if a.cfg.Verbose && !raw {
			fmt.Fprintln(a.deps.Stderr, tui.FormatError(exchangeErr))
		}
		if decorated {
			fmt.Fprintln(a.deps.Stdout, failureBubbleStyle.Width(a.bubbleWidth()).Render(reply.Text))
		} else {
			fmt.Fprintln(a.deps.Stdout, reply.Text)
		}
		return errExchangeFailed
	}

	if spin != nil {
		spin.stopWithSuccess("Done")
	}
	if a.cfg.Verbose && !raw {
		fmt.Fprintf(a.deps.Stderr, "[verbose] %s mode, request took %s\n",
			turn.Request.Mode, elapsed.Round(time.Millisecond))
	}

	text := reply.Text

	if raw {
		if a.query.output != "" {
			return writeOutput(a.query.output, text)
		}
		fmt.Fprint(a.deps.Stdout, text)
		return nil
	}

	if a.cfg.CopyToClipboard {
		if err := a.deps.CopyToClipboard(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorError).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(a.deps.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(a.deps.Stderr, clipMsg)
		}
	}

	if a.query.output != "" {
		if err := writeOutput(a.query.output, text); err != nil {
			return err
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Answer saved to %s", a.query.output),
		)
		fmt.Fprintln(a.deps.Stderr, successMsg)
		return nil
	}

	if !decorated {
		fmt.Fprintln(a.deps.Stdout, text)
		return nil
	}

	bubbleWidth := a.bubbleWidth()
	mdOpts := render.OptionsFromConfig(a.cfg.Markdown).WithWidth(bubbleWidth - 4)

	label := assistantLabelStyle.Render(fmt.Sprintf("✦ Wikichat (%s)", turn.Request.Mode.Label()))
	fmt.Fprintln(a.deps.Stdout, label)
	fmt.Fprintln(a.deps.Stdout, assistantBubbleStyle.Width(bubbleWidth).Render(render.Answer(text, mdOpts)))

	return nil
}

// bubbleWidth clamps the terminal width to a readable answer width
func (a *app) bubbleWidth() int {
	width := a.deps.TerminalWidth()
	if width <= 0 {
		width = 80
	}
	bubbleWidth := width - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	return bubbleWidth
}

func writeOutput(path, text string) error {
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return fmt.Errorf("failed to write output file: %w", err)
	}
	return nil
}

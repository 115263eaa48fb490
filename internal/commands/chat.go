package commands

import (
	"github.com/spf13/cobra"

	"github.com/diogo/wikichat/internal/render"
	"github.com/diogo/wikichat/internal/session"
	"github.com/diogo/wikichat/internal/tui"
)

func (a *app) newChatCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive chat session",
		Long: `Start an interactive chat session.

Enter sends the message, Alt+Enter or Ctrl+J inserts a newline.
Tab (or /mode) switches between fast and thinking mode, Ctrl+T (or /theme)
switches between the dark and light theme.
Type 'exit', 'quit', or press Esc/Ctrl+C to end the session.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.runChat()
		},
	}
}

func (a *app) runChat() error {
	exchanger, release, err := a.exchanger()
	if err != nil {
		return err
	}
	defer release()

	ctrl := session.New(exchanger,
		session.WithMode(a.cfg.Mode()),
		session.WithLogger(a.logger),
	)

	return a.deps.TUI.RunChat(ctrl, a.chatOptions())
}

// chatOptions derives the TUI options from the configuration. A markdown
// style naming a theme follows the theme toggle; any other style is pinned.
func (a *app) chatOptions() tui.ChatOptions {
	theme, err := render.ParseTheme(a.cfg.Theme)
	if err != nil {
		theme = render.ThemeDark
	}

	mdOpts := render.OptionsFromConfig(a.cfg.Markdown)
	if _, err := render.ParseTheme(mdOpts.Style); err == nil {
		mdOpts.Style = ""
	}

	return tui.ChatOptions{
		Theme:    theme,
		Markdown: mdOpts,
		Verbose:  a.cfg.Verbose,
		Logger:   a.logger,
	}
}

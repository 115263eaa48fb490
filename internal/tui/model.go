package tui

import (
	"context"
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/wikichat/internal/models"
	"github.com/diogo/wikichat/internal/render"
	"github.com/diogo/wikichat/internal/session"
)

// turnDoneMsg carries the outcome of an exchange back to the event loop
type turnDoneMsg struct {
	turn   *session.Turn
	answer string
	err    error
}

// ChatOptions configures the chat model
type ChatOptions struct {
	Theme    render.Theme
	Markdown render.Options
	// Verbose shows diagnostic details of the last failed exchange
	Verbose bool
	Logger  *zap.Logger
}

// followState is shared with the controller's append hook so the viewport
// scrolls to the bottom after every append.
type followState struct {
	dirty bool
}

// Model represents the TUI state
type Model struct {
	ctx    context.Context
	ctrl   *session.Controller
	logger *zap.Logger

	theme   render.Theme
	mdOpts  render.Options
	verbose bool

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// State
	loading bool
	ready   bool
	lastErr error
	failed  map[string]bool
	follow  *followState

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model driving ctrl
func NewChatModel(ctx context.Context, ctrl *session.Controller, opts ChatOptions) Model {
	theme := opts.Theme
	if theme != render.ThemeLight {
		theme = render.ThemeDark
	}
	UpdateTheme(theme)

	mdOpts := opts.Markdown
	if mdOpts.Style == "" {
		mdOpts = mdOpts.WithTheme(theme)
	}

	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	follow := &followState{}
	ctrl.OnAppend(func(models.ChatMessage) {
		follow.dirty = true
	})

	m := Model{
		ctx:      ctx,
		ctrl:     ctrl,
		logger:   logger,
		theme:    theme,
		mdOpts:   mdOpts,
		verbose:  opts.Verbose,
		textarea: newTextarea(),
		spinner:  newSpinner(),
		failed:   make(map[string]bool),
		follow:   follow,
	}
	return m
}

func newTextarea() textarea.Model {
	ta := textarea.New()
	ta.Placeholder = "Ask me anything..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline = key.NewBinding(key.WithKeys("alt+enter", "ctrl+j"))
	ta.Focus()
	styleTextarea(&ta)
	return ta
}

func styleTextarea(ta *textarea.Model) {
	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
}

func newSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle
	return s
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return textarea.Blink
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4 // Header panel with border
		inputHeight := 6  // Input panel with border
		statusHeight := 1 // Status bar
		padding := 2      // Extra spacing

		vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
		if vpHeight < 5 {
			vpHeight = 5
		}

		contentWidth := m.width - 4

		if !m.ready {
			m.viewport = viewport.New(contentWidth, vpHeight)
			m.ready = true
		} else {
			m.viewport.Width = contentWidth
			m.viewport.Height = vpHeight
		}
		m.textarea.SetWidth(contentWidth - 4)
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "tab":
			m.toggleMode()
			return m, nil

		case "ctrl+t":
			m.toggleTheme()
			return m, nil

		case "enter":
			return m.submit()
		}

	case turnDoneMsg:
		reply := m.ctrl.Finish(msg.turn, msg.answer, msg.err)
		m.loading = false
		if msg.err != nil {
			m.lastErr = msg.err
			m.failed[reply.ID] = true
			m.logger.Warn("exchange failed", zap.Error(msg.err))
		}
		m.refresh()

	case spinner.TickMsg:
		if m.loading {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.updateViewport()
		}
	}

	// Only pass KeyMsg to textarea to prevent escape sequence leaks
	if !m.loading {
		if _, ok := msg.(tea.KeyMsg); ok {
			m.textarea, cmd = m.textarea.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit handles Enter: local commands, or a new turn for the controller
func (m Model) submit() (tea.Model, tea.Cmd) {
	if m.loading {
		return m, nil
	}

	input := strings.TrimSpace(m.textarea.Value())
	switch input {
	case "":
		return m, nil
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	case "/mode":
		m.textarea.Reset()
		m.toggleMode()
		return m, nil
	case "/theme":
		m.textarea.Reset()
		m.toggleTheme()
		return m, nil
	}

	turn, err := m.ctrl.Begin(input)
	if errors.Is(err, session.ErrExchangeInFlight) {
		return m, nil
	}
	if err != nil || turn == nil {
		return m, nil
	}

	m.textarea.Reset()
	m.loading = true
	m.lastErr = nil
	m.refresh()

	return m, tea.Batch(
		m.runTurn(turn),
		m.spinner.Tick,
	)
}

// runTurn performs the exchange off the event loop
func (m Model) runTurn(turn *session.Turn) tea.Cmd {
	ctx := m.ctx
	return func() tea.Msg {
		answer, err := turn.Run(ctx)
		return turnDoneMsg{turn: turn, answer: answer, err: err}
	}
}

func (m *Model) toggleMode() {
	mode := m.ctrl.ToggleMode()
	m.logger.Debug("mode changed", zap.String("mode", mode.String()))
}

func (m *Model) toggleTheme() {
	m.theme = m.theme.Toggle()
	UpdateTheme(m.theme)
	m.mdOpts = m.mdOpts.WithTheme(m.theme)
	styleTextarea(&m.textarea)
	m.spinner.Style = loadingStyle
	m.updateViewport()
}

// refresh re-renders the transcript and follows appends to the bottom
func (m *Model) refresh() {
	m.updateViewport()
	if m.follow != nil && m.follow.dirty {
		m.viewport.GotoBottom()
		m.follow.dirty = false
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center,
		titleStyle.Render("Wikichat"),
		hintStyle.Render("  |  "),
		m.renderModeLabels(),
		hintStyle.Render("  |  "),
		subtitleStyle.Render(string(m.theme)),
	)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages
	var messagesContent string
	if len(m.ctrl.Messages()) == 0 {
		messagesContent = m.renderWelcome()
	} else {
		messagesContent = m.viewport.View()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(messagesContent))

	// Input
	var inputContent string
	if m.loading {
		inputContent = loadingStyle.Render(m.spinner.View() + " waiting for the " + m.ctrl.Mode().Label() + " answer")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.verbose && m.lastErr != nil {
		sections = append(sections, FormatError(m.lastErr))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderModeLabels renders "Fast Thinking" with the active mode highlighted
func (m Model) renderModeLabels() string {
	current := m.ctrl.Mode()
	labels := make([]string, 0, len(models.AllModes()))
	for _, mode := range models.AllModes() {
		style := modeInactiveStyle
		if mode == current {
			style = modeActiveStyle
		}
		labels = append(labels, style.Render(mode.Label()))
	}
	return strings.Join(labels, " ")
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4
	height := m.viewport.Height

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("?"),
		"",
		welcomeTitleStyle.Width(width).Render("Ask Wikipedia"),
		"",
		welcomeStyle.Width(width).Render("Type a question below. Tab switches between fast and thinking answers."),
		"",
	)

	topPadding := (height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}

	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Alt+Enter", "Newline"},
		{"Tab", "Mode"},
		{"Ctrl+T", "Theme"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(strings.Join(items, "  |  "))
}

// updateViewport refreshes the viewport content with styled messages
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, msg := range m.ctrl.Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		switch msg.Sender {
		case models.SenderUser:
			content.WriteString(userLabelStyle.Render("You") + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))

		case models.SenderPending:
			content.WriteString(assistantLabelStyle.Render("Wikichat") + "\n")
			content.WriteString(pendingBubbleStyle.Width(bubbleWidth).Render(m.spinner.View() + " " + msg.Text))

		default:
			content.WriteString(assistantLabelStyle.Render("Wikichat") + "\n")
			if m.failed[msg.ID] {
				content.WriteString(failureBubbleStyle.Width(bubbleWidth).Render(msg.Text))
			} else {
				rendered := render.Answer(msg.Text, m.mdOpts.WithWidth(bubbleWidth-4))
				content.WriteString(assistantBubbleStyle.Width(bubbleWidth).Render(rendered))
			}
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI
func RunChat(ctrl *session.Controller, opts ChatOptions) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	p := tea.NewProgram(
		NewChatModel(ctx, ctrl, opts),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

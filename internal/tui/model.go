package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/diogo/bookchat/internal/models"
	"github.com/diogo/bookchat/internal/panel"
	"github.com/diogo/bookchat/internal/render"
)

// Message types for the TUI
type (
	// completionMsg carries a finished panel task back to the update loop
	completionMsg struct {
		completion panel.Completion
	}
	clipboardMsg struct {
		err error
	}
)

// Options configures the chat model
type Options struct {
	// ServerURL is shown in the header and in connection hints
	ServerURL string
	Markdown  render.Options
	Logger    *zap.Logger
	// Clipboard writes text to the system clipboard (default clipboard.WriteAll)
	Clipboard func(string) error
}

// Model represents the TUI state
type Model struct {
	ctx   context.Context
	panel *panel.Panel
	opts  Options

	// UI components. The textarea lives behind a pointer because the panel
	// clears it when a question is submitted.
	viewport viewport.Model
	input    *textarea.Model
	spinner  spinner.Model

	// State
	initial  panel.Task
	inFlight int
	revision uint64
	ready    bool
	notice   string
	err      error

	// Dimensions
	width  int
	height int
}

// NewChatModel creates a chat model whose panel talks to backend
func NewChatModel(ctx context.Context, backend panel.Backend, opts Options) Model {
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}
	if opts.Markdown.Style == "" {
		opts.Markdown = render.DefaultOptions()
	}

	ta := textarea.New()
	ta.Placeholder = "Ask something about your books..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.KeyMap.InsertNewline.SetEnabled(false)
	ta.Focus()

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle
	input := &ta

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	p := panel.New(backend, panel.WithInput(input), panel.WithLogger(opts.Logger))

	return Model{
		ctx:      ctx,
		panel:    p,
		opts:     opts,
		input:    input,
		spinner:  s,
		initial:  p.Initialize(),
		inFlight: 1,
	}
}

// Panel returns the chat panel driven by the model
func (m Model) Panel() *panel.Panel {
	return m.panel
}

// Init lists the books already stored by the backend
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
		m.run(m.initial),
	)
}

// run executes a panel task off the update loop
func (m Model) run(task panel.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		return completionMsg{completion: task(ctx)}
	}
}

// start dispatches a task and keeps the spinner going while it runs
func (m *Model) start(task panel.Task) tea.Cmd {
	if task == nil {
		return nil
	}
	m.err = nil
	m.notice = ""
	m.inFlight++
	if m.inFlight == 1 {
		return tea.Batch(m.run(task), m.spinner.Tick)
	}
	return m.run(task)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		headerHeight := 4
		inputHeight := 6
		statusHeight := 2
		padding := 2

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
		m.input.SetWidth(contentWidth - 4)
		m.revision = m.panel.Log().Revision()
		m.updateViewport()
		m.viewport.GotoBottom()
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "esc":
			return m, tea.Quit

		case "ctrl+l":
			return m, m.start(m.panel.TriggerLoad())

		case "ctrl+k":
			m.panel.ClearAll()
			m.refresh()
			return m, nil

		case "enter":
			return m.submit()
		}

	case completionMsg:
		m.inFlight--
		msg.completion.Apply(m.panel)
		if msg.completion.Err != nil {
			m.err = msg.completion.Err
		}

	case clipboardMsg:
		if msg.err != nil {
			m.notice = fmt.Sprintf("Failed to copy to clipboard: %v", msg.err)
		} else {
			m.notice = "Copied last answer to clipboard"
		}

	case spinner.TickMsg:
		if m.inFlight > 0 {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
		}
	}

	// Only key presses reach the textarea to keep escape sequences out of it
	if _, ok := msg.(tea.KeyMsg); ok {
		*m.input, cmd = m.input.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.refresh()
	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit dispatches the text typed in the input: a slash command, an exit
// word or a question for the panel
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := strings.TrimSpace(m.input.Value())

	switch text {
	case "exit", "quit", "/exit", "/quit":
		return m, tea.Quit
	case "/load":
		m.input.Reset()
		return m, m.start(m.panel.TriggerLoad())
	case "/books":
		m.input.Reset()
		return m, m.start(m.panel.Initialize())
	case "/clear":
		m.input.Reset()
		m.panel.ClearAll()
		m.refresh()
		return m, nil
	case "/copy":
		m.input.Reset()
		return m, m.copyLastAnswer()
	}

	cmd := m.start(m.panel.SubmitQuestion(text))
	m.refresh()
	return m, cmd
}

// copyLastAnswer copies the newest bot message to the clipboard
func (m *Model) copyLastAnswer() tea.Cmd {
	last, ok := m.panel.Log().LastFrom(models.SenderBot)
	if !ok {
		m.notice = "Nothing to copy yet"
		return nil
	}
	write := m.opts.Clipboard
	return func() tea.Msg {
		return clipboardMsg{err: write(last.Text)}
	}
}

// refresh re-renders the viewport when the log changed since the last frame
func (m *Model) refresh() {
	rev := m.panel.Log().Revision()
	if rev == m.revision || !m.ready {
		return
	}
	m.revision = rev
	m.updateViewport()
	m.viewport.GotoBottom()
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	header := headerStyle.Width(contentWidth).Render(lipgloss.JoinHorizontal(
		lipgloss.Center,
		titleStyle.Render("📚 Book Chat"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.opts.ServerURL),
	))
	sections = append(sections, header)

	// Messages
	content := m.viewport.View()
	if m.panel.Log().Len() == 0 {
		content = m.renderWelcome()
	}
	sections = append(sections, messagesAreaStyle.
		Width(contentWidth).
		Height(m.viewport.Height).
		Render(content))

	// Input
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(lipgloss.JoinVertical(
		lipgloss.Left,
		inputLabelStyle.Render(models.SenderUser.Label()),
		m.input.View(),
	)))

	sections = append(sections, m.renderStatusBar(contentWidth))

	if m.notice != "" {
		sections = append(sections, noticeStyle.Render("  "+m.notice))
	}
	if m.err != nil {
		sections = append(sections, FormatError(m.err, m.opts.ServerURL))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderWelcome renders the welcome screen when no messages exist
func (m Model) renderWelcome() string {
	width := m.viewport.Width - 4

	content := lipgloss.JoinVertical(
		lipgloss.Center,
		"",
		welcomeIconStyle.Width(width).Render("📖"),
		welcomeTitleStyle.Width(width).Render("Ask your library"),
		welcomeStyle.Width(width).Render("Press Ctrl+L to load the books folder, then ask a question below"),
	)

	topPadding := (m.viewport.Height - lipgloss.Height(content)) / 2
	if topPadding < 0 {
		topPadding = 0
	}
	return strings.Repeat("\n", topPadding) + content
}

// renderStatusBar renders the shortcuts, plus a spinner while requests run
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Ask"},
		{"Ctrl+L", "Load books"},
		{"Ctrl+K", "Clear"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}
	bar := strings.Join(items, "  │  ")

	if m.inFlight > 0 {
		label := "request"
		if m.inFlight > 1 {
			label = "requests"
		}
		bar = loadingStyle.Render(fmt.Sprintf("%s %d %s", m.spinner.View(), m.inFlight, label)) + "  │  " + bar
	}

	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// updateViewport lays out every message of the panel's log
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 20 {
		bubbleWidth = 20
	}

	for i, msg := range m.panel.Log().Messages() {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case msg.Sender == models.SenderUser:
			content.WriteString(userLabelStyle.Render("● "+msg.Sender.Label()) + "\n")
			content.WriteString(userBubbleStyle.Width(bubbleWidth).Render(msg.Text))
		case msg.IsPlaceholder():
			content.WriteString(placeholderStyle.Render(msg.Text))
		default:
			content.WriteString(botLabelStyle.Render("✦ "+msg.Sender.Label()) + "\n")
			rendered := render.Answer(msg.Text, m.opts.Markdown.WithWidth(bubbleWidth-4))
			content.WriteString(botBubbleStyle.Width(bubbleWidth).Render(rendered))
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// RunChat starts the chat TUI and blocks until the user quits
func RunChat(ctx context.Context, backend panel.Backend, opts Options) error {
	p := tea.NewProgram(
		NewChatModel(ctx, backend, opts),
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)

	_, err := p.Run()
	return err
}

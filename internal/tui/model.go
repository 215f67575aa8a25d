package tui

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textarea"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PeuMauricio/Agente-ADG/internal/api"
	"github.com/PeuMauricio/Agente-ADG/internal/config"
	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
	"github.com/PeuMauricio/Agente-ADG/internal/render"
	"github.com/PeuMauricio/Agente-ADG/internal/session"
)

// AnalysisClient defines the backend operations the TUI needs.
type AnalysisClient interface {
	Analyze(ctx context.Context, filePath, question string) (*api.AnalysisResult, error)
	FetchChart(ctx context.Context, imageURL string) (string, error)
	BaseURL() string
}

// Message types for the TUI
type (
	// analysisMsg reports the outcome of one analysis request.
	analysisMsg struct {
		placeholderID string
		result        *api.AnalysisResult
		err           error
	}
	// chartMsg reports the outcome of one chart download. Chart
	// downloads are independent of each other and of the request cycle.
	chartMsg struct {
		entryID string
		path    string
		err     error
	}
)

// User-facing warnings for rejected submissions.
const (
	warnEmptyQuestion = "Type a question before sending."
	warnNoAttachment  = "Attach a .csv or .zip file before sending."
	warnInFlight      = "Still analyzing the previous question; wait for it to finish."
)

// Model represents the TUI state
type Model struct {
	client AnalysisClient
	cfg    config.Config

	// UI components
	viewport viewport.Model
	textarea textarea.Model
	spinner  spinner.Model

	// Conversation state
	transcript  *session.Transcript
	attachments *session.AttachmentTracker

	// Request cycle: at most one analysis request is in flight. New
	// submissions are rejected (not queued) until it resolves.
	inFlight      bool
	placeholderID string

	warning   string
	themeName string

	sidebarOpen bool
	viewer      viewerState

	// Dimensions
	width  int
	height int
	ready  bool
}

// NewModel creates the chat TUI model.
func NewModel(client AnalysisClient, cfg config.Config) Model {
	ta := textarea.New()
	ta.Placeholder = "Ask a question about your data..."
	ta.CharLimit = 4000
	ta.ShowLineNumbers = false
	ta.SetHeight(2)
	ta.Focus()

	// Enter is reserved for submit; newlines are inserted with ctrl+j
	ta.KeyMap.InsertNewline.SetKeys("ctrl+j")

	ta.FocusedStyle.CursorLine = lipgloss.NewStyle()
	ta.FocusedStyle.Base = lipgloss.NewStyle().Foreground(colorText)
	ta.FocusedStyle.Placeholder = lipgloss.NewStyle().Foreground(colorTextDim)
	ta.BlurredStyle = ta.FocusedStyle

	s := spinner.New()
	s.Spinner = spinner.Points
	s.Style = loadingStyle

	return Model{
		client:      client,
		cfg:         cfg,
		textarea:    ta,
		spinner:     s,
		transcript:  session.NewTranscript(),
		attachments: session.NewAttachmentTracker(),
		themeName:   render.GetTheme().Name,
	}
}

// Init initializes the model
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		textarea.Blink,
		m.spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	var cmd tea.Cmd

	// The chart viewer overlay captures the keyboard while open. Result
	// messages still flow to the handlers below so an answer or chart
	// arriving mid-view is not lost.
	if m.viewer.open {
		switch msg.(type) {
		case tea.KeyMsg, tea.WindowSizeMsg:
			return m.updateViewer(msg)
		}
	}

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height

		if !m.ready {
			// Below the breakpoint the sidebar starts collapsed
			m.sidebarOpen = msg.Width >= sidebarBreakpoint
			m.viewport = viewport.New(10, 10)
			m.ready = true
		} else if msg.Width < sidebarBreakpoint && m.sidebarOpen {
			// One-way forcing: shrinking collapses, growing never
			// re-expands
			m.sidebarOpen = false
		}

		m.layout()
		m.updateViewport()

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "esc":
			return m, tea.Quit

		case "ctrl+b":
			m.sidebarOpen = !m.sidebarOpen
			m.layout()
			m.updateViewport()
			return m, nil

		case "ctrl+n":
			m = m.resetSession()
			return m, nil

		case "ctrl+t":
			m = m.toggleTheme()
			return m, nil

		case "ctrl+o":
			if entry, ok := m.transcript.LastReadyChart(); ok {
				m.viewer = openViewer(entry)
			} else {
				m.warning = "No chart to show yet."
			}
			return m, nil

		case "enter":
			// Enter always submits and never reaches the textarea,
			// so an empty submission cannot leak a newline
			var submitCmd tea.Cmd
			m, submitCmd = m.submit()
			return m, submitCmd
		}

	case analysisMsg:
		m.inFlight = false
		m.placeholderID = ""

		// Remove the placeholder exactly once. After a mid-flight
		// reset the placeholder is already gone and this is a no-op;
		// the late answer is still appended to whatever transcript
		// exists now. That hazard is deliberate, see DESIGN.md.
		m.transcript.Remove(msg.placeholderID)

		if msg.err != nil {
			m.transcript.Append(session.SenderAgent, apierrors.UserMessage(msg.err), "")
		} else {
			entryID := m.transcript.Append(session.SenderAgent, msg.result.Text, msg.result.ImageURL)
			if msg.result.ImageURL != "" {
				cmds = append(cmds, m.fetchChartCmd(entryID, msg.result.ImageURL))
			}
		}

		m.updateViewport()
		m.viewport.GotoBottom()

	case chartMsg:
		if msg.err != nil {
			m.transcript.SetImageFailed(msg.entryID, "The chart could not be loaded.")
		} else {
			m.transcript.SetImageReady(msg.entryID, msg.path)
		}
		m.updateViewport()

	case spinner.TickMsg:
		if m.inFlight {
			m.spinner, cmd = m.spinner.Update(msg)
			cmds = append(cmds, cmd)
			m.updateViewport()
		}
	}

	// Only forward key messages to the textarea to prevent escape
	// sequence leaks
	if _, ok := msg.(tea.KeyMsg); ok {
		m.textarea, cmd = m.textarea.Update(msg)
		cmds = append(cmds, cmd)
	}

	m.viewport, cmd = m.viewport.Update(msg)
	cmds = append(cmds, cmd)

	return m, tea.Batch(cmds...)
}

// submit runs the guarded Idle -> Awaiting transition for the text
// currently in the input.
func (m Model) submit() (Model, tea.Cmd) {
	input := strings.TrimSpace(m.textarea.Value())

	if input == "" {
		m.warning = warnEmptyQuestion
		return m, nil
	}

	if input == "exit" || input == "quit" {
		return m, tea.Quit
	}

	// A pasted path to an existing file is treated as an attachment
	// drop; it goes through the same validation as /attach. Checked
	// before command dispatch because absolute paths also start with "/".
	if path, ok := looksLikeFileDrop(input); ok {
		m = m.attach(path)
		m.textarea.Reset()
		return m, nil
	}

	if strings.HasPrefix(input, "/") {
		return m.runCommand(input)
	}

	if m.attachments.Current() == nil {
		m.warning = warnNoAttachment
		return m, nil
	}

	if m.inFlight {
		m.warning = warnInFlight
		return m, nil
	}

	m.warning = ""
	m.transcript.Append(session.SenderUser, input, "")
	m.textarea.Reset()
	m.placeholderID = m.transcript.AppendPending()
	m.inFlight = true

	m.updateViewport()
	m.viewport.GotoBottom()

	return m, tea.Batch(
		m.analyzeCmd(m.attachments.Current().Path, input, m.placeholderID),
		m.spinner.Tick,
	)
}

// runCommand handles slash commands typed into the input.
func (m Model) runCommand(input string) (Model, tea.Cmd) {
	fields := strings.Fields(input)
	name := fields[0]

	switch name {
	case "/quit", "/exit":
		return m, tea.Quit

	case "/new":
		m = m.resetSession()
		m.textarea.Reset()
		return m, nil

	case "/attach":
		if len(fields) < 2 {
			m.warning = "Usage: /attach <file.csv|file.zip>"
			return m, nil
		}
		m = m.attach(strings.Join(fields[1:], " "))
		m.textarea.Reset()
		return m, nil

	case "/theme":
		if len(fields) >= 2 {
			m = m.applyTheme(fields[1])
		} else {
			m = m.toggleTheme()
		}
		m.textarea.Reset()
		return m, nil

	case "/copy":
		text := m.transcript.LastAgentText()
		if text == "" {
			m.warning = "Nothing to copy yet."
		} else if err := clipboard.WriteAll(text); err != nil {
			m.warning = "Could not access the clipboard."
		} else {
			m.warning = "Copied the last answer to the clipboard."
		}
		m.textarea.Reset()
		return m, nil

	case "/open":
		m.textarea.Reset()
		if entry, ok := m.transcript.LastReadyChart(); ok {
			m.viewer = openViewer(entry)
		} else {
			m.warning = "No chart to show yet."
		}
		return m, nil

	default:
		m.warning = fmt.Sprintf("Unknown command: %s", name)
		return m, nil
	}
}

// attach routes path through the tracker's validation and surfaces the
// outcome.
func (m Model) attach(path string) Model {
	file, err := m.attachments.Select(path)
	if err != nil {
		m.warning = apierrors.UserMessage(err)
		return m
	}
	m.warning = fmt.Sprintf("Attached %s.", file.Name)
	m.updateViewport()
	return m
}

// resetSession restores the initial empty conversation: welcome entry,
// no attachment, cleared input. An in-flight request is not cancelled;
// its answer will land in the fresh transcript.
func (m Model) resetSession() Model {
	m.transcript.Reset()
	m.attachments.Clear()
	m.textarea.Reset()
	m.warning = ""
	m.placeholderID = ""
	m.updateViewport()
	return m
}

// applyTheme switches and persists the theme. This is the only path that
// changes the theme indicator.
func (m Model) applyTheme(name string) Model {
	if !config.IsValidTheme(name) {
		m.warning = fmt.Sprintf("Unknown theme %q (light or dark).", name)
		return m
	}

	render.SetTheme(name)
	UpdateTheme()
	m.themeName = name
	m.warning = ""

	m.cfg.Theme = name
	if err := config.SaveConfig(m.cfg); err != nil {
		m.warning = "Theme changed, but saving the preference failed."
	}

	m.updateViewport()
	return m
}

func (m Model) toggleTheme() Model {
	if m.themeName == config.ThemeDark {
		return m.applyTheme(config.ThemeLight)
	}
	return m.applyTheme(config.ThemeDark)
}

// analyzeCmd issues the analysis request off the event loop.
func (m Model) analyzeCmd(filePath, question, placeholderID string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		result, err := client.Analyze(context.Background(), filePath, question)
		return analysisMsg{placeholderID: placeholderID, result: result, err: err}
	}
}

// fetchChartCmd downloads one chart image off the event loop. Multiple
// charts may be fetched concurrently; completions are independent.
func (m Model) fetchChartCmd(entryID, imageURL string) tea.Cmd {
	client := m.client
	return func() tea.Msg {
		path, err := client.FetchChart(context.Background(), imageURL)
		return chartMsg{entryID: entryID, path: path, err: err}
	}
}

// looksLikeFileDrop reports whether input is a path to an existing file,
// the terminal analog of dropping a file onto the window.
func looksLikeFileDrop(input string) (string, bool) {
	path := strings.Trim(input, `"'`)
	if strings.ContainsAny(path, "\n") {
		return "", false
	}
	info, err := os.Stat(path)
	if err != nil || info.IsDir() {
		return "", false
	}
	return path, true
}

// layout recomputes component sizes from the current dimensions.
func (m *Model) layout() {
	headerHeight := 4
	inputHeight := 6
	statusHeight := 2
	padding := 2

	vpHeight := m.height - headerHeight - inputHeight - statusHeight - padding
	if vpHeight < 5 {
		vpHeight = 5
	}

	contentWidth := m.width - 4
	vpWidth := contentWidth
	if m.sidebarOpen {
		vpWidth = contentWidth - sidebarWidth - 1
	}
	if vpWidth < 20 {
		vpWidth = 20
	}

	m.viewport.Width = vpWidth
	m.viewport.Height = vpHeight
	m.textarea.SetWidth(contentWidth - 4)
}

// updateViewport refreshes the viewport content with styled entries
func (m *Model) updateViewport() {
	var content strings.Builder
	bubbleWidth := m.viewport.Width - 6
	if bubbleWidth < 10 {
		bubbleWidth = 10
	}

	for i, e := range m.transcript.Entries() {
		if i > 0 {
			content.WriteString("\n")
		}

		switch {
		case e.Welcome:
			content.WriteString(welcomeStyle.Width(bubbleWidth).Render(e.Text))

		case e.Pending:
			content.WriteString(loadingStyle.Render(m.spinner.View() + " " + e.Text))

		case e.Sender == session.SenderUser:
			label := userLabelStyle.Render("⬤ You")
			bubble := userBubbleStyle.Width(bubbleWidth).Render(e.Text)
			content.WriteString(label + "\n" + bubble)

		default:
			label := agentLabelStyle.Render("✦ Analyst")

			rendered, err := render.MarkdownWithWidth(e.Text, bubbleWidth-4)
			if err != nil {
				rendered = e.Text
			}
			rendered = strings.TrimRight(rendered, "\n")

			body := rendered
			if note := chartLine(e); note != "" {
				body += "\n" + note
			}

			bubble := agentBubbleStyle.Width(bubbleWidth).Render(body)
			content.WriteString(label + "\n" + bubble)
		}
		content.WriteString("\n")
	}

	m.viewport.SetContent(content.String())
}

// chartLine renders the image slot of an entry according to its state.
func chartLine(e session.Entry) string {
	switch e.ImageState {
	case session.ImagePending:
		return chartNoteStyle.Render("⟳ rendering chart...")
	case session.ImageReady:
		return chartNoteStyle.Render("🖼 chart saved to " + e.ImagePath + "  (ctrl+o to view)")
	case session.ImageFailed:
		return chartFailedStyle.Render("✗ " + e.ImageError)
	default:
		return ""
	}
}

// View renders the TUI
func (m Model) View() string {
	if !m.ready {
		return loadingStyle.Render("  Initializing...")
	}

	if m.viewer.open {
		return m.renderViewer()
	}

	var sections []string
	contentWidth := m.width - 4

	// Header
	headerParts := []string{
		titleStyle.Render("✦ Data Analysis Agent"),
		hintStyle.Render("  •  "),
		subtitleStyle.Render(m.client.BaseURL()),
		hintStyle.Render("  •  "),
		subtitleStyle.Render("📎 " + m.attachments.Label()),
	}
	headerContent := lipgloss.JoinHorizontal(lipgloss.Center, headerParts...)
	sections = append(sections, headerStyle.Width(contentWidth).Render(headerContent))

	// Messages area, with the sidebar alongside when expanded
	messagesPanel := messagesAreaStyle.
		Width(m.viewport.Width + 2).
		Height(m.viewport.Height).
		Render(m.viewport.View())

	if m.sidebarOpen {
		sections = append(sections, lipgloss.JoinHorizontal(
			lipgloss.Top,
			messagesPanel,
			m.renderSidebar(),
		))
	} else {
		sections = append(sections, messagesPanel)
	}

	// Input area
	var inputContent string
	if m.inFlight {
		inputContent = loadingStyle.Render(m.spinner.View() + " Waiting for the analyst...")
	} else {
		inputContent = lipgloss.JoinVertical(
			lipgloss.Left,
			inputLabelStyle.Render("You"),
			m.textarea.View(),
		)
	}
	sections = append(sections, inputPanelStyle.Width(contentWidth).Render(inputContent))

	// Warning line
	if m.warning != "" {
		sections = append(sections, warningStyle.Render("⚠ "+m.warning))
	}

	// Status bar
	sections = append(sections, m.renderStatusBar(contentWidth))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderStatusBar renders the bottom status bar with shortcuts
func (m Model) renderStatusBar(width int) string {
	shortcuts := []struct {
		key  string
		desc string
	}{
		{"Enter", "Send"},
		{"Ctrl+J", "Newline"},
		{"Ctrl+B", m.sidebarHint()},
		{"Ctrl+N", "New session"},
		{"Ctrl+O", "Chart"},
		{"Esc", "Quit"},
	}

	var items []string
	for _, s := range shortcuts {
		items = append(items, statusKeyStyle.Render(s.key)+statusDescStyle.Render(" "+s.desc))
	}

	bar := strings.Join(items, "  │  ")
	return statusBarStyle.Width(width).Align(lipgloss.Center).Render(bar)
}

// Run starts the chat TUI.
func Run(client AnalysisClient, cfg config.Config) error {
	p := tea.NewProgram(
		NewModel(client, cfg),
		tea.WithAltScreen(),
	)

	_, err := p.Run()
	return err
}

package tui

import (
	"fmt"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/PeuMauricio/Agente-ADG/internal/session"
)

// viewerState holds the chart viewer overlay. While open it owns the
// keyboard; the transcript underneath keeps its scroll position and the
// conversation state is untouched.
type viewerState struct {
	open  bool
	title string
	path  string
	url   string
}

func openViewer(entry session.Entry) viewerState {
	return viewerState{
		open:  true,
		title: filepath.Base(entry.ImagePath),
		path:  entry.ImagePath,
		url:   entry.ImageURL,
	}
}

// updateViewer handles messages while the overlay is open. Any key
// dismisses it except the quit chord.
func (m Model) updateViewer(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		if msg.Width < sidebarBreakpoint && m.sidebarOpen {
			m.sidebarOpen = false
		}
		m.layout()
		m.updateViewport()
		return m, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		m.viewer = viewerState{}
		return m, nil
	}

	return m, nil
}

// renderViewer draws the full-screen chart overlay. Terminals cannot
// show the bitmap inline, so the overlay presents the saved file and
// where it came from.
func (m Model) renderViewer() string {
	var sb strings.Builder

	sb.WriteString(viewerTitleStyle.Render("🖼 " + m.viewer.title))
	sb.WriteString("\n\n")
	sb.WriteString(sidebarKeyStyle.Render("Saved to"))
	sb.WriteString("\n")
	sb.WriteString(sidebarValueStyle.Render("  " + m.viewer.path))
	sb.WriteString("\n\n")
	sb.WriteString(sidebarKeyStyle.Render("Source"))
	sb.WriteString("\n")
	sb.WriteString(sidebarValueStyle.Render("  " + m.viewer.url))
	sb.WriteString("\n\n")
	sb.WriteString(hintStyle.Render(fmt.Sprintf("open with your image viewer: xdg-open %s", m.viewer.path)))
	sb.WriteString("\n\n")
	sb.WriteString(statusDescStyle.Render("press any key to return"))

	box := viewerBoxStyle.Render(sb.String())

	return lipgloss.Place(
		m.width, m.height,
		lipgloss.Center, lipgloss.Center,
		box,
	)
}

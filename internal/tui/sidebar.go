package tui

import (
	"fmt"
	"strings"
)

// Sidebar layout. Below the breakpoint the sidebar starts collapsed and
// is forced shut when the window shrinks across it; it never reopens on
// its own.
const (
	sidebarBreakpoint = 100
	sidebarWidth      = 28
)

func (m Model) sidebarHint() string {
	if m.sidebarOpen {
		return "Hide panel"
	}
	return "Show panel"
}

// renderSidebar renders the session panel shown next to the transcript.
func (m Model) renderSidebar() string {
	var sb strings.Builder

	sb.WriteString(sidebarTitleStyle.Render("Session"))
	sb.WriteString("\n")

	writeRow := func(key, value string) {
		sb.WriteString(sidebarKeyStyle.Render(key))
		sb.WriteString("\n")
		sb.WriteString(sidebarValueStyle.Render("  " + value))
		sb.WriteString("\n")
	}

	writeRow("Server", m.client.BaseURL())
	writeRow("Attachment", m.attachments.Label())
	writeRow("Theme", m.themeName)
	writeRow("Messages", fmt.Sprintf("%d", m.conversationLen()))

	if m.inFlight {
		sb.WriteString("\n")
		sb.WriteString(loadingStyle.Render("analyzing..."))
		sb.WriteString("\n")
	}

	sb.WriteString("\n")
	sb.WriteString(sidebarKeyStyle.Render("Commands"))
	sb.WriteString("\n")
	for _, c := range []string{"/attach <file>", "/new", "/theme", "/copy", "/open"} {
		sb.WriteString(sidebarValueStyle.Render("  " + c))
		sb.WriteString("\n")
	}

	return sidebarStyle.
		Width(sidebarWidth).
		Height(m.viewport.Height).
		Render(sb.String())
}

// conversationLen counts real conversation entries, ignoring the welcome
// entry and the pending placeholder.
func (m Model) conversationLen() int {
	n := 0
	for _, e := range m.transcript.Entries() {
		if e.Welcome || e.Pending {
			continue
		}
		n++
	}
	return n
}

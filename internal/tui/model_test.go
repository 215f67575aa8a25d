package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/PeuMauricio/Agente-ADG/internal/api"
	"github.com/PeuMauricio/Agente-ADG/internal/config"
	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
	"github.com/PeuMauricio/Agente-ADG/internal/render"
	"github.com/PeuMauricio/Agente-ADG/internal/session"
)

// stubClient lets tests script backend behavior without a server.
type stubClient struct {
	analyzeFn func(filePath, question string) (*api.AnalysisResult, error)
	fetchFn   func(imageURL string) (string, error)
}

func (s *stubClient) Analyze(_ context.Context, filePath, question string) (*api.AnalysisResult, error) {
	if s.analyzeFn != nil {
		return s.analyzeFn(filePath, question)
	}
	return &api.AnalysisResult{Text: "done"}, nil
}

func (s *stubClient) FetchChart(_ context.Context, imageURL string) (string, error) {
	if s.fetchFn != nil {
		return s.fetchFn(imageURL)
	}
	return "/tmp/chart.png", nil
}

func (s *stubClient) BaseURL() string { return "http://localhost:8000" }

func newTestModel(t *testing.T, client AnalysisClient, width int) Model {
	t.Helper()
	m := NewModel(client, config.DefaultConfig())
	updated, _ := m.Update(tea.WindowSizeMsg{Width: width, Height: 40})
	return updated.(Model)
}

func attachCSV(t *testing.T, m Model) Model {
	t.Helper()
	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n1,2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	return m.attach(path)
}

func pressEnter(t *testing.T, m Model, text string) (Model, tea.Cmd) {
	t.Helper()
	m.textarea.SetValue(text)
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	return updated.(Model), cmd
}

func conversationEntries(m Model) []session.Entry {
	var out []session.Entry
	for _, e := range m.transcript.Entries() {
		if e.Welcome {
			continue
		}
		out = append(out, e)
	}
	return out
}

func TestSubmit_EmptyTextRejected(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)

	m, cmd := pressEnter(t, m, "   ")

	if cmd != nil {
		t.Error("empty submission must not produce a command")
	}
	if len(conversationEntries(m)) != 0 {
		t.Error("empty submission must not add transcript entries")
	}
	if m.warning != warnEmptyQuestion {
		t.Errorf("warning = %q, want %q", m.warning, warnEmptyQuestion)
	}
}

func TestSubmit_NoAttachmentRejected(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)

	m, cmd := pressEnter(t, m, "what is the trend?")

	if cmd != nil {
		t.Error("submission without attachment must not produce a command")
	}
	if m.warning != warnNoAttachment {
		t.Errorf("warning = %q, want %q", m.warning, warnNoAttachment)
	}
	if m.inFlight {
		t.Error("rejected submission must not start a request")
	}
}

func TestSubmit_FullCycle(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)

	m, cmd := pressEnter(t, m, "what is the mean?")
	if cmd == nil {
		t.Fatal("valid submission must produce a command")
	}
	if !m.inFlight {
		t.Fatal("submission must mark the request in flight")
	}

	entries := conversationEntries(m)
	if len(entries) != 2 {
		t.Fatalf("entries after submit = %d, want user + placeholder", len(entries))
	}
	if entries[0].Sender != session.SenderUser || entries[0].Text != "what is the mean?" {
		t.Errorf("first entry = %+v, want the user question", entries[0])
	}
	if !entries[1].Pending {
		t.Error("second entry must be the pending placeholder")
	}
	if m.textarea.Value() != "" {
		t.Error("input must be cleared on submit")
	}

	// Resolve the request
	updated, _ := m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		result:        &api.AnalysisResult{Text: "The mean is 42."},
	})
	m = updated.(Model)

	if m.inFlight {
		t.Error("response must clear the in-flight flag")
	}
	entries = conversationEntries(m)
	if len(entries) != 2 {
		t.Fatalf("entries after response = %d, want user + answer", len(entries))
	}
	if entries[1].Pending {
		t.Error("placeholder must be replaced by the answer")
	}
	if entries[1].Text != "The mean is 42." {
		t.Errorf("answer text = %q", entries[1].Text)
	}
}

func TestSubmit_RejectedWhileInFlight(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)

	m, _ = pressEnter(t, m, "first question")
	before := len(conversationEntries(m))

	m, cmd := pressEnter(t, m, "second question")

	if cmd != nil {
		t.Error("second submission must be rejected while one is in flight")
	}
	if m.warning != warnInFlight {
		t.Errorf("warning = %q, want %q", m.warning, warnInFlight)
	}
	if len(conversationEntries(m)) != before {
		t.Error("rejected submission must not touch the transcript")
	}
}

func TestAnalysisError_AppendedAsAgentEntry(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)
	m, _ = pressEnter(t, m, "break please")

	updated, _ := m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		err:           apierrors.NewApplicationError("unsupported column type"),
	})
	m = updated.(Model)

	entries := conversationEntries(m)
	last := entries[len(entries)-1]
	if last.Sender != session.SenderAgent {
		t.Error("error must land as an agent entry")
	}
	if last.Text != "unsupported column type" {
		t.Errorf("error entry text = %q", last.Text)
	}
	if m.inFlight {
		t.Error("error must clear the in-flight flag")
	}
}

func TestResetMidFlight_LateAnswerLandsInFreshTranscript(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)
	m, _ = pressEnter(t, m, "slow question")
	placeholderID := m.placeholderID

	// Reset while the request is still pending
	m = m.resetSession()

	if !m.inFlight {
		t.Error("reset must not cancel the pending request")
	}
	if m.attachments.Current() != nil {
		t.Error("reset must drop the attachment")
	}
	if len(conversationEntries(m)) != 0 {
		t.Error("reset must empty the conversation")
	}

	// The late answer arrives after the reset. The placeholder removal is
	// a no-op and the answer joins the fresh transcript.
	updated, _ := m.Update(analysisMsg{
		placeholderID: placeholderID,
		result:        &api.AnalysisResult{Text: "late answer"},
	})
	m = updated.(Model)

	entries := conversationEntries(m)
	if len(entries) != 1 || entries[0].Text != "late answer" {
		t.Fatalf("fresh transcript entries = %+v, want just the late answer", entries)
	}
	if m.inFlight {
		t.Error("late answer must release the in-flight gate")
	}
}

func TestChartLifecycle(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)
	m, _ = pressEnter(t, m, "plot it")

	updated, cmd := m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		result: &api.AnalysisResult{
			Text:     "Here is the chart.",
			ImageURL: "http://localhost:8000/outputs/plot.png",
		},
	})
	m = updated.(Model)
	if cmd == nil {
		t.Fatal("an answer with a chart must schedule the download")
	}

	entries := conversationEntries(m)
	answer := entries[len(entries)-1]
	if answer.ImageState != session.ImagePending {
		t.Fatalf("image state = %v, want pending", answer.ImageState)
	}

	updated, _ = m.Update(chartMsg{entryID: answer.ID, path: "/tmp/plot.png"})
	m = updated.(Model)

	got, _ := m.transcript.Entry(answer.ID)
	if got.ImageState != session.ImageReady || got.ImagePath != "/tmp/plot.png" {
		t.Errorf("entry after chartMsg = %+v, want ready with path", got)
	}
}

func TestChartFailure_KeepsAnswerText(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)
	m, _ = pressEnter(t, m, "plot it")

	updated, _ := m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		result: &api.AnalysisResult{
			Text:     "Here is the chart.",
			ImageURL: "http://localhost:8000/outputs/plot.png",
		},
	})
	m = updated.(Model)
	answer := conversationEntries(m)[len(conversationEntries(m))-1]

	updated, _ = m.Update(chartMsg{entryID: answer.ID, err: errors.New("boom")})
	m = updated.(Model)

	got, _ := m.transcript.Entry(answer.ID)
	if got.ImageState != session.ImageFailed {
		t.Errorf("image state = %v, want failed", got.ImageState)
	}
	if got.Text != "Here is the chart." {
		t.Error("chart failure must not disturb the answer text")
	}
}

func TestSidebar_ForcedCollapseNeverAutoExpands(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	if !m.sidebarOpen {
		t.Fatal("sidebar should start expanded on a wide window")
	}

	// Shrinking across the breakpoint forces it shut
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 80, Height: 40})
	m = updated.(Model)
	if m.sidebarOpen {
		t.Fatal("sidebar must collapse when the window shrinks below the breakpoint")
	}

	// Growing back does not reopen it
	updated, _ = m.Update(tea.WindowSizeMsg{Width: 140, Height: 40})
	m = updated.(Model)
	if m.sidebarOpen {
		t.Error("sidebar must not reopen on its own")
	}

	// The user toggle still works
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlB})
	m = updated.(Model)
	if !m.sidebarOpen {
		t.Error("ctrl+b must reopen the sidebar")
	}
}

func TestSidebar_StartsCollapsedOnNarrowWindow(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 80)
	if m.sidebarOpen {
		t.Error("sidebar should start collapsed on a narrow window")
	}
}

func TestViewer_OpenAndClose(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)
	m, _ = pressEnter(t, m, "plot it")

	// No ready chart yet
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = updated.(Model)
	if m.viewer.open {
		t.Fatal("viewer must not open without a ready chart")
	}

	updated, _ = m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		result:        &api.AnalysisResult{Text: "chart", ImageURL: "http://x/plot.png"},
	})
	m = updated.(Model)
	answer := conversationEntries(m)[len(conversationEntries(m))-1]
	updated, _ = m.Update(chartMsg{entryID: answer.ID, path: "/tmp/plot.png"})
	m = updated.(Model)

	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = updated.(Model)
	if !m.viewer.open {
		t.Fatal("ctrl+o must open the viewer once a chart is ready")
	}
	if m.viewer.path != "/tmp/plot.png" {
		t.Errorf("viewer path = %q", m.viewer.path)
	}

	// Any key dismisses without touching the conversation
	before := len(conversationEntries(m))
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	if m.viewer.open {
		t.Error("a key press must close the viewer")
	}
	if len(conversationEntries(m)) != before {
		t.Error("closing the viewer must not change the conversation")
	}
}

func TestViewerOpen_ResponsesStillDelivered(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)

	// First round produces a ready chart so the viewer can open
	m, _ = pressEnter(t, m, "plot it")
	updated, _ := m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		result:        &api.AnalysisResult{Text: "chart one", ImageURL: "http://x/one.png"},
	})
	m = updated.(Model)
	first := conversationEntries(m)[len(conversationEntries(m))-1]
	updated, _ = m.Update(chartMsg{entryID: first.ID, path: "/tmp/one.png"})
	m = updated.(Model)

	// Second request goes out, then the viewer opens on top of it
	m, _ = pressEnter(t, m, "plot it again")
	placeholderID := m.placeholderID
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyCtrlO})
	m = updated.(Model)
	if !m.viewer.open {
		t.Fatal("viewer should open over the pending request")
	}

	updated, _ = m.Update(analysisMsg{
		placeholderID: placeholderID,
		result:        &api.AnalysisResult{Text: "chart two", ImageURL: "http://x/two.png"},
	})
	m = updated.(Model)

	if m.inFlight {
		t.Error("response must clear the in-flight flag even while the viewer is open")
	}
	entries := conversationEntries(m)
	second := entries[len(entries)-1]
	if second.Pending {
		t.Error("placeholder must be replaced while the viewer is open")
	}
	if second.Text != "chart two" {
		t.Errorf("answer text = %q, want the second answer", second.Text)
	}
	if !m.viewer.open {
		t.Error("delivering a response must not close the viewer")
	}

	// Chart completions also land while the viewer is open
	updated, _ = m.Update(chartMsg{entryID: second.ID, path: "/tmp/two.png"})
	m = updated.(Model)
	got, _ := m.transcript.Entry(second.ID)
	if got.ImageState != session.ImageReady {
		t.Errorf("image state = %v, want ready", got.ImageState)
	}

	// And a later submission is not stuck behind a stale gate
	updated, _ = m.Update(tea.KeyMsg{Type: tea.KeyEsc})
	m = updated.(Model)
	m, cmd := pressEnter(t, m, "one more")
	if cmd == nil || m.warning == warnInFlight {
		t.Error("a new submission must be accepted after the viewed response resolved")
	}
}

func TestEnter_NeverInsertsNewline(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)

	m.textarea.SetValue("")
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = updated.(Model)

	if strings.Contains(m.textarea.Value(), "\n") {
		t.Error("enter must never reach the textarea as a newline")
	}
	if m.textarea.Value() != "" {
		t.Errorf("textarea value = %q, want empty", m.textarea.Value())
	}
}

func TestFileDropInput_AttachesInsteadOfAsking(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)

	path := filepath.Join(t.TempDir(), "data.csv")
	if err := os.WriteFile(path, []byte("a,b\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	m, cmd := pressEnter(t, m, path)

	if cmd != nil {
		t.Error("a dropped path must not start a request")
	}
	if m.attachments.Current() == nil {
		t.Fatal("a dropped path must become the attachment")
	}
	if m.attachments.Current().Name != "data.csv" {
		t.Errorf("attachment = %q", m.attachments.Current().Name)
	}
}

func TestSlashAttach_RejectsBadExtension(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)

	m, _ = pressEnter(t, m, "/attach report.pdf")

	if m.attachments.Current() != nil {
		t.Error("invalid extension must not attach")
	}
	if m.warning == "" {
		t.Error("rejection must surface a warning")
	}
}

func TestSlashNew_ResetsEverything(t *testing.T) {
	m := newTestModel(t, &stubClient{}, 120)
	m = attachCSV(t, m)
	m, _ = pressEnter(t, m, "question one")
	updated, _ := m.Update(analysisMsg{
		placeholderID: m.placeholderID,
		result:        &api.AnalysisResult{Text: "answer one"},
	})
	m = updated.(Model)

	m, _ = pressEnter(t, m, "/new")

	if len(conversationEntries(m)) != 0 {
		t.Error("/new must empty the conversation")
	}
	if m.attachments.Current() != nil {
		t.Error("/new must drop the attachment")
	}
	entries := m.transcript.Entries()
	if len(entries) != 1 || !entries[0].Welcome {
		t.Error("/new must leave exactly the welcome entry")
	}
}

func TestThemeCommand(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	defer func() {
		render.SetTheme(config.ThemeLight)
		UpdateTheme()
	}()
	m := newTestModel(t, &stubClient{}, 120)

	m, _ = pressEnter(t, m, "/theme dark")
	if m.themeName != config.ThemeDark {
		t.Errorf("theme = %q, want dark", m.themeName)
	}

	m, _ = pressEnter(t, m, "/theme mauve")
	if m.themeName != config.ThemeDark {
		t.Error("unknown theme must leave the current theme alone")
	}
	if m.warning == "" {
		t.Error("unknown theme must surface a warning")
	}
}

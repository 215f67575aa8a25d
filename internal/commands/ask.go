package commands

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
	"github.com/PeuMauricio/Agente-ADG/internal/render"
	"github.com/PeuMauricio/Agente-ADG/internal/session"
)

var (
	colorText     = lipgloss.Color("#c0caf5")
	colorTextDim  = lipgloss.Color("#565f89")
	colorTextMute = lipgloss.Color("#3b4261")
	colorSuccess  = lipgloss.Color("#9ece6a")
	colorPrimary  = lipgloss.Color("#7aa2f7")
	colorFailure  = lipgloss.Color("#f7768e")
)

// Styles matching the chat TUI
var (
	analystLabelStyle = lipgloss.NewStyle().
				Foreground(colorPrimary).
				Bold(true)

	analystBubbleStyle = lipgloss.NewStyle().
				BorderStyle(lipgloss.RoundedBorder()).
				BorderForeground(colorPrimary).
				Foreground(colorText).
				Padding(0, 1).
				MarginTop(1).
				MarginBottom(1)

	chartPathStyle = lipgloss.NewStyle().
			Foreground(colorTextDim).
			Italic(true)
)

// spinner handles the animated loading indicator
type spinner struct {
	message string
	stop    chan struct{}
	done    chan struct{}
	mu      sync.Mutex
	frame   int
	stopped bool
}

func newSpinner(message string) *spinner {
	return &spinner{
		message: message,
		stop:    make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// start begins the animation
func (s *spinner) start() {
	go func() {
		defer close(s.done)

		ticker := time.NewTicker(80 * time.Millisecond)
		defer ticker.Stop()

		// Hide cursor
		fmt.Fprint(os.Stderr, "\033[?25l")

		for {
			select {
			case <-s.stop:
				// Clear line and show cursor
				fmt.Fprint(os.Stderr, "\r\033[K\033[?25h")
				return
			case <-ticker.C:
				s.mu.Lock()
				s.render()
				s.frame++
				s.mu.Unlock()
			}
		}
	}()
}

// render draws the current animation frame
func (s *spinner) render() {
	chars := []string{"⣾", "⣽", "⣻", "⢿", "⡿", "⣟", "⣯", "⣷"}

	spinnerChar := lipgloss.NewStyle().Foreground(colorPrimary).Bold(true).
		Render(chars[s.frame%len(chars)])

	var dots strings.Builder
	numDots := (s.frame / 3) % 4
	for i := 0; i < 3; i++ {
		if i < numDots {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorPrimary).Render("●"))
		} else {
			dots.WriteString(lipgloss.NewStyle().Foreground(colorTextMute).Render("○"))
		}
	}

	msg := lipgloss.NewStyle().Foreground(colorText).Render(s.message)

	fmt.Fprintf(os.Stderr, "\r\033[K%s %s %s", spinnerChar, msg, dots.String())
}

// stopOnce safely closes the stop channel only once
func (s *spinner) stopOnce() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.stopped {
		close(s.stop)
		s.stopped = true
	}
}

// stopWithSuccess stops the spinner and shows a success message
func (s *spinner) stopWithSuccess(message string) {
	s.stopOnce()
	<-s.done

	checkmark := lipgloss.NewStyle().Foreground(colorSuccess).Bold(true).Render("✓")
	msg := lipgloss.NewStyle().Foreground(colorSuccess).Render(message)
	fmt.Fprintf(os.Stderr, "%s %s\n", checkmark, msg)
}

// stopWithError stops the spinner silently; the caller prints the error
func (s *spinner) stopWithError() {
	s.stopOnce()
	<-s.done
}

// runAsk sends one question with the attached dataset and prints the answer.
func runAsk(question string) error {
	question = strings.TrimSpace(question)
	if question == "" {
		return fmt.Errorf("question cannot be empty")
	}

	if fileFlag == "" {
		return fmt.Errorf("attach a dataset with --file (.csv or .zip)")
	}
	if !session.ValidExtension(fileFlag) {
		return apierrors.NewInvalidAttachmentError(fileFlag)
	}

	cfg := loadedConfig()
	client := newClient(cfg)
	rawOutput := rawFlag || !isStdoutTTY()

	var spin *spinner
	if !rawOutput {
		spin = newSpinner("Analyzing " + fileFlag)
		spin.start()
	}

	result, err := client.Analyze(context.Background(), fileFlag, question)
	if err != nil {
		if !rawOutput {
			spin.stopWithError()
			fmt.Fprintln(os.Stderr, formatErrorMessage(err, "Analysis failed"))
		}
		return fmt.Errorf("analysis failed: %w", err)
	}
	if !rawOutput {
		spin.stopWithSuccess("Done")
	}

	// Download the chart when the answer references one. A failed download
	// is a warning, not a failure: the text answer still stands.
	var chartPath string
	if result.ImageURL != "" {
		if !rawOutput {
			spin = newSpinner("Downloading chart")
			spin.start()
		}

		chartPath, err = client.FetchChart(context.Background(), result.ImageURL)
		if err != nil {
			if !rawOutput {
				spin.stopWithError()
				warn := lipgloss.NewStyle().Foreground(colorFailure).
					Render(fmt.Sprintf("⚠ Chart download failed: %v", err))
				fmt.Fprintln(os.Stderr, warn)
			}
			chartPath = ""
		} else if !rawOutput {
			spin.stopWithSuccess("Chart saved to " + chartPath)
		}
	}

	text := result.Text

	if rawOutput {
		if outputFlag != "" {
			return os.WriteFile(outputFlag, []byte(text), 0o644)
		}
		fmt.Print(text)
		if chartPath != "" {
			fmt.Printf("\n%s\n", chartPath)
		}
		return nil
	}

	fmt.Fprintln(os.Stderr)

	if cfg.CopyToClipboard {
		if err := clipboard.WriteAll(text); err != nil {
			warnMsg := lipgloss.NewStyle().Foreground(colorFailure).Render(
				fmt.Sprintf("⚠ Failed to copy to clipboard: %v", err),
			)
			fmt.Fprintln(os.Stderr, warnMsg)
		} else {
			clipMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render("✓ Copied to clipboard")
			fmt.Fprintln(os.Stderr, clipMsg)
		}
	}

	if outputFlag != "" {
		if err := os.WriteFile(outputFlag, []byte(text), 0o644); err != nil {
			return fmt.Errorf("failed to write output file: %w", err)
		}
		successMsg := lipgloss.NewStyle().Foreground(colorSuccess).Render(
			fmt.Sprintf("✓ Answer saved to %s", outputFlag),
		)
		fmt.Fprintln(os.Stderr, successMsg)
		return nil
	}

	termWidth := getTerminalWidth()
	bubbleWidth := termWidth - 4
	if bubbleWidth < 40 {
		bubbleWidth = 40
	}
	if bubbleWidth > 120 {
		bubbleWidth = 120
	}
	contentWidth := bubbleWidth - 4

	label := analystLabelStyle.Render("✦ Analyst")
	fmt.Println(label)

	rendered, err := render.MarkdownWithWidth(text, contentWidth)
	if err != nil {
		rendered = text
	}
	rendered = strings.TrimRight(rendered, "\n")

	bubble := analystBubbleStyle.Width(bubbleWidth).Render(rendered)
	fmt.Println(bubble)

	if chartPath != "" {
		fmt.Println(chartPathStyle.Render("🖼 " + chartPath))
	}

	return nil
}

// getTerminalWidth returns the terminal width or a default value
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}

// isStdoutTTY returns true if stdout is connected to a terminal
func isStdoutTTY() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// formatErrorMessage formats an error with additional context from structured errors
func formatErrorMessage(err error, context string) string {
	if err == nil {
		return ""
	}

	errorStyle := lipgloss.NewStyle().Foreground(colorFailure)
	dimStyle := lipgloss.NewStyle().Foreground(colorTextDim)

	var sb strings.Builder
	sb.WriteString(errorStyle.Render(fmt.Sprintf("✗ %s: %v", context, err)))

	if status := apierrors.GetHTTPStatus(err); status > 0 {
		sb.WriteString(dimStyle.Render(fmt.Sprintf("\n  HTTP Status: %d", status)))
	}

	switch {
	case apierrors.IsApplicationError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: the backend rejected the request; check the file and question"))
	case apierrors.IsTransportError(err):
		sb.WriteString(dimStyle.Render("\n  Hint: check that the analysis backend is running; try 'adg health'"))
	}

	return sb.String()
}

// Package render provides markdown rendering and theme definitions for the
// terminal interface.
package render

import (
	"fmt"
	"sync"

	"github.com/charmbracelet/glamour"
)

// Options configures the markdown renderer behavior.
type Options struct {
	// Width defines the maximum output width (default: 80)
	Width int

	// Style is the glamour style: "dark" or "light"
	Style string
}

// DefaultOptions returns the default configuration.
func DefaultOptions() Options {
	return Options{
		Width: 80,
		Style: "dark",
	}
}

// WithWidth returns Options with the specified width.
func (o Options) WithWidth(width int) Options {
	o.Width = width
	return o
}

// WithStyle returns Options with the specified style.
func (o Options) WithStyle(style string) Options {
	o.Style = style
	return o
}

// Renderers are pooled per style+width because a TermRenderer is not safe
// for concurrent Render calls and building one is expensive.
var (
	poolsMu sync.Mutex
	pools   = make(map[string]*sync.Pool)
)

func newRenderer(opts Options) (*glamour.TermRenderer, error) {
	return glamour.NewTermRenderer(
		glamour.WithStandardStyle(opts.Style),
		glamour.WithWordWrap(opts.Width),
		glamour.WithEmoji(),
	)
}

func poolFor(opts Options) *sync.Pool {
	key := fmt.Sprintf("%s:%d", opts.Style, opts.Width)

	poolsMu.Lock()
	defer poolsMu.Unlock()

	pool, ok := pools[key]
	if !ok {
		pool = &sync.Pool{}
		pools[key] = pool
	}
	return pool
}

// Markdown renders markdown content for terminal display.
func Markdown(content string, opts Options) (string, error) {
	pool := poolFor(opts)

	renderer, _ := pool.Get().(*glamour.TermRenderer)
	if renderer == nil {
		var err error
		renderer, err = newRenderer(opts)
		if err != nil {
			return "", err
		}
	}
	defer pool.Put(renderer)

	return renderer.Render(content)
}

// MarkdownWithWidth renders content at the given width using the style that
// matches the active theme.
func MarkdownWithWidth(content string, width int) (string, error) {
	opts := DefaultOptions().WithWidth(width).WithStyle(GetTheme().MarkdownStyle)
	return Markdown(content, opts)
}

// Package session holds the client-side conversation state: the attached
// file and the transcript. All mutation happens on the UI event loop; the
// types here are not safe for concurrent writers.
package session

import (
	"path/filepath"
	"strings"

	apierrors "github.com/PeuMauricio/Agente-ADG/internal/errors"
)

// DefaultAttachmentLabel is shown when no file is attached.
const DefaultAttachmentLabel = "no file attached"

// AttachedFile is the single file associated with the next question.
type AttachedFile struct {
	// Name is the base filename, used for validation and display.
	Name string
	// Path is the opaque handle to the file's bytes; it is only opened
	// when a request is actually sent.
	Path string
	// Ext is the lower-cased extension including the dot.
	Ext string
}

// allowedExtensions is the extension allow-list, lower-cased.
var allowedExtensions = map[string]bool{
	".csv": true,
	".zip": true,
}

// AllowedExtensions returns the accepted attachment extensions.
func AllowedExtensions() []string {
	return []string{".csv", ".zip"}
}

// ValidExtension reports whether name carries an accepted extension. The
// extension is the substring after the last dot, compared case-insensitively.
func ValidExtension(name string) bool {
	ext := strings.ToLower(filepath.Ext(name))
	return allowedExtensions[ext]
}

// AttachmentTracker owns the currently selected file. At most one file is
// held at a time; a new valid selection replaces it, an invalid one leaves
// it untouched.
type AttachmentTracker struct {
	current *AttachedFile
}

// NewAttachmentTracker creates a tracker with no file attached.
func NewAttachmentTracker() *AttachmentTracker {
	return &AttachmentTracker{}
}

// Select validates path's extension and, on success, replaces the held file
// unconditionally. On rejection the previous selection is preserved and an
// InvalidAttachmentError is returned for the caller to surface.
func (t *AttachmentTracker) Select(path string) (*AttachedFile, error) {
	name := filepath.Base(path)
	if !ValidExtension(name) {
		return nil, apierrors.NewInvalidAttachmentError(name)
	}

	t.current = &AttachedFile{
		Name: name,
		Path: path,
		Ext:  strings.ToLower(filepath.Ext(name)),
	}
	return t.current, nil
}

// Clear resets the tracker to the "no file" state.
func (t *AttachmentTracker) Clear() {
	t.current = nil
}

// Current returns the held file, or nil when none is attached.
func (t *AttachmentTracker) Current() *AttachedFile {
	return t.current
}

// Label returns the display label for the current selection.
func (t *AttachmentTracker) Label() string {
	if t.current == nil {
		return DefaultAttachmentLabel
	}
	return t.current.Name
}

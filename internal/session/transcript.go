package session

import (
	"github.com/google/uuid"
)

// Sender identifies who authored a transcript entry.
type Sender string

const (
	SenderUser  Sender = "user"
	SenderAgent Sender = "agent"
)

// ImageState tracks the lifecycle of an entry's chart image. It is only
// meaningful for entries that carry an image reference.
type ImageState int

const (
	// ImageNone means the entry has no image.
	ImageNone ImageState = iota
	// ImagePending means the image is being fetched.
	ImagePending
	// ImageReady means the image was fetched and stored locally.
	ImageReady
	// ImageFailed means the fetch failed; no retry is attempted.
	ImageFailed
)

// String returns the state name for display and tests.
func (s ImageState) String() string {
	switch s {
	case ImagePending:
		return "pending"
	case ImageReady:
		return "ready"
	case ImageFailed:
		return "failed"
	default:
		return "none"
	}
}

// WelcomeText is the static entry shown in an empty conversation.
const WelcomeText = "Welcome! Attach a .csv or .zip file and ask a question about your data."

// Entry is one element of the conversation transcript. Entries are
// append-only; only the image fields of an image entry ever change after
// insertion.
type Entry struct {
	ID     string
	Sender Sender
	Text   string

	// ImageURL is the reference returned by the backend, empty when the
	// entry has no image.
	ImageURL string
	// ImagePath is the local file once the chart has been fetched.
	ImagePath string
	// ImageState transitions pending -> ready or pending -> failed.
	ImageState ImageState
	// ImageError holds the failure notice shown in the image's slot.
	ImageError string

	// Pending marks the transient "processing" placeholder shown while a
	// request is in flight.
	Pending bool
	// Welcome marks the static placeholder shown before any activity.
	Welcome bool
}

// Transcript is the ordered conversation shown to the user. Insertion order
// is display order; entries are cleared en masse only by Reset.
type Transcript struct {
	entries []Entry
}

// NewTranscript creates a transcript holding only the welcome entry.
func NewTranscript() *Transcript {
	tr := &Transcript{}
	tr.Reset()
	return tr
}

// Reset discards all entries and restores the single welcome entry. It is
// synchronous and idempotent.
func (tr *Transcript) Reset() {
	tr.entries = []Entry{{
		ID:      uuid.NewString(),
		Sender:  SenderAgent,
		Text:    WelcomeText,
		Welcome: true,
	}}
}

// dropWelcome removes the welcome placeholder before a real entry is added.
func (tr *Transcript) dropWelcome() {
	kept := tr.entries[:0]
	for _, e := range tr.entries {
		if !e.Welcome {
			kept = append(kept, e)
		}
	}
	tr.entries = kept
}

// Append adds an entry to the tail and returns its id. An imageURL makes
// the entry an image entry starting in the pending state.
func (tr *Transcript) Append(sender Sender, text, imageURL string) string {
	tr.dropWelcome()

	e := Entry{
		ID:       uuid.NewString(),
		Sender:   sender,
		Text:     text,
		ImageURL: imageURL,
	}
	if imageURL != "" {
		e.ImageState = ImagePending
	}

	tr.entries = append(tr.entries, e)
	return e.ID
}

// AppendPending adds the transient "processing" placeholder used while a
// request is in flight and returns its id.
func (tr *Transcript) AppendPending() string {
	tr.dropWelcome()

	e := Entry{
		ID:      uuid.NewString(),
		Sender:  SenderAgent,
		Text:    "Analyzing your data...",
		Pending: true,
	}
	tr.entries = append(tr.entries, e)
	return e.ID
}

// Remove deletes an entry by identity. Removing an unknown or already
// removed id is a safe no-op; the return value reports whether anything
// was deleted.
func (tr *Transcript) Remove(id string) bool {
	for i, e := range tr.entries {
		if e.ID == id {
			tr.entries = append(tr.entries[:i], tr.entries[i+1:]...)
			return true
		}
	}
	return false
}

// SetImageReady transitions an image entry from pending to ready, recording
// the local path. Any other transition is refused.
func (tr *Transcript) SetImageReady(id, localPath string) bool {
	for i := range tr.entries {
		if tr.entries[i].ID == id && tr.entries[i].ImageState == ImagePending {
			tr.entries[i].ImageState = ImageReady
			tr.entries[i].ImagePath = localPath
			return true
		}
	}
	return false
}

// SetImageFailed transitions an image entry from pending to failed with a
// static notice. Any other transition is refused.
func (tr *Transcript) SetImageFailed(id, notice string) bool {
	for i := range tr.entries {
		if tr.entries[i].ID == id && tr.entries[i].ImageState == ImagePending {
			tr.entries[i].ImageState = ImageFailed
			tr.entries[i].ImageError = notice
			return true
		}
	}
	return false
}

// Entries returns a copy of the transcript in display order.
func (tr *Transcript) Entries() []Entry {
	out := make([]Entry, len(tr.entries))
	copy(out, tr.entries)
	return out
}

// Len returns the number of entries, the welcome placeholder included.
func (tr *Transcript) Len() int {
	return len(tr.entries)
}

// Entry looks up an entry by id.
func (tr *Transcript) Entry(id string) (Entry, bool) {
	for _, e := range tr.entries {
		if e.ID == id {
			return e, true
		}
	}
	return Entry{}, false
}

// LastAgentText returns the text of the most recent non-placeholder agent
// entry, or empty when there is none.
func (tr *Transcript) LastAgentText() string {
	for i := len(tr.entries) - 1; i >= 0; i-- {
		e := tr.entries[i]
		if e.Sender == SenderAgent && !e.Pending && !e.Welcome {
			return e.Text
		}
	}
	return ""
}

// LastReadyChart returns the most recent entry whose chart is ready.
func (tr *Transcript) LastReadyChart() (Entry, bool) {
	for i := len(tr.entries) - 1; i >= 0; i-- {
		if tr.entries[i].ImageState == ImageReady {
			return tr.entries[i], true
		}
	}
	return Entry{}, false
}

package types

import "time"

// RecordKind identifies what sort of content a record holds.
type RecordKind string

const (
	KindTranscript RecordKind = "transcript"
	KindRecording  RecordKind = "recording"
	KindAssignment RecordKind = "assignment"
)

// AllKinds lists every record kind the store accepts.
var AllKinds = []RecordKind{KindTranscript, KindRecording, KindAssignment}

// Valid reports whether k is a known record kind.
func (k RecordKind) Valid() bool {
	switch k {
	case KindTranscript, KindRecording, KindAssignment:
		return true
	}
	return false
}

// Document is a stored piece of course content. The RAG pipeline receives it
// by value and never mutates or persists it; ownership stays with the store.
type Document struct {
	ID        string
	UserID    string
	Title     string
	Content   string
	Kind      RecordKind
	CourseID  string
	CreatedAt time.Time
}

// Validate checks the fields required before a document can be stored.
func (d *Document) Validate() error {
	if d.Title == "" {
		return ErrMissingTitle
	}
	if d.Content == "" {
		return ErrEmptyContent
	}
	if !d.Kind.Valid() {
		return ErrUnknownKind
	}
	return nil
}

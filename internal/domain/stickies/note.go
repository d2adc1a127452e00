package stickies

import (
	"crypto/sha256"
	"encoding/hex"
	"time"
)

// FingerprintSeparator joins the normalized text and the creation time.
const FingerprintSeparator = "|"

// NoteInput carries what an extractor recovered for one note before the
// common sanitisation pass.
type NoteInput struct {
	SourceID      string
	PlainText     string
	Hypertext     *string
	Created       time.Time
	Modified      time.Time
	Color         Color
	FallbackTitle string
}

// NewNote sanitizes the text fields, derives the title and fills in a
// missing modification time from the creation time.
func NewNote(in NoteInput) Note {
	plain := Sanitize(in.PlainText)
	var rich *string
	if in.Hypertext != nil {
		h := Sanitize(*in.Hypertext)
		rich = &h
	}
	modified := in.Modified
	if modified.IsZero() {
		modified = in.Created
	}
	return Note{
		Title:       Sanitize(TitleFor(plain, in.FallbackTitle)),
		Created:     in.Created,
		Modified:    modified,
		PlainText:   plain,
		RichContent: rich,
		SourceID:    in.SourceID,
		Color:       in.Color,
	}
}

// Fingerprint is the idempotency key of a note: the SHA-256 of its
// normalized plain text and its ISO-8601 creation time. Title, modification
// time and colour do not take part.
func Fingerprint(n Note) string {
	payload := NormalizeWhitespace(n.PlainText) + FingerprintSeparator + ISOTimestamp(n.Created)
	sum := sha256.Sum256([]byte(payload))
	return hex.EncodeToString(sum[:])
}

// ISOTimestamp renders t as 2006-01-02T15:04:05+07:00, adding microseconds
// only when they are non-zero. UTC is written as +00:00, never Z.
func ISOTimestamp(t time.Time) string {
	if t.Nanosecond()/1000 != 0 {
		return t.Format("2006-01-02T15:04:05.000000-07:00")
	}
	return t.Format("2006-01-02T15:04:05-07:00")
}

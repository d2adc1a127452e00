// Package stickiesarchive extracts notes from a single property-list archive
// holding every sticky note.
package stickiesarchive

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"time"

	"howett.net/plist"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
	"github.com/sleroq/stickies-to-notion/internal/infra/richtext"
)

// Extractor reads the archive at Path. Schema defaults to
// stickies.DefaultArchiveSchema and Location to UTC.
type Extractor struct {
	Path       string
	Location   *time.Location
	Schema     *stickies.ArchiveSchema
	Normalizer *richtext.Normalizer
	Logger     *slog.Logger
	Now        func() time.Time
}

func (e Extractor) Extract(ctx context.Context) ([]stickies.Note, error) {
	root, err := ReadDocument(e.Path)
	if err != nil {
		return nil, err
	}

	schema := stickies.DefaultArchiveSchema
	if e.Schema != nil {
		schema = *e.Schema
	}
	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	now := time.Now
	if e.Now != nil {
		now = e.Now
	}
	normalizer := e.Normalizer
	if normalizer == nil {
		normalizer = richtext.New(e.Logger)
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}

	var notes []stickies.Note
	index := 0
	var visit func(node stickies.Node) error
	visit = func(node stickies.Node) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		switch n := node.(type) {
		case stickies.Mapping:
			if schema.IsCandidate(n) {
				sourceID := "archive#" + strconv.Itoa(index)
				index++
				if note, ok := e.noteFromCandidate(n, sourceID, schema, normalizer, loc, now); ok {
					notes = append(notes, note)
				} else {
					logger.Debug("skipping archive candidate without payload", "source_id", sourceID)
				}
			}
			for _, entry := range n.Entries {
				if err := visit(entry.Value); err != nil {
					return err
				}
			}
		case stickies.Sequence:
			for _, item := range n.Items {
				if err := visit(item); err != nil {
					return err
				}
			}
		}
		return nil
	}
	if err := visit(root); err != nil {
		return nil, err
	}

	logger.Debug("archive extracted", "path", e.Path, "schema", schema.Version, "candidates", index, "notes", len(notes))
	return notes, nil
}

func (e Extractor) noteFromCandidate(m stickies.Mapping, sourceID string, schema stickies.ArchiveSchema, normalizer *richtext.Normalizer, loc *time.Location, now func() time.Time) (stickies.Note, bool) {
	payload, ok := schema.Payload(m)
	if !ok {
		return stickies.Note{}, false
	}
	hypertext, plain := normalizer.Normalize(payload)

	created, ok := stickies.FirstMatchingTimestamp(m, schema.CreatedPattern, loc)
	if !ok {
		created = now().In(loc)
	}
	modified, ok := stickies.FirstMatchingTimestamp(m, schema.ModifiedPattern, loc)
	if !ok {
		modified = created
	}

	return stickies.NewNote(stickies.NoteInput{
		SourceID:  sourceID,
		PlainText: plain,
		Hypertext: hypertext,
		Created:   created,
		Modified:  modified,
	}), true
}

// ReadDocument decodes the property list at path into a Node tree.
func ReadDocument(path string) (stickies.Node, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s (check the archive path or use directory mode)", stickies.ErrSourceNotFound, path)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s (grant Full Disk Access to your terminal)", stickies.ErrSourceLocked, path)
		}
		return nil, fmt.Errorf("read archive %s: %w", path, err)
	}
	var raw any
	if _, err := plist.Unmarshal(b, &raw); err != nil {
		return nil, fmt.Errorf("decode archive %s: %w", path, err)
	}
	return stickies.NodeFromValue(raw), nil
}

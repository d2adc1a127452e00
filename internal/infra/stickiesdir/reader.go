// Package stickiesdir extracts notes from a directory holding one RTF file
// or RTFD bundle per sticky note.
package stickiesdir

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
	"github.com/sleroq/stickies-to-notion/internal/infra/richtext"
)

const (
	// BundleContentFile is where an .rtfd bundle keeps its text.
	BundleContentFile = "TXT.rtf"
	notePattern       = "*.{rtf,rtfd,RTF,RTFD}"
)

type Extractor struct {
	Dir        string
	Location   *time.Location
	Normalizer *richtext.Normalizer
	Logger     *slog.Logger
}

func (e Extractor) Extract(ctx context.Context) ([]stickies.Note, error) {
	paths, err := ListNoteFiles(e.Dir)
	if err != nil {
		return nil, err
	}

	loc := e.Location
	if loc == nil {
		loc = time.UTC
	}
	logger := e.Logger
	if logger == nil {
		logger = slog.Default()
	}
	normalizer := e.Normalizer
	if normalizer == nil {
		normalizer = richtext.New(logger)
	}

	colors, err := ReadColors(filepath.Join(e.Dir, SidecarName))
	if err != nil {
		logger.Warn("ignoring unreadable colour metadata", "path", filepath.Join(e.Dir, SidecarName), "error", err)
		colors = nil
	}

	notes := make([]stickies.Note, 0, len(paths))
	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		note, err := readNote(path, loc, normalizer, colors)
		if err != nil {
			logger.Warn("skipping unreadable note file", "path", path, "error", err)
			continue
		}
		notes = append(notes, note)
	}
	logger.Debug("directory extracted", "dir", e.Dir, "files", len(paths), "notes", len(notes))
	return notes, nil
}

func readNote(path string, loc *time.Location, normalizer *richtext.Normalizer, colors map[string]stickies.Color) (stickies.Note, error) {
	info, err := os.Stat(path)
	if err != nil {
		return stickies.Note{}, err
	}

	contentPath := path
	modTime := info.ModTime()
	if info.IsDir() {
		contentPath = filepath.Join(path, BundleContentFile)
		// editing a bundle rewrites TXT.rtf in place, which leaves the
		// bundle directory's own mtime untouched
		contentInfo, err := os.Stat(contentPath)
		if err != nil {
			return stickies.Note{}, fmt.Errorf("stat %s: %w", contentPath, err)
		}
		modTime = contentInfo.ModTime()
	}
	payload, err := os.ReadFile(contentPath)
	if err != nil {
		return stickies.Note{}, fmt.Errorf("read %s: %w", contentPath, err)
	}

	hypertext, plain := normalizer.Normalize(payload)

	modified := modTime.In(loc)
	created := modified
	if birth, ok := birthTime(path); ok {
		created = birth.In(loc)
	}

	id := NoteID(path)
	return stickies.NewNote(stickies.NoteInput{
		SourceID:      path,
		PlainText:     plain,
		Hypertext:     hypertext,
		Created:       created,
		Modified:      modified,
		Color:         colors[id],
		FallbackTitle: filepath.Base(path),
	}), nil
}

// NoteID is the file name without its extension, which is how the sidecar
// metadata refers to a note.
func NoteID(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

// ListNoteFiles returns the .rtf files and .rtfd bundles directly inside dir,
// sorted. Bundles without their content file are left out.
func ListNoteFiles(dir string) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		switch {
		case errors.Is(err, fs.ErrNotExist):
			return nil, fmt.Errorf("%w: %s (check the directory path)", stickies.ErrSourceNotFound, dir)
		case errors.Is(err, fs.ErrPermission):
			return nil, fmt.Errorf("%w: %s (grant Full Disk Access to your terminal)", stickies.ErrSourceLocked, dir)
		}
		return nil, fmt.Errorf("stat %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", stickies.ErrSourceNotFound, dir)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), notePattern)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %s (grant Full Disk Access to your terminal)", stickies.ErrSourceLocked, dir)
		}
		return nil, fmt.Errorf("list %s: %w", dir, err)
	}
	sort.Strings(matches)

	out := make([]string, 0, len(matches))
	for _, rel := range matches {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		st, err := os.Stat(path)
		if err != nil {
			continue
		}
		isBundle := strings.EqualFold(filepath.Ext(rel), ".rtfd")
		if isBundle != st.IsDir() {
			continue
		}
		if isBundle {
			if _, err := os.Stat(filepath.Join(path, BundleContentFile)); err != nil {
				continue
			}
		}
		out = append(out, path)
	}
	return out, nil
}

// HasNotes reports whether dir exists and holds at least one note file.
func HasNotes(dir string) bool {
	paths, err := ListNoteFiles(dir)
	return err == nil && len(paths) > 0
}

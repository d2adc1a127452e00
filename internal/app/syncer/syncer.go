package syncer

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/sleroq/stickies-to-notion/internal/app/blocks"
	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

// ErrRemoteIndex means the existing fingerprints could not be fetched, so
// no write plan can be computed.
var ErrRemoteIndex = errors.New("fetch remote fingerprint index")

// ErrRemoteUnavailable wraps a failed database lookup before any write.
var ErrRemoteUnavailable = errors.New("remote database is not reachable")

const DefaultBatchSize = 80

type Source interface {
	Extract(ctx context.Context) ([]stickies.Note, error)
}

type Remote interface {
	RetrieveDatabase(ctx context.Context, databaseID string) (stickies.DatabaseInfo, error)
	QueryPages(ctx context.Context, databaseID, cursor string) (stickies.PageBatch, error)
	CreatePage(ctx context.Context, databaseID string, props stickies.PageProperties, children []stickies.ContentBlock) (string, error)
	UpdatePage(ctx context.Context, pageID string, props stickies.PageProperties) error
	AppendChildren(ctx context.Context, pageID string, children []stickies.ContentBlock) error
}

type Syncer struct {
	Source     Source
	Remote     Remote
	DatabaseID string
	BatchSize  int
	DryRun     bool
	// Limit keeps only the first Limit extracted notes. Zero means all.
	Limit         int
	Preview       io.Writer
	PreviewFormat string
	Progress      io.Writer
	Logger        *slog.Logger
}

type Stats struct {
	Extracted int
	Created   int
	Updated   int
	Failed    int
	Skipped   int
}

func (s Syncer) Run(ctx context.Context) (Stats, error) {
	logger := s.logger()
	if s.Source == nil {
		return Stats{}, fmt.Errorf("no note source configured")
	}

	notes, err := s.Source.Extract(ctx)
	if err != nil {
		return Stats{}, fmt.Errorf("extract notes: %w", err)
	}
	stats := Stats{Extracted: len(notes)}
	if s.Limit > 0 && len(notes) > s.Limit {
		stats.Skipped = len(notes) - s.Limit
		notes = notes[:s.Limit]
	}
	logger.Info("notes extracted", "count", stats.Extracted, "processing", len(notes))

	if s.DryRun {
		if err := WritePreview(s.previewWriter(), s.PreviewFormat, notes); err != nil {
			return stats, fmt.Errorf("write preview: %w", err)
		}
		return stats, nil
	}

	if s.Remote == nil || s.DatabaseID == "" {
		return stats, fmt.Errorf("%w: no remote database configured", ErrRemoteUnavailable)
	}
	info, err := s.Remote.RetrieveDatabase(ctx, s.DatabaseID)
	if err != nil {
		return stats, fmt.Errorf("%w: %v (check the database id, that the integration has access, and that the database is shared with it)", ErrRemoteUnavailable, err)
	}
	logger.Debug("connected to database", "id", info.ID, "title", info.Title)

	index, err := s.fetchIndex(ctx)
	if err != nil {
		return stats, err
	}
	logger.Info("remote index loaded", "pages", len(index))

	bar := newProgressBar(len(notes), s.Progress)
	defer bar.Close()

	for _, note := range notes {
		if err := ctx.Err(); err != nil {
			return stats, err
		}

		fingerprint := stickies.Fingerprint(note)
		props := stickies.PropertiesFor(note, fingerprint)
		content := blocks.ForNote(note)
		noteLogger := logger.With("source_id", note.SourceID, "title", note.Title, "fingerprint", fingerprint)

		if pageID, ok := index[fingerprint]; ok {
			if err := s.update(ctx, pageID, props, content); err != nil {
				noteLogger.Error("update failed", "page_id", pageID, "error", err)
				stats.Failed++
			} else {
				noteLogger.Debug("page updated", "page_id", pageID, "blocks", len(content))
				stats.Updated++
			}
			bar.Advance("updating")
			continue
		}

		pageID, err := s.create(ctx, props, content)
		if err != nil {
			noteLogger.Error("create failed", "error", err)
			stats.Failed++
		} else {
			noteLogger.Debug("page created", "page_id", pageID, "blocks", len(content))
			stats.Created++
		}
		bar.Advance("creating")
	}
	bar.Finish("done")

	return stats, nil
}

// fetchIndex pages through every remote row and returns fingerprint -> page
// id. Rows without a fingerprint are ignored; the first page wins when two
// rows share one.
func (s Syncer) fetchIndex(ctx context.Context) (map[string]string, error) {
	index := map[string]string{}
	cursor := ""
	for {
		batch, err := s.Remote.QueryPages(ctx, s.DatabaseID, cursor)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrRemoteIndex, err)
		}
		for _, page := range batch.Pages {
			if page.Fingerprint == "" {
				continue
			}
			if _, seen := index[page.Fingerprint]; !seen {
				index[page.Fingerprint] = page.PageID
			}
		}
		if !batch.HasMore || batch.NextCursor == "" {
			return index, nil
		}
		cursor = batch.NextCursor
	}
}

// create sends the first batch of blocks with the page and appends the rest.
func (s Syncer) create(ctx context.Context, props stickies.PageProperties, content []stickies.ContentBlock) (string, error) {
	batches := Batches(content, s.batchSize())
	var first []stickies.ContentBlock
	if len(batches) > 0 {
		first = batches[0]
		batches = batches[1:]
	}
	pageID, err := s.Remote.CreatePage(ctx, s.DatabaseID, props, first)
	if err != nil {
		return "", err
	}
	if err := s.appendAll(ctx, pageID, batches); err != nil {
		return pageID, err
	}
	return pageID, nil
}

// update overwrites the properties and appends a divider plus the current
// content. Existing body content is left in place.
func (s Syncer) update(ctx context.Context, pageID string, props stickies.PageProperties, content []stickies.ContentBlock) error {
	if err := s.Remote.UpdatePage(ctx, pageID, props); err != nil {
		return err
	}
	children := make([]stickies.ContentBlock, 0, len(content)+1)
	children = append(children, stickies.Divider())
	children = append(children, content...)
	return s.appendAll(ctx, pageID, Batches(children, s.batchSize()))
}

func (s Syncer) appendAll(ctx context.Context, pageID string, batches [][]stickies.ContentBlock) error {
	for i, batch := range batches {
		if err := s.Remote.AppendChildren(ctx, pageID, batch); err != nil {
			return fmt.Errorf("append batch %d/%d: %w", i+1, len(batches), err)
		}
	}
	return nil
}

// Batches splits blocks into consecutive groups of at most size.
func Batches(in []stickies.ContentBlock, size int) [][]stickies.ContentBlock {
	if size <= 0 {
		size = DefaultBatchSize
	}
	out := make([][]stickies.ContentBlock, 0, (len(in)+size-1)/size)
	for start := 0; start < len(in); start += size {
		end := min(start+size, len(in))
		out = append(out, in[start:end])
	}
	return out
}

func (s Syncer) batchSize() int {
	if s.BatchSize <= 0 {
		return DefaultBatchSize
	}
	return s.BatchSize
}

func (s Syncer) previewWriter() io.Writer {
	if s.Preview == nil {
		return io.Discard
	}
	return s.Preview
}

func (s Syncer) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}

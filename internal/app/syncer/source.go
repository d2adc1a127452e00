package syncer

import (
	"errors"
	"io/fs"
	"log/slog"
	"os"

	"github.com/sleroq/stickies-to-notion/internal/config"
	"github.com/sleroq/stickies-to-notion/internal/infra/richtext"
	"github.com/sleroq/stickies-to-notion/internal/infra/stickiesarchive"
	"github.com/sleroq/stickies-to-notion/internal/infra/stickiesdir"
)

// OpenSource picks the extractor for cfg.Mode. In archive mode a missing
// archive falls back to the directory when that directory holds notes.
func OpenSource(cfg config.Config, logger *slog.Logger) (Source, config.Mode) {
	if logger == nil {
		logger = slog.Default()
	}
	normalizer := richtext.New(logger)
	dir := stickiesdir.Extractor{
		Dir:        cfg.Dir,
		Location:   cfg.Location,
		Normalizer: normalizer,
		Logger:     logger,
	}

	if cfg.Mode == config.ModeDirectory {
		return dir, config.ModeDirectory
	}

	if _, err := os.Stat(cfg.ArchivePath); errors.Is(err, fs.ErrNotExist) && stickiesdir.HasNotes(cfg.Dir) {
		logger.Warn("archive not found, reading the notes directory instead", "archive", cfg.ArchivePath, "dir", cfg.Dir)
		return dir, config.ModeDirectory
	}

	return stickiesarchive.Extractor{
		Path:       cfg.ArchivePath,
		Location:   cfg.Location,
		Normalizer: normalizer,
		Logger:     logger,
	}, config.ModeArchive
}

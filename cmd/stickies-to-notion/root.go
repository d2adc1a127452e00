package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/sleroq/stickies-to-notion/internal/app/syncer"
	"github.com/sleroq/stickies-to-notion/internal/config"
	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
	"github.com/sleroq/stickies-to-notion/internal/infra/notiondb"
)

var (
	verbose bool
	envFile string
	logFile string
	logSink io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "stickies-to-notion",
	Short: "Sync desktop sticky notes into a Notion database",
	Long: `stickies-to-notion reads sticky notes from the Stickies archive or from a
directory of .rtf/.rtfd files and upserts them into a Notion database.

Each note is keyed by a hash of its text and creation time, so running the
sync again updates existing pages instead of creating duplicates.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		level := slog.LevelInfo
		if verbose {
			level = slog.LevelDebug
		}

		opts := &slog.HandlerOptions{Level: level}
		var handler slog.Handler = slog.NewTextHandler(os.Stderr, opts)
		if logFile != "" {
			sink := &lumberjack.Logger{
				Filename:   logFile,
				MaxSize:    10,
				MaxBackups: 3,
				MaxAge:     28,
			}
			logSink = sink
			handler = teeHandler{handler, slog.NewJSONHandler(sink, opts)}
		}
		logger := slog.New(handler).With("run_id", uuid.NewString())
		slog.SetDefault(logger)
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logSink != nil {
			_ = logSink.Close()
		}
	},
	RunE: runSync,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fatal("sync failed", err)
	}
}

func init() {
	flags := rootCmd.Flags()
	flags.String("mode", string(config.ModeArchive), "Source to read: archive or dir")
	flags.String("archive", "", "Path to the Stickies archive")
	flags.String("dir", "", "Path to the directory of .rtf/.rtfd notes")
	flags.String("tz", "", "IANA timezone for timestamps without an offset")
	flags.Bool("dry-run", false, "Extract and fingerprint notes without writing to Notion")
	flags.String("preview-format", config.PreviewTable, "Dry-run preview format: table or yaml")
	flags.Int("limit", 0, "Only process the first N notes (0 means all)")
	flags.Int("batch-size", config.DefaultBatchSize, "Blocks per append request (max 100)")

	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", config.DefaultEnvFile, "Optional dotenv file with NOTION_TOKEN and NOTION_DB_ID")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Also write JSON logs to this file, rotated")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
}

func runSync(cmd *cobra.Command, args []string) error {
	logger := slog.Default()

	cfg, err := config.Load(config.Options{EnvFile: envFile, Flags: cmd.Flags()})
	if err != nil {
		if errors.Is(err, config.ErrMissingToken) || errors.Is(err, config.ErrMissingDatabase) {
			return fmt.Errorf("%w (set it in the environment or in %s, or use --dry-run)", err, envFile)
		}
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, mode := syncer.OpenSource(cfg, logger)
	logger.Info("reading notes", "mode", mode, "timezone", cfg.Timezone, "dry_run", cfg.DryRun)

	s := syncer.Syncer{
		Source:        source,
		DatabaseID:    cfg.DatabaseID,
		BatchSize:     cfg.BatchSize,
		DryRun:        cfg.DryRun,
		Limit:         cfg.Limit,
		Preview:       cmd.OutOrStdout(),
		PreviewFormat: cfg.PreviewFormat,
		Progress:      os.Stderr,
		Logger:        logger,
	}
	if !cfg.DryRun {
		s.Remote = notiondb.New(cfg.Token, cfg.Properties, logger)
	}

	stats, err := s.Run(ctx)
	if err != nil {
		if errors.Is(err, stickies.ErrSourceNotFound) && mode == config.ModeArchive {
			return fmt.Errorf("%w\ntry --mode dir --dir <path> if your notes are stored as files", err)
		}
		return err
	}

	printSummary(cmd.OutOrStdout(), stats, cfg.DryRun)
	return nil
}

func printSummary(w io.Writer, stats syncer.Stats, dryRun bool) {
	if dryRun {
		fmt.Fprintf(w, "extracted %d notes, skipped %d (dry run, nothing written)\n", stats.Extracted, stats.Skipped)
		return
	}
	fmt.Fprintf(w, "extracted %d notes: created %d, updated %d, failed %d, skipped %d\n",
		stats.Extracted, stats.Created, stats.Updated, stats.Failed, stats.Skipped)
}

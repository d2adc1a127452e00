package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/sleroq/stickies-to-notion/internal/infra/notiondb"
)

var (
	ErrMissingToken    = errors.New("NOTION_TOKEN is not set")
	ErrMissingDatabase = errors.New("NOTION_DB_ID is not set")
)

type Mode string

const (
	ModeArchive   Mode = "archive"
	ModeDirectory Mode = "dir"
)

const (
	DefaultTimezone    = "America/New_York"
	DefaultArchivePath = "~/Library/StickiesDatabase"
	DefaultDir         = "~/Library/Containers/com.apple.Stickies/Data/Library/Stickies"
	DefaultBatchSize   = 80
	MaxBatchSize       = 100
	DefaultEnvFile     = ".env"
)

const (
	PreviewTable = "table"
	PreviewYAML  = "yaml"
)

// Config is built once per run and passed down explicitly.
type Config struct {
	Token         string
	DatabaseID    string
	Mode          Mode
	ArchivePath   string
	Dir           string
	Timezone      string
	Location      *time.Location
	DryRun        bool
	PreviewFormat string
	Limit         int
	BatchSize     int
	Properties    notiondb.PropertyNames
}

type Options struct {
	// EnvFile is an optional dotenv file. A missing file is ignored.
	EnvFile string
	// Flags overrides every other source for the flags the user set.
	Flags *pflag.FlagSet
}

// envKeys maps viper keys to the environment variables that feed them.
var envKeys = map[string]string{
	"notion_token":     "NOTION_TOKEN",
	"notion_db_id":     "NOTION_DB_ID",
	"tz":               "TZ",
	"stickies_archive": "STICKIES_ARCHIVE",
	"stickies_dir":     "STICKIES_DIR",
	"stickies_mode":    "STICKIES_MODE",
	"prop_title":       "NOTION_PROP_TITLE",
	"prop_created":     "NOTION_PROP_CREATED",
	"prop_modified":    "NOTION_PROP_MODIFIED",
	"prop_hash":        "NOTION_PROP_HASH",
	"prop_color":       "NOTION_PROP_COLOR",
}

var flagKeys = map[string]string{
	"mode":           "stickies_mode",
	"archive":        "stickies_archive",
	"dir":            "stickies_dir",
	"tz":             "tz",
	"dry-run":        "dry_run",
	"preview-format": "preview_format",
	"limit":          "limit",
	"batch-size":     "batch_size",
}

func Load(opts Options) (Config, error) {
	v := viper.New()
	props := notiondb.DefaultPropertyNames()
	v.SetDefault("tz", DefaultTimezone)
	v.SetDefault("stickies_mode", string(ModeArchive))
	v.SetDefault("stickies_archive", DefaultArchivePath)
	v.SetDefault("stickies_dir", DefaultDir)
	v.SetDefault("preview_format", PreviewTable)
	v.SetDefault("batch_size", DefaultBatchSize)
	v.SetDefault("limit", 0)
	v.SetDefault("dry_run", false)
	v.SetDefault("prop_title", props.Title)
	v.SetDefault("prop_created", props.Created)
	v.SetDefault("prop_modified", props.Modified)
	v.SetDefault("prop_hash", props.Fingerprint)
	v.SetDefault("prop_color", props.Color)

	for key, env := range envKeys {
		if err := v.BindEnv(key, env); err != nil {
			return Config{}, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if opts.EnvFile != "" {
		v.SetConfigFile(opts.EnvFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !isMissingFile(err) {
			return Config{}, fmt.Errorf("read %s: %w", opts.EnvFile, err)
		}
	}

	if opts.Flags != nil {
		for name, key := range flagKeys {
			flag := opts.Flags.Lookup(name)
			if flag == nil {
				continue
			}
			if err := v.BindPFlag(key, flag); err != nil {
				return Config{}, fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}

	cfg := Config{
		Token:         strings.TrimSpace(v.GetString("notion_token")),
		DatabaseID:    strings.TrimSpace(v.GetString("notion_db_id")),
		Mode:          Mode(strings.ToLower(strings.TrimSpace(v.GetString("stickies_mode")))),
		ArchivePath:   ExpandHome(v.GetString("stickies_archive")),
		Dir:           ExpandHome(v.GetString("stickies_dir")),
		Timezone:      strings.TrimSpace(v.GetString("tz")),
		DryRun:        v.GetBool("dry_run"),
		PreviewFormat: strings.ToLower(strings.TrimSpace(v.GetString("preview_format"))),
		Limit:         v.GetInt("limit"),
		BatchSize:     v.GetInt("batch_size"),
		Properties: notiondb.PropertyNames{
			Title:       v.GetString("prop_title"),
			Created:     v.GetString("prop_created"),
			Modified:    v.GetString("prop_modified"),
			Fingerprint: v.GetString("prop_hash"),
			Color:       v.GetString("prop_color"),
		},
	}
	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.Timezone == "" {
		c.Timezone = DefaultTimezone
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid timezone %q: %w", c.Timezone, err)
	}
	c.Location = loc

	switch c.Mode {
	case ModeArchive, ModeDirectory:
	default:
		return fmt.Errorf("invalid mode %q: expected %q or %q", c.Mode, ModeArchive, ModeDirectory)
	}
	switch c.PreviewFormat {
	case PreviewTable, PreviewYAML:
	default:
		return fmt.Errorf("invalid preview format %q: expected %q or %q", c.PreviewFormat, PreviewTable, PreviewYAML)
	}
	if c.BatchSize <= 0 || c.BatchSize > MaxBatchSize {
		return fmt.Errorf("batch size must be between 1 and %d, got %d", MaxBatchSize, c.BatchSize)
	}
	if c.Limit < 0 {
		return fmt.Errorf("limit must not be negative, got %d", c.Limit)
	}
	if c.Properties.Title == "" || c.Properties.Fingerprint == "" {
		return fmt.Errorf("title and hash property names are required")
	}

	if c.DryRun {
		return nil
	}
	if c.Token == "" {
		return ErrMissingToken
	}
	if c.DatabaseID == "" {
		return ErrMissingDatabase
	}
	return nil
}

// ExpandHome replaces a leading "~" with the user's home directory.
func ExpandHome(path string) string {
	path = strings.TrimSpace(path)
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func isMissingFile(err error) bool {
	var notFound viper.ConfigFileNotFoundError
	return errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)
}

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/pflag"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, env := range envKeys {
		t.Setenv(env, "")
	}
}

func testFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("mode", string(ModeArchive), "")
	fs.String("archive", "", "")
	fs.String("dir", "", "")
	fs.String("tz", "", "")
	fs.Bool("dry-run", false, "")
	fs.String("preview-format", PreviewTable, "")
	fs.Int("limit", 0, "")
	fs.Int("batch-size", DefaultBatchSize, "")
	return fs
}

func TestLoadDefaultsForDryRun(t *testing.T) {
	clearEnv(t)
	fs := testFlags()
	if err := fs.Parse([]string{"--dry-run"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(Options{Flags: fs})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Timezone != DefaultTimezone || cfg.Location == nil || cfg.Location.String() != DefaultTimezone {
		t.Fatalf("unexpected timezone %q %v", cfg.Timezone, cfg.Location)
	}
	if cfg.Mode != ModeArchive || cfg.BatchSize != DefaultBatchSize || cfg.PreviewFormat != PreviewTable {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.Properties.Fingerprint != "Hash" || cfg.Properties.Title != "Name" {
		t.Fatalf("unexpected property names: %+v", cfg.Properties)
	}
	if filepath.Base(cfg.ArchivePath) != "StickiesDatabase" || cfg.ArchivePath[0] == '~' {
		t.Fatalf("expected expanded archive path, got %q", cfg.ArchivePath)
	}
}

func TestLoadRequiresCredentialsOutsideDryRun(t *testing.T) {
	clearEnv(t)
	if _, err := Load(Options{}); !errors.Is(err, ErrMissingToken) {
		t.Fatalf("expected ErrMissingToken, got %v", err)
	}

	t.Setenv("NOTION_TOKEN", "secret")
	if _, err := Load(Options{}); !errors.Is(err, ErrMissingDatabase) {
		t.Fatalf("expected ErrMissingDatabase, got %v", err)
	}
}

func TestLoadPrecedence(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	content := "NOTION_TOKEN=from-file\nNOTION_DB_ID=db-file\nTZ=Europe/Berlin\nSTICKIES_DIR=/file/dir\n"
	if err := os.WriteFile(envFile, []byte(content), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("NOTION_DB_ID", "db-env")
	t.Setenv("TZ", "Asia/Tokyo")

	fs := testFlags()
	if err := fs.Parse([]string{"--tz", "UTC", "--mode", "dir"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(Options{EnvFile: envFile, Flags: fs})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Token != "from-file" {
		t.Fatalf("token should come from the env file, got %q", cfg.Token)
	}
	if cfg.DatabaseID != "db-env" {
		t.Fatalf("environment should beat the env file, got %q", cfg.DatabaseID)
	}
	if cfg.Timezone != "UTC" {
		t.Fatalf("flag should beat the environment, got %q", cfg.Timezone)
	}
	if cfg.Dir != "/file/dir" || cfg.Mode != ModeDirectory {
		t.Fatalf("unexpected source settings: %q %q", cfg.Dir, cfg.Mode)
	}
}

func TestLoadReadsModeFromEnvFile(t *testing.T) {
	clearEnv(t)
	envFile := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(envFile, []byte("STICKIES_MODE=dir\n"), 0o644); err != nil {
		t.Fatalf("write env file: %v", err)
	}

	fs := testFlags()
	if err := fs.Parse([]string{"--dry-run"}); err != nil {
		t.Fatalf("parse flags: %v", err)
	}

	cfg, err := Load(Options{EnvFile: envFile, Flags: fs})
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Mode != ModeDirectory {
		t.Fatalf("mode should come from the env file, got %q", cfg.Mode)
	}
}

func TestLoadIgnoresMissingEnvFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("NOTION_TOKEN", "t")
	t.Setenv("NOTION_DB_ID", "d")
	if _, err := Load(Options{EnvFile: filepath.Join(t.TempDir(), "missing.env")}); err != nil {
		t.Fatalf("missing env file should be ignored: %v", err)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string][]string{
		"timezone":       {"--tz", "Not/AZone"},
		"mode":           {"--mode", "cloud"},
		"preview format": {"--preview-format", "xml"},
		"batch size":     {"--batch-size=101"},
		"limit":          {"--limit=-1"},
	}
	for name, args := range cases {
		t.Run(name, func(t *testing.T) {
			clearEnv(t)
			fs := testFlags()
			if err := fs.Parse(append([]string{"--dry-run"}, args...)); err != nil {
				t.Fatalf("parse flags: %v", err)
			}
			if _, err := Load(Options{Flags: fs}); err == nil {
				t.Fatalf("expected an error for %v", args)
			}
		})
	}
}

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home directory")
	}
	if got := ExpandHome("~/Library/x"); got != filepath.Join(home, "Library", "x") {
		t.Fatalf("unexpected expansion %q", got)
	}
	if got := ExpandHome("/abs/path"); got != "/abs/path" {
		t.Fatalf("absolute path changed: %q", got)
	}
}

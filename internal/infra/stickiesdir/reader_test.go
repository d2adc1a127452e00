package stickiesdir

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"howett.net/plist"

	"github.com/sleroq/stickies-to-notion/internal/domain/stickies"
)

func writeFile(t *testing.T, path string, content []byte) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, content, 0o644))
}

func TestExtractReadsFilesAndBundles(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "AAA.rtf"), []byte(`{\rtf1 Shopping\par milk}`))
	writeFile(t, filepath.Join(dir, "BBB.rtfd", BundleContentFile), []byte(`{\rtf1 \b Bundle\b0 }`))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "CCC.rtfd"), 0o755))
	writeFile(t, filepath.Join(dir, "notes.txt"), []byte("ignored"))
	writeFile(t, filepath.Join(dir, "EMPTY.rtf"), []byte(`{\rtf1 }`))

	mtime := time.Date(2024, 3, 3, 3, 3, 3, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "AAA.rtf"), mtime, mtime))

	bundleEdit := time.Date(2024, 5, 5, 5, 5, 5, 0, time.UTC)
	bundleDirTime := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "BBB.rtfd", BundleContentFile), bundleEdit, bundleEdit))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "BBB.rtfd"), bundleDirTime, bundleDirTime))

	sidecar, err := plist.Marshal([]any{
		map[string]any{"UUID": "AAA", "Color": []any{250.0, 248.0, 150.0}},
		map[string]any{"UUID": "BBB", "Color": map[string]any{"red": 0.04, "green": 0.04, "blue": 0.05}},
	}, plist.XMLFormat)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, SidecarName), sidecar)

	notes, err := Extractor{Dir: dir, Location: time.UTC}.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 3)

	byID := map[string]stickies.Note{}
	for _, n := range notes {
		byID[NoteID(n.SourceID)] = n
	}

	aaa := byID["AAA"]
	assert.Equal(t, filepath.Join(dir, "AAA.rtf"), aaa.SourceID)
	assert.Equal(t, "Shopping", aaa.Title)
	assert.Equal(t, stickies.ColorYellow, aaa.Color)
	assert.True(t, aaa.Modified.Equal(mtime))
	assert.False(t, aaa.Created.IsZero())

	bbb := byID["BBB"]
	assert.Equal(t, "Bundle", bbb.Title)
	assert.Equal(t, stickies.ColorGray, bbb.Color)
	assert.True(t, bbb.Modified.Equal(bundleEdit), "bundle modified time comes from its content file, got %s", bbb.Modified)
	require.NotNil(t, bbb.RichContent)
	assert.Contains(t, *bbb.RichContent, "<b>Bundle</b>")

	empty := byID["EMPTY"]
	assert.Equal(t, "EMPTY.rtf", empty.Title)
	assert.Equal(t, stickies.ColorNone, empty.Color)
}

func TestListNoteFilesSkipsBundlesWithoutContent(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "X.rtfd"), 0o755))
	assert.False(t, HasNotes(dir))

	writeFile(t, filepath.Join(dir, "Y.rtf"), []byte(`{\rtf1 y}`))
	assert.True(t, HasNotes(dir))
}

func TestExtractMissingDirectory(t *testing.T) {
	_, err := Extractor{Dir: filepath.Join(t.TempDir(), "nope")}.Extract(context.Background())
	assert.ErrorIs(t, err, stickies.ErrSourceNotFound)
}

func TestExtractSkipsUnreadableFile(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("root can read every file")
	}
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "ok.rtf"), []byte(`{\rtf1 fine}`))
	bad := filepath.Join(dir, "bad.rtf")
	writeFile(t, bad, []byte(`{\rtf1 secret}`))
	require.NoError(t, os.Chmod(bad, 0o000))

	notes, err := Extractor{Dir: dir}.Extract(context.Background())
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "fine", notes[0].PlainText)
}

func TestReadColorsMissingSidecar(t *testing.T) {
	colors, err := ReadColors(filepath.Join(t.TempDir(), SidecarName))
	require.NoError(t, err)
	assert.Empty(t, colors)
}

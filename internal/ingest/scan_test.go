package ingest

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
}

func TestScanDirectory(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "a.pdf"), "%PDF-1.4 alpha")
	write(t, filepath.Join(root, "b.PDF"), "%PDF-1.4 alpha") // same bytes as a.pdf
	write(t, filepath.Join(root, "c.docx"), "PK docx")
	write(t, filepath.Join(root, "notes.txt"), "ignored")
	write(t, filepath.Join(root, ".hidden", "d.png"), "png")
	write(t, filepath.Join(root, "sub", "e.jpg"), "jpg")

	results, stats, err := ScanDirectory(context.Background(), root, true, nil)
	require.NoError(t, err)

	var names []string
	for _, r := range results {
		names = append(names, filepath.Base(r.Path))
		assert.Empty(t, r.Err)
		assert.Len(t, r.HashHex, 64)
	}
	assert.Equal(t, []string{"a.pdf", "b.PDF", "c.docx", "e.jpg"}, names)
	assert.EqualValues(t, 4, stats.Matched)
	assert.EqualValues(t, 4, stats.Succeeded)
	assert.EqualValues(t, 1, stats.Deduplicated)

	assert.False(t, results[0].Deduplicated())
	assert.True(t, results[1].Deduplicated())
	assert.Equal(t, results[0].Path, results[1].DuplicateOf)
	assert.Equal(t, "pdf", results[1].Ext)
	assert.Equal(t, "application/pdf", results[0].MIME)
}

func TestScanDirectoryIncludesHiddenWhenAsked(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, ".hidden", "d.png"), "png")

	results, _, err := ScanDirectory(context.Background(), root, false, nil)
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "d.png", filepath.Base(results[0].Path))
}

func TestScanDirectoryRequiresRoot(t *testing.T) {
	_, _, err := ScanDirectory(context.Background(), "  ", true, nil)
	assert.Error(t, err)
}

func TestHashFile(t *testing.T) {
	p := filepath.Join(t.TempDir(), "x.pdf")
	write(t, p, "abc")
	h, n, err := HashFile(p)
	require.NoError(t, err)
	assert.Equal(t, "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad", h)
	assert.EqualValues(t, 3, n)
}

func TestIsHidden(t *testing.T) {
	assert.True(t, IsHidden("/tmp/.git"))
	assert.False(t, IsHidden("/tmp/cv.pdf"))
	assert.False(t, IsHidden("."))
}

func TestWatcherEmitsExistingAndNewFiles(t *testing.T) {
	root := t.TempDir()
	write(t, filepath.Join(root, "existing.pdf"), "x")
	write(t, filepath.Join(root, "skip.txt"), "x")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	events, _, err := StartWatcher(ctx, WatchConfig{Roots: []string{root}, InitialScan: true, Debounce: 50 * time.Millisecond})
	require.NoError(t, err)

	select {
	case p := <-events:
		assert.Equal(t, "existing.pdf", filepath.Base(p))
	case <-time.After(2 * time.Second):
		t.Fatal("initial scan event not received")
	}

	write(t, filepath.Join(root, "new.docx"), "PK")
	select {
	case p := <-events:
		assert.Equal(t, "new.docx", filepath.Base(p))
	case <-time.After(5 * time.Second):
		t.Fatal("create event not received")
	}

	cancel()
	for range events {
	}
}

func TestWatcherRequiresRoots(t *testing.T) {
	_, _, err := StartWatcher(context.Background(), WatchConfig{})
	assert.Error(t, err)
}

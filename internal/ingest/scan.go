package ingest

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/KAN-INFOCOM-INDIA-PRIVATE-LIMITED/RESUMEOCR/constants"
)

// ScanDirectory walks root, keeps files with an accepted extension, hashes them
// and marks byte-identical repeats as duplicates of the first path seen.
// Results are in walk (lexical) order.
func ScanDirectory(ctx context.Context, root string, skipHidden bool, logger *slog.Logger) ([]FileResult, DirStats, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if strings.TrimSpace(root) == "" {
		return nil, DirStats{}, errors.New("root_path is required")
	}

	var results []FileResult
	var stats DirStats
	seen := map[string]string{} // hash -> first path

	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, walkErr error) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		stats.Scanned++
		if walkErr != nil {
			results = append(results, FileResult{Path: path, Err: walkErr.Error()})
			stats.Failed++
			return nil // continue walking
		}
		if skipHidden && path != root && IsHidden(path) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		ext := constants.NormalizeExt(filepath.Ext(path))
		if !AllowedExt(ext) {
			return nil
		}
		stats.Matched++

		res := FileResult{Path: path, Ext: ext}
		hash, size, err := HashFile(path)
		if err != nil {
			res.Err = err.Error()
			results = append(results, res)
			stats.Failed++
			logger.Warn("ingest.scan.hash_failed", "path", path, "error", err)
			return nil
		}
		res.HashHex, res.Size = hash, size
		if mt, err := mimetype.DetectFile(path); err == nil {
			res.MIME = mt.String()
		}

		if first, dup := seen[hash]; dup {
			res.DuplicateOf = first
			stats.Deduplicated++
		} else {
			seen[hash] = path
		}
		results = append(results, res)
		stats.Succeeded++
		return nil
	})
	if err != nil {
		return results, stats, fmt.Errorf("walk: %w", err)
	}

	logger.Info("ingest.scan.ok", "root", root,
		"scanned", stats.Scanned, "matched", stats.Matched,
		"deduplicated", stats.Deduplicated, "failed", stats.Failed)
	return results, stats, nil
}

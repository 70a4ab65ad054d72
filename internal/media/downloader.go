package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/fetcher"
	"github.com/BrandenStoberReal/Orobouros-Public-Modules/internal/types"
)

// Downloader materializes attachment binaries as a separate, optionally
// invoked step after extraction. Listing/post parsing never fetches bodies;
// dozens of large downloads inline with page parsing would serialize the
// whole scrape behind them.
type Downloader struct {
	fetcher fetcher.Fetcher
	maxSize int64
	logger  *slog.Logger
}

// NewDownloader creates a Downloader on top of an existing fetcher so
// binary fetches share the origin pacing with page fetches.
func NewDownloader(f fetcher.Fetcher, maxSizeMB int64, logger *slog.Logger) *Downloader {
	return &Downloader{
		fetcher: f,
		maxSize: maxSizeMB * 1024 * 1024,
		logger:  logger.With("component", "media_downloader"),
	}
}

// Materialize fetches the attachment body and stores it on the attachment.
// On failure the attachment keeps its metadata and a nil Binary; the error
// reports why.
func (d *Downloader) Materialize(ctx context.Context, att *types.Attachment) error {
	req, err := types.NewRequest(att.URL)
	if err != nil {
		return err
	}
	req.Tag = "binary"

	start := time.Now()
	resp, err := d.fetcher.Fetch(ctx, req)
	if err != nil {
		return fmt.Errorf("materialize %s: %w", att.Name, err)
	}
	if !resp.IsSuccess() {
		return fmt.Errorf("materialize %s: HTTP %d", att.Name, resp.StatusCode)
	}
	if d.maxSize > 0 && int64(len(resp.Body)) > d.maxSize {
		return fmt.Errorf("materialize %s: %d bytes exceeds limit %d", att.Name, len(resp.Body), d.maxSize)
	}

	att.Binary = resp.Body
	d.logger.Debug("attachment materialized",
		"name", att.Name,
		"size", len(resp.Body),
		"duration", time.Since(start),
	)
	return nil
}

// MaterializeAll fetches bodies for every attachment sequentially. Failed
// fetches are logged and skipped; the attachment metadata survives. Returns
// the number of attachments successfully materialized.
func (d *Downloader) MaterializeAll(ctx context.Context, atts []*types.Attachment) (int, error) {
	done := 0
	for _, att := range atts {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		if err := d.Materialize(ctx, att); err != nil {
			d.logger.Warn("attachment body fetch failed, metadata kept", "name", att.Name, "error", err)
			continue
		}
		done++
	}
	return done, nil
}

// Save writes a materialized attachment under dir, bucketed by type, and
// returns the written path and the sha256 of the body.
func (d *Downloader) Save(att *types.Attachment, dir string) (string, string, error) {
	if att.Binary == nil {
		return "", "", fmt.Errorf("attachment %s has no materialized body", att.Name)
	}

	subDir := filepath.Join(dir, string(att.Type))
	if err := os.MkdirAll(subDir, 0o755); err != nil {
		return "", "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(subDir, SanitizeFilename(att.Name))
	if err := os.WriteFile(path, att.Binary, 0o644); err != nil {
		return "", "", fmt.Errorf("write %s: %w", path, err)
	}

	sum := sha256.Sum256(att.Binary)
	return path, hex.EncodeToString(sum[:]), nil
}

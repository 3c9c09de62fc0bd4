// Package download streams build artifacts to disk with cooperative
// cancellation.
package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	"go.uber.org/multierr"

	"terasology-launcher/src/logger"
	"terasology-launcher/src/repository"
)

// ChunkSize is the amount read between two cancellation checks.
const ChunkSize = 32 * 1024

// PartSuffix marks a file that is still being written.
const PartSuffix = ".part"

var (
	ErrCancelled      = errors.New("download cancelled")
	ErrUnknownLength  = errors.New("server did not report a content length")
	ErrLengthMismatch = errors.New("downloaded size does not match content length")
)

// Progress is reported after every chunk. Percent stays within [1, 99]
// until the complete file is on disk, then a final report carries 100.
type Progress struct {
	Written int64
	Total   int64
	Percent int
}

type Downloader struct {
	client *http.Client
	log    logger.Logger
}

// NewDownloader uses http.DefaultClient when client is nil. Downloads can
// be large, so the client should not carry an overall timeout.
func NewDownloader(client *http.Client, log logger.Logger) *Downloader {
	if client == nil {
		client = http.DefaultClient
	}
	return &Downloader{client: client, log: log}
}

// Download fetches u into dest. The data goes to dest+".part" first and is
// renamed once complete. On cancellation ErrCancelled is returned and the
// partial file is left for the caller; other failures remove it.
func (d *Downloader) Download(ctx context.Context, u, dest string, progress func(Progress)) (err error) {
	if progress == nil {
		progress = func(Progress) {}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	resp, err := d.client.Do(req)
	if err != nil {
		if ctx.Err() != nil {
			return ErrCancelled
		}
		return fmt.Errorf("failed to execute request: %w", err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return repository.ErrBuildNotFound
	case http.StatusUnauthorized, http.StatusForbidden:
		return repository.ErrAuthFailed
	default:
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("request failed with status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	total := resp.ContentLength
	if total <= 0 {
		return ErrUnknownLength
	}
	d.log.Info("Downloading %s (%s) to %s", u, humanize.IBytes(uint64(total)), dest)

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return fmt.Errorf("failed to create download directory: %w", err)
	}
	part := dest + PartSuffix
	f, err := os.Create(part)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", part, err)
	}

	written, copyErr := copyChunks(ctx, f, resp.Body, total, progress)
	err = multierr.Append(copyErr, f.Close())

	if errors.Is(copyErr, ErrCancelled) {
		d.log.Info("Download of %s cancelled after %s", u, humanize.IBytes(uint64(written)))
		return ErrCancelled
	}
	if err == nil && written != total {
		err = fmt.Errorf("%w: %d of %d bytes", ErrLengthMismatch, written, total)
	}
	if err != nil {
		if rmErr := os.Remove(part); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = multierr.Append(err, rmErr)
		}
		return err
	}

	if err := os.Rename(part, dest); err != nil {
		return fmt.Errorf("failed to finish %s: %w", dest, err)
	}
	progress(Progress{Written: written, Total: total, Percent: 100})
	d.log.Debug("Downloaded %s to %s", humanize.IBytes(uint64(written)), dest)
	return nil
}

func copyChunks(ctx context.Context, w io.Writer, r io.Reader, total int64, progress func(Progress)) (int64, error) {
	buf := make([]byte, ChunkSize)
	var written int64
	for {
		if ctx.Err() != nil {
			return written, ErrCancelled
		}
		n, readErr := r.Read(buf)
		if n > 0 {
			if _, err := w.Write(buf[:n]); err != nil {
				return written, err
			}
			written += int64(n)
			progress(Progress{Written: written, Total: total, Percent: percent(written, total)})
		}
		if readErr == io.EOF {
			return written, nil
		}
		if readErr != nil {
			if ctx.Err() != nil {
				return written, ErrCancelled
			}
			return written, readErr
		}
	}
}

func percent(written, total int64) int {
	p := int(written * 100 / total)
	if p < 1 {
		return 1
	}
	if p > 99 {
		return 99
	}
	return p
}

// ArtifactFileName is the local name of a downloaded build artifact.
func ArtifactFileName(job string, build int, kind repository.ArtifactKind) string {
	ext := ".zip"
	if kind == repository.ArtifactVersionInfo {
		ext = ".properties"
	}
	return fmt.Sprintf("%s_%d_%s%s", job, build, kind, ext)
}

// Artifact downloads an artifact of a build into dir and returns its path.
func (d *Downloader) Artifact(ctx context.Context, repo repository.BuildRepository, job string, build int, kind repository.ArtifactKind, dir string, progress func(Progress)) (string, error) {
	u, err := repo.FileDownloadURL(job, build, kind)
	if err != nil {
		return "", &repository.DownloadError{Op: "download url", Job: job, Build: build, Err: err}
	}
	dest := filepath.Join(dir, ArtifactFileName(job, build, kind))
	if err := d.Download(ctx, u, dest, progress); err != nil {
		if errors.Is(err, ErrCancelled) {
			return dest + PartSuffix, err
		}
		return "", &repository.DownloadError{Op: "download " + kind.String(), Job: job, Build: build, Err: err}
	}
	return dest, nil
}

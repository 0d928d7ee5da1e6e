// Package media archives a post's media attachments to local disk. Archiving
// is strictly best-effort: a failed download never affects the record.
package media

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path"
	"path/filepath"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/atmaxmoj/socialmediascrawler/internal/types"
)

// Kind classifies an archived attachment.
type Kind string

const (
	KindImage    Kind = "image"
	KindVideo    Kind = "video"
	KindGIF      Kind = "gif"
	KindDocument Kind = "document"
)

// ArchiveResult tracks one downloaded attachment.
type ArchiveResult struct {
	URL         string        `json:"url"`
	LocalPath   string        `json:"local_path"`
	Kind        Kind          `json:"kind"`
	Size        int64         `json:"size"`
	ContentType string        `json:"content_type"`
	Hash        string        `json:"hash"`
	Duration    time.Duration `json:"duration"`
}

// Archiver downloads post attachments into a per-platform directory tree:
// {dir}/{platform}/{post-id}/{kind}-{filename}.
type Archiver struct {
	dir        string
	client     *http.Client
	maxSize    int64
	concurrent int
	archived   atomic.Int64
	logger     *slog.Logger

	mu   sync.Mutex
	seen map[string]bool // URL already fetched this run
}

// NewArchiver creates an archiver writing under dir. maxSizeMB caps each
// file; concurrent bounds parallel downloads per post.
func NewArchiver(dir string, maxSizeMB int64, concurrent int, logger *slog.Logger) *Archiver {
	if concurrent < 1 {
		concurrent = 1
	}
	return &Archiver{
		dir:        dir,
		client:     &http.Client{Timeout: 60 * time.Second},
		maxSize:    maxSizeMB * 1024 * 1024,
		concurrent: concurrent,
		logger:     logger.With("component", "media_archiver"),
		seen:       make(map[string]bool),
	}
}

// ArchivePost downloads every attachment of rec that has not been fetched
// this run. Failures are logged and skipped.
func (a *Archiver) ArchivePost(ctx context.Context, rec *types.PostRecord) []*ArchiveResult {
	type job struct {
		url  string
		kind Kind
	}
	var jobs []job
	for _, u := range rec.Media.Images {
		jobs = append(jobs, job{u, KindImage})
	}
	for _, u := range rec.Media.Videos {
		jobs = append(jobs, job{u, KindVideo})
	}
	for _, u := range rec.Media.GIFs {
		jobs = append(jobs, job{u, KindGIF})
	}
	for _, u := range rec.Media.Documents {
		jobs = append(jobs, job{u, KindDocument})
	}
	if len(jobs) == 0 {
		return nil
	}

	postDir := filepath.Join(a.dir, rec.Platform.String(), sanitizeDirPart(rec.ID))

	var (
		results []*ArchiveResult
		mu      sync.Mutex
		wg      sync.WaitGroup
	)
	sem := make(chan struct{}, a.concurrent)
	for _, j := range jobs {
		wg.Add(1)
		go func(j job) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			res, err := a.fetch(ctx, postDir, j.url, j.kind)
			if err != nil {
				a.logger.Debug("attachment skipped", "url", j.url, "error", err)
				return
			}
			mu.Lock()
			results = append(results, res)
			mu.Unlock()
		}(j)
	}
	wg.Wait()

	if len(results) > 0 {
		a.logger.Info("media archived", "post", rec.ID, "files", len(results))
	}
	return results
}

// Stats returns archive counters.
func (a *Archiver) Stats() map[string]int64 {
	return map[string]int64{
		"files_archived": a.archived.Load(),
	}
}

func (a *Archiver) fetch(ctx context.Context, postDir, rawURL string, kind Kind) (*ArchiveResult, error) {
	a.mu.Lock()
	if a.seen[rawURL] {
		a.mu.Unlock()
		return nil, fmt.Errorf("already archived: %s", rawURL)
	}
	a.seen[rawURL] = true
	a.mu.Unlock()

	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, "GET", rawURL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("fetch %s: status %d", rawURL, resp.StatusCode)
	}
	if a.maxSize > 0 && resp.ContentLength > a.maxSize {
		return nil, fmt.Errorf("file too large: %d bytes (max %d)", resp.ContentLength, a.maxSize)
	}

	contentType := resp.Header.Get("Content-Type")
	filename := string(kind) + "-" + attachmentFilename(rawURL, contentType)

	if err := os.MkdirAll(postDir, 0o755); err != nil {
		return nil, fmt.Errorf("create post dir: %w", err)
	}
	localPath := filepath.Join(postDir, filename)

	f, err := os.Create(localPath)
	if err != nil {
		return nil, fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	hasher := sha256.New()
	writer := io.MultiWriter(f, hasher)

	reader := resp.Body
	if a.maxSize > 0 {
		reader = io.NopCloser(io.LimitReader(resp.Body, a.maxSize))
	}
	size, err := io.Copy(writer, reader)
	if err != nil {
		os.Remove(localPath)
		return nil, fmt.Errorf("write file: %w", err)
	}

	a.archived.Add(1)
	res := &ArchiveResult{
		URL:         rawURL,
		LocalPath:   localPath,
		Kind:        kind,
		Size:        size,
		ContentType: contentType,
		Hash:        hex.EncodeToString(hasher.Sum(nil)),
		Duration:    time.Since(start),
	}

	a.logger.Debug("attachment archived",
		"url", rawURL,
		"size", size,
		"kind", kind,
		"duration", res.Duration,
	)
	return res, nil
}

// attachmentFilename derives a filename from the URL path, falling back to a
// hash of the URL plus a MIME-derived extension for opaque CDN URLs.
func attachmentFilename(rawURL, contentType string) string {
	parsed, err := url.Parse(rawURL)
	if err != nil {
		return "unknown"
	}
	filename := path.Base(parsed.Path)
	if filename == "" || filename == "." || filename == "/" {
		hash := sha256.Sum256([]byte(rawURL))
		filename = hex.EncodeToString(hash[:8])
		if exts, _ := mime.ExtensionsByType(contentType); len(exts) > 0 {
			filename += exts[0]
		}
	}
	return filename
}

// sanitizeDirPart makes a record id safe as a directory name.
func sanitizeDirPart(s string) string {
	repl := strings.NewReplacer(":", "_", "/", "_", "\\", "_", " ", "_", "?", "_", "*", "_", "\"", "_", "<", "_", ">", "_", "|", "_")
	return repl.Replace(s)
}

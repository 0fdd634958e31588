package collect

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"go.uber.org/zap"

	"yashubustudio/biaslab/internal/fsutil"
	"yashubustudio/biaslab/internal/logging"
)

const (
	defaultUserAgent   = "biaslab/dev"
	defaultHTTPTimeout = 30 * time.Second
)

// StatusError reports a download that completed with a non-200 status.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download %s: unexpected status %d %s", e.URL, e.StatusCode, http.StatusText(e.StatusCode))
}

// DownloaderConfig describes the HTTP client used for image downloads.
type DownloaderConfig struct {
	UserAgent  string
	Timeout    time.Duration
	HTTPClient *http.Client
	Logger     *zap.Logger
}

// Downloader fetches images over HTTP.
type Downloader struct {
	userAgent string
	http      *http.Client
	logger    *zap.Logger
}

// NewDownloader creates a Downloader from cfg, filling defaults.
func NewDownloader(cfg DownloaderConfig) *Downloader {
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	client := cfg.HTTPClient
	if client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultHTTPTimeout
		}
		client = &http.Client{Timeout: timeout}
	}
	return &Downloader{userAgent: userAgent, http: client, logger: logging.OrNop(cfg.Logger)}
}

// Save fetches url and writes the body to path. A non-200 response returns a
// *StatusError and leaves path untouched.
func (d *Downloader) Save(ctx context.Context, url, path string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.http.Do(req)
	if err != nil {
		return fmt.Errorf("download %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		return &StatusError{URL: url, StatusCode: resp.StatusCode}
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read body %s: %w", url, err)
	}
	if err := fsutil.WriteFileAtomic(path, body); err != nil {
		return fmt.Errorf("write image: %w", err)
	}
	d.logger.Debug("saved image",
		zap.String("path", path),
		zap.String("size", humanize.Bytes(uint64(len(body)))),
	)
	return nil
}

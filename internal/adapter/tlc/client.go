// Package tlc fetches NYC TLC trip files and the zone lookup over HTTP.
package tlc

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/Temutjin2k/taxi-ingest/internal/domain/types"
	"github.com/Temutjin2k/taxi-ingest/pkg/logger"
	wrap "github.com/Temutjin2k/taxi-ingest/pkg/logger/wrapper"
)

const DefaultTimeout = 300 * time.Second

type Client struct {
	http    *http.Client
	tempDir string
	log     logger.Logger
}

// New returns a client whose requests time out after timeout. Parquet files are
// staged in tempDir (os.TempDir when empty).
func New(timeout time.Duration, tempDir string, log logger.Logger) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Client{
		http:    &http.Client{Timeout: timeout},
		tempDir: tempDir,
		log:     log,
	}
}

// get issues a GET and returns the body of a 2xx response.
func (c *Client) get(ctx context.Context, url string) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", url, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		if resp.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("get %s: %w", url, types.ErrNotFound)
		}
		return nil, fmt.Errorf("get %s: %w: %s", url, types.ErrUnexpectedStatus, resp.Status)
	}

	return resp.Body, nil
}

// Download streams url into dst and returns the number of bytes written. The
// body lands in a temp file next to dst that is renamed into place only after a
// complete read, so dst never holds a partial file.
func (c *Client) Download(ctx context.Context, url, dst string) (int64, error) {
	ctx = wrap.WithAction(ctx, types.ActionDownload)

	body, err := c.get(ctx, url)
	if err != nil {
		return 0, wrap.Error(ctx, err)
	}
	defer body.Close()

	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("create download dir: %w", err))
	}

	tmp, err := os.CreateTemp(filepath.Dir(dst), "."+filepath.Base(dst)+".*")
	if err != nil {
		return 0, wrap.Error(ctx, fmt.Errorf("create temp file: %w", err))
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return n, wrap.Error(ctx, fmt.Errorf("write %s: %w", dst, err))
	}

	if err := os.Rename(tmp.Name(), dst); err != nil {
		return n, wrap.Error(ctx, fmt.Errorf("rename into %s: %w", dst, err))
	}

	c.log.Debug(ctx, "downloaded", "url", url, "path", dst, "bytes", n)
	return n, nil
}

package fetcher

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"cellar/internal/domain"
)

// HTTPFetcher downloads component archives into outputDir, streaming
// progress to the caller's ProgressFunc and verifying checksums.
type HTTPFetcher struct {
	client    *http.Client
	outputDir string
}

func New(outputDir string, timeout time.Duration) *HTTPFetcher {
	return &HTTPFetcher{
		client:    &http.Client{Timeout: timeout},
		outputDir: outputDir,
	}
}

// Fetch downloads d and returns the local archive path. progress may be
// nil; when the server sends no Content-Length it is called with total 0.
func (f *HTTPFetcher) Fetch(ctx context.Context, d domain.Download, progress domain.ProgressFunc) (string, error) {
	ext := extFromURL(d.URL)
	filename := fmt.Sprintf("%s-%s%s", d.Name, d.Version, ext)
	dst := filepath.Join(f.outputDir, filename)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.URL, nil)
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}

	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("downloading %s: %w", d.Name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("downloading %s: unexpected status %d", d.Name, resp.StatusCode)
	}

	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}
	file, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer file.Close()

	hash := sha256.New()
	w := io.MultiWriter(file, hash)

	total := resp.ContentLength
	if total < 0 {
		total = 0
	}
	if progress != nil {
		progress(0, total)
	}

	counter := &progressWriter{total: total, progress: progress}
	if _, err := io.Copy(io.MultiWriter(w, counter), resp.Body); err != nil {
		return "", fmt.Errorf("downloading %s: %w", d.Name, err)
	}

	if d.SHA256 != "" {
		actual := hex.EncodeToString(hash.Sum(nil))
		if !strings.EqualFold(actual, d.SHA256) {
			os.Remove(dst)
			return "", fmt.Errorf("checksum mismatch for %s: expected %s, got %s", d.Name, d.SHA256, actual)
		}
	}

	return dst, nil
}

type progressWriter struct {
	received int64
	total    int64
	progress domain.ProgressFunc
}

func (w *progressWriter) Write(p []byte) (int, error) {
	w.received += int64(len(p))
	if w.progress != nil {
		w.progress(w.received, w.total)
	}
	return len(p), nil
}

func extFromURL(rawURL string) string {
	u := path.Base(rawURL)
	for _, ext := range domain.Extensions() {
		if strings.HasSuffix(u, ext) {
			return ext
		}
	}
	return path.Ext(u)
}

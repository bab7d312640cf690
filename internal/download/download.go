package download

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/r2scribe/internal/version"
	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"go.uber.org/zap"
	"golang.org/x/term"
)

const scratchPrefix = "r2scribe-"

// Doer is the HTTP transport used for downloads. *http.Client satisfies it.
type Doer interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransferError is returned when the remote server answers with a non-2xx status.
type TransferError struct {
	StatusCode int
	URL        string
}

func (e *TransferError) Error() string {
	return fmt.Sprintf("download failed: unexpected status code %d", e.StatusCode)
}

type Fetcher struct {
	HTTPClient Doer
	// TempDir is the parent of per-run scratch directories; os.TempDir() when empty.
	TempDir    string
	NoProgress bool
	Logger     *zap.Logger
}

// TempFile is a downloaded file owned by a single run. Remove deletes it
// together with its scratch directory.
type TempFile struct {
	Path string
	Size int64

	dir string
}

func (t *TempFile) Remove() error {
	if t == nil || t.dir == "" {
		return nil
	}
	if err := os.RemoveAll(t.dir); err != nil {
		return fmt.Errorf("remove scratch directory %s: %w", t.dir, err)
	}
	t.dir = ""
	return nil
}

// FetchToTemp downloads url into a fresh scratch directory. The file is named
// after the base of suggestedName so the upload keeps the original filename.
func (f *Fetcher) FetchToTemp(ctx context.Context, url, suggestedName string) (*TempFile, error) {
	if url == "" {
		return nil, errors.New("download URL is required")
	}

	name := path.Base(filepath.ToSlash(strings.TrimSpace(suggestedName)))
	if name == "" || name == "." || name == "/" {
		return nil, fmt.Errorf("invalid file name %q", suggestedName)
	}

	parent := f.TempDir
	if parent == "" {
		parent = os.TempDir()
	}

	dir := filepath.Join(parent, scratchPrefix+uuid.NewString())
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create scratch directory: %w", err)
	}

	tmp := &TempFile{Path: filepath.Join(dir, name), dir: dir}
	size, err := f.downloadOnce(ctx, url, tmp.Path)
	if err != nil {
		_ = tmp.Remove()
		return nil, err
	}
	tmp.Size = size

	return tmp, nil
}

func (f *Fetcher) downloadOnce(ctx context.Context, url, destination string) (int64, error) {
	client := f.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}

	logger := f.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	tempPath := destination + ".part"
	outFile, err := os.Create(tempPath)
	if err != nil {
		return 0, fmt.Errorf("create temp file: %w", err)
	}

	success := false
	defer func() {
		_ = outFile.Close()
		if !success {
			_ = os.Remove(tempPath)
		}
	}()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return 0, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", version.UserAgent())

	resp, err := client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("download request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return 0, &TransferError{StatusCode: resp.StatusCode, URL: url}
	}

	logger.Debug("download started", zap.Int64("content_length", resp.ContentLength))

	var writer io.Writer = outFile
	var bar *progressbar.ProgressBar
	if shouldRenderProgress(f.NoProgress, resp.ContentLength) {
		bar = progressbar.NewOptions64(
			resp.ContentLength,
			progressbar.OptionSetDescription("downloading"),
			progressbar.OptionSetWidth(20),
			progressbar.OptionShowBytes(true),
			progressbar.OptionThrottle(65*time.Millisecond),
			progressbar.OptionSetRenderBlankState(true),
			progressbar.OptionSetWriter(os.Stderr),
			progressbar.OptionClearOnFinish(),
		)
		writer = io.MultiWriter(outFile, bar)
	}

	written, err := io.Copy(writer, resp.Body)
	if err != nil {
		return 0, fmt.Errorf("download body: %w", err)
	}

	if bar != nil {
		_ = bar.Finish()
	}

	if err := outFile.Sync(); err != nil {
		return 0, fmt.Errorf("sync temp file: %w", err)
	}

	if err := outFile.Close(); err != nil {
		return 0, fmt.Errorf("close temp file: %w", err)
	}

	if err := os.Rename(tempPath, destination); err != nil {
		return 0, fmt.Errorf("move temp file into destination: %w", err)
	}

	success = true
	return written, nil
}

func shouldRenderProgress(noProgress bool, contentLength int64) bool {
	if noProgress {
		return false
	}
	if contentLength <= 0 {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

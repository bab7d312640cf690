// Package pipeline runs a single transcription: resolve the working file,
// upload it, persist the response, and clean up any downloaded copy.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fmueller/r2scribe/internal/config"
	"github.com/fmueller/r2scribe/internal/download"
	"github.com/fmueller/r2scribe/internal/transcription"
	"go.uber.org/zap"
)

type URLSigner interface {
	DownloadURL(ctx context.Context, key string) (string, error)
}

type Fetcher interface {
	FetchToTemp(ctx context.Context, url, suggestedName string) (*download.TempFile, error)
}

type Transcriber interface {
	Transcribe(ctx context.Context, audioPath string) (transcription.Result, error)
}

// NotFoundError is returned when a local source does not exist.
type NotFoundError struct {
	Path string
	Err  error
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("audio file not found: %s", e.Path)
}

func (e *NotFoundError) Unwrap() error { return e.Err }

// Outcome is the result of one successful run.
type Outcome struct {
	Result     transcription.Result
	OutputPath string
	Source     Source
}

// Runner needs Signer and Fetcher only for remote sources. OutputDir
// receives <name>.json and defaults to the working directory.
type Runner struct {
	Signer      URLSigner
	Fetcher     Fetcher
	Transcriber Transcriber
	OutputDir   string
	Logger      *zap.Logger
}

// Run executes the pipeline for src and stops at the first failing step.
// A downloaded working file is removed on every exit path.
func (r *Runner) Run(ctx context.Context, src Source) (Outcome, error) {
	if r.Transcriber == nil {
		return Outcome{}, errors.New("pipeline: transcriber is required")
	}

	log := r.log().With(zap.Stringer("source", src))

	var workingPath string
	var err error
	switch src.Kind() {
	case KindLocal:
		workingPath, err = r.resolveLocal(src.Ref())
		if err != nil {
			return Outcome{}, err
		}
		log.Info("using local file", zap.String("path", workingPath))
	case KindRemote:
		tmp, err := r.fetchRemote(ctx, log, src.Ref())
		if err != nil {
			return Outcome{}, err
		}
		defer func() {
			if rmErr := tmp.Remove(); rmErr != nil {
				log.Warn("failed to remove temporary file", zap.String("path", tmp.Path), zap.Error(rmErr))
				return
			}
			log.Debug("temporary file removed", zap.String("path", tmp.Path))
		}()
		workingPath = tmp.Path
	default:
		return Outcome{}, fmt.Errorf("pipeline: unsupported source %s", src)
	}

	if info, statErr := os.Stat(workingPath); statErr == nil {
		log.Info("file size", zap.Int64("bytes", info.Size()), zap.String("size", formatMB(info.Size())))
	}

	log.Info("transcribing...", zap.String("file", filepath.Base(workingPath)))
	started := time.Now()
	result, err := r.Transcriber.Transcribe(ctx, workingPath)
	elapsed := time.Since(started)
	if err != nil {
		log.Warn("transcription failed", zap.Duration("elapsed", elapsed), zap.Error(err))
		return Outcome{}, err
	}
	log.Info("transcription finished", zap.Duration("elapsed", elapsed))

	outputPath, err := r.writeResult(workingPath, result)
	if err != nil {
		return Outcome{}, err
	}
	log.Info("transcription saved", zap.String("output", outputPath))

	return Outcome{Result: result, OutputPath: outputPath, Source: src}, nil
}

func (r *Runner) resolveLocal(path string) (string, error) {
	path = filepath.Clean(path)
	info, err := os.Stat(path)
	if err != nil {
		return "", &NotFoundError{Path: path, Err: err}
	}
	if info.IsDir() {
		return "", &NotFoundError{Path: path, Err: fmt.Errorf("%s is a directory", path)}
	}
	return path, nil
}

func (r *Runner) fetchRemote(ctx context.Context, log *zap.Logger, key string) (*download.TempFile, error) {
	if r.Signer == nil {
		return nil, &config.MissingError{Keys: []string{
			config.KeyR2AccountID, config.KeyR2AccessKeyID, config.KeyR2SecretAccessKey, config.KeyR2BucketName,
		}}
	}
	if r.Fetcher == nil {
		return nil, errors.New("pipeline: fetcher is required for remote sources")
	}

	log.Info("generating download URL")
	url, err := r.Signer.DownloadURL(ctx, key)
	if err != nil {
		return nil, err
	}

	log.Info("downloading from object store")
	tmp, err := r.Fetcher.FetchToTemp(ctx, url, key)
	if err != nil {
		log.Warn("download failed", zap.Error(err))
		return nil, err
	}
	log.Info("downloaded to temporary file", zap.String("path", tmp.Path))

	return tmp, nil
}

// OutputName replaces the extension of path's base name with .json.
func OutputName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base)) + ".json"
}

func (r *Runner) writeResult(workingPath string, result transcription.Result) (string, error) {
	content, err := result.Indented()
	if err != nil {
		return "", err
	}

	dir := r.OutputDir
	if dir == "" {
		dir = "."
	}
	outputPath := filepath.Join(dir, OutputName(workingPath))

	if err := os.WriteFile(outputPath, content, 0o644); err != nil {
		return "", fmt.Errorf("write transcription result: %w", err)
	}
	return outputPath, nil
}

func (r *Runner) log() *zap.Logger {
	if r.Logger == nil {
		return zap.NewNop()
	}
	return r.Logger
}

func formatMB(size int64) string {
	return fmt.Sprintf("%.2f MB", float64(size)/(1024*1024))
}

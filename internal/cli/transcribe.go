package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fmueller/r2scribe/internal/clipboard"
	"github.com/fmueller/r2scribe/internal/config"
	"github.com/fmueller/r2scribe/internal/download"
	"github.com/fmueller/r2scribe/internal/objectstore"
	"github.com/fmueller/r2scribe/internal/pipeline"
	"github.com/fmueller/r2scribe/internal/transcription"
	"go.uber.org/zap"
)

func (a *appState) runTranscribe(ctx context.Context, ref string) error {
	transcribeFn := a.transcribeFn
	if transcribeFn == nil {
		transcribeFn = a.runPipeline
	}

	copyFn := a.copyFn
	if copyFn == nil {
		copyFn = clipboard.CopyText
	}

	src := pipeline.ResolveSource(ref, a.local, a.existsFn)
	a.log().Info("processing", zap.String("kind", src.Kind().String()), zap.String("ref", src.Ref()))

	outcome, err := transcribeFn(ctx, src)
	if err != nil {
		return err
	}

	text := outcome.Result.Text()
	fmt.Fprintln(a.outWriter(), text)
	a.log().Info("done", zap.String("output", outcome.OutputPath))

	blank := isBlankTranscript(text)
	if blank {
		a.log().Warn("transcription response has no text", zap.String("output", outcome.OutputPath))
	}

	if !a.copyText || (blank && !a.copyEmpty) {
		return nil
	}

	if err := copyFn(ctx, text); err != nil {
		if errors.Is(err, clipboard.ErrUnavailable) {
			a.log().Warn("clipboard tool unavailable; transcript left on stdout")
			return nil
		}
		a.log().Warn("failed to copy transcript to clipboard; transcript left on stdout", zap.Error(err))
		return nil
	}

	a.log().Info("transcript copied to clipboard")
	return nil
}

// runPipeline wires the real clients. Configuration is validated lazily so
// the local path never needs object store credentials.
func (a *appState) runPipeline(ctx context.Context, src pipeline.Source) (pipeline.Outcome, error) {
	loadConfig := a.loadConfigFn
	if loadConfig == nil {
		loadConfig = config.Load
	}

	cfg, err := loadConfig(a.envFile)
	if err != nil {
		return pipeline.Outcome{}, err
	}

	runner := &pipeline.Runner{
		Transcriber: spinningTranscriber{
			next:    &lazyTranscriber{cfg: cfg, model: a.model},
			enabled: a.progressEnabled(),
			w:       os.Stderr,
		},
		OutputDir: a.outputDir,
		Logger:    a.log(),
	}

	if src.Kind() == pipeline.KindRemote {
		store, err := objectstore.New(ctx, cfg)
		if err != nil {
			return pipeline.Outcome{}, err
		}
		runner.Signer = store
		runner.Fetcher = &download.Fetcher{NoProgress: a.noProgress, Logger: a.log()}
	}

	return runner.Run(ctx, src)
}

// lazyTranscriber builds the API client on first use, after the working
// file has been resolved.
type lazyTranscriber struct {
	cfg    config.Config
	model  string
	client *transcription.Client
}

func (l *lazyTranscriber) Transcribe(ctx context.Context, audioPath string) (transcription.Result, error) {
	if l.client == nil {
		client, err := transcription.New(l.cfg, transcription.WithModel(l.model))
		if err != nil {
			return transcription.Result{}, err
		}
		l.client = client
	}
	return l.client.Transcribe(ctx, audioPath)
}

func isBlankTranscript(text string) bool {
	return strings.TrimSpace(text) == ""
}

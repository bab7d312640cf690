package cli

import (
	"context"
	"io"
	"os"
	"sync"
	"time"

	"github.com/fmueller/r2scribe/internal/pipeline"
	"github.com/fmueller/r2scribe/internal/transcription"
	"github.com/schollz/progressbar/v3"
)

type stopFunc func()

func startSpinner(enabled bool, w io.Writer, description string) stopFunc {
	if !enabled {
		return func() {}
	}
	if w == nil {
		w = os.Stderr
	}

	bar := progressbar.NewOptions(
		-1,
		progressbar.OptionSetDescription(description),
		progressbar.OptionSetWriter(w),
		progressbar.OptionSpinnerType(14),
		progressbar.OptionThrottle(80*time.Millisecond),
		progressbar.OptionClearOnFinish(),
	)

	stopCh := make(chan struct{})
	doneCh := make(chan struct{})

	go func() {
		defer close(doneCh)
		ticker := time.NewTicker(120 * time.Millisecond)
		defer ticker.Stop()

		for {
			select {
			case <-stopCh:
				_ = bar.Finish()
				return
			case <-ticker.C:
				_ = bar.Add(1)
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stopCh)
			<-doneCh
		})
	}
}

// spinningTranscriber shows a spinner for as long as the upload and the
// remote transcription take.
type spinningTranscriber struct {
	next    pipeline.Transcriber
	enabled bool
	w       io.Writer
}

func (s spinningTranscriber) Transcribe(ctx context.Context, audioPath string) (transcription.Result, error) {
	stop := startSpinner(s.enabled, s.w, "Transcribing")
	defer stop()
	return s.next.Transcribe(ctx, audioPath)
}

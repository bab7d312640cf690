package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/fmueller/r2scribe/internal/clipboard"
	"github.com/fmueller/r2scribe/internal/config"
	"github.com/fmueller/r2scribe/internal/logging"
	"github.com/fmueller/r2scribe/internal/pipeline"
	"github.com/fmueller/r2scribe/internal/transcription"
	"github.com/fmueller/r2scribe/internal/version"
	"go.uber.org/zap"
	"golang.org/x/term"

	"github.com/spf13/cobra"
)

type appState struct {
	verbose    bool
	jsonLogs   bool
	noProgress bool
	local      bool
	outputDir  string
	model      string
	envFile    string
	copyText   bool
	copyEmpty  bool

	logger *zap.Logger
	out    io.Writer

	existsFn     func(path string) bool
	loadConfigFn func(envFile string) (config.Config, error)
	transcribeFn func(ctx context.Context, src pipeline.Source) (pipeline.Outcome, error)
	copyFn       func(ctx context.Context, value string) error
}

func NewRootCmd() *cobra.Command {
	return newRootCmd(newAppState())
}

func newAppState() *appState {
	app := &appState{
		outputDir: ".",
		model:     transcription.DefaultModel,
		out:       os.Stdout,
	}
	app.existsFn = pipeline.FileExists
	app.loadConfigFn = config.Load
	app.transcribeFn = app.runPipeline
	app.copyFn = clipboard.CopyText
	return app
}

func newRootCmd(app *appState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "r2scribe <file-or-bucket-key>",
		Short: "Transcribe a local audio file or an object from an R2 bucket",
		Long: "Transcribe a local audio file or an object from an R2 bucket.\n\n" +
			"The argument is treated as a local path when --local is set or the file exists;\n" +
			"otherwise it is a key in R2_BUCKET_NAME. The raw API response is written to\n" +
			"<name>.json in the output directory and the transcript text is printed.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version.Resolve(),
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			logger, err := logging.New(logging.Options{Verbose: app.verbose, JSON: app.jsonLogs})
			if err != nil {
				return fmt.Errorf("initialize logger: %w", err)
			}
			app.logger = logger
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			app.out = cmd.OutOrStdout()
			return app.runTranscribe(cmd.Context(), args[0])
		},
	}

	cmd.SetVersionTemplate("{{.Name}} v{{.Version}}\n")

	bindLoggingFlags(cmd, app)
	bindProgressFlag(cmd, app)
	bindSourceFlags(cmd, app)
	bindOutputFlags(cmd, app)

	cmd.AddCommand(newVersionCmd())

	return cmd
}

func bindLoggingFlags(cmd *cobra.Command, app *appState) {
	cmd.PersistentFlags().BoolVar(&app.verbose, "verbose", app.verbose, "Enable verbose logs")
	cmd.PersistentFlags().BoolVar(&app.jsonLogs, "json", app.jsonLogs, "Enable JSON logging")
}

func bindProgressFlag(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.noProgress, "no-progress", app.noProgress, "Disable progress indicators")
}

func bindSourceFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().BoolVar(&app.local, "local", app.local, "Treat the argument as a local file path")
	cmd.Flags().StringVar(&app.envFile, "env-file", app.envFile, "Dotenv file with credentials (default ./.env when present)")
	cmd.Flags().StringVar(&app.model, "model", app.model, "Transcription model identifier")
}

func bindOutputFlags(cmd *cobra.Command, app *appState) {
	cmd.Flags().StringVar(&app.outputDir, "output-dir", app.outputDir, "Directory for the <name>.json result")
	cmd.Flags().BoolVar(&app.copyText, "copy", app.copyText, "Copy the transcript text to the clipboard")
	cmd.Flags().BoolVar(&app.copyEmpty, "copy-empty", app.copyEmpty, "Copy blank transcripts to the clipboard")
}

func (a *appState) log() *zap.Logger {
	if a.logger == nil {
		return zap.NewNop()
	}
	return a.logger
}

func (a *appState) progressEnabled() bool {
	if a.noProgress {
		return false
	}
	return term.IsTerminal(int(os.Stderr.Fd()))
}

func (a *appState) outWriter() io.Writer {
	if a.out == nil {
		return os.Stdout
	}
	return a.out
}

package cli

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/bonniernews/sentry-sync/pkg/cli/config"
	"github.com/bonniernews/sentry-sync/pkg/domain/model"
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/bonniernews/sentry-sync/pkg/infra/sentry"
	"github.com/bonniernews/sentry-sync/pkg/usecase"
	"github.com/fatih/color"
	"github.com/google/uuid"
	"github.com/m-mizutani/ctxlog"
	"github.com/urfave/cli/v3"
)

// Option customizes Run. Production callers use none.
type Option func(*runConfig)

type runConfig struct {
	baseURL   string
	stdout    io.Writer
	logWriter io.Writer
	workDir   string
}

// WithBaseURL points the release API client at another server
func WithBaseURL(baseURL string) Option {
	return func(c *runConfig) {
		c.baseURL = baseURL
	}
}

// WithStdout sets where the run summary is printed
func WithStdout(w io.Writer) Option {
	return func(c *runConfig) {
		c.stdout = w
	}
}

// WithLogWriter sets where logs are written
func WithLogWriter(w io.Writer) Option {
	return func(c *runConfig) {
		c.logWriter = w
	}
}

// WithWorkDir sets the directory searched for a git repository by --detect-commit
func WithWorkDir(dir string) Option {
	return func(c *runConfig) {
		c.workDir = dir
	}
}

// Run runs the CLI application
func Run(ctx context.Context, args []string, opts ...Option) error {
	rc := &runConfig{
		baseURL:   model.DefaultBaseURL,
		stdout:    os.Stdout,
		logWriter: os.Stderr,
		workDir:   ".",
	}
	for _, opt := range opts {
		opt(rc)
	}

	var (
		loggerCfg  = config.Logger{Writer: rc.logWriter}
		fileCfg    config.File
		sentryCfg  config.Sentry
		releaseCfg config.Release
		uploadCfg  config.Upload
		reportCfg  config.ErrorReport
		logger     *slog.Logger
	)

	var flags []cli.Flag
	flags = append(flags, loggerCfg.Flags()...)
	flags = append(flags, fileCfg.Flags()...)
	flags = append(flags, sentryCfg.Flags()...)
	flags = append(flags, releaseCfg.Flags()...)
	flags = append(flags, uploadCfg.Flags()...)
	flags = append(flags, reportCfg.Flags()...)

	app := &cli.Command{
		Name:      types.Name,
		Usage:     "Create a Sentry release and upload source maps with their sources",
		UsageText: types.Name + " [options] <sourcemap.js.map>...",
		Version:   types.Version,
		Flags:     flags,
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			var err error
			logger, err = loggerCfg.Configure()
			if err != nil {
				return nil, err
			}

			slog.SetDefault(logger)
			ctx = ctxlog.With(ctx, logger)
			return ctx, nil
		},
		Action: func(ctx context.Context, c *cli.Command) error {
			values, err := fileCfg.Load()
			if err != nil {
				return err
			}
			values.Apply(c.IsSet, &sentryCfg, &releaseCfg, &uploadCfg)

			if err := reportCfg.Configure(); err != nil {
				return err
			}

			err = syncRelease(ctx, rc, c.Args().Slice(), sentryCfg, releaseCfg, uploadCfg)
			reportCfg.Capture(err)
			return err
		},
	}

	if err := app.Run(ctx, args); err != nil {
		if logger == nil {
			logger = slog.Default()
		}
		attrs := []any{slog.Any("error", err)}
		if stage, ok := types.StageOf(err); ok {
			attrs = append(attrs, slog.String("stage", string(stage)))
		}
		logger.Error("CLI execution failed", attrs...)
		return err
	}

	return nil
}

func syncRelease(ctx context.Context, rc *runConfig, files []string, sentryCfg config.Sentry, releaseCfg config.Release, uploadCfg config.Upload) error {
	if err := releaseCfg.Resolve(rc.workDir); err != nil {
		return err
	}

	logger := ctxlog.From(ctx).With(slog.String("run_id", uuid.NewString()))
	ctx = ctxlog.With(ctx, logger)

	req := &model.ReleaseRequest{
		Organization:   sentryCfg.Organization,
		Project:        sentryCfg.Project,
		Version:        releaseCfg.Version,
		SourceMapFiles: files,
		Commit:         releaseCfg.Commit,
		Repository:     releaseCfg.Repository,
		Token:          sentryCfg.Token,
		Verbose:        uploadCfg.Verbose,
	}
	logger.Debug("Release request", slog.Any("request", req))

	client := sentry.NewClient()
	uploader := sentry.NewUploader(client, sentry.WithBaseURL(rc.baseURL))
	release := usecase.NewRelease(client, uploader,
		usecase.WithBaseURL(rc.baseURL),
		usecase.WithConcurrency(uploadCfg.Concurrency),
	)

	result, err := release.Sync(ctx, req)
	if err != nil {
		return err
	}

	printSummary(rc.stdout, result)
	return nil
}

func printSummary(w io.Writer, result *model.SyncResult) {
	ok := color.New(color.FgGreen, color.Bold)
	_, _ = ok.Fprint(w, "✓ ")
	_, _ = io.WriteString(w, "Release ")
	_, _ = color.New(color.FgCyan).Fprint(w, result.Version)
	_, _ = io.WriteString(w, " synchronized: ")
	_, _ = color.New(color.Bold).Fprintf(w, "%d", result.Sources)
	_, _ = io.WriteString(w, " sources, ")
	_, _ = color.New(color.Bold).Fprintf(w, "%d", result.SourceMaps)
	_, _ = io.WriteString(w, " source maps\n")
}

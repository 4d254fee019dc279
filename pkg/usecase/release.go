package usecase

import (
	"bytes"
	"context"

	"github.com/bonniernews/sentry-sync/pkg/domain/interfaces"
	"github.com/bonniernews/sentry-sync/pkg/domain/model"
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/bonniernews/sentry-sync/pkg/utils/async"
	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"
)

// ReleaseOption is a functional option for the release use case
type ReleaseOption func(*releaseUseCase)

// WithFilesystem sets where source maps and sources are read from. Defaults
// to the OS filesystem, relative paths resolving against the working directory.
func WithFilesystem(fs billy.Basic) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.fs = fs
	}
}

// WithBaseURL sets the root of the release API
func WithBaseURL(baseURL string) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.api = model.API{BaseURL: baseURL}
	}
}

// WithConcurrency caps the number of simultaneous uploads within a stage.
// Zero or less means no cap.
func WithConcurrency(n int) ReleaseOption {
	return func(uc *releaseUseCase) {
		uc.concurrency = n
	}
}

type releaseUseCase struct {
	transport   interfaces.Transport
	uploader    interfaces.FileUploader
	fs          billy.Basic
	api         model.API
	concurrency int
}

// NewRelease creates a new instance of ReleaseUseCase
func NewRelease(transport interfaces.Transport, uploader interfaces.FileUploader, opts ...ReleaseOption) interfaces.ReleaseUseCase {
	uc := &releaseUseCase{
		transport: transport,
		uploader:  uploader,
		fs:        osfs.Default,
	}
	for _, opt := range opts {
		opt(uc)
	}
	return uc
}

// Sync runs the release pipeline: read and parse every source map, create the
// release, upload all referenced sources, then upload the source maps. Stages
// run strictly in order and the first failing stage ends the run with a
// *types.PipelineError. An invalid request fails before any I/O.
func (uc *releaseUseCase) Sync(ctx context.Context, req *model.ReleaseRequest) (*model.SyncResult, error) {
	logger := ctxlog.From(ctx)

	if req == nil {
		return nil, goerr.New("release request is required", goerr.T(types.ErrTagValidation))
	}
	if err := req.Validate(); err != nil {
		return nil, err
	}

	logger.Info("Synchronizing release",
		"organization", req.Organization,
		"project", req.Project,
		"version", req.Version,
		"source_map_files", len(req.SourceMapFiles),
	)

	raws, err := uc.readSourceMaps(req.SourceMapFiles)
	if err != nil {
		return nil, &types.PipelineError{Stage: types.StageReadSourceMap, Err: err}
	}

	sourceMaps, err := parseSourceMaps(req.SourceMapFiles, raws)
	if err != nil {
		return nil, &types.PipelineError{Stage: types.StageParseSourceMap, Err: err}
	}
	sources := model.CollectSources(sourceMaps)

	logger.Debug("Parsed source maps", "sources", len(sources))

	if err := uc.createRelease(ctx, req); err != nil {
		return nil, &types.PipelineError{Stage: types.StageCreateRelease, Err: err}
	}

	logger.Info("Created release", "version", req.Version, "has_refs", req.Refs() != nil)

	opts := req.UploadOptions()

	if err := async.ForEach(ctx, uc.concurrency, sources, func(ctx context.Context, path string) error {
		return uc.uploadSource(ctx, path, opts)
	}); err != nil {
		return nil, &types.PipelineError{Stage: types.StageUploadSources, Err: err}
	}

	logger.Info("Uploaded sources", "count", len(sources))

	if err := async.ForEach(ctx, uc.concurrency, sourceMaps, func(ctx context.Context, sm *model.SourceMap) error {
		return uc.uploader.UploadFile(ctx, sm.Path, bytes.NewReader(sm.Raw), opts)
	}); err != nil {
		return nil, &types.PipelineError{Stage: types.StageUploadSourceMaps, Err: err}
	}

	logger.Info("Uploaded source maps", "count", len(sourceMaps))

	return &model.SyncResult{
		Version:    req.Version,
		Sources:    len(sources),
		SourceMaps: len(sourceMaps),
	}, nil
}

// readSourceMaps reads every file in order; the first failure aborts
func (uc *releaseUseCase) readSourceMaps(paths []string) ([][]byte, error) {
	raws := make([][]byte, 0, len(paths))
	for _, path := range paths {
		raw, err := util.ReadFile(uc.fs, path)
		if err != nil {
			return nil, goerr.Wrap(err, "failed to read file", goerr.V("path", path))
		}
		raws = append(raws, raw)
	}
	return raws, nil
}

func parseSourceMaps(paths []string, raws [][]byte) ([]*model.SourceMap, error) {
	maps := make([]*model.SourceMap, 0, len(raws))
	for i, raw := range raws {
		sm, err := model.ParseSourceMap(paths[i], raw)
		if err != nil {
			return nil, err
		}
		maps = append(maps, sm)
	}
	return maps, nil
}

func (uc *releaseUseCase) createRelease(ctx context.Context, req *model.ReleaseRequest) error {
	body := &model.NewRelease{
		Version: req.Version,
		Refs:    req.Refs(),
	}
	url := uc.api.ReleasesURL(req.Organization, req.Project)

	return uc.transport.Post(ctx, url, body, nil, interfaces.PostOptions{Token: req.Token})
}

// uploadSource streams a referenced source file from the filesystem
func (uc *releaseUseCase) uploadSource(ctx context.Context, path string, opts model.UploadOptions) error {
	file, err := uc.fs.Open(path)
	if err != nil {
		err = goerr.Wrap(err, "failed to open source file", goerr.V("path", path))
		if opts.Verbose {
			ctxlog.From(ctx).Error("An error occurred while uploading file",
				"filename", path,
				"content_length", model.UnknownLength,
				"error", err.Error(),
				"stack", types.Stacks(err),
			)
		}
		return &types.UploadError{Filename: path, Err: err}
	}
	defer func() {
		if closeErr := file.Close(); closeErr != nil {
			ctxlog.From(ctx).Warn("Failed to close source file", "path", path, "error", closeErr)
		}
	}()

	return uc.uploader.UploadFile(ctx, path, file, opts)
}

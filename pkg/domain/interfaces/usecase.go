package interfaces

import (
	"context"

	"github.com/bonniernews/sentry-sync/pkg/domain/model"
)

// ReleaseUseCase synchronizes build artifacts with the release API
type ReleaseUseCase interface {
	// Sync creates the release and uploads every referenced source and source map
	Sync(ctx context.Context, req *model.ReleaseRequest) (*model.SyncResult, error)
}

package interfaces

import (
	"context"
	"io"

	"github.com/bonniernews/sentry-sync/pkg/domain/model"
)

// PostOptions carries per-request parameters of Transport.Post
type PostOptions struct {
	Token   string `masq:"secret"`
	Headers map[string]string
}

// Transport sends authenticated requests to the release API
type Transport interface {
	// Post sends body to url and decodes a JSON response into out when out is
	// not nil. body is either a multipart form or a JSON encodable value.
	Post(ctx context.Context, url string, body any, out any, opts PostOptions) error
}

// FileUploader attaches a single artifact to a release
type FileUploader interface {
	// UploadFile uploads content under filename to the release described by opts
	UploadFile(ctx context.Context, filename string, content io.Reader, opts model.UploadOptions) error
}

package sentry

import (
	"context"
	"io"
	"strconv"

	"github.com/bonniernews/sentry-sync/pkg/domain/interfaces"
	"github.com/bonniernews/sentry-sync/pkg/domain/model"
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/m-mizutani/ctxlog"
)

// VirtualPathPrefix groups uploaded artifacts under a stable directory on the
// remote side, whatever the local layout
const VirtualPathPrefix = "~/"

// UnknownLength is reported when the size of a content cannot be determined
const UnknownLength = model.UnknownLength

// UploaderOption is a functional option for Uploader configuration
type UploaderOption func(*Uploader)

// WithBaseURL sets the root of the release API
func WithBaseURL(baseURL string) UploaderOption {
	return func(u *Uploader) {
		u.api = model.API{BaseURL: baseURL}
	}
}

// Uploader attaches artifacts to a release
type Uploader struct {
	transport interfaces.Transport
	api       model.API
}

var _ interfaces.FileUploader = (*Uploader)(nil)

// NewUploader creates an uploader sending its requests through transport
func NewUploader(transport interfaces.Transport, opts ...UploaderOption) *Uploader {
	u := &Uploader{
		transport: transport,
	}
	for _, opt := range opts {
		opt(u)
	}
	return u
}

// UploadFile sends content as a multipart form with the fields "file" and
// "name" ("~/" + filename) to the files endpoint of the release. Invalid
// arguments fail with a validation error before any request. Any other
// failure is returned as *types.UploadError.
func (u *Uploader) UploadFile(ctx context.Context, filename string, content io.Reader, opts model.UploadOptions) error {
	if err := opts.Validate(filename, content); err != nil {
		return err
	}

	// measured before the content is consumed
	length := ContentLength(content)
	if length == "0" {
		return model.EmptyContentError(filename)
	}

	form := NewForm()
	size, err := form.AddFile("file", filename, content)
	if err != nil {
		return u.fail(ctx, filename, length, opts, err)
	}
	if size == 0 {
		return model.EmptyContentError(filename)
	}
	if err := form.AddField("name", VirtualPathPrefix+filename); err != nil {
		return u.fail(ctx, filename, length, opts, err)
	}
	if err := form.Close(); err != nil {
		return u.fail(ctx, filename, length, opts, err)
	}

	url := u.api.ReleaseFilesURL(opts.Organization, opts.Project, opts.Version)
	if err := u.transport.Post(ctx, url, form, nil, interfaces.PostOptions{Token: opts.Token}); err != nil {
		return u.fail(ctx, filename, length, opts, err)
	}

	ctxlog.From(ctx).Debug("Uploaded artifact",
		"filename", filename,
		"size_bytes", size,
		"version", opts.Version,
	)

	return nil
}

func (u *Uploader) fail(ctx context.Context, filename, length string, opts model.UploadOptions, err error) error {
	if opts.Verbose {
		ctxlog.From(ctx).Error("An error occurred while uploading file",
			"filename", filename,
			"content_length", length,
			"error", err.Error(),
			"stack", types.Stacks(err),
		)
	}
	return &types.UploadError{Filename: filename, Err: err}
}

// ContentLength reports the size of content when its representation exposes
// it (bytes.Reader, strings.Reader, bytes.Buffer), and UnknownLength for
// streams such as open files.
func ContentLength(content io.Reader) string {
	if model.IsNilContent(content) {
		return UnknownLength
	}
	switch v := content.(type) {
	case interface{ Size() int64 }:
		return strconv.FormatInt(v.Size(), 10)
	case interface{ Len() int }:
		return strconv.Itoa(v.Len())
	default:
		return UnknownLength
	}
}

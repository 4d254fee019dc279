package model

import (
	"io"
	"reflect"

	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// UnknownLength is reported when the size of a content cannot be determined
const UnknownLength = "unknown"

// UploadTarget is one artifact attached to a release
type UploadTarget struct {
	Filename string
	Content  io.Reader
}

// UploadOptions identifies the release an artifact is attached to
type UploadOptions struct {
	Organization string
	Project      string
	Version      string
	Token        string `masq:"secret"`
	Verbose      bool
}

// Validate checks the upload preconditions
func (o UploadOptions) Validate(filename string, content io.Reader) error {
	if filename == "" || o.Organization == "" || o.Project == "" || o.Version == "" {
		return goerr.New("filename, organization, project and version are required",
			goerr.V("filename", filename),
			goerr.V("organization", o.Organization),
			goerr.V("project", o.Project),
			goerr.V("version", o.Version),
			goerr.T(types.ErrTagValidation),
		)
	}
	if IsNilContent(content) {
		return goerr.New("content is required",
			goerr.V("filename", filename),
			goerr.T(types.ErrTagValidation),
		)
	}
	return nil
}

// IsNilContent reports whether content is nil, including a nil pointer stored
// in the interface
func IsNilContent(content io.Reader) bool {
	if content == nil {
		return true
	}
	v := reflect.ValueOf(content)
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return v.IsNil()
	}
	return false
}

// EmptyContentError reports an artifact without any byte to upload
func EmptyContentError(filename string) error {
	return goerr.New("content is empty",
		goerr.V("filename", filename),
		goerr.T(types.ErrTagValidation),
	)
}

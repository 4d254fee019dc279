package types

import (
	"errors"
	"fmt"

	"github.com/m-mizutani/goerr/v2"
)

// Error tags used to classify failures across layers
var (
	ErrTagValidation = goerr.NewTag("validation")
	ErrTagRequest    = goerr.NewTag("request")
)

// IsValidation reports whether err was caused by malformed or missing input
func IsValidation(err error) bool {
	return goerr.HasTag(err, ErrTagValidation)
}

// RequestError is returned by the transport for a single failed HTTP call:
// a non-2xx status (redirects included), a timeout, or a network failure.
type RequestError struct {
	URL        string
	StatusCode int  // zero when no response was received
	Timeout    bool // request exceeded its deadline
	Err        error
}

func (e *RequestError) Error() string {
	switch {
	case e.Timeout:
		return fmt.Sprintf("request to %s timed out", e.URL)
	case e.StatusCode != 0:
		return fmt.Sprintf("request failed with status code: %d", e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("request to %s failed: %s", e.URL, e.Err.Error())
	default:
		return fmt.Sprintf("request to %s failed", e.URL)
	}
}

func (e *RequestError) Unwrap() error { return e.Err }

// IsRedirect reports whether the server answered with a 3xx status
func (e *RequestError) IsRedirect() bool {
	return e.StatusCode >= 300 && e.StatusCode < 400
}

// UploadError is a failed upload of one artifact
type UploadError struct {
	Filename string
	Err      error
}

func (e *UploadError) Error() string {
	return fmt.Sprintf("failed to upload %q: %s", e.Filename, errMessage(e.Err))
}

func (e *UploadError) Unwrap() error { return e.Err }

// PipelineError is the terminal failure of a release run. Stage names the step
// that failed; Err keeps the original cause.
type PipelineError struct {
	Stage Stage
	Err   error
}

func (e *PipelineError) Error() string {
	return e.Stage.Description() + ": " + errMessage(e.Err)
}

func (e *PipelineError) Unwrap() error { return e.Err }

// StageOf returns the failed stage of err, if err is a pipeline failure
func StageOf(err error) (Stage, bool) {
	var pe *PipelineError
	if errors.As(err, &pe) {
		return pe.Stage, true
	}
	return "", false
}

// Stacks returns the stack trace of the outermost goerr error in err's chain,
// or nil when there is none
func Stacks(err error) []*goerr.Stack {
	if ge := goerr.Unwrap(err); ge != nil {
		return ge.Stacks()
	}
	return nil
}

func errMessage(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}

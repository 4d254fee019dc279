package model

import (
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/m-mizutani/goerr/v2"
)

// ReleaseRequest is the input of one release synchronization run.
// Organization, Project, Version and SourceMapFiles are required. Commit and
// Repository are only sent when both are set.
type ReleaseRequest struct {
	Organization   string
	Project        string
	Version        string
	SourceMapFiles []string

	Commit     string
	Repository string
	Token      string `masq:"secret"`
	Verbose    bool
}

// Validate checks the required fields without touching filesystem or network
func (r *ReleaseRequest) Validate() error {
	required := []struct {
		field string
		value string
	}{
		{"organization", r.Organization},
		{"project", r.Project},
		{"version", r.Version},
	}
	for _, v := range required {
		if v.value == "" {
			return goerr.New("required option is empty",
				goerr.V("field", v.field),
				goerr.T(types.ErrTagValidation),
			)
		}
	}

	if len(r.SourceMapFiles) == 0 {
		return goerr.New("at least one source map file is required",
			goerr.V("field", "source_map_files"),
			goerr.T(types.ErrTagValidation),
		)
	}
	for i, path := range r.SourceMapFiles {
		if path == "" {
			return goerr.New("source map file path is empty",
				goerr.V("field", "source_map_files"),
				goerr.V("index", i),
				goerr.T(types.ErrTagValidation),
			)
		}
	}

	return nil
}

// Refs returns the repository reference of the release, or nil unless both
// Repository and Commit are set
func (r *ReleaseRequest) Refs() []Ref {
	if r.Repository == "" || r.Commit == "" {
		return nil
	}
	return []Ref{{Repository: r.Repository, Commit: r.Commit}}
}

// UploadOptions returns the per-file upload parameters shared by every artifact of the run
func (r *ReleaseRequest) UploadOptions() UploadOptions {
	return UploadOptions{
		Organization: r.Organization,
		Project:      r.Project,
		Version:      r.Version,
		Token:        r.Token,
		Verbose:      r.Verbose,
	}
}

// Ref links a release to a commit of a repository known by the remote service
type Ref struct {
	Repository string `json:"repository"`
	Commit     string `json:"commit"`
}

// NewRelease is the body of the create-release request
type NewRelease struct {
	Version string `json:"version"`
	Refs    []Ref  `json:"refs,omitempty"`
}

// SyncResult summarizes a successful run
type SyncResult struct {
	Version    string
	Sources    int // uploaded source files, duplicates included
	SourceMaps int
}

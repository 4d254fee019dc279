package model

import (
	"net/url"
	"strings"
)

// DefaultBaseURL is the root of the release API
const DefaultBaseURL = "https://sentry.io/api/0/"

// API builds endpoint URLs of the release API
type API struct {
	BaseURL string
}

func (a API) base() string {
	base := a.BaseURL
	if base == "" {
		base = DefaultBaseURL
	}
	if !strings.HasSuffix(base, "/") {
		base += "/"
	}
	return base
}

// ProjectURL returns the project scoped root: {base}projects/{organization}/{project}/
func (a API) ProjectURL(organization, project string) string {
	return a.base() + "projects/" + url.PathEscape(organization) + "/" + url.PathEscape(project) + "/"
}

// ReleasesURL returns the endpoint creating releases
func (a API) ReleasesURL(organization, project string) string {
	return a.ProjectURL(organization, project) + "releases/"
}

// ReleaseFilesURL returns the endpoint attaching artifacts to a release
func (a API) ReleaseFilesURL(organization, project, version string) string {
	return a.ReleasesURL(organization, project) + url.PathEscape(version) + "/files/"
}

package git

import (
	"errors"
	"net/url"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/m-mizutani/goerr/v2"
)

// RemoteName is the remote used to derive the repository name
const RemoteName = "origin"

// Repository is a local git working copy
type Repository struct {
	repo *git.Repository
}

// Open opens the git repository containing path, searching parent directories
func Open(path string) (*Repository, error) {
	repo, err := git.PlainOpenWithOptions(path, &git.PlainOpenOptions{
		DetectDotGit: true,
	})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to open git repository", goerr.V("path", path))
	}
	return &Repository{repo: repo}, nil
}

// HeadCommit returns the full hash of the commit HEAD points to
func (r *Repository) HeadCommit() (string, error) {
	head, err := r.repo.Head()
	if err != nil {
		return "", goerr.Wrap(err, "failed to resolve HEAD")
	}
	return head.Hash().String(), nil
}

// RepositoryName returns "owner/name" derived from the URL of the origin
// remote, or an empty string when there is no such remote
func (r *Repository) RepositoryName() (string, error) {
	remote, err := r.repo.Remote(RemoteName)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", nil
	}
	if err != nil {
		return "", goerr.Wrap(err, "failed to look up remote", goerr.V("remote", RemoteName))
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", nil
	}
	return ParseRepositoryName(urls[0])
}

// ParseRepositoryName extracts "owner/name" from a remote URL. It accepts
// scp-like ("git@host:owner/name.git") and URL forms ("https://host/owner/name").
func ParseRepositoryName(remoteURL string) (string, error) {
	var path string

	if strings.Contains(remoteURL, "://") {
		u, err := url.Parse(remoteURL)
		if err != nil {
			return "", goerr.Wrap(err, "invalid remote URL", goerr.V("url", remoteURL))
		}
		path = u.Path
	} else if i := strings.Index(remoteURL, ":"); i >= 0 {
		path = remoteURL[i+1:]
	} else {
		path = remoteURL
	}

	path = strings.TrimSuffix(strings.Trim(path, "/"), ".git")
	parts := strings.Split(path, "/")
	if len(parts) < 2 || parts[len(parts)-2] == "" || parts[len(parts)-1] == "" {
		return "", goerr.New("remote URL has no owner/name path", goerr.V("url", remoteURL))
	}

	return parts[len(parts)-2] + "/" + parts[len(parts)-1], nil
}

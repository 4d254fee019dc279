package config

import (
	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/bonniernews/sentry-sync/pkg/infra/git"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// Release holds the identity of the release to create
type Release struct {
	Version      string
	Commit       string
	Repository   string
	DetectCommit bool
}

// Flags returns CLI flags for release configuration
func (c *Release) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "source-version",
			Aliases:     []string{"s"},
			Usage:       "The version name for the release",
			Destination: &c.Version,
			Sources:     cli.EnvVars("SENTRY_SYNC_VERSION"),
		},
		&cli.StringFlag{
			Name:        "commit",
			Usage:       "The commit hash of the pushed code",
			Destination: &c.Commit,
			Sources:     cli.EnvVars("SENTRY_SYNC_COMMIT"),
		},
		&cli.StringFlag{
			Name:        "repository",
			Usage:       "Name of git repository, eg. 'owner-name/repo-name'",
			Destination: &c.Repository,
			Sources:     cli.EnvVars("SENTRY_SYNC_REPOSITORY"),
		},
		&cli.BoolFlag{
			Name:        "detect-commit",
			Usage:       "Use the HEAD commit and origin remote of the git repository in the working directory when --commit or --repository is empty",
			Destination: &c.DetectCommit,
			Sources:     cli.EnvVars("SENTRY_SYNC_DETECT_COMMIT"),
		},
	}
}

// Resolve fills Commit and Repository from the git repository containing dir
// when DetectCommit is set. Explicit values are kept.
func (c *Release) Resolve(dir string) error {
	if !c.DetectCommit || (c.Commit != "" && c.Repository != "") {
		return nil
	}

	repo, err := git.Open(dir)
	if err != nil {
		return goerr.Wrap(err, "failed to detect commit", goerr.T(types.ErrTagValidation))
	}

	if c.Commit == "" {
		commit, err := repo.HeadCommit()
		if err != nil {
			return goerr.Wrap(err, "failed to detect commit", goerr.T(types.ErrTagValidation))
		}
		c.Commit = commit
	}

	if c.Repository == "" {
		name, err := repo.RepositoryName()
		if err != nil {
			return goerr.Wrap(err, "failed to detect repository", goerr.T(types.ErrTagValidation))
		}
		c.Repository = name
	}

	return nil
}

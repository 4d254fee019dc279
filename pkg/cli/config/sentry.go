package config

import "github.com/urfave/cli/v3"

// Sentry holds the target project and credentials of the release API
type Sentry struct {
	Organization string
	Project      string
	Token        string `masq:"secret"`
}

// Flags returns CLI flags for the release API target
func (c *Sentry) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "organization",
			Aliases:     []string{"o"},
			Usage:       "Name of Sentry organization",
			Destination: &c.Organization,
			Sources:     cli.EnvVars("SENTRY_SYNC_ORGANIZATION", "SENTRY_ORG"),
		},
		&cli.StringFlag{
			Name:        "project",
			Aliases:     []string{"p"},
			Usage:       "Name of Sentry project",
			Destination: &c.Project,
			Sources:     cli.EnvVars("SENTRY_SYNC_PROJECT", "SENTRY_PROJECT"),
		},
		&cli.StringFlag{
			Name:        "token",
			Aliases:     []string{"t"},
			Usage:       "A Sentry token to use",
			Destination: &c.Token,
			Sources:     cli.EnvVars("SENTRY_SYNC_TOKEN", "SENTRY_AUTH_TOKEN"),
		},
	}
}

package config

import "github.com/urfave/cli/v3"

// Upload holds artifact upload configuration
type Upload struct {
	Concurrency int
	Verbose     bool
}

// Flags returns CLI flags for upload configuration
func (c *Upload) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.IntFlag{
			Name:        "concurrency",
			Usage:       "Maximum simultaneous uploads per stage, 0 for no limit",
			Value:       0,
			Destination: &c.Concurrency,
			Sources:     cli.EnvVars("SENTRY_SYNC_CONCURRENCY"),
		},
		&cli.BoolFlag{
			Name:        "verbose",
			Usage:       "Report every failed file upload",
			Destination: &c.Verbose,
			Sources:     cli.EnvVars("SENTRY_SYNC_VERBOSE"),
		},
	}
}

package config

import (
	"time"

	"github.com/bonniernews/sentry-sync/pkg/domain/types"
	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/goerr/v2"
	"github.com/urfave/cli/v3"
)

// reportFlushTimeout bounds how long a failure report may delay exit
const reportFlushTimeout = 2 * time.Second

// ErrorReport configures reporting of this tool's own failures to a Sentry DSN
type ErrorReport struct {
	DSN string `masq:"secret"`

	enabled bool
}

// Flags returns CLI flags for error reporting
func (c *ErrorReport) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "report-dsn",
			Usage:       "Sentry DSN receiving failures of sentry-sync itself",
			Destination: &c.DSN,
			Sources:     cli.EnvVars("SENTRY_SYNC_REPORT_DSN"),
		},
	}
}

// Configure initializes the Sentry SDK. Reporting stays disabled without a DSN.
func (c *ErrorReport) Configure() error {
	if c.DSN == "" {
		return nil
	}

	if err := sentry.Init(sentry.ClientOptions{
		Dsn:     c.DSN,
		Release: types.Name + "@" + types.Version,
	}); err != nil {
		return goerr.Wrap(err, "failed to initialize error reporting")
	}

	c.enabled = true
	return nil
}

// Capture sends err and waits for delivery, up to reportFlushTimeout
func (c *ErrorReport) Capture(err error) {
	if !c.enabled || err == nil {
		return
	}

	hub := sentry.CurrentHub().Clone()
	hub.WithScope(func(scope *sentry.Scope) {
		if stage, ok := types.StageOf(err); ok {
			scope.SetTag("stage", string(stage))
		}
		hub.CaptureException(err)
	})
	hub.Flush(reportFlushTimeout)
}

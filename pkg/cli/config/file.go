package config

import (
	"os"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"
)

// File points to an optional TOML file holding defaults for other flags
type File struct {
	Path string
}

// FileValues is the content of the configuration file
type FileValues struct {
	Organization string `toml:"organization"`
	Project      string `toml:"project"`
	Token        string `toml:"token" masq:"secret"`
	Repository   string `toml:"repository"`
	Concurrency  int    `toml:"concurrency"`
}

// Flags returns CLI flags for the configuration file
func (c *File) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to a TOML file with default option values",
			Destination: &c.Path,
			Sources:     cli.EnvVars("SENTRY_SYNC_CONFIG"),
		},
	}
}

// Load reads the configuration file. It returns empty values when no path is set.
func (c *File) Load() (*FileValues, error) {
	values := &FileValues{}
	if c.Path == "" {
		return values, nil
	}

	raw, err := os.ReadFile(c.Path)
	if err != nil {
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V("path", c.Path))
	}

	if err := toml.Unmarshal(raw, values); err != nil {
		return nil, goerr.Wrap(err, "failed to parse config file", goerr.V("path", c.Path))
	}

	return values, nil
}

// Apply copies file values into the flag backed configs for every option the
// user did not set explicitly. isSet reports whether a flag was given on the
// command line or through its environment variables.
func (v *FileValues) Apply(isSet func(name string) bool, target *Sentry, release *Release, upload *Upload) {
	setString := func(flag string, dst *string, value string) {
		if value != "" && !isSet(flag) {
			*dst = value
		}
	}

	setString("organization", &target.Organization, v.Organization)
	setString("project", &target.Project, v.Project)
	setString("token", &target.Token, v.Token)
	setString("repository", &release.Repository, v.Repository)

	if v.Concurrency != 0 && !isSet("concurrency") {
		upload.Concurrency = v.Concurrency
	}
}

package types

// Name is the client name reported to the release API
const Name = "sentry-sync"

// Homepage is appended to the client identifier when not empty
const Homepage = "https://github.com/bonniernews/sentry-sync"

// Version is the application version, overwritten at build time via -ldflags
var Version = "dev"

// UserAgent returns the client identifier in the form "<name>/<version> (<homepage>)"
func UserAgent() string {
	ua := Name + "/" + Version
	if Homepage != "" {
		ua += " (" + Homepage + ")"
	}
	return ua
}

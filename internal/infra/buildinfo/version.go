package buildinfo

import (
	"runtime"
)

// ProductName is used in the User-Agent and version banners.
const ProductName = "hostdeck-cli"

// Build-time variables (set via ldflags).
var (
	// Version is the semantic version.
	Version = "dev"

	// Commit is the git commit hash.
	Commit = "unknown"

	// BuildTime is the build timestamp.
	BuildTime = "unknown"
)

// Info contains build information.
type Info struct {
	Version   string `json:"version" yaml:"version"`
	Commit    string `json:"commit" yaml:"commit"`
	BuildTime string `json:"build_time" yaml:"build_time"`
	GoVersion string `json:"go_version" yaml:"go_version"`
	Platform  string `json:"platform" yaml:"platform"`
}

// Get returns the build information.
func Get() Info {
	return Info{
		Version:   Version,
		Commit:    Commit,
		BuildTime: BuildTime,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	}
}

// String returns a formatted version string.
func String() string {
	return ProductName + " " + Version + " (" + Commit + ") built at " + BuildTime
}

// UserAgent returns the User-Agent header sent to the backend.
func UserAgent() string {
	return ProductName + "/" + Version + " (" + runtime.GOOS + "/" + runtime.GOARCH + ")"
}

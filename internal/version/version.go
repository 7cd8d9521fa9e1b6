package version

import "fmt"

// Version is set at build time:
// go build -ldflags "-X github.com/sandroweb/html-template-project/internal/version.Version=v1.2.0".
var Version = "unknown"

var (
	BuildTime = "unknown"
	GitCommit = "unknown"
)

// String formats the version for --version output.
func String() string {
	return fmt.Sprintf("sitebuilder %s (commit %s, built %s)", Version, GitCommit, BuildTime)
}

// Package version holds nodesearch build metadata, injected with
// -ldflags "-X github.com/kailas-cloud/nodesearch/internal/version.Version=...".
package version

import (
	"fmt"
	"runtime"
)

//nolint:revive // Set via ldflags at build time.
var (
	Version = "dev"
	Commit  = "unknown"
	Date    = "unknown"
)

// String renders the build metadata as printed by "nodesearch version".
func String() string {
	return fmt.Sprintf("nodesearch %s (commit %s, built %s, %s)", Version, Commit, Date, runtime.Version())
}

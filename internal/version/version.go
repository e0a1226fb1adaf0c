// Package version holds the tareas build identity reported by `tareas version`.
package version

// Set with -ldflags "-X github.com/GoCodeAlone/tareas/internal/version.Version=..."
var (
	Version   = "dev"
	Commit    = "unknown"
	BuildDate = "unknown"
)

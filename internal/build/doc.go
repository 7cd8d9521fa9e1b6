// Package build is the single entry point for executing a composed plan.
// The CLI, the watcher and tests all run builds through Service.Run, which
// derives the mode overlay, executes the task runner, records the build
// manifest and publishes lifecycle events.
package build

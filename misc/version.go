// Package misc holds small helpers shared across the program.
package misc

import (
	"runtime/debug"
)

const appName = "kreuzberg"

// set by the linker in release builds
var (
	version = ""
	gitHash = ""
)

// GetAppName returns the program name used for logs and temp files.
func GetAppName() string {
	return appName
}

// GetVersion returns the build version, falling back to module build info.
func GetVersion() string {
	if version != "" {
		return version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}
	return "(devel)"
}

// GetGitHash returns the VCS revision recorded in build info.
func GetGitHash() string {
	if gitHash != "" {
		return gitHash
	}
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}
	return "unknown"
}

// Package version reports build identification for the regainer tool.
package version

import "runtime/debug"

const name = "regainer"

// Name returns the tool name.
func Name() string {
	return name
}

// Version returns the module version baked in at build time.
func Version() string {
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" {
		return info.Main.Version
	}

	return "(devel)"
}

// Commit returns the VCS revision, when available.
func Commit() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		for _, setting := range info.Settings {
			if setting.Key == "vcs.revision" {
				return setting.Value
			}
		}
	}

	return ""
}

// Full returns the version, with the VCS revision appended when known.
func Full() string {
	if commit := Commit(); commit != "" {
		return Version() + " " + commit
	}

	return Version()
}

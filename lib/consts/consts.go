// Package consts houses some constants needed across selenv
package consts

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"strings"
)

// Version contains the current semantic version of selenv.
const Version = "0.2.0"

// VersionDetails returns the structured details about the current version.
func VersionDetails() map[string]interface{} {
	v := map[string]interface{}{
		"version":    "v" + Version,
		"go_version": runtime.Version(),
		"go_os":      runtime.GOOS,
		"go_arch":    runtime.GOARCH,
	}

	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return v
	}

	for _, s := range buildInfo.Settings {
		if s.Key == "vcs.revision" {
			commit := s.Value
			if len(commit) > 10 {
				commit = commit[:10]
			}
			v["commit"] = commit
			break
		}
	}

	return v
}

// FullVersion returns the maximally full version and build information for
// the currently running selenv executable.
func FullVersion() string {
	details := VersionDetails()
	goVersionArch := fmt.Sprintf("%s, %s/%s", details["go_version"], details["go_os"], details["go_arch"])

	commit, ok := details["commit"].(string)
	if !ok || commit == "" {
		return fmt.Sprintf("%s (%s)", details["version"], goVersionArch)
	}
	return fmt.Sprintf("%s (commit/%s, %s)", details["version"], commit, goVersionArch)
}

// Banner returns the ASCII-art banner printed before a setup run.
func Banner() string {
	banner := strings.Join([]string{
		`              _                  `,
		`  ___  ___   | |  ___  _ __  __   __`,
		` / __|/ _ \  | |/ _ \ | '_ \ \ \ / /`,
		` \__ \  __/  | |  __/ | | | | \ V / `,
		` |___/\___|  |_|\___| |_| |_|  \_/  `,
	}, "\n")

	return banner
}

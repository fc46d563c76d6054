// Package version exposes the build version embedded from the VERSION file.
package version

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var versionContent string

// fallback is reported when the VERSION file is empty.
const fallback = "dev"

// Get returns the current version with whitespace trimmed.
func Get() string {
	return resolve(versionContent)
}

func resolve(content string) string {
	if v := strings.TrimSpace(content); v != "" {
		return v
	}
	return fallback
}

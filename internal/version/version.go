package version

import (
	"strings"

	"github.com/fatih/color"
)

// Version information for the quill CLI.
// These variables can be overridden at build time via -ldflags.

var (
	majorColor = color.New(color.FgYellow, color.Bold)
	minorColor = color.New(color.FgGreen, color.Bold)
	patchColor = color.New(color.FgBlue, color.Bold)

	// Version is the semantic version of the CLI. It stays plain so the
	// project manifest can match it against a toolchain constraint.
	Version = "0.1.0-dev"

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Colored renders Version with each component highlighted. Versions that
// are not dotted major.minor.patch come back unchanged.
func Colored() string {
	major, rest, ok := strings.Cut(Version, ".")
	if !ok {
		return Version
	}
	minor, patch, ok := strings.Cut(rest, ".")
	if !ok {
		return Version
	}
	return majorColor.Sprint(major) + "." + minorColor.Sprint(minor) + "." + patchColor.Sprint(patch)
}

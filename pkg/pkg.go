//nolint:gochecknoglobals
package pkg

import (
	_ "embed"
	"strings"
)

//go:embed VERSION
var version string

// Version is the semantic version of the xfunc module embedded at build time.
// It is printed by the CLI's --version flag.
var Version = strings.TrimSpace(version)

const (
	// Name is the canonical command and module identifier used across the
	// project. It appears in help text, default config paths and environment
	// variable names.
	Name = "xfunc"
	// Description is a short, human-readable summary of the project used in
	// help output and documentation.
	Description = "Evaluate numeric functions written in markup"
	// Extension is the conventional file extension of xfunc sources.
	Extension = ".xfn"
)

// EnvPrefix is the prefix of environment variables read by the CLI.
var EnvPrefix = strings.ToUpper(Name) + "_"

// AuthorInfo represents an individual author's name and email address.
type AuthorInfo struct {
	// Name is the author's preferred name or handle.
	Name string
	// Email is the author's contact email address.
	Email string
}

// Author lists the primary author(s) of the project for display in metadata.
var Author = []AuthorInfo{
	{"ardnew", "andrew@ardnew.com"},
}

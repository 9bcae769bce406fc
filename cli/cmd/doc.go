// Package cmd implements the xfunc subcommands.
//
// Each command is a kong command struct with a Run(context.Context) method.
// Commands read the parse options installed by [WithOptions] and write to
// the writer installed by [WithOutput], or standard output by default.
package cmd

var (
	// CacheIdentifier is the kong variable identifier containing the path to
	// the runtime cache directory.
	CacheIdentifier = "cache"

	// ConfigIdentifier is the kong variable identifier containing the path to
	// the configuration file.
	ConfigIdentifier = "config"
)

package cli

import (
	"context"
	"strconv"

	"github.com/alecthomas/kong"
	"github.com/xyproto/env/v2"

	"github.com/ardnew/xfunc/cli/cmd"
	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/log"
	"github.com/ardnew/xfunc/pkg"
)

// CLI is the top-level command-line interface for xfunc.
type CLI struct {
	Log   logConfig   `embed:"" group:"log"   prefix:"log-"`
	Pprof pprofConfig `embed:"" group:"pprof" prefix:"pprof-"`

	Path     []string         `help:"Directory searched for relative source files (repeatable)." placeholder:"DIR"    short:"I" type:"path"`
	MaxDepth int              `default:"${maxDepth}"                                              help:"Maximum expression nesting depth."`
	Version  kong.VersionFlag `help:"Print version and exit."                                     short:"V"`

	Eval cmd.Eval `cmd:"" default:"withargs" help:"Call a function with the given arguments."`
	Fmt  cmd.Fmt  `cmd:""                    help:"Format a program."`
	List cmd.List `cmd:""                    help:"List the functions of a program."`
	Repl cmd.Repl `cmd:""                    help:"Start an interactive session."`
	Init cmd.Init `cmd:""                    help:"Write a configuration file with the current flag values."`
}

// Run parses args and executes the selected command. exit is called by kong
// for --help, --version and usage errors.
func Run(
	ctx context.Context,
	exit func(code int),
	args ...string,
) error {
	var cli CLI

	if err := mkdirAllRequired(); err != nil {
		return err
	}

	confPath := configPath(configFile)

	vars := kong.Vars{
		cmd.ConfigIdentifier: confPath,
		cmd.CacheIdentifier:  cacheDir(),
		"version":            pkg.Version,
		"maxDepth":           strconv.Itoa(lang.DefaultMaxDepth),
	}.
		CloneWith(cli.Log.vars()).
		CloneWith(cli.Pprof.vars())

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	cli.Log.scan(args)

	parser, err := kong.New(&cli,
		kong.Name(pkg.Name),
		kong.Description(pkg.Description),
		kong.UsageOnError(),
		kong.Exit(exit),
		kong.ExplicitGroups(
			[]kong.Group{cli.Log.group(), cli.Pprof.group()},
		),
		kong.BindSingletonProvider(func() context.Context {
			return ctx
		}),
		kong.ConfigureHelp(
			kong.HelpOptions{
				Compact:             true,
				Summary:             true,
				Tree:                true,
				NoExpandSubcommands: true,
			}),
		kong.Configuration(resolveYAML, confPath),
		vars,
	)
	if err != nil {
		return err
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		return err
	}

	defer cli.Log.start(ctx)()
	defer cli.Pprof.start(ctx)()

	ctx = cmd.WithContext(ctx, ktx)
	ctx = cmd.WithOptions(ctx, cli.options()...)

	return ktx.Run(ctx, &cli)
}

// options returns the parse options selected by global flags. Directories
// named in the XFUNC_PATH environment variable are searched after those
// given with --path.
func (c *CLI) options() []lang.Option {
	return []lang.Option{
		lang.WithLogger(log.Named("lang")),
		lang.WithMaxDepth(c.MaxDepth),
		lang.WithSearchPath(lang.SearchPath(env.Str(pkg.EnvPrefix+"PATH"), c.Path...)...),
	}
}

package cmd

import (
	"context"
	"log/slog"

	"github.com/ardnew/xfunc/cli/cmd/repl"
	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/log"
)

// Repl starts an interactive session.
type Repl struct {
	Source string `arg:"" help:"Source file or markup text to load. The reload command re-reads it." name:"source" optional:""`
}

// Run executes the repl command.
func (r *Repl) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	if r.Source == stdinSource {
		return ErrStdinSource.With(slog.String("command", "repl"))
	}

	var prog *lang.Program

	if r.Source != "" {
		prog, err = load(ctx, r.Source)
		if err != nil {
			return lang.WrapError(err).With(slog.String("command", "repl"))
		}
	}

	var cacheDir string
	if ktx := kongContextFrom(ctx); ktx != nil {
		cacheDir = ktx.Model.Vars()[CacheIdentifier]
	}

	return repl.Run(ctx, repl.Config{
		Source:   r.Source,
		Program:  prog,
		Options:  optionsFrom(ctx),
		CacheDir: cacheDir,
		Logger:   log.Named("repl"),
	})
}

package cmd

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/log"
)

// stdinSource is the source argument that reads from standard input.
const stdinSource = "-"

type (
	contextKey struct{}
	optionsKey struct{}
	outputKey  struct{}
)

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// WithOptions returns a new context.Context carrying the options used to
// parse and build every program loaded by a command.
func WithOptions(ctx context.Context, opts ...lang.Option) context.Context {
	return context.WithValue(ctx, optionsKey{}, opts)
}

func optionsFrom(ctx context.Context) []lang.Option {
	opts, _ := ctx.Value(optionsKey{}).([]lang.Option)

	return opts
}

// WithOutput returns a new context.Context whose commands write their
// results to w instead of standard output.
func WithOutput(ctx context.Context, w io.Writer) context.Context {
	return context.WithValue(ctx, outputKey{}, w)
}

func outputFrom(ctx context.Context) io.Writer {
	if w, ok := ctx.Value(outputKey{}).(io.Writer); ok && w != nil {
		return w
	}

	return os.Stdout
}

// load builds the program named by src: a file path, markup text, or "-"
// for standard input.
func load(ctx context.Context, src string) (*lang.Program, error) {
	var (
		prog *lang.Program
		err  error
	)

	if src == stdinSource {
		prog, err = lang.ParseReader(ctx, os.Stdin, optionsFrom(ctx)...)
	} else {
		prog, err = lang.Load(ctx, src, optionsFrom(ctx)...)
	}

	if err != nil {
		return nil, err
	}

	log.DebugContext(ctx, "program loaded",
		slog.Int("functions", prog.Len()),
		slog.Uint64("digest", prog.Digest()),
	)

	return prog, nil
}

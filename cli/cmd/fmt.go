package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/xfunc/lang"
)

// Fmt parses a program and writes it back out in the chosen format.
type Fmt struct {
	Native Native `cmd:"" default:"withargs" help:"Format as canonical markup (default)."`
	JSON   JSON   `cmd:""                    help:"Format as JSON."`
	YAML   YAML   `cmd:""                    help:"Format as YAML."`
	AST    AST    `cmd:""                    help:"Print the expression tree of each function."`
}

// Input is the positional source argument shared by commands that only read
// a program.
type Input struct {
	Source string `arg:"" default:"-" help:"Source file, markup text, or '-' for stdin." name:"source"`
}

func (s Input) format(
	ctx context.Context,
	format string,
	write func(*lang.Program) error,
) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := load(ctx, s.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("format", format))
	}

	if err := write(prog); err != nil {
		return ErrWriteOutput.
			With(slog.String("format", format)).
			Wrap(err)
	}

	return nil
}

// Native formats a program as canonical markup.
type Native struct {
	Indent int `default:"2" help:"Indent width for formatted output" short:"i"`

	Input `embed:""`
}

// Run executes the native format command.
func (f *Native) Run(ctx context.Context) error {
	return f.format(ctx, "native", func(p *lang.Program) error {
		return p.Format(ctx, outputFrom(ctx), f.Indent)
	})
}

// JSON formats a program as JSON.
type JSON struct {
	Indent int `default:"2" help:"Indent width for JSON output" short:"i"`

	Input `embed:""`
}

// Run executes the json command.
func (j *JSON) Run(ctx context.Context) error {
	return j.format(ctx, "json", func(p *lang.Program) error {
		return p.FormatJSON(ctx, outputFrom(ctx), j.Indent)
	})
}

// YAML formats a program as YAML.
type YAML struct {
	Indent int `default:"2" help:"Indent width for YAML output" short:"i"`

	Input `embed:""`
}

// Run executes the yaml command.
func (y *YAML) Run(ctx context.Context) error {
	return y.format(ctx, "yaml", func(p *lang.Program) error {
		return p.FormatYAML(ctx, outputFrom(ctx), y.Indent)
	})
}

// AST prints the expression tree of each function.
type AST struct {
	Input `embed:""`
}

// Run executes the ast command.
func (a *AST) Run(ctx context.Context) error {
	return a.format(ctx, "ast", func(p *lang.Program) error {
		p.Print(outputFrom(ctx))

		return nil
	})
}

// List prints the signature of every function in a program.
type List struct {
	Digest bool `help:"Also print the hash of the source text." short:"d"`

	Input `embed:""`
}

// Run executes the list command.
func (l *List) Run(ctx context.Context) error {
	return l.format(ctx, "list", func(p *lang.Program) error {
		w := outputFrom(ctx)

		if l.Digest {
			if _, err := fmt.Fprintf(w, "digest %016x\n", p.Digest()); err != nil {
				return err
			}
		}

		for fn := range p.Functions() {
			if _, err := fmt.Fprintf(w, "%d\t%s\n", fn.Index, fn.Signature()); err != nil {
				return err
			}
		}

		return nil
	})
}

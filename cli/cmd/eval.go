package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ardnew/xfunc/cli/cmd/calc"
	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/log"
)

// Eval calls one function of a program with the given arguments.
type Eval struct {
	Func string `help:"Function to call, by name or index. Required when the program defines more than one." placeholder:"NAME|INDEX" short:"F"`
	Type bool   `help:"Print the type of the result after its value."                                         short:"t"`

	Source string   `arg:"" help:"Source file, markup text, or '-' for stdin."                        name:"source"`
	Args   []string `arg:"" help:"Call arguments: numbers or expressions such as 2*pi. Use -- before negative numbers." name:"args" optional:""`
}

// Run executes the eval command.
func (e *Eval) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	prog, err := load(ctx, e.Source)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	fn, err := prog.Select(e.Func)
	if err != nil {
		return lang.WrapError(err).With(
			slog.String("command", "eval"),
			slog.String("func", e.Func),
		)
	}

	args, err := calc.Args(e.Args...)
	if err != nil {
		return ErrCallArgs.
			With(slog.String("func", fn.Ident())).
			Wrap(err)
	}

	log.DebugContext(ctx, "calling function",
		slog.String("signature", fn.Signature()),
		slog.Int("args", len(args)),
	)

	result, err := fn.Call(args...)
	if err != nil {
		return lang.WrapError(err).With(slog.String("command", "eval"))
	}

	return e.print(ctx, result)
}

func (e *Eval) print(ctx context.Context, n lang.Number) error {
	var err error

	if e.Type {
		_, err = fmt.Fprintf(outputFrom(ctx), "%s %s\n", n, n.Type())
	} else {
		_, err = fmt.Fprintln(outputFrom(ctx), n)
	}

	if err != nil {
		return ErrWriteOutput.Wrap(err)
	}

	return nil
}

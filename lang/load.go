package lang

import (
	"context"
	"log/slog"
	"os"
)

// Load builds a program from src, which is either the path of a source file
// or the source text itself.
//
// If src names a regular file, directly or relative to a directory given by
// [WithSearchPath], that file is read. Otherwise src is parsed as text.
func Load(ctx context.Context, src string, opts ...Option) (*Program, error) {
	c := makeConfig(opts...)

	if path, ok := findSource(src, c.search); ok {
		c.logger.TraceContext(ctx, "loading source file",
			slog.String("path", path))

		f, err := os.Open(path)
		if err != nil {
			return nil, ErrReadInput.
				With(slog.String("path", path)).
				Wrap(err)
		}
		defer f.Close()

		return ParseReader(ctx, f, opts...)
	}

	return ParseString(ctx, src, opts...)
}

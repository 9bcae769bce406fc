package repl

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/xyproto/env/v2"
	"github.com/zeebo/xxh3"

	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/log"
	"github.com/ardnew/xfunc/pkg"
)

const defaultEditor = "vi"

// editIndent is the indent width of the markup handed to the editor.
const editIndent = 2

// template seeds the editor when no program is loaded.
const template = `<arglist>
  <arg name="x"/>
</arglist>
<mult arg1="x" arg2="x"/>
`

// editCommand implements [tea.ExecCommand] for the edit-parse-retry loop.
// It formats the current program to a temp file, opens the user's editor,
// and rebuilds the program from the result. On a build error the user is
// prompted to re-edit; declining exits the REPL.
type editCommand struct {
	prog    *lang.Program
	opts    []lang.Option
	ctxFunc func() context.Context
	logger  log.Logger

	// result, set by Run when the user saved a different valid program.
	result *lang.Program
	// unchanged is set by Run when the saved text equals the original.
	unchanged bool

	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

func (c *editCommand) SetStdin(r io.Reader)  { c.stdin = r }
func (c *editCommand) SetStdout(w io.Writer) { c.stdout = w }
func (c *editCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit loop. An emptied file cancels the edit. If the user
// declines to re-edit after an error, Run returns [ErrEditDeclined].
func (c *editCommand) Run() error {
	ctx := c.ctxFunc()

	content := template

	if c.prog != nil {
		var buf bytes.Buffer
		if err := c.prog.Format(ctx, &buf, editIndent); err != nil {
			return fmt.Errorf("format program: %w", err)
		}

		content = buf.String()
	}

	original := xxh3.HashString(content)

	f, err := os.CreateTemp("", pkg.Name+"-repl-*"+pkg.Extension)
	if err != nil {
		return err
	}

	path := f.Name()
	defer os.Remove(path)

	if err := f.Close(); err != nil {
		return err
	}

	for {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			return err
		}

		data, err := c.runEditor(ctx, path)
		if err != nil {
			return err
		}

		if len(bytes.TrimSpace(data)) == 0 {
			return nil
		}

		if xxh3.Hash(data) == original {
			c.unchanged = true

			return nil
		}

		prog, buildErr := lang.ParseString(ctx, string(data), c.opts...)

		c.logger.TraceContext(ctx, "editor build attempt",
			slog.Int("bytes", len(data)),
			slog.Bool("success", buildErr == nil),
		)

		if buildErr == nil {
			c.result = prog

			return nil
		}

		fmt.Fprintf(c.stderr, "\nerror: %s\n", buildErr)
		fmt.Fprint(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		switch strings.ToLower(strings.TrimSpace(scanner.Text())) {
		case "n", "no":
			return ErrEditDeclined
		}

		content = string(data)
	}
}

// runEditor opens path in $EDITOR and returns the saved content. EDITOR may
// include arguments, such as "code --wait".
func (c *editCommand) runEditor(ctx context.Context, path string) ([]byte, error) {
	argv := strings.Fields(env.Str("EDITOR", defaultEditor))
	if len(argv) == 0 {
		argv = []string{defaultEditor}
	}

	cmd := exec.CommandContext(ctx, argv[0], append(argv[1:], path)...)
	cmd.Stdin = c.stdin
	cmd.Stdout = c.stdout
	cmd.Stderr = c.stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("run editor %q: %w", argv[0], err)
	}

	return os.ReadFile(path)
}

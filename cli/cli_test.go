package cli

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ardnew/xfunc/cli/cmd"
	"github.com/ardnew/xfunc/lang"
	"github.com/ardnew/xfunc/markup"
)

const shapes = `<arglist><arg name="r"/></arglist>
<func name="area"><mult arg1="3"><pow arg1="r" arg2="2"/></mult></func>
<func name="twice"><arglist><arg type="int" name="n"/></arglist><add arg1="n" arg2="n"/></func>`

func TestMain(m *testing.M) {
	home, err := os.MkdirTemp("", "xfunc-cli-*")
	if err != nil {
		panic(err)
	}

	for k, v := range map[string]string{
		"HOME":            home,
		"XDG_CONFIG_HOME": filepath.Join(home, "config"),
		"XDG_CACHE_HOME":  filepath.Join(home, "cache"),
		"XFUNC_PATH":      "",
	} {
		os.Setenv(k, v)
	}

	code := m.Run()

	os.RemoveAll(home)
	os.Exit(code)
}

func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer

	err := Run(cmd.WithOutput(t.Context(), &buf), func(code int) {
		t.Fatalf("exit(%d) called", code)
	}, args...)

	return buf.String(), err
}

func TestRun_Eval(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "shapes.xfn"), []byte(shapes), 0o600); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name    string
		args    []string
		want    string
		wantErr error
	}{
		{
			name: "default command",
			args: []string{"-I", dir, "shapes.xfn", "-F", "area", "2"},
			want: "12.0\n",
		},
		{
			name: "explicit command",
			args: []string{"--path", dir, "eval", "-t", "-F", "twice", "shapes.xfn", "21"},
			want: "42 integer\n",
		},
		{
			name: "markup argument",
			args: []string{"eval", `<arglist><arg name="x"/></arglist><neg arg="x"/>`, "1"},
			want: "-1.0\n",
		},
		{
			name:    "missing selector",
			args:    []string{"-I", dir, "eval", "shapes.xfn", "2"},
			wantErr: lang.ErrAmbiguousCall,
		},
		{
			name:    "depth limit",
			args:    []string{"--max-depth=1", "-I", dir, "eval", "-F", "area", "shapes.xfn", "2"},
			wantErr: markup.ErrMaxDepthExceeded,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := runCLI(t, tt.args...)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run error = %v, want %v", err, tt.wantErr)
			}

			if out != tt.want {
				t.Errorf("output = %q, want %q", out, tt.want)
			}
		})
	}
}

func TestRun_List(t *testing.T) {
	out, err := runCLI(t, "list", shapes)
	if err != nil {
		t.Fatalf("Run error: %v", err)
	}

	if want := "0\tarea(double r)\n1\ttwice(int n)\n"; out != want {
		t.Errorf("output = %q, want %q", out, want)
	}
}

func TestRun_InitThenResolve(t *testing.T) {
	if _, err := runCLI(t, "--max-depth=9", "init", "--force"); err != nil {
		t.Fatalf("init error: %v", err)
	}

	data, err := os.ReadFile(configPath(configFile))
	if err != nil {
		t.Fatal(err)
	}

	if !strings.Contains(string(data), "max-depth: 9") {
		t.Fatalf("config file does not record the depth:\n%s", data)
	}

	t.Cleanup(func() { os.Remove(configPath(configFile)) })

	_, err = runCLI(t, "eval", "-F", "area", shapes, "2")
	if err != nil {
		t.Fatalf("eval with generated config: %v", err)
	}
}

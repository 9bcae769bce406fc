package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"
)

type mode int

func (m mode) String() string {
	switch m {
	case 1:
		return "fast"
	default:
		return "slow"
	}
}

type initCLI struct {
	Verbose bool     `help:"Enable verbose output."`
	Output  string   `help:"Output file."`
	Depth   int      `default:"8" help:"Nesting limit."`
	Ratio   float64  `help:"Scale factor."`
	Mode    mode     `help:"Evaluation mode."`
	Path    []string `help:"Search path."`
	Secret  string   `help:"Not written." hidden:""`
	Version kong.VersionFlag
}

// initContext parses args against initCLI with the config path bound to
// confPath.
func initContext(t *testing.T, confPath string, args ...string) context.Context {
	t.Helper()

	var cli initCLI

	parser, err := kong.New(&cli, kong.Vars{ConfigIdentifier: confPath})
	if err != nil {
		t.Fatal(err)
	}

	ktx, err := parser.Parse(args)
	if err != nil {
		t.Fatal(err)
	}

	return WithContext(t.Context(), ktx)
}

func TestInit_Run(t *testing.T) {
	tests := []struct {
		name     string
		force    bool
		existing bool
		wantErr  error
	}{
		{"create", false, false, nil},
		{"overwrite with force", true, true, nil},
		{"exists without force", false, true, ErrFileExists},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			confPath := filepath.Join(t.TempDir(), "config.yaml")

			if tt.existing {
				if err := os.WriteFile(confPath, []byte("stale: true\n"), 0o600); err != nil {
					t.Fatal(err)
				}
			}

			ctx := initContext(t, confPath, "--verbose", "--output=out.txt")

			err := (&Init{Force: tt.force}).Run(ctx)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Run error = %v, want %v", err, tt.wantErr)
			}

			data, err := os.ReadFile(confPath)
			if err != nil {
				t.Fatal(err)
			}

			if tt.wantErr != nil {
				if string(data) != "stale: true\n" {
					t.Errorf("existing file modified: %q", data)
				}

				return
			}

			var got map[string]any
			if err := yaml.Unmarshal(data, &got); err != nil {
				t.Fatalf("invalid YAML %q: %v", data, err)
			}

			if got["verbose"] != true || got["output"] != "out.txt" {
				t.Errorf("unexpected values: %v", got)
			}

			if _, ok := got["stale"]; ok {
				t.Errorf("file was not replaced: %v", got)
			}
		})
	}
}

func TestInit_Values(t *testing.T) {
	ctx := initContext(t, "",
		"--ratio=0.5", "--mode=1", "--path=a,b", "--secret=x",
	)

	items := (&Init{}).values(ctx)

	got := map[string]string{}
	for _, item := range items {
		got[fmt.Sprint(item.Key)] = fmt.Sprint(item.Value)
	}

	want := map[string]string{
		"verbose": "false",
		"depth":   "8",
		"ratio":   "0.5",
		"mode":    "fast",
		"path":    "[a b]",
	}

	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %q, want %q", k, got[k], v)
		}
	}

	for _, k := range []string{"output", "secret", "help", "version"} {
		if _, ok := got[k]; ok {
			t.Errorf("%s written: %v", k, got)
		}
	}

	if items[0].Key != "verbose" {
		t.Errorf("first key = %v, want declaration order", items[0].Key)
	}
}

func TestInit_WriteFailure(t *testing.T) {
	confPath := filepath.Join(t.TempDir(), "missing", "config.yaml")

	err := (&Init{}).Run(initContext(t, confPath))
	if !errors.Is(err, ErrWriteConfig) {
		t.Fatalf("Run error = %v, want %v", err, ErrWriteConfig)
	}

	if !strings.Contains(err.Error(), "config.yaml") {
		t.Errorf("error does not name the file: %v", err)
	}
}

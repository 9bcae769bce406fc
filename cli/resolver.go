package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"github.com/alecthomas/kong"
	"github.com/goccy/go-yaml"

	"github.com/ardnew/xfunc/log"
)

// resolveYAML is a kong configuration loader for YAML files such as the one
// written by the init command:
//
//	kong.Configuration(resolveYAML, "/path/to/config.yaml")
//
// Keys name flags without their leading dashes. Nested mappings are joined
// with hyphens, and underscores are accepted in place of hyphens, so these
// all set --log-level:
//
//	log-level: debug
//	log_level: debug
//	log:
//	  level: debug
//
// Sequences set repeatable flags. A file that is empty or cannot be decoded
// resolves nothing; command-line flags always override file values.
func resolveYAML(r io.Reader) (kong.Resolver, error) {
	var doc map[string]any

	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if !errors.Is(err, io.EOF) {
			log.Warn("ignoring configuration file", slog.Any("error", err))
		}

		return config{}, nil
	}

	c := config{}
	c.flatten("", doc)

	return c, nil
}

// config implements [kong.Resolver] over flattened flag names.
type config map[string]any

// Validate implements [kong.Resolver].
func (config) Validate(*kong.Application) error { return nil }

// Resolve implements [kong.Resolver].
func (c config) Resolve(_ *kong.Context, _ *kong.Path, flag *kong.Flag) (any, error) {
	if v, ok := c[flag.Name]; ok {
		return v, nil
	}

	return nil, nil
}

func (c config) flatten(prefix string, m map[string]any) {
	for k, v := range m {
		key := strings.ReplaceAll(k, "_", "-")
		if prefix != "" {
			key = prefix + "-" + key
		}

		if sub, ok := v.(map[string]any); ok {
			c.flatten(key, sub)

			continue
		}

		if v = scalar(v); v != nil {
			c[key] = v
		}
	}
}

// scalar converts a decoded YAML value to the form kong expects from a
// resolver. Numbers become strings so kong can parse them into the flag's
// own type.
func scalar(v any) any {
	switch t := v.(type) {
	case nil:
		return nil
	case bool, string:
		return t
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case []any:
		items := make([]any, 0, len(t))

		for _, item := range t {
			if s := scalar(item); s != nil {
				items = append(items, fmt.Sprint(s))
			}
		}

		return items
	default:
		return fmt.Sprint(t)
	}
}

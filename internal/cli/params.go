package cli

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/zclconf/go-cty/cty"
	"gopkg.in/yaml.v3"
)

// parseParameters merges a YAML parameters file with NAME=VALUE flags. Flag
// values win over the file. The result is sorted by name.
func parseParameters(pairs []string, file string) ([]build.ParameterValue, error) {
	values := map[string]cty.Value{}

	if file != "" {
		fromFile, err := readParamsFile(file)
		if err != nil {
			return nil, err
		}
		for k, v := range fromFile {
			values[k] = v
		}
	}

	for _, pair := range pairs {
		name, value, ok := strings.Cut(pair, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid parameter '%s': expected NAME=VALUE", pair)
		}
		values[name] = cty.StringVal(value)
	}

	names := make([]string, 0, len(values))
	for name := range values {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]build.ParameterValue, 0, len(names))
	for _, name := range names {
		out = append(out, build.ParameterValue{Name: name, Value: values[name]})
	}
	return out, nil
}

// readParamsFile reads a flat YAML mapping of parameter names to scalars.
func readParamsFile(path string) (map[string]cty.Value, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read parameters file: %w", err)
	}

	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse parameters file %s: %w", path, err)
	}

	out := make(map[string]cty.Value, len(raw))
	for name, v := range raw {
		switch tv := v.(type) {
		case string:
			out[name] = cty.StringVal(tv)
		case int:
			out[name] = cty.NumberIntVal(int64(tv))
		case float64:
			out[name] = cty.NumberFloatVal(tv)
		case bool:
			out[name] = cty.BoolVal(tv)
		default:
			return nil, fmt.Errorf("parameters file %s: value of '%s' must be a string, number or bool", path, name)
		}
	}
	return out, nil
}

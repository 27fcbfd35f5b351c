package proxy

import (
	"fmt"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/zclconf/go-cty/cty/convert"
)

// Reconcile checks supplied values against defs and converts each to its
// declared type, then appends the default of every declared parameter that
// was not supplied, in declaration order. It is meant for the values a build
// starts with; proxies use ConvertValues and only fill defaults the build
// does not already carry.
func Reconcile(defs []model.ParameterDefinition, supplied []build.ParameterValue) ([]build.ParameterValue, error) {
	out, err := ConvertValues(defs, supplied)
	if err != nil {
		return nil, err
	}
	return appendDefaults(defs, out, nil), nil
}

// ConvertValues checks supplied values against defs and converts each to its
// declared type. The first unknown name aborts with
// ErrNoSuchParameterDefinition.
func ConvertValues(defs []model.ParameterDefinition, supplied []build.ParameterValue) ([]build.ParameterValue, error) {
	out := make([]build.ParameterValue, 0, len(supplied))

	for _, v := range supplied {
		def, ok := MatchParameterDefinition(defs, v.Name)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNoSuchParameterDefinition, v.Name)
		}
		converted, err := convert.Convert(v.Value, def.Type)
		if err != nil {
			return nil, fmt.Errorf("parameter %s: value %q is not a valid %s: %w",
				v.Name, build.FormatValue(v.Value), def.Type.FriendlyName(), err)
		}
		out = append(out, build.ParameterValue{Name: v.Name, Value: converted})
	}

	return out, nil
}

// appendDefaults adds the defaults of defs that are neither in values nor in
// set.
func appendDefaults(defs []model.ParameterDefinition, values []build.ParameterValue, set map[string]bool) []build.ParameterValue {
	for _, def := range defs {
		if def.Default == nil || set[def.Name] {
			continue
		}
		if _, supplied := MatchParameterValue(values, def.Name); supplied {
			continue
		}
		values = append(values, build.ParameterValue{Name: def.Name, Value: *def.Default})
	}
	return values
}

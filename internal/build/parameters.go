package build

import (
	"fmt"
	"strings"

	"github.com/zclconf/go-cty/cty"
)

// ParameterValue is a named value supplied to a build.
type ParameterValue struct {
	Name  string
	Value cty.Value
}

// StringValue returns a value for an untyped (string) parameter.
func StringValue(name, value string) ParameterValue {
	return ParameterValue{Name: name, Value: cty.StringVal(value)}
}

// String renders the value the way it is shown in build logs.
func (p ParameterValue) String() string {
	return fmt.Sprintf("%s=%s", p.Name, FormatValue(p.Value))
}

// FormatValue renders a primitive cty value as plain text.
func FormatValue(v cty.Value) string {
	switch {
	case v.IsNull():
		return ""
	case !v.IsKnown():
		return "(unknown)"
	case v.Type() == cty.String:
		return v.AsString()
	case v.Type() == cty.Number:
		return v.AsBigFloat().Text('f', -1)
	case v.Type() == cty.Bool:
		if v.True() {
			return "true"
		}
		return "false"
	default:
		return v.GoString()
	}
}

// Action is a piece of data attached to a build.
type Action interface {
	DisplayName() string
}

// ParametersAction carries parameter values into a build.
type ParametersAction struct {
	Values []ParameterValue

	// owner is the step that attached the action through SetParameters.
	owner any
}

// NewParametersAction copies values into a new action.
func NewParametersAction(values []ParameterValue) *ParametersAction {
	return &ParametersAction{Values: append([]ParameterValue(nil), values...)}
}

// DisplayName implements Action.
func (a *ParametersAction) DisplayName() string {
	parts := make([]string, 0, len(a.Values))
	for _, v := range a.Values {
		parts = append(parts, v.String())
	}
	return "Parameters [" + strings.Join(parts, ", ") + "]"
}

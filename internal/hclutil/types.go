package hclutil

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/zclconf/go-cty/cty"
)

// TypeFromExpr converts an HCL expression that names a parameter type (e.g. the
// `string` keyword) into its cty.Type. Only primitive types are accepted.
func TypeFromExpr(expr hcl.Expression) (cty.Type, hcl.Diagnostics) {
	var diags hcl.Diagnostics

	traversal, hclDiags := hcl.AbsTraversalForExpr(expr)
	if hclDiags.HasErrors() || len(traversal) != 1 {
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Invalid type specification",
			Detail:   "The 'type' attribute must be a simple type keyword like 'string', 'number', or 'bool', not a complex expression.",
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}

	typeName := traversal.RootName()
	switch typeName {
	case "string":
		return cty.String, diags
	case "number":
		return cty.Number, diags
	case "bool":
		return cty.Bool, diags
	case "any", "list", "map", "set", "object", "tuple":
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported parameter type",
			Detail:   fmt.Sprintf("Parameters must be primitive; '%s' cannot be used as a parameter type.", typeName),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	default:
		diags = append(diags, &hcl.Diagnostic{
			Severity: hcl.DiagError,
			Summary:  "Unsupported type",
			Detail:   fmt.Sprintf("The keyword '%s' is not a valid type. Supported types are: string, number, bool.", typeName),
			Subject:  expr.Range().Ptr(),
		})
		return cty.NilType, diags
	}
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines parameter definitions and the parser for the `parameters`
// property block of a project:
//
//	parameters {
//	  parameter "BRANCH" {
//	    type        = string
//	    default     = "main"
//	    description = "Branch to build."
//	  }
//	}
//
// Parameter types reuse cty primitives; there is no separate type system.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/stepproxy/internal/hclutil"
	"github.com/zclconf/go-cty/cty"
)

// ParameterDefinition declares one named, typed input of a project.
type ParameterDefinition struct {
	// Name is taken from the block label, e.g. `parameter "BRANCH" {}`.
	Name string

	// Type is the value type that this parameter is expected to have.
	Type cty.Type

	// Description is an optional human-readable explanation.
	Description string

	// Default is used when a build does not supply a value. Nil means the
	// parameter has no default.
	Default *cty.Value
}

// ParametersProperty is the ordered set of definitions a project declares.
type ParametersProperty struct {
	Definitions []ParameterDefinition
}

var parametersBodySchema = &hcl.BodySchema{
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameter", LabelNames: []string{"name"}},
	},
}

var parameterBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		// `type` is required, but we check for its existence manually
		// to provide a better error message.
		{Name: "type"},
		{Name: "description"},
		{Name: "default"},
	},
}

// parseParametersProperty decodes the optional unique `parameters` block.
// It returns nil when the block is absent.
func parseParametersProperty(blocks hcl.Blocks) (*ParametersProperty, hcl.Diagnostics) {
	block, diags := hclutil.FindUniqueBlock(blocks, "parameters")
	if diags.HasErrors() || block == nil {
		return nil, diags
	}

	content, contentDiags := block.Body.Content(parametersBodySchema)
	diags = append(diags, contentDiags...)
	if contentDiags.HasErrors() {
		return nil, diags
	}

	defs, defDiags := parseParameterDefinitions(content.Blocks)
	diags = append(diags, defDiags...)
	return &ParametersProperty{Definitions: defs}, diags
}

// parseParameterDefinitions decodes `parameter` blocks, keeping declaration order.
func parseParameterDefinitions(blocks hcl.Blocks) ([]ParameterDefinition, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	defs := make([]ParameterDefinition, 0, len(blocks))
	seen := make(map[string]struct{})

	for _, block := range blocks.OfType("parameter") {
		name := block.Labels[0]

		if _, exists := seen[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate parameter definition",
				Detail:   fmt.Sprintf("A parameter named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = struct{}{}

		content, contentDiags := block.Body.Content(parameterBodySchema)
		diags = append(diags, contentDiags...)
		if contentDiags.HasErrors() {
			continue
		}

		typeAttr, exists := content.Attributes["type"]
		if !exists {
			missing := block.Body.MissingItemRange()
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Missing 'type' attribute",
				Detail:   "The 'type' attribute is required for all parameter blocks.",
				Subject:  &missing,
			})
			continue
		}

		ctyType, typeDiags := hclutil.TypeFromExpr(typeAttr.Expr)
		diags = append(diags, typeDiags...)
		if typeDiags.HasErrors() {
			continue
		}

		def := ParameterDefinition{Name: name, Type: ctyType}

		if descAttr, exists := content.Attributes["description"]; exists {
			diags = append(diags, gohcl.DecodeExpression(descAttr.Expr, nil, &def.Description)...)
		}

		if defaultAttr, exists := content.Attributes["default"]; exists {
			// Defaults must be literals, so there is no eval context.
			val, valDiags := defaultAttr.Expr.Value(nil)
			diags = append(diags, valDiags...)
			if valDiags.HasErrors() {
				continue
			}
			if !val.Type().Equals(ctyType) {
				diags = append(diags, &hcl.Diagnostic{
					Severity: hcl.DiagError,
					Summary:  "Invalid default value type",
					Detail:   fmt.Sprintf("The default value for '%s' is not compatible with its type, '%s'.", name, ctyType.FriendlyName()),
					Subject:  defaultAttr.Expr.Range().Ptr(),
				})
				continue
			}
			def.Default = &val
		}

		defs = append(defs, def)
	}

	return defs, diags
}

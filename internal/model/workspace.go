// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file parses workspace files. A workspace file holds any number of item
// blocks; folders nest further item blocks:
//
//	folder "team" {
//	  project "app" { ... }
//	}
//
//	matrix_project "lib" {
//	  axis "jdk" { values = ["17", "21"] }
//	}
//
//	external_job "nightly-report" {}
package model

import (
	"context"
	"fmt"
	"strings"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/specialistvlad/stepproxy/internal/ctxlog"
)

var itemBlockSchemas = []hcl.BlockHeaderSchema{
	{Type: string(KindProject), LabelNames: []string{"name"}},
	{Type: string(KindMatrixProject), LabelNames: []string{"name"}},
	{Type: string(KindFolder), LabelNames: []string{"name"}},
	{Type: string(KindExternalJob), LabelNames: []string{"name"}},
}

var workspaceSchema = &hcl.BodySchema{Blocks: itemBlockSchemas}

var folderBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "description"}},
	Blocks:     itemBlockSchemas,
}

var externalJobBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{{Name: "description"}},
}

var projectBodySchema = &hcl.BodySchema{
	Attributes: []hcl.AttributeSchema{
		{Name: "description"},
		{Name: "disabled"},
	},
	Blocks: []hcl.BlockHeaderSchema{
		{Type: "parameters"},
		{Type: "step", LabelNames: []string{"kind", "name"}},
	},
}

var matrixProjectBodySchema = &hcl.BodySchema{
	Attributes: projectBodySchema.Attributes,
	Blocks: append([]hcl.BlockHeaderSchema{
		{Type: "axis", LabelNames: []string{"name"}},
	}, projectBodySchema.Blocks...),
}

// ParseFile decodes every item declared in a parsed HCL file.
func ParseFile(ctx context.Context, hclFile *hcl.File, filePath string) ([]Item, hcl.Diagnostics) {
	logger := ctxlog.FromContext(ctx)
	logger.Debug("Parsing workspace file", "file_path", filePath)

	if hclFile == nil {
		return nil, hcl.Diagnostics{{
			Severity: hcl.DiagError,
			Summary:  "HCL file is nil",
		}}
	}

	content, diags := hclFile.Body.Content(workspaceSchema)
	if diags.HasErrors() {
		return nil, diags
	}

	items, itemDiags := parseItems(content.Blocks, "", filePath)
	diags = append(diags, itemDiags...)
	if diags.HasErrors() {
		return nil, diags
	}

	logger.Debug("Parsed workspace file", "file_path", filePath, "items", len(items))
	return items, diags
}

func parseItems(blocks hcl.Blocks, parent, filePath string) ([]Item, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var items []Item

	for _, block := range blocks {
		name := block.Labels[0]
		if name == "" || strings.Contains(name, "/") {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Invalid item name",
				Detail:   fmt.Sprintf("Item names must be non-empty and must not contain '/'; got %q.", name),
				Subject:  block.LabelRanges[0].Ptr(),
			})
			continue
		}
		source := NewSource(filePath, block.DefRange)

		var item Item
		var itemDiags hcl.Diagnostics
		switch Kind(block.Type) {
		case KindProject:
			p := NewProject(name, parent, source)
			itemDiags = decodeProject(p, block.Body, projectBodySchema, filePath)
			item = p
		case KindMatrixProject:
			m := NewMatrixProject(name, parent, source)
			itemDiags = decodeMatrixProject(m, block.Body, filePath)
			item = m
		case KindFolder:
			f := NewFolder(name, parent, source)
			itemDiags = decodeFolder(f, block.Body, filePath)
			item = f
		case KindExternalJob:
			e := NewExternalJob(name, parent, source)
			content, contentDiags := block.Body.Content(externalJobBodySchema)
			itemDiags = contentDiags
			if !contentDiags.HasErrors() {
				itemDiags = append(itemDiags, decodeDescription(content, &e.Description)...)
			}
			item = e
		}

		diags = append(diags, itemDiags...)
		if !itemDiags.HasErrors() {
			items = append(items, item)
		}
	}

	return items, diags
}

func decodeDescription(content *hcl.BodyContent, into *string) hcl.Diagnostics {
	attr, exists := content.Attributes["description"]
	if !exists {
		return nil
	}
	return gohcl.DecodeExpression(attr.Expr, nil, into)
}

func decodeProject(p *Project, body hcl.Body, schema *hcl.BodySchema, filePath string) hcl.Diagnostics {
	content, diags := body.Content(schema)
	if diags.HasErrors() {
		return diags
	}
	return decodeProjectContent(p, content, filePath)
}

func decodeProjectContent(p *Project, content *hcl.BodyContent, filePath string) hcl.Diagnostics {
	diags := decodeDescription(content, &p.Description)

	if attr, exists := content.Attributes["disabled"]; exists {
		diags = append(diags, gohcl.DecodeExpression(attr.Expr, nil, &p.Disabled)...)
	}

	var propDiags hcl.Diagnostics
	p.Parameters, propDiags = parseParametersProperty(content.Blocks)
	diags = append(diags, propDiags...)

	var stepDiags hcl.Diagnostics
	p.Steps, stepDiags = parseSteps(content.Blocks, filePath)
	diags = append(diags, stepDiags...)

	return diags
}

func decodeMatrixProject(m *MatrixProject, body hcl.Body, filePath string) hcl.Diagnostics {
	content, diags := body.Content(matrixProjectBodySchema)
	if diags.HasErrors() {
		return diags
	}
	diags = append(diags, decodeProjectContent(&m.Project, content, filePath)...)

	var axisDiags hcl.Diagnostics
	m.Axes, axisDiags = parseAxes(content.Blocks)
	diags = append(diags, axisDiags...)
	return diags
}

func decodeFolder(f *Folder, body hcl.Body, filePath string) hcl.Diagnostics {
	content, diags := body.Content(folderBodySchema)
	if diags.HasErrors() {
		return diags
	}
	diags = append(diags, decodeDescription(content, &f.Description)...)

	children, childDiags := parseItems(content.Blocks, f.FullName(), filePath)
	diags = append(diags, childDiags...)
	f.Items = children
	return diags
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
	"github.com/hashicorp/hcl/v2/gohcl"
)

// Axis is one dimension of a matrix project.
type Axis struct {
	Name   string
	Values []string
}

// MatrixProject runs its steps once per combination of axis values. As a
// proxy target it behaves like a plain project: its steps are replayed once.
type MatrixProject struct {
	Project

	Axes []Axis
}

// NewMatrixProject creates an empty matrix project under parent.
func NewMatrixProject(name, parent string, source *Source) *MatrixProject {
	return &MatrixProject{Project: Project{itemBase: newItemBase(name, parent, source)}}
}

// Kind implements Item.
func (m *MatrixProject) Kind() Kind { return KindMatrixProject }

// Combinations returns every assignment of axis values, with the first axis
// varying slowest. A matrix without axes has exactly one empty combination.
func (m *MatrixProject) Combinations() []map[string]string {
	combos := []map[string]string{{}}
	for _, axis := range m.Axes {
		next := make([]map[string]string, 0, len(combos)*len(axis.Values))
		for _, combo := range combos {
			for _, v := range axis.Values {
				c := make(map[string]string, len(combo)+1)
				for k, kv := range combo {
					c[k] = kv
				}
				c[axis.Name] = v
				next = append(next, c)
			}
		}
		combos = next
	}
	return combos
}

type hclAxis struct {
	Values []string `hcl:"values"`
}

func parseAxes(blocks hcl.Blocks) ([]Axis, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	var axes []Axis
	seen := make(map[string]struct{})

	for _, block := range blocks.OfType("axis") {
		name := block.Labels[0]
		if _, exists := seen[name]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate axis",
				Detail:   fmt.Sprintf("An axis named '%s' has already been defined.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[name] = struct{}{}

		var decoded hclAxis
		decodeDiags := gohcl.DecodeBody(block.Body, nil, &decoded)
		diags = append(diags, decodeDiags...)
		if decodeDiags.HasErrors() {
			continue
		}
		if len(decoded.Values) == 0 {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Empty axis",
				Detail:   fmt.Sprintf("Axis '%s' must declare at least one value.", name),
				Subject:  &block.DefRange,
			})
			continue
		}
		axes = append(axes, Axis{Name: name, Values: decoded.Values})
	}

	return axes, diags
}

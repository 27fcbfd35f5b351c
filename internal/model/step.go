// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines BuildStep, the declaration of one build step inside a
// project:
//
//	step "shell" "compile" {
//	  command = "make ${param.TARGET}"
//	}
//
// The body is kept as a raw hcl.Body. It is checked against the step kind's
// schema when the workspace is loaded and decoded against the running build's
// parameters when the step performs.
package model

import (
	"github.com/hashicorp/hcl/v2"
)

// BuildStep is the declaration of a single step of a project.
type BuildStep struct {
	Kind   string
	Name   string
	Source *Source
	Body   hcl.Body
}

// ID is "kind.name", unique within a project.
func (s *BuildStep) ID() string {
	return s.Kind + "." + s.Name
}

func parseSteps(blocks hcl.Blocks, filePath string) ([]*BuildStep, hcl.Diagnostics) {
	var diags hcl.Diagnostics
	steps := make([]*BuildStep, 0)
	seen := make(map[string]struct{})

	for _, block := range blocks.OfType("step") {
		step := &BuildStep{
			Kind:   block.Labels[0],
			Name:   block.Labels[1],
			Source: NewSource(filePath, block.DefRange),
			Body:   block.Body,
		}
		if _, exists := seen[step.ID()]; exists {
			diags = append(diags, &hcl.Diagnostic{
				Severity: hcl.DiagError,
				Summary:  "Duplicate step",
				Detail:   "A step \"" + step.Kind + "\" \"" + step.Name + "\" has already been declared in this project.",
				Subject:  &block.DefRange,
			})
			continue
		}
		seen[step.ID()] = struct{}{}
		steps = append(steps, step)
	}

	return steps, diags
}

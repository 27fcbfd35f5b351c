// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"github.com/specialistvlad/stepproxy/internal/build"
)

// Project is a freestyle project: an ordered list of build steps plus an
// optional parameters property.
type Project struct {
	itemBase

	Description string
	Disabled    bool
	Parameters  *ParametersProperty
	Steps       []*BuildStep

	builders []build.Builder
}

// NewProject creates an empty project under parent ("" for the root).
func NewProject(name, parent string, source *Source) *Project {
	return &Project{itemBase: newItemBase(name, parent, source)}
}

// Kind implements Item.
func (p *Project) Kind() Kind { return KindProject }

// ParameterDefinitions implements Parameterized.
func (p *Project) ParameterDefinitions() ([]ParameterDefinition, bool) {
	if p.Parameters == nil {
		return nil, false
	}
	return append([]ParameterDefinition(nil), p.Parameters.Definitions...), true
}

// StepDeclarations returns the declared steps, in order.
func (p *Project) StepDeclarations() []*BuildStep {
	return p.Steps
}

// SetBuilders installs the instantiated steps. The registry calls it once the
// whole workspace has been loaded.
func (p *Project) SetBuilders(builders []build.Builder) {
	p.builders = append([]build.Builder(nil), builders...)
}

// Builders implements Buildable.
func (p *Project) Builders() []build.Builder {
	return append([]build.Builder(nil), p.builders...)
}

// IsDisabled reports whether the project refuses new builds.
func (p *Project) IsDisabled() bool {
	return p.Disabled
}

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

import (
	"github.com/specialistvlad/stepproxy/internal/build"
)

// Kind names the HCL block an item was declared with.
type Kind string

const (
	KindProject       Kind = "project"
	KindMatrixProject Kind = "matrix_project"
	KindFolder        Kind = "folder"
	KindExternalJob   Kind = "external_job"
)

// Item is an entry of the item registry.
type Item interface {
	Name() string
	FullName() string
	Kind() Kind
	Source() *Source
}

// Buildable is implemented by items that own an ordered list of build steps.
type Buildable interface {
	Item
	Builders() []build.Builder
}

// Parameterized is implemented by items that may carry a parameters property.
// ok is false when the item has no such property.
type Parameterized interface {
	Item
	ParameterDefinitions() (defs []ParameterDefinition, ok bool)
}

// ItemGroup is implemented by items that contain other items.
type ItemGroup interface {
	Item
	Children() []Item
}

// itemBase carries the fields every item shares.
type itemBase struct {
	name     string
	fullName string
	source   *Source
}

func newItemBase(name, parent string, source *Source) itemBase {
	fullName := name
	if parent != "" {
		fullName = parent + "/" + name
	}
	return itemBase{name: name, fullName: fullName, source: source}
}

// Name is the item's own name.
func (i *itemBase) Name() string { return i.name }

// FullName is the slash separated path of the item from the workspace root.
func (i *itemBase) FullName() string { return i.fullName }

// Source is where the item was declared.
func (i *itemBase) Source() *Source { return i.source }

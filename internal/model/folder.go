// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
package model

// Folder groups other items. It is not buildable.
type Folder struct {
	itemBase

	Description string
	Items       []Item
}

// NewFolder creates an empty folder under parent.
func NewFolder(name, parent string, source *Source) *Folder {
	return &Folder{itemBase: newItemBase(name, parent, source)}
}

// Kind implements Item.
func (f *Folder) Kind() Kind { return KindFolder }

// Children implements ItemGroup.
func (f *Folder) Children() []Item {
	return append([]Item(nil), f.Items...)
}

// ExternalJob records the outcome of work run outside the host. It has no
// build steps and cannot be a proxy target.
type ExternalJob struct {
	itemBase

	Description string
}

// NewExternalJob creates an external job under parent.
func NewExternalJob(name, parent string, source *Source) *ExternalJob {
	return &ExternalJob{itemBase: newItemBase(name, parent, source)}
}

// Kind implements Item.
func (e *ExternalJob) Kind() Kind { return KindExternalJob }

// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// Package model provides the Go representation of a workspace: the projects,
// folders and jobs declared in HCL files and registered with the host.
//
// # Core Concepts
//
//   - Item: anything addressable by name in the item registry. Items nested in
//     a folder have a full name of the form "folder/child".
//
//   - Project: a buildable item. It owns an ordered list of build steps and,
//     optionally, a parameters property declaring typed parameters.
//
//   - MatrixProject: a project whose steps run once per combination of its
//     axis values.
//
//   - Folder and ExternalJob: items that are not buildable. A proxy step can
//     name them, but they never contribute build steps.
//
// Capabilities are expressed as small interfaces (Buildable, Parameterized)
// rather than by switching on concrete types, so new project kinds only need
// to implement the capability to be usable as a proxy target.
package model

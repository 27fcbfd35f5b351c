// SPDX-License-Identifier: MIT
// Copyright (c) 2025 Vladyslav Kazantsev
//
// This file defines Source, which links a parsed item back to the file and
// range it was declared in. It is used in error messages and in `list` output.
package model

import (
	"fmt"

	"github.com/hashicorp/hcl/v2"
)

// Source is the location an item or step was declared at.
type Source struct {
	FilePath string
	Range    hcl.Range
}

// NewSource creates a Source for a declaration range.
func NewSource(filePath string, rng hcl.Range) *Source {
	return &Source{
		FilePath: filePath,
		Range:    rng,
	}
}

func (s *Source) String() string {
	if s == nil {
		return "<unknown>"
	}
	return fmt.Sprintf("%s:%d", s.FilePath, s.Range.Start.Line)
}

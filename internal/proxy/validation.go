package proxy

import (
	"fmt"
	"sort"

	"github.com/agext/levenshtein"
	"github.com/specialistvlad/stepproxy/internal/model"
	"github.com/specialistvlad/stepproxy/internal/security"
)

// ValidationKind is the outcome of a configuration check.
type ValidationKind string

const (
	ValidationOK    ValidationKind = "ok"
	ValidationError ValidationKind = "error"
)

// Validation is the result of a configuration check, shaped for form
// validation in a UI.
type Validation struct {
	Kind    ValidationKind `json:"kind"`
	Message string         `json:"message,omitempty"`
}

// OK reports whether the check passed.
func (v Validation) OK() bool {
	return v.Kind == ValidationOK
}

func validationError(format string, args ...any) Validation {
	return Validation{Kind: ValidationError, Message: fmt.Sprintf(format, args...)}
}

// CheckProjectName validates a candidate target name. Callers without the
// configure permission always get OK so that the check leaks nothing about
// the workspace.
func (r *Resolver) CheckProjectName(acl security.AccessControlled, value string) Validation {
	if !acl.HasPermission(security.Configure) {
		return Validation{Kind: ValidationOK}
	}

	item, ok := r.items.ItemByFullName(value)
	if !ok {
		if nearest := r.NearestProject(value); nearest != "" {
			return validationError("No such project ‘%s’. Did you mean ‘%s’?", value, nearest)
		}
		return validationError("No such project ‘%s’.", value)
	}
	if _, ok := item.(model.Buildable); !ok {
		return validationError("‘%s’ is not buildable", value)
	}
	return Validation{Kind: ValidationOK}
}

// NearestProject returns the buildable project whose full name is closest to
// name by edit distance, or "" when there are no projects. Ties go to the
// alphabetically first name.
func (r *Resolver) NearestProject(name string) string {
	var candidates []string
	for _, item := range r.items.AllItems() {
		if _, ok := item.(model.Buildable); ok {
			candidates = append(candidates, item.FullName())
		}
	}
	sort.Strings(candidates)

	best, bestDist := "", -1
	for _, c := range candidates {
		d := levenshtein.Distance(name, c, nil)
		if bestDist < 0 || d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

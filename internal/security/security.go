// Package security models the subset of the host permission model that step
// configuration checks need: named permissions and a principal holding them.
package security

import (
	"sort"
	"strings"
)

// Permission is a named right on an item.
type Permission string

const (
	Read      Permission = "read"
	Build     Permission = "build"
	Configure Permission = "configure"
)

// AccessControlled is anything that can answer permission checks for the
// current principal.
type AccessControlled interface {
	HasPermission(p Permission) bool
}

// Principal is a caller with a fixed set of permissions.
type Principal struct {
	Name        string
	permissions map[Permission]struct{}
}

// NewPrincipal creates a principal holding perms.
func NewPrincipal(name string, perms ...Permission) *Principal {
	p := &Principal{Name: name, permissions: make(map[Permission]struct{}, len(perms))}
	for _, perm := range perms {
		p.permissions[perm] = struct{}{}
	}
	return p
}

// ParsePermissions reads a comma separated permission list such as
// "read,configure". Blank entries are ignored.
func ParsePermissions(s string) []Permission {
	var perms []Permission
	for _, part := range strings.Split(s, ",") {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			perms = append(perms, Permission(part))
		}
	}
	return perms
}

// HasPermission implements AccessControlled.
func (p *Principal) HasPermission(perm Permission) bool {
	_, ok := p.permissions[perm]
	return ok
}

// Permissions returns the held permissions, sorted.
func (p *Principal) Permissions() []Permission {
	out := make([]Permission, 0, len(p.permissions))
	for perm := range p.permissions {
		out = append(out, perm)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

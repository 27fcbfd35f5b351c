package proxy

import (
	"fmt"

	"github.com/specialistvlad/stepproxy/internal/build"
	"github.com/specialistvlad/stepproxy/internal/model"
)

// ItemLookup is the part of the host item registry the resolver reads.
type ItemLookup interface {
	Item(name string) (model.Item, bool)
	ItemByFullName(fullName string) (model.Item, bool)
	AllItems() []model.Item
}

// Resolver finds proxy targets.
type Resolver struct {
	items ItemLookup
}

// NewResolver creates a resolver over the given registry.
func NewResolver(items ItemLookup) *Resolver {
	return &Resolver{items: items}
}

// lookup tries the top-level name first, then the full name.
func (r *Resolver) lookup(name string) (model.Item, bool) {
	if item, ok := r.items.Item(name); ok {
		return item, true
	}
	return r.items.ItemByFullName(name)
}

// ResolveProject returns the buildable project called name.
func (r *Resolver) ResolveProject(name string) (model.Buildable, error) {
	item, ok := r.lookup(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	project, ok := item.(model.Buildable)
	if !ok {
		return nil, fmt.Errorf("%w: %s is a %s", ErrNotBuildable, name, item.Kind())
	}
	return project, nil
}

// ParameterDefinitions returns the target's declared parameters, or nothing
// when the target is missing or has no parameters property.
func (r *Resolver) ParameterDefinitions(name string) []model.ParameterDefinition {
	item, ok := r.lookup(name)
	if !ok {
		return nil
	}
	p, ok := item.(model.Parameterized)
	if !ok {
		return nil
	}
	defs, _ := p.ParameterDefinitions()
	return defs
}

// BuildSteps returns the target's build steps in declared order, or nothing
// when the target is missing or not a buildable kind.
func (r *Resolver) BuildSteps(name string) []build.Builder {
	project, err := r.ResolveProject(name)
	if err != nil {
		return nil
	}
	return project.Builders()
}

// MatchParameterValue returns the first value named name.
func MatchParameterValue(values []build.ParameterValue, name string) (build.ParameterValue, bool) {
	for _, v := range values {
		if v.Name == name {
			return v, true
		}
	}
	return build.ParameterValue{}, false
}

// MatchParameterDefinition returns the first definition named name.
func MatchParameterDefinition(defs []model.ParameterDefinition, name string) (model.ParameterDefinition, bool) {
	for _, d := range defs {
		if d.Name == name {
			return d, true
		}
	}
	return model.ParameterDefinition{}, false
}

package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/specialistvlad/stepproxy/internal/handlers"
	"github.com/specialistvlad/stepproxy/internal/model"
)

// Registry holds the loaded items of one workspace.
type Registry struct {
	handlers *handlers.Handlers

	mu     sync.RWMutex
	top    map[string]model.Item
	byFull map[string]model.Item
	order  []string
}

// New creates an empty registry that instantiates steps with h.
func New(h *handlers.Handlers) *Registry {
	return &Registry{
		handlers: h,
		top:      make(map[string]model.Item),
		byFull:   make(map[string]model.Item),
	}
}

// Item looks up a top-level item by its name.
func (r *Registry) Item(name string) (model.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.top[name]
	return item, ok
}

// ItemByFullName looks up an item at any depth by its full name.
func (r *Registry) ItemByFullName(fullName string) (model.Item, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	item, ok := r.byFull[fullName]
	return item, ok
}

// AllItems returns every item, folders' children included, in load order.
func (r *Registry) AllItems() []model.Item {
	r.mu.RLock()
	defer r.mu.RUnlock()
	items := make([]model.Item, 0, len(r.order))
	for _, name := range r.order {
		items = append(items, r.byFull[name])
	}
	return items
}

// Projects returns every buildable item, sorted by full name.
func (r *Registry) Projects() []model.Buildable {
	var projects []model.Buildable
	for _, item := range r.AllItems() {
		if b, ok := item.(model.Buildable); ok {
			projects = append(projects, b)
		}
	}
	sort.Slice(projects, func(i, j int) bool {
		return projects[i].FullName() < projects[j].FullName()
	})
	return projects
}

// Put adds or replaces a top-level item and its descendants. A full name
// that collides with another item is an error and leaves the registry
// unchanged.
func (r *Registry) Put(item model.Item) error {
	if item.FullName() != item.Name() {
		return fmt.Errorf("item '%s' is not a top-level item", item.FullName())
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	freed := map[string]bool{}
	existing, replacing := r.top[item.Name()]
	if replacing {
		for _, it := range flatten(existing) {
			freed[it.FullName()] = true
		}
	}

	incoming := flatten(item)
	seen := make(map[string]model.Item, len(incoming))
	for _, it := range incoming {
		prev, dup := seen[it.FullName()]
		if !dup {
			if p, ok := r.byFull[it.FullName()]; ok && !freed[it.FullName()] {
				prev, dup = p, true
			}
		}
		if dup {
			return fmt.Errorf("duplicate item '%s': declared at %s and %s",
				it.FullName(), prev.Source(), it.Source())
		}
		seen[it.FullName()] = it
	}

	if replacing {
		r.removeLocked(existing)
	}
	for _, it := range incoming {
		r.byFull[it.FullName()] = it
		r.order = append(r.order, it.FullName())
	}
	r.top[item.Name()] = item
	return nil
}

// Remove deletes a top-level item and its descendants. It reports whether the
// item existed.
func (r *Registry) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	item, ok := r.top[name]
	if !ok {
		return false
	}
	r.removeLocked(item)
	delete(r.top, name)
	return true
}

// flatten returns item followed by all of its descendants, depth first.
func flatten(item model.Item) []model.Item {
	out := []model.Item{item}
	if group, ok := item.(model.ItemGroup); ok {
		for _, child := range group.Children() {
			out = append(out, flatten(child)...)
		}
	}
	return out
}

func (r *Registry) removeLocked(item model.Item) {
	for _, it := range flatten(item) {
		delete(r.byFull, it.FullName())
		for i, name := range r.order {
			if name == it.FullName() {
				r.order = append(r.order[:i], r.order[i+1:]...)
				break
			}
		}
	}
}

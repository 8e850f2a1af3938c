// Package registry holds bound hybrid units. Each Loader owns one Units
// registry, so binding never touches process-wide state.
package registry

import (
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.starlark.net/starlark"
)

// Unit is an executed script bound under a name.
type Unit struct {
	ID      uuid.UUID
	Name    string
	Path    string              // file the unit was compiled from
	Globals starlark.StringDict // frozen module globals
	BoundAt time.Time
}

// Lookup returns the global bound to attr.
func (u *Unit) Lookup(attr string) (starlark.Value, bool) {
	v, ok := u.Globals[attr]
	return v, ok
}

// Units maps names to bound units.
type Units struct {
	mu sync.RWMutex

	// byName maps a registration name to its unit.
	// Note: registering the same name twice replaces the earlier unit
	byName map[string]*Unit

	// byID indexes the units in byName; replaced units are dropped from both
	byID map[uuid.UUID]*Unit
}

// NewUnits creates a new empty registry.
func NewUnits() *Units {
	return &Units{
		byName: make(map[string]*Unit),
		byID:   make(map[uuid.UUID]*Unit),
	}
}

// Register binds globals under name and returns the new unit. A unit
// previously registered under name is forgotten; only the Module that bound
// it keeps a reference.
func (r *Units) Register(name, path string, globals starlark.StringDict) *Unit {
	unit := &Unit{
		ID:      uuid.New(),
		Name:    name,
		Path:    path,
		Globals: globals,
		BoundAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if old, ok := r.byName[name]; ok {
		delete(r.byID, old.ID)
	}
	r.byName[name] = unit
	r.byID[unit.ID] = unit
	return unit
}

// Get returns the unit currently registered under name.
func (r *Units) Get(name string) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.byName[name]
	return unit, ok
}

// GetByID returns the unit with the given ID.
func (r *Units) GetByID(id uuid.UUID) (*Unit, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	unit, ok := r.byID[id]
	return unit, ok
}

// Remove drops the unit registered under name.
func (r *Units) Remove(name string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	unit, ok := r.byName[name]
	if !ok {
		return false
	}
	delete(r.byName, name)
	delete(r.byID, unit.ID)
	return true
}

// All returns the currently registered units sorted by name.
func (r *Units) All() []*Unit {
	r.mu.RLock()
	defer r.mu.RUnlock()

	units := make([]*Unit, 0, len(r.byName))
	for _, unit := range r.byName {
		units = append(units, unit)
	}
	sort.Slice(units, func(i, j int) bool { return units[i].Name < units[j].Name })
	return units
}

// Count returns the number of registered names.
func (r *Units) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}

package dashboard

import (
	"sync"
	"time"
)

// StateChange is delivered to engine subscribers after every update.
type StateChange struct {
	Previous FilterState
	Current  FilterState
	Field    Field
	Reset    bool
	Version  uint64
}

// FilterOptions holds the dependent dropdown contents for one state snapshot.
type FilterOptions struct {
	Regions       []LocationNode `json:"regions"`
	Districts     []LocationNode `json:"districts"`
	Branches      []LocationNode `json:"branches"`
	Categories    []Category     `json:"categories"`
	SubCategories []Subcategory  `json:"sub_categories"`
}

// Engine owns a FilterState and derives the cascading option lists from it.
// Updates are applied through Reduce under a lock, so readers only ever observe
// complete states.
type Engine struct {
	mu        sync.RWMutex
	state     FilterState
	version   uint64
	hierarchy LocationHierarchy
	catalog   *CategoryCatalog

	subMu sync.RWMutex
	subs  map[int]func(StateChange)
	next  int
}

// NewEngine builds an engine with the default all-inclusive state.
func NewEngine(hierarchy LocationHierarchy, catalog *CategoryCatalog) *Engine {
	return &Engine{
		state:     DefaultFilterState(),
		hierarchy: hierarchy,
		catalog:   catalog,
		subs:      map[int]func(StateChange){},
	}
}

// State returns a copy of the current selection.
func (e *Engine) State() FilterState {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone()
}

// Version increases on every update, including resets.
func (e *Engine) Version() uint64 {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.version
}

// Snapshot returns state and version read together.
func (e *Engine) Snapshot() (FilterState, uint64) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state.Clone(), e.version
}

// Apply runs change through Reduce and notifies subscribers.
func (e *Engine) Apply(change Change) FilterState {
	e.mu.Lock()
	prev := e.state
	e.state = Reduce(prev, change)
	e.version++
	evt := StateChange{Previous: prev, Current: e.state.Clone(), Field: change.Field, Version: e.version}
	e.mu.Unlock()
	e.publish(evt)
	return evt.Current
}

func (e *Engine) SetRegion(value string) FilterState {
	return e.Apply(Change{Field: FieldRegion, Value: value})
}

func (e *Engine) SetDistrict(value string) FilterState {
	return e.Apply(Change{Field: FieldDistrict, Value: value})
}

func (e *Engine) SetBranch(value string) FilterState {
	return e.Apply(Change{Field: FieldBranch, Value: value})
}

func (e *Engine) SetServiceType(value string) FilterState {
	return e.Apply(Change{Field: FieldServiceType, Value: value})
}

func (e *Engine) SetSentiment(value string) FilterState {
	return e.Apply(Change{Field: FieldSentiment, Value: value})
}

func (e *Engine) SetMainCategory(value string) FilterState {
	return e.Apply(Change{Field: FieldMainCategory, Value: value})
}

func (e *Engine) SetSubCategory(value string) FilterState {
	return e.Apply(Change{Field: FieldSubCategory, Value: value})
}

// SetDateRange restricts records to [from, to]. Passing two zero times clears the window.
func (e *Engine) SetDateRange(from, to time.Time) FilterState {
	return e.Apply(Change{Field: FieldDateRange, Range: &DateRange{From: from, To: to}})
}

func (e *Engine) SetSearchText(value string) FilterState {
	return e.Apply(Change{Field: FieldSearchText, Value: value})
}

// Reset returns every field to its default in one update.
func (e *Engine) Reset() FilterState {
	e.mu.Lock()
	prev := e.state
	e.state = DefaultFilterState()
	e.version++
	evt := StateChange{Previous: prev, Current: e.state.Clone(), Reset: true, Version: e.version}
	e.mu.Unlock()
	e.publish(evt)
	return evt.Current
}

// AvailableRegions lists every region.
func (e *Engine) AvailableRegions() []LocationNode {
	return e.childrenOf(LevelRegion, "")
}

// AvailableDistricts lists districts of the selected region; empty when no region is selected.
func (e *Engine) AvailableDistricts() []LocationNode {
	return e.childrenOf(LevelDistrict, e.State().Region)
}

// AvailableBranches lists branches of the selected district; empty when no district is selected.
func (e *Engine) AvailableBranches() []LocationNode {
	return e.childrenOf(LevelBranch, e.State().District)
}

// AvailableSubCategories lists subcategories of the selected main category.
func (e *Engine) AvailableSubCategories() []Subcategory {
	return e.subCategories(e.State().MainCategory)
}

// Options computes every dependent list from a single snapshot.
func (e *Engine) Options() FilterOptions {
	return e.optionsFor(e.State())
}

func (e *Engine) optionsFor(state FilterState) FilterOptions {
	return FilterOptions{
		Regions:       e.childrenOf(LevelRegion, ""),
		Districts:     e.childrenOf(LevelDistrict, state.Region),
		Branches:      e.childrenOf(LevelBranch, state.District),
		Categories:    e.catalog.Categories(),
		SubCategories: e.subCategories(state.MainCategory),
	}
}

// Subscribe registers fn for state changes and returns a cancel func.
func (e *Engine) Subscribe(fn func(StateChange)) func() {
	e.subMu.Lock()
	defer e.subMu.Unlock()
	id := e.next
	e.next++
	e.subs[id] = fn
	return func() {
		e.subMu.Lock()
		defer e.subMu.Unlock()
		delete(e.subs, id)
	}
}

func (e *Engine) publish(evt StateChange) {
	e.subMu.RLock()
	listeners := make([]func(StateChange), 0, len(e.subs))
	for _, fn := range e.subs {
		listeners = append(listeners, fn)
	}
	e.subMu.RUnlock()
	for _, fn := range listeners {
		fn(evt)
	}
}

func (e *Engine) childrenOf(level Level, parent string) []LocationNode {
	if e.hierarchy == nil {
		return []LocationNode{}
	}
	if level != LevelRegion && isAll(parent) {
		return []LocationNode{}
	}
	return e.hierarchy.ChildrenOf(level, parent)
}

func (e *Engine) subCategories(main string) []Subcategory {
	if isAll(main) {
		return []Subcategory{}
	}
	return e.catalog.Subcategories(main)
}

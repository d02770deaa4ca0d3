package dashboard

import (
	"fmt"
	"sort"
)

// HierarchyOption customizes a StaticHierarchy.
type HierarchyOption func(*StaticHierarchy)

// WithBusinessOrder sorts siblings by their Order field before falling back to label.
func WithBusinessOrder() HierarchyOption {
	return func(h *StaticHierarchy) {
		h.businessOrder = true
	}
}

// StaticHierarchy is an immutable, in-memory location tree loaded once at startup.
type StaticHierarchy struct {
	nodes         map[string]LocationNode
	roots         []LocationNode
	children      map[string][]LocationNode
	businessOrder bool
}

var _ LocationHierarchy = (*StaticHierarchy)(nil)

// NewStaticHierarchy indexes nodes and checks that every non-root node hangs off
// an existing parent exactly one level above it.
func NewStaticHierarchy(nodes []LocationNode, opts ...HierarchyOption) (*StaticHierarchy, error) {
	h := &StaticHierarchy{
		nodes:    make(map[string]LocationNode, len(nodes)),
		children: map[string][]LocationNode{},
	}
	for _, opt := range opts {
		opt(h)
	}
	for _, node := range nodes {
		if node.ID == "" {
			return nil, fmt.Errorf("dashboard: location node %q is missing an id", node.Label)
		}
		if node.ID == All {
			return nil, fmt.Errorf("dashboard: location id %q is reserved", All)
		}
		if _, exists := h.nodes[node.ID]; exists {
			return nil, fmt.Errorf("dashboard: duplicate location id %s", node.ID)
		}
		if node.Label == "" {
			node.Label = node.ID
		}
		h.nodes[node.ID] = node
	}
	for _, node := range nodes {
		node = h.nodes[node.ID]
		switch node.Level {
		case LevelRegion:
			if node.ParentID != "" {
				return nil, fmt.Errorf("dashboard: region %s cannot have a parent", node.ID)
			}
			h.roots = append(h.roots, node)
		case LevelDistrict, LevelBranch:
			parent, ok := h.nodes[node.ParentID]
			if !ok {
				return nil, fmt.Errorf("dashboard: %s %s references unknown parent %q", node.Level, node.ID, node.ParentID)
			}
			if parent.Level != node.Level.parent() {
				return nil, fmt.Errorf("dashboard: %s %s must hang off a %s, got %s", node.Level, node.ID, node.Level.parent(), parent.Level)
			}
			h.children[node.ParentID] = append(h.children[node.ParentID], node)
		default:
			return nil, fmt.Errorf("dashboard: location %s has unknown level %q", node.ID, node.Level)
		}
	}
	h.sortSiblings(h.roots)
	for _, list := range h.children {
		h.sortSiblings(list)
	}
	return h, nil
}

// ChildrenOf returns the nodes at level whose parent is parentID. Regions ignore
// parentID. Wildcard, empty and unknown parents yield an empty slice.
func (h *StaticHierarchy) ChildrenOf(level Level, parentID string) []LocationNode {
	if h == nil {
		return []LocationNode{}
	}
	if level == LevelRegion {
		return cloneNodes(h.roots)
	}
	if parentID == "" || parentID == All {
		return []LocationNode{}
	}
	parent, ok := h.nodes[parentID]
	if !ok || parent.Level != level.parent() {
		return []LocationNode{}
	}
	return cloneNodes(h.children[parentID])
}

// Node looks up a location by id.
func (h *StaticHierarchy) Node(id string) (LocationNode, bool) {
	if h == nil {
		return LocationNode{}, false
	}
	node, ok := h.nodes[id]
	return node, ok
}

// Label returns the display label for id, or id itself when unknown.
func (h *StaticHierarchy) Label(id string) string {
	if node, ok := h.Node(id); ok {
		return node.Label
	}
	return id
}

// Contains reports whether path is consistent with the tree: the region exists,
// the district (if set) belongs to it, and the branch (if set) belongs to the district.
func (h *StaticHierarchy) Contains(path LocationPath) bool {
	region, ok := h.Node(path.Region)
	if !ok || region.Level != LevelRegion {
		return false
	}
	if path.District == "" {
		return path.Branch == ""
	}
	district, ok := h.Node(path.District)
	if !ok || district.Level != LevelDistrict || district.ParentID != region.ID {
		return false
	}
	if path.Branch == "" {
		return true
	}
	branch, ok := h.Node(path.Branch)
	return ok && branch.Level == LevelBranch && branch.ParentID == district.ID
}

// Nodes returns every node, regions first, each level in sibling order.
func (h *StaticHierarchy) Nodes() []LocationNode {
	out := make([]LocationNode, 0, len(h.nodes))
	var walk func(list []LocationNode)
	walk = func(list []LocationNode) {
		for _, node := range list {
			out = append(out, node)
			walk(h.children[node.ID])
		}
	}
	walk(h.roots)
	return out
}

func (h *StaticHierarchy) sortSiblings(list []LocationNode) {
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if h.businessOrder && a.Order != b.Order {
			return a.Order < b.Order
		}
		if a.Label != b.Label {
			return a.Label < b.Label
		}
		return a.ID < b.ID
	})
}

func cloneNodes(nodes []LocationNode) []LocationNode {
	out := make([]LocationNode, len(nodes))
	copy(out, nodes)
	return out
}

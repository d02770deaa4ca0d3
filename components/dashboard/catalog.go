package dashboard

import "fmt"

// Category is a top-level sentiment topic (staff, technology, ...).
type Category struct {
	Key           string        `json:"key" yaml:"key"`
	Label         string        `json:"label" yaml:"label"`
	Subcategories []Subcategory `json:"subcategories,omitempty" yaml:"subcategories,omitempty"`
}

// Subcategory is a fine-grained topic scored in FeedbackRecord.DetailedSentiment.
type Subcategory struct {
	Key   string `json:"key" yaml:"key"`
	Label string `json:"label" yaml:"label"`
}

// CategoryCatalog keeps categories in their business order and indexes subcategories.
type CategoryCatalog struct {
	categories []Category
	index      map[string]int
	subParent  map[string]string
}

// NewCategoryCatalog validates key uniqueness across categories and subcategories.
func NewCategoryCatalog(categories []Category) (*CategoryCatalog, error) {
	c := &CategoryCatalog{
		categories: make([]Category, 0, len(categories)),
		index:      make(map[string]int, len(categories)),
		subParent:  map[string]string{},
	}
	for _, cat := range categories {
		if cat.Key == "" || cat.Key == All {
			return nil, fmt.Errorf("dashboard: invalid category key %q", cat.Key)
		}
		if _, exists := c.index[cat.Key]; exists {
			return nil, fmt.Errorf("dashboard: duplicate category %s", cat.Key)
		}
		if cat.Label == "" {
			cat.Label = cat.Key
		}
		subs := make([]Subcategory, 0, len(cat.Subcategories))
		for _, sub := range cat.Subcategories {
			if sub.Key == "" || sub.Key == All {
				return nil, fmt.Errorf("dashboard: category %s has invalid subcategory key %q", cat.Key, sub.Key)
			}
			if owner, exists := c.subParent[sub.Key]; exists {
				return nil, fmt.Errorf("dashboard: subcategory %s already belongs to %s", sub.Key, owner)
			}
			if sub.Label == "" {
				sub.Label = sub.Key
			}
			c.subParent[sub.Key] = cat.Key
			subs = append(subs, sub)
		}
		cat.Subcategories = subs
		c.index[cat.Key] = len(c.categories)
		c.categories = append(c.categories, cat)
	}
	return c, nil
}

// Categories returns a copy of all categories.
func (c *CategoryCatalog) Categories() []Category {
	if c == nil {
		return []Category{}
	}
	out := make([]Category, len(c.categories))
	for i, cat := range c.categories {
		out[i] = cat
		out[i].Subcategories = append([]Subcategory(nil), cat.Subcategories...)
	}
	return out
}

// Category fetches a category by key.
func (c *CategoryCatalog) Category(key string) (Category, bool) {
	if c == nil {
		return Category{}, false
	}
	idx, ok := c.index[key]
	if !ok {
		return Category{}, false
	}
	return c.categories[idx], true
}

// Subcategories lists the subcategories of main. The wildcard and unknown keys
// yield an empty slice.
func (c *CategoryCatalog) Subcategories(main string) []Subcategory {
	cat, ok := c.Category(main)
	if !ok {
		return []Subcategory{}
	}
	return append([]Subcategory{}, cat.Subcategories...)
}

// ParentOf returns the main category owning a subcategory key.
func (c *CategoryCatalog) ParentOf(sub string) (string, bool) {
	if c == nil {
		return "", false
	}
	parent, ok := c.subParent[sub]
	return parent, ok
}

// Label resolves a category or subcategory key to its label.
func (c *CategoryCatalog) Label(key string) string {
	if cat, ok := c.Category(key); ok {
		return cat.Label
	}
	if parent, ok := c.ParentOf(key); ok {
		for _, sub := range c.categories[c.index[parent]].Subcategories {
			if sub.Key == key {
				return sub.Label
			}
		}
	}
	return key
}

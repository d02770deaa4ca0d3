package dashboard

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

const (
	datasetVersionV1 = "1"
	// DatasetVersion exposes the current dataset document version for tooling.
	DatasetVersion = datasetVersionV1
)

// DatasetDocument models the YAML reference tables: location tree, sentiment
// categories, service types and satisfaction dimensions.
type DatasetDocument struct {
	Version      string       `json:"version" yaml:"version"`
	Name         string       `json:"name,omitempty" yaml:"name,omitempty"`
	Regions      []RegionSpec `json:"regions" yaml:"regions"`
	Categories   []Category   `json:"categories" yaml:"categories"`
	ServiceTypes []string     `json:"service_types,omitempty" yaml:"service_types,omitempty"`
	Dimensions   []string     `json:"satisfaction_dimensions,omitempty" yaml:"satisfaction_dimensions,omitempty"`
	Ordering     string       `json:"ordering,omitempty" yaml:"ordering,omitempty"`
	Source       string       `json:"-" yaml:"-"`
}

// RegionSpec is a region with its districts.
type RegionSpec struct {
	ID        string         `json:"id" yaml:"id"`
	Label     string         `json:"label,omitempty" yaml:"label,omitempty"`
	Order     int            `json:"order,omitempty" yaml:"order,omitempty"`
	Districts []DistrictSpec `json:"districts,omitempty" yaml:"districts,omitempty"`
}

// DistrictSpec is a district with its branches.
type DistrictSpec struct {
	ID       string       `json:"id" yaml:"id"`
	Label    string       `json:"label,omitempty" yaml:"label,omitempty"`
	Order    int          `json:"order,omitempty" yaml:"order,omitempty"`
	Branches []BranchSpec `json:"branches,omitempty" yaml:"branches,omitempty"`
}

// BranchSpec is a leaf location.
type BranchSpec struct {
	ID    string `json:"id" yaml:"id"`
	Label string `json:"label,omitempty" yaml:"label,omitempty"`
	Order int    `json:"order,omitempty" yaml:"order,omitempty"`
}

const orderingBusiness = "business"

// ReadDataset loads a dataset document from disk.
func ReadDataset(path string) (*DatasetDocument, error) {
	f, err := os.Open(path) //nolint:gosec
	if err != nil {
		return nil, fmt.Errorf("dashboard: open dataset %s: %w", path, err)
	}
	defer f.Close()
	doc, err := DecodeDataset(f)
	if err != nil {
		return nil, fmt.Errorf("dashboard: decode dataset %s: %w", path, err)
	}
	doc.Source = path
	return doc, nil
}

// DecodeDataset reads a dataset document from any reader.
func DecodeDataset(r io.Reader) (*DatasetDocument, error) {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	var doc DatasetDocument
	if err := decoder.Decode(&doc); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("dashboard: dataset is empty")
		}
		return nil, fmt.Errorf("dashboard: parse dataset: %w", err)
	}
	doc.applyDefaults()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return &doc, nil
}

// WriteDataset encodes doc as YAML.
func WriteDataset(w io.Writer, doc *DatasetDocument) error {
	encoder := yaml.NewEncoder(w)
	encoder.SetIndent(2)
	defer encoder.Close()
	if err := encoder.Encode(doc); err != nil {
		return fmt.Errorf("dashboard: write dataset: %w", err)
	}
	return nil
}

// Validate checks the document version and required ids.
func (doc *DatasetDocument) Validate() error {
	if doc.Version != datasetVersionV1 {
		return fmt.Errorf("dashboard: unsupported dataset version %q", doc.Version)
	}
	if len(doc.Regions) == 0 {
		return fmt.Errorf("dashboard: dataset defines no regions")
	}
	if doc.Ordering != "" && doc.Ordering != orderingBusiness && doc.Ordering != "label" {
		return fmt.Errorf("dashboard: unknown dataset ordering %q", doc.Ordering)
	}
	for idx, region := range doc.Regions {
		if region.ID == "" {
			return fmt.Errorf("dashboard: dataset region at index %d is missing id", idx)
		}
		for didx, district := range region.Districts {
			if district.ID == "" {
				return fmt.Errorf("dashboard: region %s district at index %d is missing id", region.ID, didx)
			}
			for bidx, branch := range district.Branches {
				if branch.ID == "" {
					return fmt.Errorf("dashboard: district %s branch at index %d is missing id", district.ID, bidx)
				}
			}
		}
	}
	return nil
}

func (doc *DatasetDocument) applyDefaults() {
	if doc.Version == "" {
		doc.Version = datasetVersionV1
	}
}

// Nodes flattens the nested region specs into hierarchy nodes.
func (doc *DatasetDocument) Nodes() []LocationNode {
	var nodes []LocationNode
	for _, region := range doc.Regions {
		nodes = append(nodes, LocationNode{ID: region.ID, Label: region.Label, Level: LevelRegion, Order: region.Order})
		for _, district := range region.Districts {
			nodes = append(nodes, LocationNode{ID: district.ID, Label: district.Label, Level: LevelDistrict, ParentID: region.ID, Order: district.Order})
			for _, branch := range district.Branches {
				nodes = append(nodes, LocationNode{ID: branch.ID, Label: branch.Label, Level: LevelBranch, ParentID: district.ID, Order: branch.Order})
			}
		}
	}
	return nodes
}

// Build turns the document into the hierarchy and catalog used by engines.
func (doc *DatasetDocument) Build() (*StaticHierarchy, *CategoryCatalog, error) {
	var opts []HierarchyOption
	if doc.Ordering == orderingBusiness {
		opts = append(opts, WithBusinessOrder())
	}
	hierarchy, err := NewStaticHierarchy(doc.Nodes(), opts...)
	if err != nil {
		return nil, nil, fmt.Errorf("dashboard: build hierarchy from %s: %w", doc.sourceName(), err)
	}
	catalog, err := NewCategoryCatalog(doc.Categories)
	if err != nil {
		return nil, nil, fmt.Errorf("dashboard: build catalog from %s: %w", doc.sourceName(), err)
	}
	return hierarchy, catalog, nil
}

func (doc *DatasetDocument) sourceName() string {
	if doc.Source != "" {
		return doc.Source
	}
	return "dataset"
}

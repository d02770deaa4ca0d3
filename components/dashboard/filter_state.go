package dashboard

import "strings"

// Field names a filter dimension.
type Field string

const (
	FieldRegion       Field = "region"
	FieldDistrict     Field = "district"
	FieldBranch       Field = "branch"
	FieldServiceType  Field = "service_type"
	FieldSentiment    Field = "sentiment"
	FieldMainCategory Field = "main_category"
	FieldSubCategory  Field = "sub_category"
	FieldDateRange    Field = "date_range"
	FieldSearchText   Field = "search_text"
)

// Fields lists every filter dimension in display order.
func Fields() []Field {
	return []Field{
		FieldRegion, FieldDistrict, FieldBranch,
		FieldServiceType, FieldSentiment,
		FieldMainCategory, FieldSubCategory,
		FieldDateRange, FieldSearchText,
	}
}

// FilterState is the complete selection across all filter dimensions.
type FilterState struct {
	Region       string     `json:"region"`
	District     string     `json:"district"`
	Branch       string     `json:"branch"`
	ServiceType  string     `json:"service_type"`
	Sentiment    string     `json:"sentiment"`
	MainCategory string     `json:"main_category"`
	SubCategory  string     `json:"sub_category"`
	DateRange    *DateRange `json:"date_range,omitempty"`
	SearchText   string     `json:"search_text"`
}

// DefaultFilterState selects everything.
func DefaultFilterState() FilterState {
	return FilterState{
		Region:       All,
		District:     All,
		Branch:       All,
		ServiceType:  All,
		Sentiment:    All,
		MainCategory: All,
		SubCategory:  All,
	}
}

// IsDefault reports whether no dimension is constrained.
func (s FilterState) IsDefault() bool {
	return s.ActiveCount() == 0
}

// ActiveCount returns the number of constrained dimensions.
func (s FilterState) ActiveCount() int {
	count := 0
	for _, v := range []string{s.Region, s.District, s.Branch, s.ServiceType, s.Sentiment, s.MainCategory, s.SubCategory} {
		if !isAll(v) {
			count++
		}
	}
	if s.DateRange != nil {
		count++
	}
	if strings.TrimSpace(s.SearchText) != "" {
		count++
	}
	return count
}

// Clone returns a deep copy.
func (s FilterState) Clone() FilterState {
	if s.DateRange != nil {
		dr := *s.DateRange
		s.DateRange = &dr
	}
	return s
}

// Change describes a single filter edit. Value carries the selection for every
// field except FieldDateRange, which uses Range (nil clears it).
type Change struct {
	Field Field      `json:"field"`
	Value string     `json:"value,omitempty"`
	Range *DateRange `json:"range,omitempty"`
}

// Reduce applies change to state and every cascade rule in one step:
// a new region clears district and branch, a new district clears branch, and a
// new main category clears the subcategory. Values are opaque; unknown fields
// leave the state untouched.
func Reduce(state FilterState, change Change) FilterState {
	next := state.Clone()
	value := normalizeSelection(change.Value)
	switch change.Field {
	case FieldRegion:
		if value != next.Region {
			next.Region = value
			next.District = All
			next.Branch = All
		}
	case FieldDistrict:
		if value != next.District {
			next.District = value
			next.Branch = All
		}
	case FieldBranch:
		next.Branch = value
	case FieldServiceType:
		next.ServiceType = value
	case FieldSentiment:
		next.Sentiment = value
	case FieldMainCategory:
		if value != next.MainCategory {
			next.MainCategory = value
			next.SubCategory = All
		}
	case FieldSubCategory:
		next.SubCategory = value
	case FieldDateRange:
		if change.Range == nil || (change.Range.From.IsZero() && change.Range.To.IsZero()) {
			next.DateRange = nil
		} else {
			dr := *change.Range
			next.DateRange = &dr
		}
	case FieldSearchText:
		next.SearchText = change.Value
	}
	return next
}

func normalizeSelection(value string) string {
	value = strings.TrimSpace(value)
	if value == "" || strings.EqualFold(value, All) {
		return All
	}
	return value
}

func isAll(value string) bool {
	return value == "" || value == All
}

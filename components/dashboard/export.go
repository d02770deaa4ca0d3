package dashboard

import (
	"io"
	"sort"
	"strconv"
	"time"

	"github.com/ettle/strcase"
)

// Column describes one export column.
type Column struct {
	Key   string `json:"key"`
	Title string `json:"title"`
}

// Table is the format-neutral shape handed to exporters.
type Table struct {
	Name    string     `json:"name"`
	Columns []Column   `json:"columns"`
	Rows    [][]string `json:"rows"`
}

// Exporter writes a Table in a concrete file format.
type Exporter interface {
	Format() string
	ContentType() string
	Write(w io.Writer, table Table) error
}

// Labeler resolves ids and keys to display labels.
type Labeler interface {
	Label(key string) string
}

// RecordsTable flattens records into one row each. Category and dimension
// columns are derived from the catalog and from the scores present in records.
func RecordsTable(records []FeedbackRecord, catalog *CategoryCatalog, locations Labeler) Table {
	columns := []Column{
		{Key: "id", Title: "ID"},
		{Key: "timestamp", Title: "วันที่"},
		{Key: "region", Title: "ภาค"},
		{Key: "district", Title: "เขต"},
		{Key: "branch", Title: "สาขา"},
		{Key: "service_type", Title: "ประเภทบริการ"},
	}
	categories := catalog.Categories()
	for _, cat := range categories {
		columns = append(columns, Column{Key: "sentiment_" + strcase.ToSnake(cat.Key), Title: cat.Label})
	}
	dims := scoreDimensions(records)
	for _, dim := range dims {
		columns = append(columns, Column{Key: "score_" + strcase.ToSnake(dim), Title: dim})
	}
	columns = append(columns, Column{Key: "comment", Title: "ความคิดเห็น"})

	rows := make([][]string, 0, len(records))
	for _, r := range records {
		row := []string{
			r.ID,
			r.Timestamp.Format(time.RFC3339),
			label(locations, r.Location.Region),
			label(locations, r.Location.District),
			label(locations, r.Location.Branch),
			r.ServiceType,
		}
		for _, cat := range categories {
			row = append(row, string(r.SentimentByCategory[cat.Key]))
		}
		for _, dim := range dims {
			if score, ok := r.SatisfactionScores[dim]; ok {
				row = append(row, strconv.Itoa(score))
			} else {
				row = append(row, "")
			}
		}
		row = append(row, r.Comment)
		rows = append(rows, row)
	}
	return Table{Name: "feedback", Columns: columns, Rows: rows}
}

// AggregateTable renders grouped counts; groupLabel titles the key column.
func AggregateTable(groups []AggregateResult, groupLabel string, labels Labeler) Table {
	if groupLabel == "" {
		groupLabel = "group"
	}
	table := Table{
		Name: strcase.ToSnake(groupLabel),
		Columns: []Column{
			{Key: strcase.ToSnake(groupLabel), Title: groupLabel},
			{Key: "positive_count", Title: "เชิงบวก"},
			{Key: "negative_count", Title: "เชิงลบ"},
			{Key: "total_count", Title: "ทั้งหมด"},
		},
		Rows: make([][]string, 0, len(groups)),
	}
	for _, g := range groups {
		table.Rows = append(table.Rows, []string{
			label(labels, g.GroupKey),
			strconv.Itoa(g.PositiveCount),
			strconv.Itoa(g.NegativeCount),
			strconv.Itoa(g.TotalCount),
		})
	}
	return table
}

func scoreDimensions(records []FeedbackRecord) []string {
	seen := map[string]struct{}{}
	for _, r := range records {
		for dim := range r.SatisfactionScores {
			seen[dim] = struct{}{}
		}
	}
	dims := make([]string, 0, len(seen))
	for dim := range seen {
		dims = append(dims, dim)
	}
	sort.Strings(dims)
	return dims
}

func label(labels Labeler, key string) string {
	if labels == nil || key == "" {
		return key
	}
	return labels.Label(key)
}

// LabelerFunc adapts a function to Labeler.
type LabelerFunc func(string) string

func (f LabelerFunc) Label(key string) string { return f(key) }

// Labelers chains labelers; the first one that changes the key wins.
func Labelers(list ...Labeler) Labeler {
	return LabelerFunc(func(key string) string {
		for _, l := range list {
			if l == nil {
				continue
			}
			if v := l.Label(key); v != key {
				return v
			}
		}
		return key
	})
}

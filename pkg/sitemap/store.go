package sitemap

import "sort"

// RecordStore accumulates records across sitemaps in visitation order.
// Nothing is deduplicated or sorted.
type RecordStore struct {
	rows []Record
}

func NewRecordStore() *RecordStore {
	return &RecordStore{}
}

func (s *RecordStore) Append(records ...Record) {
	s.rows = append(s.rows, records...)
}

func (s *RecordStore) Len() int {
	return len(s.rows)
}

// Rows returns a copy of the stored records.
func (s *RecordStore) Rows() []Record {
	out := make([]Record, len(s.rows))
	copy(out, s.rows)
	return out
}

// Head returns at most n leading records.
func (s *RecordStore) Head(n int) []Record {
	if n > len(s.rows) {
		n = len(s.rows)
	}
	if n < 0 {
		n = 0
	}
	return s.Rows()[:n]
}

// Each calls fn for every row until fn returns false.
func (s *RecordStore) Each(fn func(i int, r Record) bool) {
	for i, r := range s.rows {
		if !fn(i, r) {
			return
		}
	}
}

// Locations returns the Loc column in row order.
func (s *RecordStore) Locations() []string {
	out := make([]string, 0, len(s.rows))
	for _, r := range s.rows {
		out = append(out, r.Loc)
	}
	return out
}

type ColumnSummary struct {
	Name   string
	Count  int
	Unique int
	Top    string
	Freq   int
}

type Summary struct {
	Rows    int
	Columns []ColumnSummary
}

// Summary describes every column: non-empty count, distinct values and the
// most frequent value. Ties on frequency go to the value seen first.
func (s *RecordStore) Summary() Summary {
	columns := []struct {
		name string
		get  func(Record) string
	}{
		{"loc", func(r Record) string { return r.Loc }},
		{"changefreq", func(r Record) string { return r.ChangeFreq }},
		{"priority", func(r Record) string { return r.Priority }},
		{"domain", func(r Record) string { return r.Domain }},
		{"sitemap_name", func(r Record) string { return r.SitemapName }},
	}

	sum := Summary{Rows: len(s.rows)}
	for _, col := range columns {
		counts := make(map[string]int)
		firstSeen := make(map[string]int)
		cs := ColumnSummary{Name: col.name}

		for i, r := range s.rows {
			v := col.get(r)
			if v == "" {
				continue
			}
			cs.Count++
			if _, ok := counts[v]; !ok {
				firstSeen[v] = i
			}
			counts[v]++
		}

		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool {
			if counts[values[i]] != counts[values[j]] {
				return counts[values[i]] > counts[values[j]]
			}
			return firstSeen[values[i]] < firstSeen[values[j]]
		})

		cs.Unique = len(values)
		if len(values) > 0 {
			cs.Top = values[0]
			cs.Freq = counts[values[0]]
		}
		sum.Columns = append(sum.Columns, cs)
	}
	return sum
}

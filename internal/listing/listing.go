// Package listing implements the List/Browse Pipeline (C9): filter, sort,
// and paginate over records loaded through the File Cache. It never touches
// the Search Cache — these are structured queries, not textual ones (§4.8).
package listing

import (
	"cmp"
	"encoding/json"
	"sort"

	"github.com/sarychdb/sarychdb/internal/apierrors"
	"github.com/sarychdb/sarychdb/internal/record"
)

// Mode identifies which of the three browse/list pagination shapes applied.
type Mode string

const (
	ModeLimitOnly Mode = "limit_only"
	ModePaginated Mode = "paginated"
	ModeDefault   Mode = "default"
)

// Pagination describes how a result page was produced.
type Pagination struct {
	Mode             Mode `json:"mode"`
	Page             int  `json:"page,omitempty"`
	Limit            int  `json:"limit,omitempty"`
	Returned         int  `json:"returned"`
	TotalRecords     int  `json:"total_records"`
	FilteredRecords  int  `json:"filtered_records,omitempty"`
	TotalPages       int  `json:"total_pages,omitempty"`
	HasNext          bool `json:"has_next,omitempty"`
	HasPrev          bool `json:"has_prev,omitempty"`
}

// Params bundles every optional input to browse/list.
type Params struct {
	Limit     int // 0 means absent
	Page      int // 0 means absent
	SortBy    string
	SortOrder string // "asc" or "desc"
	Filters   map[string]any
}

// Browse implements §4.8 browse(limit?, page?): no filtering, no sorting.
func Browse(all []record.Record, p Params) ([]record.Record, Pagination, error) {
	return paginate(all, len(all), p)
}

// List implements §4.8 list(...): filter, then sort, then paginate, in that
// order.
func List(all []record.Record, p Params) ([]record.Record, Pagination, error) {
	filtered := filter(all, p.Filters)
	sorted := sortRecords(filtered, p.SortBy, p.SortOrder)
	page, pagination, err := paginate(sorted, len(all), p)
	if err != nil {
		return nil, Pagination{}, err
	}
	pagination.FilteredRecords = len(filtered)
	return page, pagination, nil
}

func paginate(records []record.Record, totalRecords int, p Params) ([]record.Record, Pagination, error) {
	switch {
	case p.Limit > 0 && p.Page == 0:
		end := min(p.Limit, len(records))
		page := records[:end]
		return page, Pagination{
			Mode:         ModeLimitOnly,
			Limit:        p.Limit,
			Returned:     len(page),
			TotalRecords: totalRecords,
		}, nil

	case p.Limit > 0 && p.Page > 0:
		start := (p.Page - 1) * p.Limit
		if start > len(records) {
			start = len(records)
		}
		end := min(start+p.Limit, len(records))
		page := records[start:end]
		totalPages := (len(records) + p.Limit - 1) / p.Limit
		return page, Pagination{
			Mode:         ModePaginated,
			Page:         p.Page,
			Limit:        p.Limit,
			Returned:     len(page),
			TotalRecords: totalRecords,
			TotalPages:   totalPages,
			HasNext:      p.Page < totalPages,
			HasPrev:      p.Page > 1,
		}, nil

	case p.Limit == 0 && p.Page > 0:
		return nil, Pagination{}, apierrors.BadRequest("Cannot use 'page' without 'limit'.")

	default: // neither present
		defaultParams := Params{Limit: 10, Page: 1}
		page, pagination, err := paginate(records, totalRecords, defaultParams)
		if err != nil {
			return nil, Pagination{}, err
		}
		pagination.Mode = ModeDefault
		return page, pagination, nil
	}
}

// filter applies the AND-of-field-predicates rule from §4.8.
func filter(records []record.Record, filters map[string]any) []record.Record {
	if len(filters) == 0 {
		return records
	}
	out := make([]record.Record, 0, len(records))
	for _, r := range records {
		if matchesFilters(r, filters) {
			out = append(out, r)
		}
	}
	return out
}

func matchesFilters(r record.Record, filters map[string]any) bool {
	for field, spec := range filters {
		v, ok := r[field]
		if !ok {
			return false
		}
		if options, isArray := spec.([]any); isArray {
			matched := false
			for _, opt := range options {
				if jsonEqual(v, opt) {
					matched = true
					break
				}
			}
			if !matched {
				return false
			}
			continue
		}
		if !jsonEqual(v, spec) {
			return false
		}
	}
	return true
}

func jsonEqual(a, b any) bool {
	aj, err1 := json.Marshal(a)
	bj, err2 := json.Marshal(b)
	if err1 != nil || err2 != nil {
		return false
	}
	return string(aj) == string(bj)
}

// sortRecords stably sorts by the top-level value at sortBy using the §4.8
// bucket ordering: null < boolean < number < string < array < object,
// missing keys sort before null, ties broken by canonical JSON form for
// arrays/objects.
func sortRecords(records []record.Record, sortBy, sortOrder string) []record.Record {
	if sortBy == "" {
		return records
	}
	out := make([]record.Record, len(records))
	copy(out, records)

	desc := sortOrder == "desc"
	sort.SliceStable(out, func(i, j int) bool {
		c := compareValues(out[i][sortBy], out[j][sortBy], hasKey(out[i], sortBy), hasKey(out[j], sortBy))
		if desc {
			return c > 0
		}
		return c < 0
	})
	return out
}

func hasKey(r record.Record, key string) bool {
	_, ok := r[key]
	return ok
}

// bucket assigns the §4.8 total-order bucket for a value. Missing keys get
// bucket -1 (sorts before null).
func bucket(v any, present bool) int {
	if !present {
		return -1
	}
	switch v.(type) {
	case nil:
		return 0
	case bool:
		return 1
	case float64:
		return 2
	case string:
		return 3
	case []any:
		return 4
	case map[string]any:
		return 5
	default:
		return 5
	}
}

func compareValues(a, b any, aPresent, bPresent bool) int {
	ba, bb := bucket(a, aPresent), bucket(b, bPresent)
	if ba != bb {
		return cmp.Compare(ba, bb)
	}
	switch ba {
	case -1, 0:
		return 0
	case 1:
		av, bv := a.(bool), b.(bool)
		if av == bv {
			return 0
		}
		if !av {
			return -1
		}
		return 1
	case 2:
		return cmp.Compare(a.(float64), b.(float64))
	case 3:
		return cmp.Compare(a.(string), b.(string))
	default:
		aj, _ := json.Marshal(a)
		bj, _ := json.Marshal(b)
		return cmp.Compare(string(aj), string(bj))
	}
}

package listing

import (
	"testing"

	"github.com/sarychdb/sarychdb/internal/record"
)

func buildCatalog() []record.Record {
	var out []record.Record
	for i := 1; i <= 12; i++ {
		cat := "A"
		if i%2 == 0 {
			cat = "B"
		}
		out = append(out, record.Record{"category": cat, "price": float64(i)})
	}
	return out
}

func TestListFilterSortPaginate(t *testing.T) {
	// S5: filters={"category":"A"}, sortBy=price, sortOrder=desc, limit=2, page=2
	catalog := buildCatalog()
	page, pagination, err := List(catalog, Params{
		Filters:   map[string]any{"category": "A"},
		SortBy:    "price",
		SortOrder: "desc",
		Limit:     2,
		Page:      2,
	})
	if err != nil {
		t.Fatal(err)
	}
	if pagination.FilteredRecords != 6 {
		t.Errorf("expected filtered_records=6, got %d", pagination.FilteredRecords)
	}
	if pagination.TotalRecords != 12 {
		t.Errorf("expected total_records=12, got %d", pagination.TotalRecords)
	}
	if pagination.TotalPages != 3 {
		t.Errorf("expected total_pages=3, got %d", pagination.TotalPages)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 records on page 2, got %d", len(page))
	}
	// category A prices: 1,3,5,7,9,11 sorted desc: 11,9,7,5,3,1 -> page2 (limit2) = positions 3..4 = 7,5
	if page[0]["price"] != 7.0 || page[1]["price"] != 5.0 {
		t.Errorf("unexpected page contents: %+v", page)
	}
}

func TestFilterArrayOfOptionsIsOR(t *testing.T) {
	records := []record.Record{
		{"category": "A"}, {"category": "B"}, {"category": "C"},
	}
	page, _, err := List(records, Params{Filters: map[string]any{"category": []any{"A", "C"}}})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 2 {
		t.Fatalf("expected 2 matches, got %d", len(page))
	}
}

func TestFilterMissingFieldFails(t *testing.T) {
	records := []record.Record{{"category": "A"}, {"other": "x"}}
	page, _, err := List(records, Params{Filters: map[string]any{"category": "A"}})
	if err != nil {
		t.Fatal(err)
	}
	if len(page) != 1 {
		t.Fatalf("expected 1 match (missing field fails predicate), got %d", len(page))
	}
}

func TestBrowseModes(t *testing.T) {
	// S6: database of 1500 records
	var records []record.Record
	for i := 0; i < 1500; i++ {
		records = append(records, record.Record{"n": float64(i)})
	}

	t.Run("limit_only", func(t *testing.T) {
		page, pagination, err := Browse(records, Params{Limit: 200})
		if err != nil {
			t.Fatal(err)
		}
		if len(page) != 200 || pagination.Mode != ModeLimitOnly {
			t.Fatalf("unexpected: %d records, mode=%s", len(page), pagination.Mode)
		}
		if pagination.TotalPages != 0 {
			t.Error("limit_only must not report total_pages")
		}
	})

	t.Run("paginated", func(t *testing.T) {
		page, pagination, err := Browse(records, Params{Page: 4, Limit: 200})
		if err != nil {
			t.Fatal(err)
		}
		if len(page) != 200 || pagination.Mode != ModePaginated {
			t.Fatalf("unexpected: %d records, mode=%s", len(page), pagination.Mode)
		}
		if page[0]["n"] != 600.0 || page[199]["n"] != 799.0 {
			t.Errorf("expected records 601..800 (0-indexed 600..799), got first=%v last=%v", page[0]["n"], page[199]["n"])
		}
		if pagination.TotalPages != 8 {
			t.Errorf("expected total_pages=8, got %d", pagination.TotalPages)
		}
	})

	t.Run("page without limit is bad request", func(t *testing.T) {
		_, _, err := Browse(records, Params{Page: 5})
		if err == nil {
			t.Fatal("expected BadRequest")
		}
	})
}

func TestSortHeterogeneousTypesBucketOrder(t *testing.T) {
	records := []record.Record{
		{"k": "str"},
		{"k": nil},
		{"k": true},
		{"k": 1.0},
		{},
	}
	sorted := sortRecords(records, "k", "asc")
	// expected order: missing, null, bool, number, string
	if hasKey(sorted[0], "k") {
		t.Errorf("expected missing-key record first, got %+v", sorted[0])
	}
	if sorted[1]["k"] != nil {
		t.Errorf("expected null second, got %+v", sorted[1])
	}
	if sorted[2]["k"] != true {
		t.Errorf("expected bool third, got %+v", sorted[2])
	}
	if sorted[3]["k"] != 1.0 {
		t.Errorf("expected number fourth, got %+v", sorted[3])
	}
	if sorted[4]["k"] != "str" {
		t.Errorf("expected string fifth, got %+v", sorted[4])
	}
}

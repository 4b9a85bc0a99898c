package request

import (
	"encoding/json"
	"math"
	"net/url"
	"reflect"
	"testing"
)

func intPtr(n int) *int { return &n }

func TestFromValues(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  Params
	}{
		{"empty", "", Params{}},
		{"q", "q=username:doe", Params{Query: "username:doe"}},
		{"query alias", "query=username:doe", Params{Query: "username:doe"}},
		{"q wins over query", "q=a&query=b", Params{Query: "a"}},
		{"blank q is present", "q=", Params{Query: ""}},
		{"single order_by", "q=&order_by=created_at+desc,id", Params{Query: "", OrderBy: "created_at desc,id"}},
		{"repeated order_by", "order_by=name+desc&order_by=id", Params{OrderBy: []string{"name desc", "id"}}},
		{"bracketed order_by", "order_by%5Bname%5D=desc", Params{OrderBy: map[string]string{"name": "desc"}}},
		{"short aliases", "ob=id&pp=20&p=2", Params{OrderBy: "id", PerPage: "20", Page: "2"}},
		{"pagination", "per_page=20&page=6", Params{PerPage: "20", Page: "6"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := url.ParseQuery(tt.query)
			if err != nil {
				t.Fatalf("ParseQuery: %v", err)
			}
			got := FromValues(v)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromValues(%q) = %#v, want %#v", tt.query, got, tt.want)
			}
		})
	}
}

func TestFromMap(t *testing.T) {
	var body map[string]any
	raw := `{"query":"last_name:doe","order_by":[{"created_at":"desc"},"id"],"pp":20,"page":"3"}`
	if err := json.Unmarshal([]byte(raw), &body); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	p := FromMap(body)
	if p.Query != "last_name:doe" {
		t.Errorf("Query = %#v", p.Query)
	}
	if _, ok := p.OrderBy.([]any); !ok {
		t.Errorf("OrderBy = %#v, want []any", p.OrderBy)
	}
	if p.PerPage != float64(20) {
		t.Errorf("PerPage = %#v", p.PerPage)
	}
	if p.Page != "3" {
		t.Errorf("Page = %#v", p.Page)
	}
}

func TestFromMap_NonStringQuery(t *testing.T) {
	p := FromMap(map[string]any{"q": 42})
	if _, ok := p.QueryString(); ok {
		t.Error("QueryString() ok = true for a numeric query")
	}
	if p.Query == nil {
		t.Error("Query should be kept as supplied")
	}
}

func TestPagination(t *testing.T) {
	tests := []struct {
		name        string
		params      Params
		wantPerPage *int
		wantPage    *int
	}{
		{"none", Params{}, nil, nil},
		{"strings", Params{PerPage: "20", Page: "6"}, intPtr(20), intPtr(6)},
		{"numbers", Params{PerPage: float64(20), Page: 2}, intPtr(20), intPtr(2)},
		{"non-numeric per_page disables", Params{PerPage: "lots"}, nil, nil},
		{"non-numeric page is 1", Params{PerPage: "5", Page: "last"}, intPtr(5), intPtr(1)},
		{"fractional per_page disables", Params{PerPage: 2.5}, nil, nil},
		{"zero kept for validation", Params{PerPage: "0", Page: "-1"}, intPtr(0), intPtr(-1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			perPage, page := tt.params.Pagination()
			if !reflect.DeepEqual(perPage, tt.wantPerPage) {
				t.Errorf("perPage = %v, want %v", deref(perPage), deref(tt.wantPerPage))
			}
			if !reflect.DeepEqual(page, tt.wantPage) {
				t.Errorf("page = %v, want %v", deref(page), deref(tt.wantPage))
			}
		})
	}
}

func TestWantsLimiting(t *testing.T) {
	if (Params{Query: "x", OrderBy: "id"}).WantsLimiting() {
		t.Error("WantsLimiting() = true without pagination params")
	}
	if !(Params{Page: "1"}).WantsLimiting() {
		t.Error("WantsLimiting() = false with page")
	}
}

func TestParseInt(t *testing.T) {
	tests := []struct {
		in     any
		want   int
		wantOK bool
	}{
		{nil, 0, false},
		{7, 7, true},
		{int64(8), 8, true},
		{float64(9), 9, true},
		{9.5, 0, false},
		{1e20, 0, false},
		{-1e20, 0, false},
		{float64(math.MaxInt), 0, false},
		{math.Inf(1), 0, false},
		{math.NaN(), 0, false},
		{json.Number("10"), 10, true},
		{" 11 ", 11, true},
		{"abc", 0, false},
		{true, 0, false},
	}
	for _, tt := range tests {
		got, ok := ParseInt(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseInt(%#v) = %d, %v, want %d, %v", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestPagination_OversizedFloatDegrades(t *testing.T) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(`{"per_page": 1e20, "page": -1e20}`), &raw); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	perPage, page := Params{PerPage: raw["per_page"], Page: raw["page"]}.Pagination()
	if perPage != nil {
		t.Errorf("perPage = %d, want nil", *perPage)
	}
	if page == nil || *page != 1 {
		t.Errorf("page = %v, want 1", deref(page))
	}
}

func deref(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

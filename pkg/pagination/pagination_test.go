package pagination

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name      string
		in        Params
		wantPage  int
		wantLimit int
	}{
		{"zero values", Params{}, 1, DefaultLimit},
		{"negative page", Params{Page: -3, Limit: 10}, 1, 10},
		{"limit over max", Params{Page: 2, Limit: 500}, 2, MaxLimit},
		{"already sane", Params{Page: 4, Limit: 25}, 4, 25},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.in.Normalize()
			if got.Page != tc.wantPage || got.Limit != tc.wantLimit {
				t.Fatalf("got page=%d limit=%d, want page=%d limit=%d",
					got.Page, got.Limit, tc.wantPage, tc.wantLimit)
			}
		})
	}
}

func TestOffset(t *testing.T) {
	if got := (Params{Page: 1, Limit: 25}).Offset(); got != 0 {
		t.Fatalf("first page offset = %d, want 0", got)
	}
	if got := (Params{Page: 3, Limit: 10}).Offset(); got != 20 {
		t.Fatalf("third page offset = %d, want 20", got)
	}
}

func TestNewPage(t *testing.T) {
	page := NewPage(Params{Page: 2, Limit: 10}, 35)
	if page.TotalPages != 4 {
		t.Fatalf("total pages = %d, want 4", page.TotalPages)
	}
	if page.TotalRows != 35 {
		t.Fatalf("total rows = %d, want 35", page.TotalRows)
	}

	empty := NewPage(Params{}, 0)
	if empty.TotalPages != 1 {
		t.Fatalf("empty result should still report one page, got %d", empty.TotalPages)
	}
}

package products

import (
	"reflect"
	"testing"
)

func TestParseMediaTag(t *testing.T) {
	cases := []struct {
		name      string
		notes     string
		wantNotes string
		wantURLs  []string
	}{
		{
			name:      "no tag",
			notes:     "hand-glazed ceramic, dishwasher safe",
			wantNotes: "hand-glazed ceramic, dishwasher safe",
			wantURLs:  nil,
		},
		{
			name:      "tag with two urls",
			notes:     "bamboo tray [MEDIA:https://cdn.example.vn/a.jpg,https://cdn.example.vn/b.jpg]",
			wantNotes: "bamboo tray",
			wantURLs:  []string{"https://cdn.example.vn/a.jpg", "https://cdn.example.vn/b.jpg"},
		},
		{
			name:      "tag in the middle",
			notes:     "front [MEDIA:https://cdn.example.vn/a.jpg] back",
			wantNotes: "front  back",
			wantURLs:  []string{"https://cdn.example.vn/a.jpg"},
		},
		{
			name:      "empty tag",
			notes:     "plain [MEDIA:]",
			wantNotes: "plain",
			wantURLs:  nil,
		},
		{
			name:      "whitespace and empty entries",
			notes:     "[MEDIA: https://cdn.example.vn/a.jpg , ,]",
			wantNotes: "",
			wantURLs:  []string{"https://cdn.example.vn/a.jpg"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			gotNotes, gotURLs := ParseMediaTag(tc.notes)
			if gotNotes != tc.wantNotes {
				t.Fatalf("notes = %q, want %q", gotNotes, tc.wantNotes)
			}
			if !reflect.DeepEqual(gotURLs, tc.wantURLs) {
				t.Fatalf("urls = %v, want %v", gotURLs, tc.wantURLs)
			}
		})
	}
}

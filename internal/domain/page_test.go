package domain

import "testing"

func TestNewPage(t *testing.T) {
	tests := []struct {
		name          string
		number, limit int
		want          Page
		offset        int
	}{
		{"defaults", 0, 0, Page{1, 10}, 0},
		{"negative", -3, -1, Page{1, 10}, 0},
		{"second page", 2, 5, Page{2, 5}, 5},
		{"limit capped", 3, 500, Page{3, 100}, 200},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NewPage(tt.number, tt.limit)
			if got != tt.want {
				t.Errorf("NewPage(%d, %d) = %+v, want %+v", tt.number, tt.limit, got, tt.want)
			}
			if got.Offset() != tt.offset {
				t.Errorf("Offset() = %d, want %d", got.Offset(), tt.offset)
			}
		})
	}
}

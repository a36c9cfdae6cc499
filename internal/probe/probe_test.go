package probe

import "testing"

func TestParseFrameRate(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"30/1", 30},
		{"30000/1001", 30000.0 / 1001.0},
		{"0/0", 0},
		{"25", 0},
		{"", 0},
		{"abc/def", 0},
	}
	for _, tt := range tests {
		if got := parseFrameRate(tt.in); got != tt.want {
			t.Errorf("parseFrameRate(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

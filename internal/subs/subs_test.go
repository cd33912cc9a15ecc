package subs

import "testing"

func TestValidEmail(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"rae@example.com", true},
		{"first.last+tag@sub.example.ca", true},
		{"", false},
		{"rae", false},
		{"rae@example", false},
		{"rae@@example.com", false},
		{"rae example@example.com", false},
		{"@example.com", false},
		{"rae@.com", false},
	}
	for _, tt := range tests {
		if got := ValidEmail(tt.in); got != tt.want {
			t.Errorf("ValidEmail(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

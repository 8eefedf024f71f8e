package utils

import (
	"testing"
)

func TestTruncate(t *testing.T) {
	if Truncate("hello", 10) != "hello" {
		t.Error("short string unchanged")
	}
	if Truncate("hello world", 5) != "hello..." {
		t.Errorf("got %s", Truncate("hello world", 5))
	}
	if Truncate("x", 0) != "x" {
		t.Error("maxLen 0 returns as-is")
	}
}

func TestContainsIgnoreCase(t *testing.T) {
	tests := []struct {
		text, search string
		want         bool
	}{
		{"Paracetamol (500mg)", "paracetamol", true},
		{"paracetamol", "PARACETAMOL", true},
		{"Ibuprofen", "paracetamol", false},
		{"", "x", false},
		{"x", "", false},
	}
	for _, tt := range tests {
		if got := ContainsIgnoreCase(tt.text, tt.search); got != tt.want {
			t.Errorf("ContainsIgnoreCase(%q, %q) = %v, want %v", tt.text, tt.search, got, tt.want)
		}
	}
}

func TestCollapseWhitespace(t *testing.T) {
	if got := CollapseWhitespace("  DICLOFENAC   SODIUM  (75mg)  "); got != "DICLOFENAC SODIUM (75mg)" {
		t.Errorf("got %q", got)
	}
}

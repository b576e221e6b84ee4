package textutil

import "testing"

func TestNFC(t *testing.T) {
	decomposed := "e\u0301"
	if got := NFC(decomposed); got != "\u00e9" {
		t.Errorf("NFC(%q) = %q, want %q", decomposed, got, "\u00e9")
	}
	if got := NFC("Mhoro"); got != "Mhoro" {
		t.Errorf("NFC changed ASCII input: %q", got)
	}
}

func TestCollapseWhitespace(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"", ""},
		{"   ", ""},
		{"a", "a"},
		{"  Good   morning! ", "Good morning!"},
		{"line\none\ttab", "line one tab"},
		{"nbsp\u00a0\u00a0here", "nbsp here"},
	}
	for _, tt := range tests {
		if got := CollapseWhitespace(tt.input); got != tt.want {
			t.Errorf("CollapseWhitespace(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestLowerLabel(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"EN", "en"},
		{" Sn ", "sn"},
		{"\u00c9N", "\u00e9n"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := LowerLabel(tt.input); got != tt.want {
			t.Errorf("LowerLabel(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestMapLabel(t *testing.T) {
	if MapLabel(nil) != nil {
		t.Fatal("expected nil normalizer for empty mapping")
	}
	fn := MapLabel(map[string]string{"english": "en", "shona": "sn"})
	if got := fn("shona"); got != "sn" {
		t.Errorf("MapLabel(shona) = %q", got)
	}
	if got := fn("xh"); got != "xh" {
		t.Errorf("MapLabel(xh) = %q, want passthrough", got)
	}
}

func TestChain(t *testing.T) {
	if Chain(nil, nil) != nil {
		t.Fatal("expected nil for an empty chain")
	}
	fn := Chain(LowerLabel, nil, MapLabel(map[string]string{"english": "en"}))
	if got := fn(" ENGLISH "); got != "en" {
		t.Errorf("Chain(...)(%q) = %q, want %q", " ENGLISH ", got, "en")
	}
}

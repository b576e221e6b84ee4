package language

import "testing"

func TestCanonical(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "en"},
		{"EN", "en"},
		{" eng ", "en"},
		{"English", "en"},
		{"en-US", "en"},
		{"sn", "sn"},
		{"sna", "sn"},
		{"chiShona", "sn"},
		{"sn_ZW", "sn"},
		{"swh", "sw"},
		{"isiZulu", "zu"},
		// unknown labels are kept as given
		{"klingon", "klingon"},
		{" other ", "other"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := Canonical(tt.input); got != tt.expected {
			t.Errorf("Canonical(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToISO2(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"sn", "sn"},
		{"shona", "sn"},
		{"nya", "ny"},
		{"xx", "xx"},
		{"xyz", ""},
		{"", ""},
	}
	for _, tt := range tests {
		if got := ToISO2(tt.input); got != tt.expected {
			t.Errorf("ToISO2(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestToISO3(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "eng"},
		{"Shona", "sna"},
		{"sw", "swa"},
		{"qqq", "qqq"},
		{"", "und"},
	}
	for _, tt := range tests {
		if got := ToISO3(tt.input); got != tt.expected {
			t.Errorf("ToISO3(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestDisplayName(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"en", "English"},
		{"sna", "Shona"},
		{"ndebele", "North Ndebele"},
		{"", "Unknown"},
		{"label_7", "label_7"},
	}
	for _, tt := range tests {
		if got := DisplayName(tt.input); got != tt.expected {
			t.Errorf("DisplayName(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}

func TestKnown(t *testing.T) {
	if !Known("Shona") || Known("label_7") || Known("") {
		t.Fatal("unexpected Known results")
	}
}

package chatglot

import "testing"

func TestScriptOf(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"eng_Latn", "Latn"},
		{"arb_Arab", "Arab"},
		{"zho_Hans", "Hans"},
		{"auto", ""},
		{"en", ""},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if result := ScriptOf(tt.code); result != tt.expected {
				t.Errorf("ScriptOf(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestDirection(t *testing.T) {
	tests := []struct {
		code     string
		expected string
	}{
		{"eng_Latn", "ltr"},
		{"spa_Latn", "ltr"},
		{"arb_Arab", "rtl"},
		{"heb_Hebr", "rtl"},
		{"ar", "rtl"}, // no script suffix, base language fallback
		{"he", "rtl"},
		{"fa", "rtl"},
		{"auto", "ltr"},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if result := Direction(tt.code); result != tt.expected {
				t.Errorf("Direction(%q) = %q, want %q", tt.code, result, tt.expected)
			}
		})
	}
}

func TestBaseLangOf(t *testing.T) {
	if base := BaseLangOf("ARB_Arab"); base != "arb" {
		t.Errorf("BaseLangOf(%q) = %q, want %q", "ARB_Arab", base, "arb")
	}
	if base := BaseLangOf("en"); base != "en" {
		t.Errorf("BaseLangOf(%q) = %q, want %q", "en", base, "en")
	}
}

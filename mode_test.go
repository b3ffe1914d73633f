package chatglot

import (
	"strings"
	"testing"
)

func TestSelectMode(t *testing.T) {
	tests := []struct {
		name        string
		adaptive    bool
		progressive bool
		textLen     int
		expected    Mode
	}{
		{"short text stays standard", true, true, 400, ModeStandard},
		{"at adaptive threshold stays standard", true, true, 500, ModeStandard},
		{"above adaptive threshold", true, true, 600, ModeAdaptive},
		{"at progressive threshold stays adaptive", true, true, 1000, ModeAdaptive},
		{"above progressive threshold", true, true, 1500, ModeProgressive},
		{"progressive disabled degrades to adaptive", true, false, 1500, ModeAdaptive},
		{"adaptive disabled is always standard", false, true, 1500, ModeStandard},
		{"everything disabled", false, false, 1500, ModeStandard},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SelectMode(tt.adaptive, tt.progressive, tt.textLen, 500, 1000)
			if result != tt.expected {
				t.Errorf("SelectMode(%v, %v, %d) = %q, want %q",
					tt.adaptive, tt.progressive, tt.textLen, result, tt.expected)
			}
		})
	}
}

func TestConfig_ModeFor(t *testing.T) {
	cfg := DefaultConfig()

	if mode := cfg.ModeFor("Hello world"); mode != ModeStandard {
		t.Errorf("expected standard for short text, got %q", mode)
	}

	long := strings.Repeat("x", 1500)
	if mode := cfg.ModeFor(long); mode != ModeProgressive {
		t.Errorf("expected progressive for long text, got %q", mode)
	}
}

func TestConfig_ModeFor_CountsRunes(t *testing.T) {
	cfg := DefaultConfig()

	// 600 multibyte runes must select adaptive even though the byte length
	// is far past the progressive threshold.
	text := strings.Repeat("日", 600)
	if mode := cfg.ModeFor(text); mode != ModeAdaptive {
		t.Errorf("expected adaptive for 600 runes, got %q", mode)
	}
}

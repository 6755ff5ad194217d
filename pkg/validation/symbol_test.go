package validation

import (
	"testing"
)

func TestValidateSymbol(t *testing.T) {
	tests := []struct {
		name    string
		symbol  string
		wantErr bool
	}{
		// Valid symbols
		{"wave", "🌊", false},
		{"blue heart", "💙", false},
		{"sun", "☀", false},
		{"sun with variation selector", "☀️", false},
		{"star", "⭐", false},
		{"sparkles", "✨", false},
		{"rocket", "🚀", false},
		{"thumbs up with skin tone", "👍🏽", false},
		{"flag pair", "🇫🇷", false},
		{"black square", "■", false},
		{"extended pictograph", "🪐", false},

		// Invalid symbols
		{"empty", "", true},
		{"plain letter", "a", true},
		{"digit", "7", true},
		{"word", "wave", true},
		{"two clusters", "🌊💙", true},
		{"symbol with trailing space", "🌊 ", true},
		{"punctuation", "!", true},
		{"cjk ideograph", "水", true},
		{"whitespace only", "  ", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSymbol(tt.symbol)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSymbol(%q) error = %v, wantErr %v", tt.symbol, err, tt.wantErr)
			}
		})
	}
}

func TestValidateSequence(t *testing.T) {
	tests := []struct {
		name    string
		symbols []string
		maxLen  int
		wantErr bool
	}{
		{"all valid", []string{"🌊", "💙", "⭐"}, 0, false},
		{"empty slice", []string{}, 0, false},
		{"one invalid", []string{"🌊", "x", "⭐"}, 0, true},
		{"at default bound", []string{"🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊"}, 0, false},
		{"over default bound", []string{"🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊", "🌊"}, 0, true},
		{"custom bound", []string{"🌊", "💙", "⭐"}, 2, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateSequence(tt.symbols, tt.maxLen)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateSequence(%v, %d) error = %v, wantErr %v", tt.symbols, tt.maxLen, err, tt.wantErr)
			}
		})
	}
}

func TestSanitizeSymbol(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"already clean", "🌊", "🌊", false},
		{"surrounding whitespace", " 🌊 ", "🌊", false},
		{"trailing newline", "💙\n", "💙", false},
		{"not a pictograph", " abc ", "", true},
		{"empty after trim", "   ", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := SanitizeSymbol(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("SanitizeSymbol(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("SanitizeSymbol(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

package sanitizer

import "testing"

func TestNormalizeName(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "trim spaces",
			input: "  Ana Souza  ",
			want:  "Ana Souza",
		},
		{
			name:  "tabs and newlines",
			input: "Ana\t\nSouza",
			want:  "Ana Souza",
		},
		{
			name:  "only whitespace",
			input: "   \t\n  ",
			want:  "",
		},
		{
			name:  "accents preserved",
			input: " João  Conceição ",
			want:  "João Conceição",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NormalizeName(tt.input); got != tt.want {
				t.Errorf("NormalizeName(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestNormalizeEmail(t *testing.T) {
	if got := NormalizeEmail("  Ana@Example.COM "); got != "ana@example.com" {
		t.Errorf("NormalizeEmail = %q", got)
	}
}

func TestNormalizeNotes(t *testing.T) {
	long := make([]rune, 600)
	for i := range long {
		long[i] = 'á'
	}
	got := NormalizeNotes(string(long))
	if n := len([]rune(got)); n != maxNotesRunes {
		t.Errorf("NormalizeNotes kept %d runes, want %d", n, maxNotesRunes)
	}
	if got := NormalizeNotes("  prefer   window seat "); got != "prefer window seat" {
		t.Errorf("NormalizeNotes = %q", got)
	}
}

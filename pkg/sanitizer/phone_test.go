package sanitizer

import "testing"

func TestNormalizePhone(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "already digits",
			input: "11987654321",
			want:  "11987654321",
		},
		{
			name:  "brazilian mask",
			input: "(11) 98765-4321",
			want:  "11987654321",
		},
		{
			name:  "dots and spaces",
			input: " 11.3456.7890 ",
			want:  "1134567890",
		},
		{
			name:  "empty string",
			input: "",
			want:  "",
		},
		{
			name:  "letters only",
			input: "call me",
			want:  "",
		},
		{
			name:  "non ascii digits dropped",
			input: "١٢٣45",
			want:  "45",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizePhone(tt.input)
			if got != tt.want {
				t.Errorf("NormalizePhone(%q) = %q, want %q", tt.input, got, tt.want)
			}
			if again := NormalizePhone(got); again != got {
				t.Errorf("NormalizePhone is not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestIsValidLocalPhone(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"(11) 98765-4321", true},
		{"1134567890", true},
		{"113456789", false},
		{"119876543210", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsValidLocalPhone(tt.input); got != tt.want {
			t.Errorf("IsValidLocalPhone(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestFormatE164(t *testing.T) {
	if got := FormatE164("(11) 98765-4321", "BR"); got != "+5511987654321" {
		t.Errorf("FormatE164 = %q", got)
	}
	if got := FormatE164("", "BR"); got != "" {
		t.Errorf("FormatE164 of empty = %q", got)
	}
}

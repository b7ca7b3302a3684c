package sanitizer

import (
	"strings"

	"github.com/nyaruka/phonenumbers"
)

const (
	MinLocalPhoneDigits = 10
	MaxLocalPhoneDigits = 11

	DefaultRegion = "BR"
)

// NormalizePhone keeps only ASCII digits. "(11) 98765-4321" becomes "11987654321".
func NormalizePhone(phone string) string {
	var b strings.Builder
	b.Grow(len(phone))
	for _, r := range phone {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// IsValidLocalPhone reports whether phone, once normalized, has a local-format length.
func IsValidLocalPhone(phone string) bool {
	n := len(NormalizePhone(phone))
	return n >= MinLocalPhoneDigits && n <= MaxLocalPhoneDigits
}

// FormatE164 renders a normalized local number in E.164 for the given region.
// Returns "" when the number cannot be parsed.
func FormatE164(phone, region string) string {
	digits := NormalizePhone(phone)
	if digits == "" {
		return ""
	}
	if region == "" {
		region = DefaultRegion
	}
	parsed, err := phonenumbers.Parse(digits, region)
	if err != nil {
		return ""
	}
	return phonenumbers.Format(parsed, phonenumbers.E164)
}

package enums

import (
	"fmt"
	"strings"
)

// Language is a UI language the device can be switched to.
type Language string

const (
	LanguageEnglish Language = "en"
	LanguageHindi   Language = "hi"
	LanguageTamil   Language = "ta"
	LanguageTelugu  Language = "te"
)

// DefaultLanguage applies when no preference has been stored.
const DefaultLanguage = LanguageEnglish

var validLanguages = []Language{
	LanguageEnglish,
	LanguageHindi,
	LanguageTamil,
	LanguageTelugu,
}

// String implements fmt.Stringer.
func (l Language) String() string {
	return string(l)
}

// IsValid reports whether the value is a known Language.
func (l Language) IsValid() bool {
	for _, candidate := range validLanguages {
		if candidate == l {
			return true
		}
	}
	return false
}

// Languages lists every supported language in display order.
func Languages() []Language {
	return append([]Language(nil), validLanguages...)
}

// ParseLanguage converts raw input into a Language.
func ParseLanguage(value string) (Language, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validLanguages {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid language %q", value)
}

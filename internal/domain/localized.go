package domain

import (
	"sort"
	"strings"

	"golang.org/x/text/language"
)

// Locale identifies one of the site languages.
type Locale string

const (
	// LocaleVI is Vietnamese, the primary site language.
	LocaleVI Locale = "vi"
	// LocaleEN is English.
	LocaleEN Locale = "en"
	// LocaleID is Indonesian.
	LocaleID Locale = "id"
)

// FallbackOrder is the stable locale order used when resolving localized text.
var FallbackOrder = []Locale{LocaleVI, LocaleEN, LocaleID}

var localeMatcher = language.NewMatcher([]language.Tag{
	language.Vietnamese,
	language.English,
	language.Indonesian,
})

// MatchLocale resolves the preferred site locale from an explicit query value
// and an Accept-Language header. Unknown or empty input yields LocaleVI.
func MatchLocale(query, acceptLanguage string) Locale {
	switch Locale(strings.ToLower(strings.TrimSpace(query))) {
	case LocaleVI, LocaleEN, LocaleID:
		return Locale(strings.ToLower(strings.TrimSpace(query)))
	}
	if strings.TrimSpace(acceptLanguage) != "" {
		if tags, _, err := language.ParseAcceptLanguage(acceptLanguage); err == nil {
			_, index, _ := localeMatcher.Match(tags...)
			return FallbackOrder[index]
		}
	}
	return LocaleVI
}

// LocalizedText stores per-locale values for a translatable field.
type LocalizedText map[string]string

// Resolve returns the best value for the requested locale. Resolution is
// total: requested locale, then vi, en, id, then any remaining non-empty
// value in stable order, then fallback, then the empty string.
func (t LocalizedText) Resolve(locale Locale, fallback string) string {
	if value := strings.TrimSpace(t[string(locale)]); value != "" {
		return value
	}
	for _, candidate := range FallbackOrder {
		if value := strings.TrimSpace(t[string(candidate)]); value != "" {
			return value
		}
	}
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if value := strings.TrimSpace(t[key]); value != "" {
			return value
		}
	}
	return fallback
}

// Primary returns the value used for sorting and slug generation.
func (t LocalizedText) Primary() string {
	return t.Resolve(LocaleVI, "")
}

// IsEmpty reports whether no locale carries a non-empty value.
func (t LocalizedText) IsEmpty() bool {
	for _, value := range t {
		if strings.TrimSpace(value) != "" {
			return false
		}
	}
	return true
}

// Clone returns an independent copy of the map.
func (t LocalizedText) Clone() LocalizedText {
	if t == nil {
		return nil
	}
	clone := make(LocalizedText, len(t))
	for key, value := range t {
		clone[key] = value
	}
	return clone
}

// Matches reports whether any locale value contains the lower-cased needle.
func (t LocalizedText) Matches(loweredNeedle string) bool {
	if loweredNeedle == "" {
		return true
	}
	for _, value := range t {
		if strings.Contains(strings.ToLower(value), loweredNeedle) {
			return true
		}
	}
	return false
}

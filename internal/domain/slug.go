package domain

import (
	"regexp"
	"strings"
)

// vietnameseFolding maps Vietnamese letters (and their tone marks) onto the
// ASCII base letter used in slugs. The table is exhaustive for the lowercase
// forms; input is lower-cased before folding.
var vietnameseFolding = map[rune]rune{
	'à': 'a', 'á': 'a', 'ạ': 'a', 'ả': 'a', 'ã': 'a',
	'â': 'a', 'ầ': 'a', 'ấ': 'a', 'ậ': 'a', 'ẩ': 'a', 'ẫ': 'a',
	'ă': 'a', 'ằ': 'a', 'ắ': 'a', 'ặ': 'a', 'ẳ': 'a', 'ẵ': 'a',
	'è': 'e', 'é': 'e', 'ẹ': 'e', 'ẻ': 'e', 'ẽ': 'e',
	'ê': 'e', 'ề': 'e', 'ế': 'e', 'ệ': 'e', 'ể': 'e', 'ễ': 'e',
	'ì': 'i', 'í': 'i', 'ị': 'i', 'ỉ': 'i', 'ĩ': 'i',
	'ò': 'o', 'ó': 'o', 'ọ': 'o', 'ỏ': 'o', 'õ': 'o',
	'ô': 'o', 'ồ': 'o', 'ố': 'o', 'ộ': 'o', 'ổ': 'o', 'ỗ': 'o',
	'ơ': 'o', 'ờ': 'o', 'ớ': 'o', 'ợ': 'o', 'ở': 'o', 'ỡ': 'o',
	'ù': 'u', 'ú': 'u', 'ụ': 'u', 'ủ': 'u', 'ũ': 'u',
	'ư': 'u', 'ừ': 'u', 'ứ': 'u', 'ự': 'u', 'ử': 'u', 'ữ': 'u',
	'ỳ': 'y', 'ý': 'y', 'ỵ': 'y', 'ỷ': 'y', 'ỹ': 'y',
	'đ': 'd',
}

var slugSeparators = regexp.MustCompile(`[^a-z0-9]+`)

// GenerateSlug derives a URL slug from a display name. Vietnamese letters
// fold to their ASCII base, every other run of non-alphanumeric characters
// becomes a single hyphen, and the result never starts or ends with one.
// Names with no usable characters produce an empty slug.
func GenerateSlug(name string) string {
	lowered := strings.ToLower(strings.TrimSpace(name))
	var builder strings.Builder
	builder.Grow(len(lowered))
	for _, r := range lowered {
		if folded, ok := vietnameseFolding[r]; ok {
			builder.WriteRune(folded)
			continue
		}
		builder.WriteRune(r)
	}
	slug := slugSeparators.ReplaceAllString(builder.String(), "-")
	return strings.Trim(slug, "-")
}

// ValidSlug reports whether the value is a well-formed slug.
func ValidSlug(value string) bool {
	if value == "" {
		return false
	}
	return slugPattern.MatchString(value)
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)

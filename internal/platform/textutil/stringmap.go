package textutil

import "strings"

// NormalizeKeys trims map keys and removes entries whose key becomes empty.
func NormalizeKeys[V any](values map[string]V) map[string]V {
	if len(values) == 0 {
		return nil
	}
	result := make(map[string]V, len(values))
	for key, value := range values {
		trimmedKey := strings.TrimSpace(key)
		if trimmedKey == "" {
			continue
		}
		result[trimmedKey] = value
	}
	if len(result) == 0 {
		return nil
	}
	return result
}

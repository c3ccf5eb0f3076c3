package textutil

import (
	"reflect"
	"testing"
)

func TestNormalizeKeys(t *testing.T) {
	t.Helper()

	t.Run("trims keys and drops empty ones", func(t *testing.T) {
		input := map[string]string{
			" Material ": "leather",
			"color":      "brown",
			" ":          "ignored",
			"":           "ignored",
		}

		expected := map[string]string{
			"Material": "leather",
			"color":    "brown",
		}

		actual := NormalizeKeys(input)
		if !reflect.DeepEqual(actual, expected) {
			t.Fatalf("expected %#v got %#v", expected, actual)
		}
	})

	t.Run("returns nil for nil or empty input", func(t *testing.T) {
		if NormalizeKeys[string](nil) != nil {
			t.Fatalf("expected nil for nil input")
		}
		if NormalizeKeys(map[string]string{}) != nil {
			t.Fatalf("expected nil for empty map")
		}
		if NormalizeKeys(map[string]string{" ": "x"}) != nil {
			t.Fatalf("expected nil when all keys are blank")
		}
	})
}

// Package attrs reads values out of slog-style alternating key-value
// attribute slices.
package attrs

// ExtractString returns the string paired with key in an alternating
// [key1, value1, key2, value2, ...] slice. The first occurrence of key
// wins; a missing key, a ragged tail, or a non-string value yields "".
func ExtractString(attributes []any, key string) string {
	for i := 0; i+1 < len(attributes); i += 2 {
		k, ok := attributes[i].(string)
		if !ok || k != key {
			continue
		}
		v, _ := attributes[i+1].(string)
		return v
	}
	return ""
}

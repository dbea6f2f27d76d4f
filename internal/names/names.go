package names

import "strings"

// noisePrefixes are markers other parts of the app prepend to item names.
// Only a prefix at the very start of the name is stripped.
var noisePrefixes = []string{
	"updated ",
}

// Clean trims the name and strips a known noise prefix, keeping the
// original casing. A name that would become empty is returned trimmed
// but otherwise unchanged.
func Clean(name string) string {
	trimmed := strings.TrimSpace(name)

	for _, prefix := range noisePrefixes {
		if len(trimmed) < len(prefix) {
			continue
		}
		if !strings.EqualFold(trimmed[:len(prefix)], prefix) {
			continue
		}
		stripped := strings.TrimSpace(trimmed[len(prefix):])
		if stripped == "" {
			return trimmed
		}
		return stripped
	}

	return trimmed
}

// Key is the comparison form of a name: cleaned and case-folded.
func Key(name string) string {
	return strings.ToLower(Clean(name))
}

package tidy

import (
	"fmt"
	"strings"
)

// NormalizeName turns a raw header cell into a column name by replacing
// spaces with underscores.
func NormalizeName(raw string) string {
	return strings.ReplaceAll(raw, " ", "_")
}

// DisplayName is the inverse used for dimension labels: underscores
// become spaces again.
func DisplayName(name string) string {
	return strings.ReplaceAll(name, "_", " ")
}

// NormalizeHeader normalizes a header row in order. Two raw headers that
// end up with the same name are rejected rather than shadowing each other.
func NormalizeHeader(header []string) ([]string, error) {
	out := make([]string, len(header))
	seen := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.ToValidUTF8(h, "?")
		if i == 0 {
			h = strings.TrimPrefix(h, "\ufeff")
		}
		n := NormalizeName(h)
		if j, dup := seen[n]; dup {
			return nil, &SchemaError{
				Column: n,
				Msg:    fmt.Sprintf("headers %q and %q normalize to the same name", header[j], header[i]),
			}
		}
		seen[n] = i
		out[i] = n
	}
	return out, nil
}

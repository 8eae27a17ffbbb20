package domain

import (
	"fmt"
	"strings"
)

type enum interface {
	~uint8
}

func enumString[E enum](names []string, v E) string {
	if int(v) < len(names) {
		return names[v]
	}
	return fmt.Sprintf("UNKNOWN(%d)", uint8(v))
}

// parseEnum accepts the canonical SCREAMING_SNAKE name case-insensitively,
// with '-' allowed in place of '_'.
func parseEnum[E enum](kind string, names []string, s string) (E, error) {
	norm := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(s), "-", "_"))
	for i, n := range names {
		if n == norm {
			return E(i), nil
		}
	}
	var zero E
	return zero, fmt.Errorf("%w: %s %q", ErrUnknownGoal, kind, s)
}

func allEnum[E enum](names []string) []E {
	out := make([]E, len(names))
	for i := range names {
		out[i] = E(i)
	}
	return out
}

func unmarshalEnum[E enum](dst *E, kind string, names []string, b []byte) error {
	v, err := parseEnum[E](kind, names, string(b))
	if err != nil {
		return err
	}
	*dst = v
	return nil
}

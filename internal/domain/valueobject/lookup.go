package valueobject

import (
	"fmt"
	"strings"
)

// lookup resolves an enumeration value from either its canonical value
// ("GENERAL_LIABILITY") or its name ("GeneralLiability"). Tables are built
// once at package initialisation and never mutated afterwards.
type lookup[T fmt.Stringer] struct {
	kind    string
	byKey   map[string]T
	ordered []T
}

func newLookup[T fmt.Stringer](kind string, values ...T) lookup[T] {
	l := lookup[T]{kind: kind, byKey: make(map[string]T, len(values)), ordered: values}
	for _, v := range values {
		l.byKey[lookupKey(v.String())] = v
	}
	return l
}

func (l lookup[T]) parse(s string) (T, error) {
	if v, ok := l.byKey[lookupKey(s)]; ok {
		return v, nil
	}
	var zero T
	return zero, fmt.Errorf("invalid %s: %q", l.kind, s)
}

func (l lookup[T]) all() []T {
	out := make([]T, len(l.ordered))
	copy(out, l.ordered)
	return out
}

func lookupKey(s string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case '_', '-', ' ':
			return -1
		}
		return r
	}, strings.ToUpper(strings.TrimSpace(s)))
}

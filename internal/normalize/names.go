// Path: internal/normalize/names.go
package normalize

import (
	"pokedex/internal/shape"
)

// nameKeys is the locale preference used to pick a display string out of a
// localized name object.
var nameKeys = []string{"fr", "en", "jp", "name", "forme"}

// ResolveName turns any name-like node into a display string.
// Strings are returned as-is, localized objects resolve through nameKeys,
// numbers are stringified and everything else (including falsy values) is "".
func ResolveName(n shape.Node) string {
	if !n.Truthy() {
		return ""
	}
	switch n.Kind() {
	case shape.String:
		s, _ := n.Text()
		return s
	case shape.Object:
		return ResolveName(n.First(nameKeys...))
	case shape.Number, shape.Bool:
		return n.String()
	default:
		return ""
	}
}

// coalesce returns the first present node, mimicking a chain of `??`.
func coalesce(nodes ...shape.Node) shape.Node {
	for _, n := range nodes {
		if n.Present() {
			return n
		}
	}
	return shape.Node{}
}

// firstText returns the first member of n among keys holding a non-empty string.
func firstText(n shape.Node, keys ...string) string {
	for _, k := range keys {
		if s, ok := n.Get(k).Text(); ok && s != "" {
			return s
		}
	}
	return ""
}

// EntityID reads the upstream identifier: pokedex_id, then id.
func EntityID(n shape.Node) (int, bool) {
	return coalesce(n.Get("pokedex_id"), n.Get("id")).Int()
}

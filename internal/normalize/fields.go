// Path: internal/normalize/fields.go
package normalize

import (
	"strconv"

	"pokedex/internal/domain"
	"pokedex/internal/shape"
)

// Types accepts an array of type-like nodes or a single one.
func Types(n shape.Node) []domain.TypeTag {
	out := []domain.TypeTag{}
	if !n.Truthy() {
		return out
	}
	if !n.IsArray() {
		return append(out, typeTag(n))
	}
	for _, item := range n.Items() {
		out = append(out, typeTag(item))
	}
	return out
}

func typeTag(n shape.Node) domain.TypeTag {
	name := coalesce(n.Get("name"), n.Path("type", "name"), n)
	return domain.TypeTag{
		Name:    ResolveName(name),
		IconURL: firstText(n, "image", "sprite", "icon"),
	}
}

// Abilities accepts a list of flat names or nested {ability:{name}} nodes.
// List entries that resolve to nothing get a positional placeholder. A single
// node yields a one-element list holding its resolved name, which may be "".
func Abilities(n shape.Node) []string {
	out := []string{}
	if !n.Truthy() {
		return out
	}
	if !n.IsArray() {
		return append(out, abilityName(n))
	}
	for i, item := range n.Items() {
		name := abilityName(item)
		if name == "" {
			name = "ability-" + strconv.Itoa(i)
		}
		out = append(out, name)
	}
	return out
}

func abilityName(n shape.Node) string {
	return ResolveName(coalesce(n.Path("ability", "name"), n.Get("name"), n))
}

// Stats accepts either a list of stat entries or a label→value mapping. The
// mapping form keeps the document order of its members.
func Stats(n shape.Node) []domain.Stat {
	out := []domain.Stat{}
	switch {
	case n.IsArray():
		for i, item := range n.Items() {
			label := ResolveName(coalesce(item.Get("name"), item.Path("stat", "name")))
			if label == "" {
				label = "stat-" + strconv.Itoa(i)
			}
			value := coalesce(item.Get("base_stat"), item.Get("value"), item.Get("amount"))
			v := "?"
			if value.Present() {
				v = value.String()
			}
			out = append(out, domain.Stat{Label: label, Value: v})
		}
	case n.IsObject():
		for _, m := range n.Members() {
			out = append(out, domain.Stat{Label: m.Key, Value: m.Value.String()})
		}
	}
	return out
}

// SpriteSet reads {regular|default, shiny}. A bare string is taken as the default sprite.
func SpriteSet(n shape.Node) domain.SpriteSet {
	if s, ok := n.Text(); ok {
		return domain.SpriteSet{Default: s}
	}
	return domain.SpriteSet{
		Default: firstText(n, "regular", "default"),
		Shiny:   firstText(n, "shiny"),
	}
}

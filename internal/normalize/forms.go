// Path: internal/normalize/forms.go
package normalize

import (
	"strings"

	"pokedex/internal/domain"
	"pokedex/internal/shape"
)

// Form name labels.
const (
	MegaEvolutionLabel = "Mega Evolution"
	MegaXSuffix        = " (Mega X)"
	MegaYSuffix        = " (Mega Y)"
	GigamaxSuffix      = " (Gigamax)"
)

// Forms extracts alternate forms of an entity. Three independent rules are
// applied in order and concatenated without deduplication:
// evolution.mega entries, sprites.mega.{x,y} and sprites.gmax.
func Forms(root shape.Node, displayName string) []domain.FormEntry {
	out := []domain.FormEntry{}

	for _, m := range root.Path("evolution", "mega").Items() {
		name := ResolveName(coalesce(m.Get("orbe"), m.Get("name")))
		if name == "" {
			name = MegaEvolutionLabel
		}
		out = append(out, domain.FormEntry{Name: name, Sprites: SpriteSet(m.Get("sprites"))})
	}

	mega := root.Path("sprites", "mega")
	if x := mega.Get("x"); x.Truthy() {
		out = append(out, domain.FormEntry{Name: displayName + MegaXSuffix, Sprites: SpriteSet(x)})
	}
	if y := mega.Get("y"); y.Truthy() {
		out = append(out, domain.FormEntry{Name: displayName + MegaYSuffix, Sprites: SpriteSet(y)})
	}

	if gmax := root.Path("sprites", "gmax"); gmax.Truthy() {
		out = append(out, domain.FormEntry{Name: displayName + GigamaxSuffix, Sprites: SpriteSet(gmax)})
	}
	return out
}

// HasOwnForms reports whether the payload carries any alternate-form data
// itself, even an empty group. Such an entity never borrows forms from its
// evolution chain.
func HasOwnForms(root shape.Node) bool {
	return root.Path("evolution", "mega").Truthy() ||
		root.Path("sprites", "mega").Truthy() ||
		root.Path("sprites", "gmax").Truthy()
}

var formMarkers = []string{"méga", "mega", "gigamax", "gmax"}

// DisplayableForms keeps the forms worth showing next to the base entity:
// mega/gigamax variants, forms with their own artwork, and forms whose name
// differs from the base name.
func DisplayableForms(base domain.CatalogEntity, forms []domain.FormEntry) []domain.FormEntry {
	baseName := strings.ToLower(base.DisplayName)
	baseSprite := base.Sprites.Default

	out := []domain.FormEntry{}
	for _, f := range forms {
		name := strings.ToLower(f.Name)
		switch {
		case containsAny(name, formMarkers):
		case f.Sprites.Default != "" && baseSprite != "" && f.Sprites.Default != baseSprite:
		case name != "" && name != baseName:
		default:
			continue
		}
		out = append(out, f)
	}
	return out
}

func containsAny(s string, subs []string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}

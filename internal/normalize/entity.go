// Path: internal/normalize/entity.go
package normalize

import (
	"pokedex/internal/domain"
	"pokedex/internal/shape"
)

// Entity builds the canonical entity from a full upstream payload.
// fallbackID is used when the payload carries no identifier of its own,
// typically the id the payload was requested with.
func Entity(root shape.Node, fallbackID int) domain.CatalogEntity {
	e := Lite(root)
	if _, ok := EntityID(root); !ok {
		e.ID = fallbackID
		if ResolveName(root.Get("name")) == "" {
			e.DisplayName = domain.FallbackName(fallbackID)
		}
	}

	e.Abilities = Abilities(root.First("abilities", "abilities_list", "talents"))
	e.Stats = Stats(root.First("stats", "base_stats"))
	e.Evolution = Evolution(root)
	e.Forms = Forms(root, e.DisplayName)
	e.Sprites.AlternateForms = alternateForms(e.Forms)
	return e
}

// Lite builds the listing subset of an entity: id, name, sprites and types.
func Lite(root shape.Node) domain.CatalogEntity {
	id, _ := EntityID(root)
	name := ResolveName(root.Get("name"))
	if name == "" {
		name = domain.FallbackName(id)
	}
	sprites := SpriteSet(root.Get("sprites"))

	return domain.CatalogEntity{
		ID:          id,
		DisplayName: name,
		Types:       Types(root.First("types", "type", "types_list")),
		Sprites:     domain.Sprites{Default: sprites.Default, Shiny: sprites.Shiny},
		Stats:       []domain.Stat{},
		Abilities:   []string{},
		Forms:       []domain.FormEntry{},
	}
}

// LiteList normalizes a listing payload. Entries without an id are dropped
// because the id is the only navigation key.
func LiteList(root shape.Node) []domain.CatalogEntity {
	out := []domain.CatalogEntity{}
	for _, item := range root.Items() {
		if _, ok := EntityID(item); !ok {
			continue
		}
		out = append(out, Lite(item))
	}
	return out
}

func alternateForms(forms []domain.FormEntry) map[string]domain.SpriteSet {
	if len(forms) == 0 {
		return nil
	}
	m := make(map[string]domain.SpriteSet, len(forms))
	for _, f := range forms {
		if _, dup := m[f.Name]; !dup {
			m[f.Name] = f.Sprites
		}
	}
	return m
}

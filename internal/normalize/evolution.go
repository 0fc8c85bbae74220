// Path: internal/normalize/evolution.go
package normalize

import (
	"pokedex/internal/domain"
	"pokedex/internal/shape"
)

// Evolution normalizes the evolution block embedded in an entity payload.
// It returns nil when the payload carries no block at all.
func Evolution(root shape.Node) *domain.Evolution {
	return EvolutionBlock(root.Get("evolution"))
}

// EvolutionBlock normalizes a standalone {pre, next} block, as served by the
// evolution endpoint. Each side may be a list, a single object or a bare id.
// A bare list is read as successors.
func EvolutionBlock(block shape.Node) *domain.Evolution {
	switch {
	case block.IsObject():
		return &domain.Evolution{
			Precedents: evolutionRefs(block.Get("pre")),
			Successors: evolutionRefs(block.Get("next")),
		}
	case block.IsArray():
		return &domain.Evolution{
			Precedents: []domain.EvolutionRef{},
			Successors: evolutionRefs(block),
		}
	default:
		return nil
	}
}

func evolutionRefs(side shape.Node) []domain.EvolutionRef {
	out := []domain.EvolutionRef{}
	switch {
	case side.IsArray():
		for _, item := range side.Items() {
			if ref, ok := evolutionRef(item); ok {
				out = append(out, ref)
			}
		}
	case side.Present():
		if ref, ok := evolutionRef(side); ok {
			out = append(out, ref)
		}
	}
	return out
}

func evolutionRef(n shape.Node) (domain.EvolutionRef, bool) {
	// A bare id: the name is filled in later by a lookup.
	if !n.IsObject() {
		id, ok := n.Int()
		if !ok {
			return domain.EvolutionRef{}, false
		}
		return domain.EvolutionRef{TargetID: &id}, true
	}

	ref := domain.EvolutionRef{
		Name:      ResolveName(n.Get("name")),
		Condition: ResolveName(n.Get("condition")),
		Sprites:   SpriteSet(n.Get("sprites")),
	}
	if ref.Name == "" {
		ref.Name = ResolveName(n)
	}
	if id, ok := EntityID(n); ok {
		ref.TargetID = &id
	}
	if ref.TargetID == nil && ref.Name == "" {
		return domain.EvolutionRef{}, false
	}
	return ref, true
}

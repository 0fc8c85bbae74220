// Path: internal/domain/models.go
package domain

import (
	"maps"
	"slices"
	"strconv"
)

// TypeTag is one elemental type of an entity, in upstream order.
type TypeTag struct {
	Name    string `json:"name"`
	IconURL string `json:"iconUrl,omitempty"`
}

// SpriteSet holds the normal and shiny artwork URLs of one appearance.
type SpriteSet struct {
	Default string `json:"default,omitempty"`
	Shiny   string `json:"shiny,omitempty"`
}

// IsZero reports whether neither sprite is known.
func (s SpriteSet) IsZero() bool { return s.Default == "" && s.Shiny == "" }

// Sprites is the artwork of an entity plus its alternate forms keyed by form name.
type Sprites struct {
	Default        string               `json:"default,omitempty"`
	Shiny          string               `json:"shiny,omitempty"`
	AlternateForms map[string]SpriteSet `json:"alternateForms,omitempty"`
}

// Pick returns the shiny or default sprite.
func (s Sprites) Pick(shiny bool) string {
	if shiny {
		return s.Shiny
	}
	return s.Default
}

// Stat is a labelled base statistic. The value stays a string because the
// upstream unit and numeric shape are inconsistent across entries.
type Stat struct {
	Label string `json:"label"`
	Value string `json:"value"`
}

// EvolutionRef points at another entity of the evolution chain.
type EvolutionRef struct {
	TargetID  *int      `json:"targetId,omitempty"`
	Name      string    `json:"name"`
	Condition string    `json:"condition,omitempty"`
	Sprites   SpriteSet `json:"sprites,omitzero"`
}

// Evolution lists the entities an entity evolves from and into.
type Evolution struct {
	Precedents []EvolutionRef `json:"precedents"`
	Successors []EvolutionRef `json:"successors"`
}

// TargetIDs returns precedent then successor ids, in order, without duplicates.
func (e *Evolution) TargetIDs() []int {
	if e == nil {
		return nil
	}
	seen := make(map[int]bool)
	var ids []int
	for _, group := range [][]EvolutionRef{e.Precedents, e.Successors} {
		for _, ref := range group {
			if ref.TargetID == nil || seen[*ref.TargetID] {
				continue
			}
			seen[*ref.TargetID] = true
			ids = append(ids, *ref.TargetID)
		}
	}
	return ids
}

// FormEntry is an alternate appearance: mega evolutions, gigantamax, regional forms.
type FormEntry struct {
	Name    string    `json:"name"`
	Sprites SpriteSet `json:"sprites"`
}

// CatalogEntity is the canonical, display-ready record of one catalog entry.
// It is rebuilt on every fetch and never mutated in place.
type CatalogEntity struct {
	ID          int         `json:"id"`
	DisplayName string      `json:"displayName"`
	Types       []TypeTag   `json:"types"`
	Sprites     Sprites     `json:"sprites"`
	Stats       []Stat      `json:"stats"`
	Abilities   []string    `json:"abilities"`
	Evolution   *Evolution  `json:"evolution,omitempty"`
	Forms       []FormEntry `json:"forms"`
}

// FallbackName is the display name used when no localized name resolves.
func FallbackName(id int) string {
	return "#" + strconv.Itoa(id)
}

// Clone returns a deep copy, used when a snapshot must not alias the source.
func (e CatalogEntity) Clone() CatalogEntity {
	out := e
	out.Types = slices.Clone(e.Types)
	out.Stats = slices.Clone(e.Stats)
	out.Abilities = slices.Clone(e.Abilities)
	out.Forms = slices.Clone(e.Forms)
	if e.Sprites.AlternateForms != nil {
		out.Sprites.AlternateForms = maps.Clone(e.Sprites.AlternateForms)
	}
	if e.Evolution != nil {
		ev := Evolution{
			Precedents: cloneRefs(e.Evolution.Precedents),
			Successors: cloneRefs(e.Evolution.Successors),
		}
		out.Evolution = &ev
	}
	return out
}

func cloneRefs(refs []EvolutionRef) []EvolutionRef {
	if refs == nil {
		return nil
	}
	out := make([]EvolutionRef, len(refs))
	for i, r := range refs {
		out[i] = r
		if r.TargetID != nil {
			id := *r.TargetID
			out[i].TargetID = &id
		}
	}
	return out
}

// Navigation addresses the neighbouring detail views of an entity.
type Navigation struct {
	PrevID *int `json:"prevId"`
	NextID int  `json:"nextId"`
}

// NavigationFor computes id-1 / id+1 traversal; there is no entity before 1.
func NavigationFor(id int) Navigation {
	nav := Navigation{NextID: id + 1}
	if id > 1 {
		prev := id - 1
		nav.PrevID = &prev
	}
	return nav
}

// Detail is what a detail view renders for one entity.
type Detail struct {
	Entity     CatalogEntity `json:"entity"`
	Navigation Navigation    `json:"navigation"`
	Favorite   bool          `json:"favorite"`
}

// Path: internal/domain/models_test.go
package domain

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

func TestCatalogEntity_CloneDoesNotAlias(t *testing.T) {
	orig := CatalogEntity{
		ID:          25,
		DisplayName: "Pikachu",
		Types:       []TypeTag{{Name: "Électrik"}},
		Sprites: Sprites{
			Default:        "regular.png",
			AlternateForms: map[string]SpriteSet{"Pikachu (Gigamax)": {Default: "gmax.png"}},
		},
		Abilities: []string{"Statik"},
		Evolution: &Evolution{
			Precedents: []EvolutionRef{{TargetID: intPtr(172), Name: "Pichu"}},
			Successors: []EvolutionRef{},
		},
		Forms: []FormEntry{},
	}

	cp := orig.Clone()
	cp.Types[0].Name = "changed"
	cp.Abilities[0] = "changed"
	cp.Sprites.AlternateForms["x"] = SpriteSet{}
	*cp.Evolution.Precedents[0].TargetID = 1

	assert.Equal(t, "Électrik", orig.Types[0].Name)
	assert.Equal(t, "Statik", orig.Abilities[0])
	assert.Len(t, orig.Sprites.AlternateForms, 1)
	assert.Equal(t, 172, *orig.Evolution.Precedents[0].TargetID)
	assert.NotNil(t, cp.Forms, "empty slices stay non-nil")
	assert.NotNil(t, cp.Evolution.Successors)
}

func TestEvolution_TargetIDs(t *testing.T) {
	ev := &Evolution{
		Precedents: []EvolutionRef{{TargetID: intPtr(172)}, {Name: "no id"}},
		Successors: []EvolutionRef{{TargetID: intPtr(26)}, {TargetID: intPtr(172)}},
	}
	assert.Equal(t, []int{172, 26}, ev.TargetIDs())

	var none *Evolution
	assert.Nil(t, none.TargetIDs())
}

func TestNavigationFor(t *testing.T) {
	first := NavigationFor(1)
	assert.Nil(t, first.PrevID)
	assert.Equal(t, 2, first.NextID)

	mid := NavigationFor(25)
	require.NotNil(t, mid.PrevID)
	assert.Equal(t, 24, *mid.PrevID)
	assert.Equal(t, 26, mid.NextID)
}

func TestTransportError(t *testing.T) {
	status := &TransportError{Op: "GET", URL: "http://x/pokemon", StatusCode: 503}
	assert.Equal(t, "GET http://x/pokemon: unexpected status code: 503", status.Error())

	cause := errors.New("connection refused")
	wrapped := fmt.Errorf("list: %w", &TransportError{Op: "GET", URL: "http://x", Err: cause})
	assert.True(t, IsTransport(wrapped))
	assert.ErrorIs(t, wrapped, cause)
	assert.False(t, IsTransport(ErrNotFound))
}

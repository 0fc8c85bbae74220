// Path: internal/shape/node_test.go
package shape

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesMemberOrder(t *testing.T) {
	n := MustParse(`{"hp":35,"atk":55,"def":40,"spe_atk":50}`)

	var keys []string
	for _, m := range n.Members() {
		keys = append(keys, m.Key)
	}
	assert.Equal(t, []string{"hp", "atk", "def", "spe_atk"}, keys)
}

func TestParse_DuplicateKeyKeepsFirstPositionLastValue(t *testing.T) {
	n := MustParse(`{"a":1,"b":2,"a":3}`)

	members := n.Members()
	require.Len(t, members, 2)
	assert.Equal(t, "a", members[0].Key)
	assert.Equal(t, "3", members[0].Value.String())
}

func TestParse_RejectsTrailingData(t *testing.T) {
	_, err := Parse([]byte(`{"a":1} {"b":2}`))
	assert.Error(t, err)

	_, err = Parse([]byte(`{"a":`))
	assert.Error(t, err)
}

func TestNode_AccessorsAreTotal(t *testing.T) {
	n := MustParse(`"just a string"`)

	assert.Equal(t, Missing, n.Get("name").Kind())
	assert.Equal(t, Missing, n.Path("evolution", "pre", "x").Kind())
	assert.Nil(t, n.Items())
	assert.Nil(t, n.Members())
	assert.False(t, n.Get("x").Present())
}

func TestNode_First(t *testing.T) {
	n := MustParse(`{"types":null,"type":[{"name":"Feu"}],"types_list":[]}`)

	got := n.First("types", "type", "types_list")
	require.True(t, got.IsArray())
	assert.Len(t, got.Items(), 1)

	assert.False(t, n.First("nope", "types").Present())
}

func TestNode_Int(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{`25`, 25, true},
		{`25.0`, 25, true},
		{`"172"`, 172, true},
		{`"pikachu"`, 0, false},
		{`2.5`, 0, false},
		{`null`, 0, false},
	}
	for _, tt := range tests {
		got, ok := MustParse(tt.in).Int()
		assert.Equal(t, tt.ok, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestNode_Truthy(t *testing.T) {
	assert.False(t, MustParse(`""`).Truthy())
	assert.False(t, MustParse(`0`).Truthy())
	assert.False(t, MustParse(`false`).Truthy())
	assert.False(t, MustParse(`null`).Truthy())
	assert.False(t, Node{}.Truthy())
	assert.True(t, MustParse(`{}`).Truthy())
	assert.True(t, MustParse(`[]`).Truthy())
	assert.True(t, MustParse(`"x"`).Truthy())
}

func TestNode_StringCompactsContainers(t *testing.T) {
	n := MustParse(`{ "b" : [1, true, null], "a" : "é" }`)
	assert.Equal(t, `{"b":[1,true,null],"a":"é"}`, n.String())
}

func TestNode_UnmarshalInsideStruct(t *testing.T) {
	var payload struct {
		Evolution Node `json:"evolution"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"evolution":{"next":[{"pokedex_id":26}]}}`), &payload))

	id, ok := payload.Evolution.Get("next").Items()[0].Get("pokedex_id").Int()
	require.True(t, ok)
	assert.Equal(t, 26, id)

	out, err := json.Marshal(payload)
	require.NoError(t, err)
	assert.JSONEq(t, `{"evolution":{"next":[{"pokedex_id":26}]}}`, string(out))
}

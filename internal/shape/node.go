// Path: internal/shape/node.go
package shape

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Kind identifies which variant of the tagged union a Node holds.
type Kind uint8

const (
	// Missing is the zero Kind: the value was not in the document at all.
	Missing Kind = iota
	Null
	String
	Number
	Bool
	Object
	Array
)

func (k Kind) String() string {
	switch k {
	case Null:
		return "null"
	case String:
		return "string"
	case Number:
		return "number"
	case Bool:
		return "bool"
	case Object:
		return "object"
	case Array:
		return "array"
	default:
		return "missing"
	}
}

// Member is one key/value pair of an object, in document order.
type Member struct {
	Key   string
	Value Node
}

// Node is a loosely-typed JSON value. Upstream payloads are parsed into a Node
// tree once, and every accessor on it is total: asking for a field of a
// string, or an item of an object, yields a Missing node instead of failing.
type Node struct {
	kind    Kind
	text    string // string value or number literal
	boolean bool
	members []Member
	index   map[string]int
	items   []Node
}

// Parse decodes a JSON document into a Node tree, preserving object member order.
func Parse(data []byte) (Node, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	n, err := decodeValue(dec)
	if err != nil {
		return Node{}, err
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return Node{}, fmt.Errorf("shape: trailing data after top-level value")
	}
	return n, nil
}

// MustParse is Parse for literals known to be valid. It panics on error.
func MustParse(s string) Node {
	n, err := Parse([]byte(s))
	if err != nil {
		panic(err)
	}
	return n
}

func decodeValue(dec *json.Decoder) (Node, error) {
	tok, err := dec.Token()
	if err != nil {
		return Node{}, err
	}
	switch v := tok.(type) {
	case nil:
		return Node{kind: Null}, nil
	case string:
		return Node{kind: String, text: v}, nil
	case json.Number:
		return Node{kind: Number, text: v.String()}, nil
	case bool:
		return Node{kind: Bool, boolean: v}, nil
	case json.Delim:
		switch v {
		case '{':
			return decodeObject(dec)
		case '[':
			return decodeArray(dec)
		}
	}
	return Node{}, fmt.Errorf("shape: unexpected token %v", tok)
}

func decodeObject(dec *json.Decoder) (Node, error) {
	n := Node{kind: Object, index: map[string]int{}}
	for dec.More() {
		tok, err := dec.Token()
		if err != nil {
			return Node{}, err
		}
		key, ok := tok.(string)
		if !ok {
			return Node{}, fmt.Errorf("shape: object key is %T", tok)
		}
		val, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		// Duplicate keys keep their first position and the last value.
		if i, dup := n.index[key]; dup {
			n.members[i].Value = val
			continue
		}
		n.index[key] = len(n.members)
		n.members = append(n.members, Member{Key: key, Value: val})
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return n, nil
}

func decodeArray(dec *json.Decoder) (Node, error) {
	n := Node{kind: Array, items: []Node{}}
	for dec.More() {
		val, err := decodeValue(dec)
		if err != nil {
			return Node{}, err
		}
		n.items = append(n.items, val)
	}
	if _, err := dec.Token(); err != nil {
		return Node{}, err
	}
	return n, nil
}

// UnmarshalJSON implements the json.Unmarshaler interface so a Node can sit
// inside ordinary structs.
func (n *Node) UnmarshalJSON(data []byte) error {
	parsed, err := Parse(data)
	if err != nil {
		return err
	}
	*n = parsed
	return nil
}

// MarshalJSON implements the json.Marshaler interface.
func (n Node) MarshalJSON() ([]byte, error) {
	if n.kind == Missing {
		return []byte("null"), nil
	}
	var b strings.Builder
	n.writeJSON(&b)
	return []byte(b.String()), nil
}

func (n Node) Kind() Kind { return n.kind }

// Present reports whether the node holds a value other than null.
func (n Node) Present() bool { return n.kind != Missing && n.kind != Null }

func (n Node) IsObject() bool { return n.kind == Object }
func (n Node) IsArray() bool  { return n.kind == Array }

// Get returns the named member of an object node, or a Missing node.
func (n Node) Get(key string) Node {
	if n.kind != Object {
		return Node{}
	}
	if i, ok := n.index[key]; ok {
		return n.members[i].Value
	}
	return Node{}
}

// Path follows a chain of member names.
func (n Node) Path(keys ...string) Node {
	cur := n
	for _, k := range keys {
		cur = cur.Get(k)
	}
	return cur
}

// First returns the first present member among keys, or a Missing node.
func (n Node) First(keys ...string) Node {
	for _, k := range keys {
		if v := n.Get(k); v.Present() {
			return v
		}
	}
	return Node{}
}

// Members returns object members in document order.
func (n Node) Members() []Member {
	if n.kind != Object {
		return nil
	}
	return n.members
}

// Items returns array elements, or nil for any other kind.
func (n Node) Items() []Node {
	if n.kind != Array {
		return nil
	}
	return n.items
}

// Text returns the value of a string node.
func (n Node) Text() (string, bool) {
	if n.kind != String {
		return "", false
	}
	return n.text, true
}

// Int returns an integer for number nodes and numeric strings.
func (n Node) Int() (int, bool) {
	switch n.kind {
	case Number:
		if i, err := strconv.Atoi(n.text); err == nil {
			return i, true
		}
		if f, err := strconv.ParseFloat(n.text, 64); err == nil && f == float64(int(f)) {
			return int(f), true
		}
	case String:
		if i, err := strconv.Atoi(strings.TrimSpace(n.text)); err == nil {
			return i, true
		}
	}
	return 0, false
}

// Truthy mirrors the loose truthiness the upstream data relies on: empty
// strings, zero, false, null and missing values are all falsy.
func (n Node) Truthy() bool {
	switch n.kind {
	case String:
		return n.text != ""
	case Number:
		f, err := strconv.ParseFloat(n.text, 64)
		return err == nil && f != 0
	case Bool:
		return n.boolean
	case Object, Array:
		return true
	default:
		return false
	}
}

// String stringifies the node: strings verbatim, numbers as their literal,
// containers as compact JSON. Missing yields "".
func (n Node) String() string {
	switch n.kind {
	case Missing:
		return ""
	case String, Number:
		return n.text
	case Bool:
		return strconv.FormatBool(n.boolean)
	case Null:
		return "null"
	}
	var b strings.Builder
	n.writeJSON(&b)
	return b.String()
}

func (n Node) writeJSON(b *strings.Builder) {
	switch n.kind {
	case String:
		q, _ := json.Marshal(n.text)
		b.Write(q)
	case Number:
		b.WriteString(n.text)
	case Bool:
		b.WriteString(strconv.FormatBool(n.boolean))
	case Object:
		b.WriteByte('{')
		for i, m := range n.members {
			if i > 0 {
				b.WriteByte(',')
			}
			q, _ := json.Marshal(m.Key)
			b.Write(q)
			b.WriteByte(':')
			m.Value.writeJSON(b)
		}
		b.WriteByte('}')
	case Array:
		b.WriteByte('[')
		for i, it := range n.items {
			if i > 0 {
				b.WriteByte(',')
			}
			it.writeJSON(b)
		}
		b.WriteByte(']')
	default:
		b.WriteString("null")
	}
}

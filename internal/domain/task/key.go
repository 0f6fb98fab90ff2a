package task

import "strconv"

type keyKind int

const (
	keyInvalid keyKind = iota
	keyID
	keyName
)

// Key identifies a node inside a tree, either by id or by name.
// The zero Key matches nothing and is rejected with ErrTypeMismatch.
type Key struct {
	kind keyKind
	id   int
	name string
}

// ByID matches nodes with the given id.
func ByID(id int) Key {
	return Key{kind: keyID, id: id}
}

// ByName matches nodes with the given name.
func ByName(name string) Key {
	return Key{kind: keyName, name: name}
}

// ByNode matches nodes sharing the id of n.
func ByNode(n *Node) Key {
	if n == nil {
		return Key{}
	}
	return ByID(n.ID)
}

func (k Key) String() string {
	switch k.kind {
	case keyID:
		return "id " + strconv.Itoa(k.id)
	case keyName:
		return "name " + strconv.Quote(k.name)
	default:
		return "invalid key"
	}
}

// Equal reports whether n matches k.
func (n *Node) Equal(k Key) (bool, error) {
	switch k.kind {
	case keyID:
		return n.ID == k.id, nil
	case keyName:
		return n.Name == k.name, nil
	default:
		return false, ErrTypeMismatch
	}
}

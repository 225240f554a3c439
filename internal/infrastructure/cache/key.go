package cache

import "strconv"

// Kind names a resource collection, e.g. "users" or "products"
type Kind string

// Key addresses one cache entry: a resource kind and an optional id
type Key struct {
	Kind  Kind
	ID    int64
	HasID bool
}

// ListKey returns the key of the whole collection of kind
func ListKey(kind Kind) Key {
	return Key{Kind: kind}
}

// ItemKey returns the key of a single record of kind
func ItemKey(kind Kind, id int64) Key {
	return Key{Kind: kind, ID: id, HasID: true}
}

// String renders the key as "kind" or "kind:id"
func (k Key) String() string {
	if !k.HasID {
		return string(k.Kind)
	}
	return string(k.Kind) + ":" + strconv.FormatInt(k.ID, 10)
}

// Predicate selects keys for invalidation
type Predicate func(Key) bool

// MatchKind selects the list key and every item key of kind
func MatchKind(kind Kind) Predicate {
	return func(k Key) bool {
		return k.Kind == kind
	}
}

// MatchKey selects exactly key
func MatchKey(key Key) Predicate {
	return func(k Key) bool {
		return k == key
	}
}

// MatchAll selects every key
func MatchAll() Predicate {
	return func(Key) bool {
		return true
	}
}

// Package collection provides ordered, typed collections of transit objects
// with stable positional handles and built-in string identifier support.
package collection

import (
	"fmt"
	"iter"
)

// Identifiable is implemented by every object kind that carries a
// caller-visible string identifier.
type Identifiable interface {
	ObjectID() string
}

// IdentifierExistsError is returned when two objects of the same kind share
// an identifier at build time.
type IdentifierExistsError struct {
	ID string
}

func (e *IdentifierExistsError) Error() string {
	return fmt.Sprintf("identifier %s already exists", e.ID)
}

// Idx is an opaque positional handle into a collection of T. A handle is
// only meaningful against the collection instance that produced it and stays
// valid for that instance's lifetime; rebuilding a collection invalidates
// every handle taken from the old one.
type Idx[T any] struct {
	pos uint32
}

// Raw exposes the underlying position so the relation layer can store
// handles of heterogeneous kinds in one adjacency structure. Callers outside
// that plumbing should treat handles as opaque.
func (i Idx[T]) Raw() uint32 { return i.pos }

// IdxFrom rebuilds a typed handle from a raw position produced by Raw.
func IdxFrom[T any](pos uint32) Idx[T] { return Idx[T]{pos: pos} }

// IdxSet is an unordered, deduplicated group of handles of one kind.
type IdxSet[T any] map[Idx[T]]struct{}

// NewIdxSet builds a set from the given handles.
func NewIdxSet[T any](idxs ...Idx[T]) IdxSet[T] {
	s := make(IdxSet[T], len(idxs))
	for _, i := range idxs {
		s[i] = struct{}{}
	}
	return s
}

// Add inserts a handle into the set.
func (s IdxSet[T]) Add(i Idx[T]) { s[i] = struct{}{} }

// Contains reports whether the handle is in the set.
func (s IdxSet[T]) Contains(i Idx[T]) bool {
	_, ok := s[i]
	return ok
}

// Collection holds objects of one kind in insertion order. The zero value is
// an empty collection ready for use.
type Collection[T any] struct {
	objects []T
}

// NewCollection wraps the given objects; handles are assigned in input order.
func NewCollection[T any](objects []T) *Collection[T] {
	return &Collection[T]{objects: objects}
}

// Len returns the number of objects held.
func (c *Collection[T]) Len() int { return len(c.objects) }

// MustGet resolves a handle obtained from this collection. Passing a handle
// from another collection instance is a programming error and panics.
func (c *Collection[T]) MustGet(i Idx[T]) *T {
	if int(i.pos) >= len(c.objects) {
		panic(fmt.Sprintf("collection: handle %d out of range (len %d)", i.pos, len(c.objects)))
	}
	return &c.objects[i.pos]
}

// All iterates objects in insertion order together with their handles.
func (c *Collection[T]) All() iter.Seq2[Idx[T], *T] {
	return func(yield func(Idx[T], *T) bool) {
		for p := range c.objects {
			if !yield(Idx[T]{pos: uint32(p)}, &c.objects[p]) {
				return
			}
		}
	}
}

// Values returns the ordered backing records. The slice is shared with the
// collection; callers must not append to it.
func (c *Collection[T]) Values() []T { return c.objects }

// Push appends an object and returns its handle.
func (c *Collection[T]) Push(object T) Idx[T] {
	c.objects = append(c.objects, object)
	return Idx[T]{pos: uint32(len(c.objects) - 1)}
}

// Take hands the records back to the caller and empties the collection,
// invalidating every handle taken from it.
func (c *Collection[T]) Take() []T {
	objects := c.objects
	c.objects = nil
	return objects
}

// Retain rebuilds the collection keeping only objects for which keep returns
// true, and returns how many were dropped. All previous handles are
// invalidated.
func (c *Collection[T]) Retain(keep func(*T) bool) int {
	kept := c.objects[:0]
	for p := range c.objects {
		if keep(&c.objects[p]) {
			kept = append(kept, c.objects[p])
		}
	}
	removed := len(c.objects) - len(kept)
	c.objects = kept
	return removed
}

// CollectionWithID is a Collection with an auxiliary index from object
// identifier to handle.
type CollectionWithID[T Identifiable] struct {
	Collection[T]
	idToIdx map[string]Idx[T]
}

// NewCollectionWithID builds the collection and its identifier index,
// failing with IdentifierExistsError on the first collision. No partial
// collection is returned on failure.
func NewCollectionWithID[T Identifiable](objects []T) (*CollectionWithID[T], error) {
	c := &CollectionWithID[T]{
		Collection: Collection[T]{objects: objects},
		idToIdx:    make(map[string]Idx[T], len(objects)),
	}
	for p := range objects {
		id := objects[p].ObjectID()
		if _, ok := c.idToIdx[id]; ok {
			return nil, &IdentifierExistsError{ID: id}
		}
		c.idToIdx[id] = Idx[T]{pos: uint32(p)}
	}
	return c, nil
}

// MustCollectionWithID is NewCollectionWithID for inputs known to be
// collision free, e.g. test fixtures.
func MustCollectionWithID[T Identifiable](objects []T) *CollectionWithID[T] {
	c, err := NewCollectionWithID(objects)
	if err != nil {
		panic(err)
	}
	return c
}

// GetByID returns the object with the given identifier, if any.
func (c *CollectionWithID[T]) GetByID(id string) (*T, bool) {
	i, ok := c.idToIdx[id]
	if !ok {
		return nil, false
	}
	return &c.objects[i.pos], true
}

// GetIdx returns the handle of the object with the given identifier, if any.
func (c *CollectionWithID[T]) GetIdx(id string) (Idx[T], bool) {
	i, ok := c.idToIdx[id]
	return i, ok
}

// Contains reports whether an object with the given identifier exists.
func (c *CollectionWithID[T]) Contains(id string) bool {
	_, ok := c.idToIdx[id]
	return ok
}

// Push appends an object, indexing its identifier.
func (c *CollectionWithID[T]) Push(object T) (Idx[T], error) {
	id := object.ObjectID()
	if _, ok := c.idToIdx[id]; ok {
		return Idx[T]{}, &IdentifierExistsError{ID: id}
	}
	i := c.Collection.Push(object)
	c.idToIdx[id] = i
	return i, nil
}

// Take hands the records back and empties the collection and its index.
func (c *CollectionWithID[T]) Take() []T {
	c.idToIdx = map[string]Idx[T]{}
	return c.Collection.Take()
}

// Retain rebuilds the collection and its identifier index keeping only
// objects for which keep returns true. All previous handles are invalidated.
func (c *CollectionWithID[T]) Retain(keep func(*T) bool) int {
	removed := c.Collection.Retain(keep)
	if removed > 0 {
		c.idToIdx = make(map[string]Idx[T], len(c.objects))
		for p := range c.objects {
			c.idToIdx[c.objects[p].ObjectID()] = Idx[T]{pos: uint32(p)}
		}
	}
	return removed
}

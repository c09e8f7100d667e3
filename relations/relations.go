// Package relations declares the adjacency between entity kinds and answers
// correspondence queries by composing declared relations into multi-hop
// paths across the schema graph.
package relations

import "fmt"

// Kind names one entity kind in the schema.
type Kind string

// Cardinality of a declared relation.
type Cardinality int

const (
	// OneToMany relations tie each target to a single source, e.g. a line
	// belongs to one network.
	OneToMany Cardinality = iota
	// ManyToMany relations tie sources and targets freely, e.g. vehicle
	// journeys and stop points.
	ManyToMany
)

// IdxSet is an unordered, deduplicated group of raw handles of one kind.
type IdxSet map[uint32]struct{}

// NewIdxSet builds a set from the given raw handles.
func NewIdxSet(values ...uint32) IdxSet {
	s := make(IdxSet, len(values))
	for _, v := range values {
		s[v] = struct{}{}
	}
	return s
}

// Add inserts a raw handle into the set.
func (s IdxSet) Add(v uint32) { s[v] = struct{}{} }

func (s IdxSet) clone() IdxSet {
	out := make(IdxSet, len(s))
	for v := range s {
		out[v] = struct{}{}
	}
	return out
}

// Relation is a declared directed edge between two kinds, stored as a
// forward adjacency and its inverse. Both maps are kept consistent by
// construction: the only mutation path is Insert.
type Relation struct {
	from, to    Kind
	cardinality Cardinality
	forward     map[uint32]IdxSet
	backward    map[uint32]IdxSet
}

// NewRelation declares an empty relation between two kinds.
func NewRelation(from, to Kind, cardinality Cardinality) *Relation {
	return &Relation{
		from:        from,
		to:          to,
		cardinality: cardinality,
		forward:     map[uint32]IdxSet{},
		backward:    map[uint32]IdxSet{},
	}
}

// From returns the source kind.
func (r *Relation) From() Kind { return r.from }

// To returns the target kind.
func (r *Relation) To() Kind { return r.to }

// Cardinality returns the declared cardinality.
func (r *Relation) Cardinality() Cardinality { return r.cardinality }

// Insert records an edge between a source and a target handle, populating
// both the forward and the reverse adjacency.
func (r *Relation) Insert(src, dst uint32) {
	if r.forward[src] == nil {
		r.forward[src] = IdxSet{}
	}
	r.forward[src].Add(dst)
	if r.backward[dst] == nil {
		r.backward[dst] = IdxSet{}
	}
	r.backward[dst].Add(src)
}

// Forward returns the target handles adjacent to a source handle.
func (r *Relation) Forward(src uint32) IdxSet { return r.forward[src] }

// Backward returns the source handles adjacent to a target handle.
func (r *Relation) Backward(dst uint32) IdxSet { return r.backward[dst] }

// hop is one traversal step of a composed path: a declared relation walked
// either source-to-target or target-to-source.
type hop struct {
	rel      *Relation
	reversed bool
}

// Graph holds every declared relation plus, for every ordered kind pair, the
// precomputed path of hops connecting them. Paths are resolved once at build
// time; a disconnected schema is a configuration error, not a query failure.
type Graph struct {
	kinds []Kind
	paths map[[2]Kind][]hop
}

// NewGraph indexes the declared relations and resolves the path between
// every ordered pair of kinds. It fails if any two kinds are not connected
// by a path of declared relations.
func NewGraph(rels []*Relation) (*Graph, error) {
	neighbors := map[Kind][]hop{}
	seen := map[Kind]bool{}
	var kinds []Kind
	addKind := func(k Kind) {
		if !seen[k] {
			seen[k] = true
			kinds = append(kinds, k)
		}
	}
	for _, r := range rels {
		addKind(r.from)
		addKind(r.to)
		neighbors[r.from] = append(neighbors[r.from], hop{rel: r})
		neighbors[r.to] = append(neighbors[r.to], hop{rel: r, reversed: true})
	}

	g := &Graph{kinds: kinds, paths: map[[2]Kind][]hop{}}
	for _, start := range kinds {
		if err := g.resolvePathsFrom(start, neighbors); err != nil {
			return nil, err
		}
	}
	return g, nil
}

// resolvePathsFrom runs a breadth-first walk from one kind and records the
// shortest hop path to every other kind.
func (g *Graph) resolvePathsFrom(start Kind, neighbors map[Kind][]hop) error {
	reached := map[Kind]bool{start: true}
	queue := []Kind{start}
	g.paths[[2]Kind{start, start}] = nil
	for len(queue) > 0 {
		current := queue[0]
		queue = queue[1:]
		for _, h := range neighbors[current] {
			next := h.rel.to
			if h.reversed {
				next = h.rel.from
			}
			if reached[next] {
				continue
			}
			reached[next] = true
			prefix := g.paths[[2]Kind{start, current}]
			path := make([]hop, 0, len(prefix)+1)
			path = append(path, prefix...)
			path = append(path, h)
			g.paths[[2]Kind{start, next}] = path
			queue = append(queue, next)
		}
	}
	for _, k := range g.kinds {
		if !reached[k] {
			return fmt.Errorf("relations: no path between kinds %q and %q", start, k)
		}
	}
	return nil
}

// HasPath reports whether a correspondence query between the two kinds is
// answerable. On a graph built without error this holds for every declared
// kind pair.
func (g *Graph) HasPath(from, to Kind) bool {
	if from == to {
		return true
	}
	_, ok := g.paths[[2]Kind{from, to}]
	return ok
}

// PathLen returns the number of hops between two kinds, or -1 if the pair is
// not connected.
func (g *Graph) PathLen(from, to Kind) int {
	if from == to {
		return 0
	}
	path, ok := g.paths[[2]Kind{from, to}]
	if !ok {
		return -1
	}
	return len(path)
}

// Corresponding projects a handle-set of kind from into the equivalent
// handle-set of kind to, walking the precomputed path hop by hop and
// deduplicating after each hop. The result carries no ordering guarantee.
func (g *Graph) Corresponding(from, to Kind, set IdxSet) IdxSet {
	if from == to {
		return set.clone()
	}
	path, ok := g.paths[[2]Kind{from, to}]
	if !ok {
		return IdxSet{}
	}
	current := set
	for _, h := range path {
		next := IdxSet{}
		for v := range current {
			adjacent := h.rel.Forward(v)
			if h.reversed {
				adjacent = h.rel.Backward(v)
			}
			for t := range adjacent {
				next[t] = struct{}{}
			}
		}
		current = next
	}
	return current
}
